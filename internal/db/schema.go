package db

// Schema contains the SQL statements for the notes database. Tags are
// stored denormalized as a JSON array of strings; the collection is small
// and every read loads whole notes anyway.
const Schema = `
CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    tags TEXT NOT NULL DEFAULT '[]',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(created_at DESC);
`
