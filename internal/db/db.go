// Package db provides the SQLite persistence layer for the notes table.
// The driver is SQLCipher-capable: with a key the database file is
// encrypted, with an empty key it behaves like plain SQLite.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/kuitang/edushare/internal/errs"
	"github.com/kuitang/edushare/internal/notes"
)

const (
	// MaxOpenConns keeps the pool small; SQLite is single-writer and high
	// connection counts are counterproductive.
	MaxOpenConns = 4

	// MaxIdleConns is the maximum number of idle connections.
	MaxIdleConns = 1
)

// NotesDB wraps the sql.DB connection for the notes table.
type NotesDB struct {
	db *sql.DB
}

// Open opens (creating if necessary) the notes database at path. keyHex,
// when non-empty, must be 64 hex characters and enables SQLCipher
// encryption of the file.
func Open(path, keyHex string) (*NotesDB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := "file:" + path
	if keyHex != "" {
		dsn = fmt.Sprintf("file:%s?_pragma_key=x'%s'&_pragma_cipher_page_size=4096", path, keyHex)
	}

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open notes database: %w", err)
	}

	sqlDB.SetMaxOpenConns(MaxOpenConns)
	sqlDB.SetMaxIdleConns(MaxIdleConns)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping notes database: %w", err)
	}

	if _, err := sqlDB.Exec(Schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize notes schema: %w", err)
	}

	return &NotesDB{db: sqlDB}, nil
}

// NewFromSQL wraps an existing sql.DB as a NotesDB. The caller is
// responsible for the schema.
func NewFromSQL(sqlDB *sql.DB) *NotesDB {
	return &NotesDB{db: sqlDB}
}

// DB returns the underlying sql.DB for direct access when needed.
func (n *NotesDB) DB() *sql.DB {
	return n.db
}

// Close closes the database connection.
func (n *NotesDB) Close() error {
	return n.db.Close()
}

// InsertNote stores a new note row.
func (n *NotesDB) InsertNote(ctx context.Context, note notes.Note) error {
	tags, err := encodeTags(note.Tags)
	if err != nil {
		return err
	}
	_, err = n.db.ExecContext(ctx,
		`INSERT INTO notes (id, title, content, tags, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		note.ID, note.Title, note.Content, tags, note.CreatedAt.Unix(), note.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

// GetNote retrieves a note by id.
func (n *NotesDB) GetNote(ctx context.Context, id string) (notes.Note, error) {
	row := n.db.QueryRowContext(ctx,
		`SELECT id, title, content, tags, created_at, updated_at FROM notes WHERE id = ?`, id)
	note, err := scanNote(row)
	if err == sql.ErrNoRows {
		return notes.Note{}, errs.Newf(errs.NotFound, "note not found: %s", id)
	}
	if err != nil {
		return notes.Note{}, fmt.Errorf("failed to read note: %w", err)
	}
	return note, nil
}

// ListNotes returns all notes, most-recently-created first. Rows created
// in the same second keep insertion order via the rowid tiebreak.
func (n *NotesDB) ListNotes(ctx context.Context) ([]notes.Note, error) {
	rows, err := n.db.QueryContext(ctx,
		`SELECT id, title, content, tags, created_at, updated_at FROM notes ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	out := make([]notes.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		out = append(out, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}
	return out, nil
}

// NoteExists reports whether a note with the given id exists.
func (n *NotesDB) NoteExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := n.db.QueryRowContext(ctx, `SELECT 1 FROM notes WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check note existence: %w", err)
	}
	return true, nil
}

// DeleteNote removes a note permanently. Deleting an unknown id fails with
// a not-found error.
func (n *NotesDB) DeleteNote(ctx context.Context, id string) error {
	res, err := n.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if affected == 0 {
		return errs.Newf(errs.NotFound, "note not found: %s", id)
	}
	return nil
}

// CountNotes returns the number of stored notes.
func (n *NotesDB) CountNotes(ctx context.Context) (int, error) {
	var count int
	if err := n.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (notes.Note, error) {
	var (
		note               notes.Note
		tags               string
		createdAt, updated int64
	)
	if err := row.Scan(&note.ID, &note.Title, &note.Content, &tags, &createdAt, &updated); err != nil {
		return notes.Note{}, err
	}
	decoded, err := decodeTags(tags)
	if err != nil {
		return notes.Note{}, err
	}
	note.Tags = decoded
	note.CreatedAt = time.Unix(createdAt, 0).UTC()
	note.UpdatedAt = time.Unix(updated, 0).UTC()
	return note, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(data), nil
}

func decodeTags(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}
