package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kuitang/edushare/internal/notes"
)

// FileStore persists the snapshot as a JSON file on disk. Writes go
// through a temp file and rename so a crash mid-write never leaves a
// half-written snapshot behind.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed snapshot store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot file path.
func (f *FileStore) Path() string { return f.path }

// Load reads and decodes the snapshot. A missing file means no snapshot
// yet and yields (nil, nil).
func (f *FileStore) Load(_ context.Context) ([]notes.Note, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("blob: read snapshot %q: %w", f.path, err)
	}
	return DecodeNotes(data)
}

// Save encodes the collection and atomically replaces the snapshot file.
func (f *FileStore) Save(_ context.Context, collection []notes.Note) error {
	data, err := EncodeNotes(collection)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("blob: create snapshot dir %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("blob: create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("blob: write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("blob: close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("blob: replace snapshot %q: %w", f.path, err)
	}
	return nil
}
