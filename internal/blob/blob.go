// Package blob persists the whole note collection as one JSON snapshot
// under a single well-known key. It implements the store's read-all/
// write-all persistence port for local files, S3 objects, and an
// in-memory fake for tests.
package blob

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kuitang/edushare/internal/notes"
)

// DefaultKey is the well-known snapshot key. All snapshot backends store
// the collection under this single key unless configured otherwise.
const DefaultKey = "notes-app-data"

// EncodeNotes serializes the collection as a JSON array with RFC 3339
// timestamps.
func EncodeNotes(collection []notes.Note) ([]byte, error) {
	for i := range collection {
		if collection[i].Tags == nil {
			collection[i].Tags = []string{}
		}
	}
	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("blob: encode notes: %w", err)
	}
	return data, nil
}

// DecodeNotes strictly deserializes a snapshot. Unknown fields, malformed
// timestamps, and notes missing required fields all fail with
// notes.ErrCorruptSnapshot rather than being silently coerced. Empty input
// decodes as an empty collection.
func DecodeNotes(data []byte) ([]notes.Note, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var collection []notes.Note
	if err := dec.Decode(&collection); err != nil {
		return nil, fmt.Errorf("%w: %v", notes.ErrCorruptSnapshot, err)
	}

	for i, note := range collection {
		if err := validateNote(note); err != nil {
			return nil, fmt.Errorf("%w: note %d: %v", notes.ErrCorruptSnapshot, i, err)
		}
		if collection[i].Tags == nil {
			collection[i].Tags = []string{}
		}
	}
	return collection, nil
}

func validateNote(note notes.Note) error {
	switch {
	case note.ID == "":
		return fmt.Errorf("missing id")
	case strings.TrimSpace(note.Title) == "":
		return fmt.Errorf("missing title")
	case strings.TrimSpace(note.Content) == "":
		return fmt.Errorf("missing content")
	case note.CreatedAt.IsZero():
		return fmt.Errorf("missing createdAt")
	case note.UpdatedAt.IsZero():
		return fmt.Errorf("missing updatedAt")
	case note.UpdatedAt.Before(note.CreatedAt):
		return fmt.Errorf("updatedAt before createdAt")
	}
	return nil
}
