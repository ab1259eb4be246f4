// Package notes implements the note-taking domain core: the note store and
// its persistence port, the tag index, the search/filter engine, tag
// autocomplete state, and the editor session state machine.
package notes

import (
	"time"
)

// Note represents a user-authored note with tags and timestamps.
// Tags are normalized (trimmed, lowercased, deduplicated) before a note
// reaches the store; CreatedAt is immutable after creation.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the note. The store hands out clones so
// callers cannot mutate the authoritative collection through a snapshot.
func (n Note) Clone() Note {
	out := n
	out.Tags = append([]string(nil), n.Tags...)
	return out
}

// NoteInput carries the user-editable fields of a note.
type NoteInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

func cloneNotes(in []Note) []Note {
	out := make([]Note, len(in))
	for i, n := range in {
		out[i] = n.Clone()
	}
	return out
}
