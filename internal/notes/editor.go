package notes

import (
	"context"
	"strings"

	"github.com/kuitang/edushare/internal/errs"
)

// EditorState is the editor session's explicit state enum. The session is
// either closed, creating a new note, or editing an existing one; there is
// no ambiguous intermediate state.
type EditorState int

const (
	StateClosed EditorState = iota
	StateCreating
	StateEditing
)

func (s EditorState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateCreating:
		return "creating"
	case StateEditing:
		return "editing"
	default:
		return "unknown"
	}
}

// EditorSession tracks whether the user is creating a new note or editing
// an existing one, holds the form fields, and validates input before it
// reaches the store.
type EditorSession struct {
	store   *Store
	state   EditorState
	editing Note

	Title   string
	Content string
	Tags    []string
}

// NewEditorSession creates a closed editor session over the given store.
func NewEditorSession(store *Store) *EditorSession {
	return &EditorSession{store: store, state: StateClosed}
}

// State returns the current editor state.
func (e *EditorSession) State() EditorState { return e.state }

// EditingNote returns the note being edited and true when the session is
// in the editing state.
func (e *EditorSession) EditingNote() (Note, bool) {
	if e.state != StateEditing {
		return Note{}, false
	}
	return e.editing.Clone(), true
}

// OpenCreate opens the editor for a new note with empty form fields.
func (e *EditorSession) OpenCreate() {
	e.state = StateCreating
	e.editing = Note{}
	e.Title = ""
	e.Content = ""
	e.Tags = nil
}

// OpenEdit opens the editor for an existing note with the form fields
// pre-populated from it.
func (e *EditorSession) OpenEdit(note Note) {
	e.state = StateEditing
	e.editing = note.Clone()
	e.Title = note.Title
	e.Content = note.Content
	e.Tags = append([]string(nil), note.Tags...)
}

// Cancel closes the editor and discards unsaved input without touching the
// store. Backdrop clicks and Escape route here.
func (e *EditorSession) Cancel() {
	e.state = StateClosed
	e.editing = Note{}
	e.Title = ""
	e.Content = ""
	e.Tags = nil
}

// Submit validates the form and invokes the store's create or edit
// operation depending on how the editor was opened. An empty post-trim
// title or content is rejected with a validation error, the state does not
// transition, and the store is never called. On success the editor closes
// and the created or updated note is returned. A persistence failure
// leaves the editor open so the user can retry.
func (e *EditorSession) Submit(ctx context.Context) (Note, error) {
	if e.state == StateClosed {
		return Note{}, errs.New(errs.InvalidArgument, "no open editor session")
	}

	input := NoteInput{
		Title:   strings.TrimSpace(e.Title),
		Content: strings.TrimSpace(e.Content),
		Tags:    NormalizeTags(e.Tags),
	}
	if input.Title == "" {
		return Note{}, errs.New(errs.InvalidArgument, "title is required")
	}
	if input.Content == "" {
		return Note{}, errs.New(errs.InvalidArgument, "content is required")
	}

	var (
		note Note
		err  error
	)
	switch e.state {
	case StateCreating:
		note, err = e.store.Create(ctx, input)
	case StateEditing:
		note, err = e.store.Edit(ctx, e.editing.ID, input)
	}
	if err != nil {
		return Note{}, err
	}

	e.Cancel()
	return note, nil
}
