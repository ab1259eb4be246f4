package notes

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kuitang/edushare/internal/errs"
	"github.com/kuitang/edushare/internal/obs"
)

// ErrCorruptSnapshot marks persisted data that failed strict decoding.
// Ports wrap decode failures with this sentinel; the store discards the
// snapshot and starts empty instead of crashing.
var ErrCorruptSnapshot = errors.New("notes: corrupt snapshot")

// Port is the store's persistence collaborator: it reads and writes the
// entire collection as one unit. Load returns (nil, nil) when no snapshot
// exists yet.
type Port interface {
	Load(ctx context.Context) ([]Note, error)
	Save(ctx context.Context, notes []Note) error
}

// Store owns the authoritative note collection, most-recently-created
// first. Every mutation re-persists the full collection through the port
// and rolls back the in-memory view if the write fails, so callers never
// observe the in-memory and durable views permanently diverged.
type Store struct {
	mu    sync.Mutex
	port  Port
	notes []Note
	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the store's clock. Tests use this to make timestamps
// deterministic.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the store's note id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Open creates a Store backed by the given port and loads the existing
// snapshot. A corrupt snapshot is logged and discarded, yielding an empty
// collection; any other read failure is surfaced as a persistence error.
func Open(ctx context.Context, port Port, opts ...Option) (*Store, error) {
	s := &Store{
		port:  port,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := port.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrCorruptSnapshot) {
			obs.Pkg("notes").Warn("discarding corrupt snapshot", "error", err.Error())
			loaded = nil
		} else {
			return nil, errs.Wrap(errs.Unavailable, "failed to load notes", err)
		}
	}

	s.notes = cloneNotes(loaded)
	return s, nil
}

// List returns a snapshot of all notes, most-recently-created first.
func (s *Store) List() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneNotes(s.notes)
}

// Len returns the number of notes in the collection.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

// Tags returns the tag index for the current collection.
func (s *Store) Tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AllTags(s.notes)
}

// Search returns the notes matching the query and tag constraints, newest
// first.
func (s *Store) Search(query, tag string) []Note {
	return Filter(s.List(), query, tag)
}

// Create validates and normalizes the input, assigns a fresh id and
// timestamps, prepends the note, and persists the collection.
func (s *Store) Create(ctx context.Context, input NoteInput) (Note, error) {
	if err := validateInput(input); err != nil {
		return Note{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	note := Note{
		ID:        s.newID(),
		Title:     input.Title,
		Content:   input.Content,
		Tags:      NormalizeTags(input.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}

	prev := s.notes
	s.notes = append([]Note{note}, s.notes...)
	if err := s.persist(ctx); err != nil {
		s.notes = prev
		return Note{}, err
	}
	return note.Clone(), nil
}

// Edit replaces title, content, and tags of the note with the given id and
// bumps UpdatedAt. CreatedAt and the note's position in the collection are
// unchanged.
func (s *Store) Edit(ctx context.Context, id string, input NoteInput) (Note, error) {
	if err := validateInput(input); err != nil {
		return Note{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Note{}, errs.Newf(errs.NotFound, "note not found: %s", id)
	}

	prev := cloneNotes(s.notes)
	note := &s.notes[idx]
	note.Title = input.Title
	note.Content = input.Content
	note.Tags = NormalizeTags(input.Tags)
	note.UpdatedAt = s.now()
	if note.UpdatedAt.Before(note.CreatedAt) {
		note.UpdatedAt = note.CreatedAt
	}

	if err := s.persist(ctx); err != nil {
		s.notes = prev
		return Note{}, err
	}
	return note.Clone(), nil
}

// Delete removes the note with the given id permanently. Deleting an
// unknown id fails with a not-found error and leaves the collection
// unchanged.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return errs.Newf(errs.NotFound, "note not found: %s", id)
	}

	prev := s.notes
	s.notes = append(append([]Note(nil), s.notes[:idx]...), s.notes[idx+1:]...)
	if err := s.persist(ctx); err != nil {
		s.notes = prev
		return err
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, note := range s.notes {
		if note.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context) error {
	if err := s.port.Save(ctx, cloneNotes(s.notes)); err != nil {
		return errs.Wrap(errs.Unavailable, "failed to persist notes", err)
	}
	return nil
}

func validateInput(input NoteInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return errs.New(errs.InvalidArgument, "title is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return errs.New(errs.InvalidArgument, "content is required")
	}
	return nil
}
