// Package api exposes the notes REST endpoints.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kuitang/edushare/internal/db"
	"github.com/kuitang/edushare/internal/errs"
	"github.com/kuitang/edushare/internal/notes"
	"github.com/kuitang/edushare/internal/obs"
)

// Greeting is returned from the root route.
const Greeting = "hello from eduShare http server"

// dbErrorMessage is the opaque error body for persistence failures. The
// real cause goes to the log, never to the client.
const dbErrorMessage = "db error"

// ErrorResponse is the JSON body for error replies.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler wraps the notes database and provides HTTP handlers.
type Handler struct {
	notesDB  *db.NotesDB
	snapshot notes.Port

	now   func() time.Time
	newID func() string
}

// Option customizes a Handler.
type Option func(*Handler)

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// WithIDGenerator overrides the note id source, for tests.
func WithIDGenerator(newID func() string) Option {
	return func(h *Handler) { h.newID = newID }
}

// WithSnapshot attaches a snapshot port. After every successful mutation
// the full collection is exported through it, best effort.
func WithSnapshot(port notes.Port) Option {
	return func(h *Handler) { h.snapshot = port }
}

// NewHandler creates a new API handler over the given notes database.
func NewHandler(notesDB *db.NotesDB, opts ...Option) *Handler {
	h := &Handler{
		notesDB: notesDB,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers all routes on the given mux using Go 1.22+
// routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /notes", h.ListNotes)
	mux.HandleFunc("POST /notes", h.CreateNote)
	mux.HandleFunc("DELETE /notes/{id}", h.DeleteNote)
	mux.HandleFunc("GET /notes/{id}/html", h.NoteHTML)
}

// Root handles GET / with a plain greeting.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(Greeting))
}

// ListNotes handles GET /notes. The body is always a JSON array, empty
// included, newest note first.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	all, err := h.notesDB.ListNotes(r.Context())
	if err != nil {
		obs.From(r.Context()).Error("failed to list notes", "error", err)
		writeError(w, http.StatusInternalServerError, dbErrorMessage)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// CreateNote handles POST /notes. Tags are normalized and deduplicated
// before the note is stored; the created note is echoed back.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var input notes.NoteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if strings.TrimSpace(input.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if strings.TrimSpace(input.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	now := h.now().UTC().Truncate(time.Second)
	note := notes.Note{
		ID:        h.newID(),
		Title:     input.Title,
		Content:   input.Content,
		Tags:      notes.NormalizeTags(input.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.notesDB.InsertNote(r.Context(), note); err != nil {
		obs.From(r.Context()).Error("failed to create note", "error", err, "note_id", note.ID)
		writeError(w, http.StatusInternalServerError, dbErrorMessage)
		return
	}
	h.exportSnapshot(r)

	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /notes/{id}. Deleting an unknown id is a 404,
// not a silent success.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.notesDB.DeleteNote(r.Context(), id)
	if errs.IsCode(err, errs.NotFound) {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if err != nil {
		obs.From(r.Context()).Error("failed to delete note", "error", err, "note_id", id)
		writeError(w, http.StatusInternalServerError, dbErrorMessage)
		return
	}
	h.exportSnapshot(r)

	writeJSON(w, http.StatusOK, "note deleted")
}

// NoteHTML handles GET /notes/{id}/html, returning the note content
// rendered from markdown to sanitized HTML.
func (h *Handler) NoteHTML(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	note, err := h.notesDB.GetNote(r.Context(), id)
	if errs.IsCode(err, errs.NotFound) {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if err != nil {
		obs.From(r.Context()).Error("failed to render note", "error", err, "note_id", id)
		writeError(w, http.StatusInternalServerError, dbErrorMessage)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(notes.RenderHTML(note.Content))
}

// exportSnapshot rewrites the snapshot object with the current
// collection. Export failures are logged and never surfaced to the
// client; the database remains the source of truth.
func (h *Handler) exportSnapshot(r *http.Request) {
	if h.snapshot == nil {
		return
	}
	ctx := r.Context()
	all, err := h.notesDB.ListNotes(ctx)
	if err != nil {
		obs.From(ctx).Warn("snapshot export skipped", "error", err)
		return
	}
	if err := h.snapshot.Save(ctx, all); err != nil {
		obs.From(ctx).Warn("snapshot export failed", "error", err)
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
