package blob

import (
	"context"

	"github.com/kuitang/edushare/internal/notes"
)

// MemStore is an in-memory snapshot store for tests. It goes through the
// same encode/decode path as the real ports and supports failure
// injection.
type MemStore struct {
	data []byte

	// LoadErr and SaveErr, when set, are returned by the corresponding
	// operation instead of touching the snapshot.
	LoadErr error
	SaveErr error

	// SaveCalls counts Save invocations, failed ones included.
	SaveCalls int
}

// NewMemStore creates an empty in-memory snapshot store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// SetRaw replaces the raw snapshot bytes, bypassing encoding. Tests use
// this to simulate corrupt persisted data.
func (m *MemStore) SetRaw(data []byte) {
	m.data = append([]byte(nil), data...)
}

// Raw returns the raw snapshot bytes.
func (m *MemStore) Raw() []byte {
	return append([]byte(nil), m.data...)
}

// Load decodes the stored snapshot.
func (m *MemStore) Load(_ context.Context) ([]notes.Note, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return DecodeNotes(m.data)
}

// Save encodes and stores the collection.
func (m *MemStore) Save(_ context.Context, collection []notes.Note) error {
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	data, err := EncodeNotes(collection)
	if err != nil {
		return err
	}
	m.data = data
	return nil
}
