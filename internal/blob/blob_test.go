package blob

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/kuitang/edushare/internal/notes"
	"github.com/kuitang/edushare/internal/s3client"
)

func testCollection() []notes.Note {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []notes.Note{
		{
			ID:        "a1",
			Title:     "First",
			Content:   "first body",
			Tags:      []string{"work", "urgent"},
			CreatedAt: created.Add(time.Hour),
			UpdatedAt: created.Add(2 * time.Hour),
		},
		{
			ID:        "b2",
			Title:     "Second",
			Content:   "second body",
			Tags:      []string{},
			CreatedAt: created,
			UpdatedAt: created,
		},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	original := testCollection()

	data, err := EncodeNotes(original)
	require.NoError(t, err)

	decoded, err := DecodeNotes(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestEncodeNotes_NilTagsBecomeEmptyArray(t *testing.T) {
	created := time.Now().UTC().Truncate(time.Second)
	data, err := EncodeNotes([]notes.Note{{
		ID: "x", Title: "t", Content: "c", CreatedAt: created, UpdatedAt: created,
	}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tags": []`)
	assert.NotContains(t, string(data), "null")
}

func TestDecodeNotes_EmptyInput(t *testing.T) {
	for _, data := range [][]byte{nil, {}, []byte("  \n ")} {
		decoded, err := DecodeNotes(data)
		require.NoError(t, err)
		assert.Nil(t, decoded)
	}
}

func TestDecodeNotes_CorruptInputs(t *testing.T) {
	created := `"createdAt":"2024-03-01T12:00:00Z","updatedAt":"2024-03-01T12:00:00Z"`
	cases := map[string]string{
		"not json":          `{{{`,
		"wrong shape":       `{"notes":[]}`,
		"unknown field":     `[{"id":"a","title":"t","content":"c","tags":[],"extra":1,` + created + `}]`,
		"bad timestamp":     `[{"id":"a","title":"t","content":"c","tags":[],"createdAt":"yesterday","updatedAt":"2024-03-01T12:00:00Z"}]`,
		"missing id":        `[{"title":"t","content":"c","tags":[],` + created + `}]`,
		"missing title":     `[{"id":"a","content":"c","tags":[],` + created + `}]`,
		"missing content":   `[{"id":"a","title":"t","tags":[],` + created + `}]`,
		"missing createdAt": `[{"id":"a","title":"t","content":"c","tags":[],"updatedAt":"2024-03-01T12:00:00Z"}]`,
		"updated before created": `[{"id":"a","title":"t","content":"c","tags":[],` +
			`"createdAt":"2024-03-01T12:00:00Z","updatedAt":"2024-03-01T11:00:00Z"}]`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeNotes([]byte(raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, notes.ErrCorruptSnapshot), "want ErrCorruptSnapshot, got %v", err)
		})
	}
}

func testEncodeDecode_RoundTripProperties(t *rapid.T) {
	noteGen := rapid.Custom(func(t *rapid.T) notes.Note {
		created := time.Unix(rapid.Int64Range(0, 4_000_000_000).Draw(t, "created"), 0).UTC()
		return notes.Note{
			ID:        rapid.StringMatching(`[a-z0-9-]{1,36}`).Draw(t, "id"),
			Title:     rapid.StringMatching(`[^\s]\S{0,20}`).Draw(t, "title"),
			Content:   rapid.StringMatching(`[^\s]\S{0,40}`).Draw(t, "content"),
			Tags:      rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,8}`), 0, 4).Draw(t, "tags"),
			CreatedAt: created,
			UpdatedAt: created.Add(time.Duration(rapid.Int64Range(0, 1_000_000).Draw(t, "delta")) * time.Second),
		}
	})
	original := rapid.SliceOfN(noteGen, 0, 10).Draw(t, "collection")

	data, err := EncodeNotes(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeNotes(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(original) == 0 {
		if len(decoded) != 0 {
			t.Fatalf("empty collection decoded as %d notes", len(decoded))
		}
		return
	}
	if len(decoded) != len(original) {
		t.Fatalf("got %d notes, want %d", len(decoded), len(original))
	}
	for i := range original {
		if decoded[i].ID != original[i].ID ||
			decoded[i].Title != original[i].Title ||
			decoded[i].Content != original[i].Content ||
			!decoded[i].CreatedAt.Equal(original[i].CreatedAt) ||
			!decoded[i].UpdatedAt.Equal(original[i].UpdatedAt) {
			t.Fatalf("note %d diverged after round trip:\n  in:  %+v\n  out: %+v", i, original[i], decoded[i])
		}
	}
}

func TestEncodeDecode_RoundTripProperties(t *testing.T) {
	rapid.Check(t, testEncodeDecode_RoundTripProperties)
}

func FuzzEncodeDecode_RoundTripProperties(f *testing.F) {
	f.Add([]byte{0x00})
	f.Fuzz(rapid.MakeFuzz(testEncodeDecode_RoundTripProperties))
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshot.json")
	store := NewFileStore(path)
	ctx := context.Background()

	// Missing file reads as no snapshot.
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	original := testCollection()
	require.NoError(t, store.Save(ctx, original))

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)

	// No temp files left behind after the atomic rename.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "snapshot.json", entries[0].Name())
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.True(t, errors.Is(err, notes.ErrCorruptSnapshot))
}

func TestMemStore_FailureInjection(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	store.SaveErr = errors.New("boom")
	err := store.Save(ctx, testCollection())
	assert.Error(t, err)
	assert.Equal(t, 1, store.SaveCalls)

	store.SaveErr = nil
	require.NoError(t, store.Save(ctx, testCollection()))
	assert.Equal(t, 2, store.SaveCalls)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testCollection(), loaded)

	store.SetRaw([]byte("garbage"))
	_, err = store.Load(ctx)
	assert.True(t, errors.Is(err, notes.ErrCorruptSnapshot))
}

func TestS3Store_RoundTrip(t *testing.T) {
	client := s3client.TestClient(t, "notes-test")
	store := NewS3Store(client, "")
	ctx := context.Background()

	assert.Equal(t, DefaultKey, store.key)

	// Missing object reads as no snapshot.
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	original := testCollection()
	require.NoError(t, store.Save(ctx, original))

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)

	// Saving again overwrites the single object.
	require.NoError(t, store.Save(ctx, original[:1]))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, original[:1], loaded)
}

func TestS3Store_IntegratesWithNotesStore(t *testing.T) {
	client := s3client.TestClient(t, "notes-test")
	port := NewS3Store(client, DefaultKey)
	ctx := context.Background()

	store, err := notes.Open(ctx, port)
	require.NoError(t, err)

	created, err := store.Create(ctx, notes.NoteInput{Title: "Remote", Content: "body", Tags: []string{"S3"}})
	require.NoError(t, err)

	// A fresh store over the same object sees the persisted note.
	reopened, err := notes.Open(ctx, port)
	require.NoError(t, err)
	all := reopened.List()
	require.Len(t, all, 1)
	assert.Equal(t, created.ID, all[0].ID)
	assert.Equal(t, []string{"s3"}, all[0].Tags)
}
