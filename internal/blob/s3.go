package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/kuitang/edushare/internal/notes"
	"github.com/kuitang/edushare/internal/s3client"
)

// S3Store persists the snapshot as a single JSON object in an S3 bucket.
// Each save rewrites the whole object, mirroring the file store.
type S3Store struct {
	client *s3client.Client
	key    string
}

// NewS3Store creates an S3-backed snapshot store. An empty key falls back
// to DefaultKey.
func NewS3Store(client *s3client.Client, key string) *S3Store {
	if key == "" {
		key = DefaultKey
	}
	return &S3Store{client: client, key: key}
}

// Load fetches and decodes the snapshot object. A missing object means no
// snapshot yet.
func (s *S3Store) Load(ctx context.Context) ([]notes.Note, error) {
	data, err := s.client.GetObject(ctx, s.key)
	if errors.Is(err, s3client.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("blob: read snapshot object %q: %w", s.key, err)
	}
	return DecodeNotes(data)
}

// Save encodes the collection and rewrites the snapshot object.
func (s *S3Store) Save(ctx context.Context, collection []notes.Note) error {
	data, err := EncodeNotes(collection)
	if err != nil {
		return err
	}
	if err := s.client.PutObject(ctx, s.key, data, "application/json"); err != nil {
		return fmt.Errorf("blob: write snapshot object %q: %w", s.key, err)
	}
	return nil
}
