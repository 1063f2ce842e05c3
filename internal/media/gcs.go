package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCSStore keeps blobs in a Google Cloud Storage bucket.
type GCSStore struct {
	Client *storage.Client
	Bucket string
}

func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	if client == nil {
		panic("gcs media store requires client")
	}
	if bucket == "" {
		panic("gcs media store requires bucket")
	}
	return &GCSStore{Client: client, Bucket: bucket}
}

func (s *GCSStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	// Closing the writer commits whatever was written, so a failed copy cancels the upload instead.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w := s.Client.Bucket(s.Bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		cancel()
		return "", fmt.Errorf("upload object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object: %w", err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.Bucket, key), nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	err := s.Client.Bucket(s.Bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

var (
	_ BlobStore = (*GCSStore)(nil)
	_ BlobStore = (*LocalStore)(nil)
)
