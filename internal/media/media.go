// Package media stores uploaded performance videos on the local filesystem or in a GCS bucket.
package media

import (
	"context"
	"errors"
	"io"
)

const (
	BackendLocal = "local"
	BackendGCS   = "gcs"
)

var ErrInvalidKey = errors.New("invalid media key")

// BlobStore persists binary content under a slash-separated key and returns the URL clients use to fetch it.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}
