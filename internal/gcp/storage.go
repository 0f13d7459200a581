package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// Bucket wraps a GCS bucket handle with the small object-store surface the
// monitor needs: existence checks and writes.
type Bucket struct {
	handle *storage.BucketHandle
}

// NewBucket creates a Storage client and returns a handle on the named bucket.
func NewBucket(ctx context.Context, name string) (*Bucket, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	return &Bucket{handle: client.Bucket(name)}, nil
}

// Exists reports whether an object is present at key. A missing object is not
// an error; any other backend failure is returned to the caller.
func (b *Bucket) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.handle.Object(key).Attrs(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrObjectNotExist):
		return false, nil
	default:
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat GCS object %s: %w", key, err)
	}
}

// Put writes the reader's content to key, overwriting any existing object.
func (b *Bucket) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	writer := b.handle.Object(key).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write to GCS object %s: %w", key, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize GCS write for %s: %w", key, err)
	}
	return nil
}
