package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by Open when no object exists under the name
var ErrObjectNotFound = errors.New("object not found")

// PhotoStorage keeps profile photos under flat names such as "photo-12.png"
type PhotoStorage interface {
	// Store moves the file at tempPath under name, replacing any existing object.
	// The temp file is gone after a successful call.
	Store(ctx context.Context, tempPath, name string) error
	// Remove deletes name; an already missing object is not an error
	Remove(ctx context.Context, name string) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
