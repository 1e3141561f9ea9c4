package storage

import (
	"context"
	"io"
)

// Storage defines the minimal interface for file storage backends.
// Intentionally simple: Put a file, Get it back, Delete it, get its URL.
type Storage interface {
	// Put stores a file under the given key.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Get retrieves a file by its key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file by its key. Returns nil if the file doesn't exist.
	Delete(ctx context.Context, key string) error

	// Exists checks whether a file exists under the key.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the public URL for a file given its key.
	GetURL(key string) string

	// KeyFromURL maps a public URL issued by GetURL back to its storage
	// key. Returns false for URLs this backend did not issue.
	KeyFromURL(url string) (string, bool)
}
