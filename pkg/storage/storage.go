package storage

import (
	"context"
	"errors"
)

// Storage defines the interface for durable key-value backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Get returns the value stored under key.
	// Returns (nil, nil) if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, fully replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the storage.
	Close() error
}

// Watcher is implemented by backends that can report changes made to a key
// by other writers. fn is called after a change is observed; it carries no
// payload so callers always read the latest value.
type Watcher interface {
	Watch(key string, fn func()) (stop func(), err error)
}

// ErrClosed is returned when operations are attempted on a closed storage.
var ErrClosed = errors.New("storage: closed")

// ErrInvalidKey is returned for empty keys or keys that cannot be mapped to
// the backend's namespace.
var ErrInvalidKey = errors.New("storage: invalid key")
