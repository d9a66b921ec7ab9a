// Package metadata stores small opaque values under string keys in the
// console's local SQLite database.
package metadata

import (
	"context"
	"time"
)

// Entry is one stored value with the time it was last written.
type Entry struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

// Repository is a durable key-value store. Get returns (nil, nil) for an
// absent key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Entries describes every stored value without returning it.
	Entries(ctx context.Context) ([]Entry, error)

	// Purge removes everything and reports how many values were dropped.
	Purge(ctx context.Context) (int64, error)
}
