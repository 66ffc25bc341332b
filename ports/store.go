package ports

import (
	"context"
	"time"
)

// Store is durable key/value storage for the session record
type Store interface {
	// Set writes value under key. A positive ttl bounds the record's lifetime.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns core.ErrNotFound when the key is absent or expired.
	Get(ctx context.Context, key string) (string, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
