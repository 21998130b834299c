package store

import (
	"context"
)

// KVStore defines the interface for durable key-value persistence.
// Values are opaque byte slices; callers own their encoding.
type KVStore interface {
	// Get returns the value stored under key.
	// Returns ErrRecordNotFound if no value exists.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, overwriting any prior value.
	// Returns ErrInvalidEntity if the key is empty.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the value stored under key.
	// Returns ErrRecordNotFound if no value exists.
	Delete(ctx context.Context, key string) error
}
