package cache

import (
	"context"
	"errors"
)

// ErrCacheMiss indicates the requested key was not found in the store.
var ErrCacheMiss = errors.New("cache miss")

// Store is a shared byte store consulted before a Memo runs its loader.
type Store interface {
	// Get returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
}
