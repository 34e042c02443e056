package cache

import (
	"context"
	"time"
)

// Store is the byte-level cache used by the result flow.
// Implemented by the memory store (dev, tests) and the Redis store (prod).
//
// Get distinguishes a clean miss (nil, false, nil) from a backend failure
// (nil, false, err); the caller decides how to degrade. Set applies the
// caller-supplied TTL, the store has no default of its own. Delete exists so
// corrupt entries can be purged.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
