package cache

import (
	"context"
	"time"
)

// NullCache drops everything it is given: Get reports a miss for every key,
// so each pipeline call recomputes its collision graph and encoding from
// the geometry. It backs the default "null" config backend and the
// --no-cache flag, and stands in for a real backend in tests.
type NullCache struct{}

// NewNullCache creates a cache that never stores anything.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get misses for every key.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the value.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete has nothing to remove.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close holds no resources.
func (c *NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
