// Package cache provides content-addressed caching for conversion results.
//
// A cache key is derived from the input image bytes plus the resolved
// conversion settings, so identical requests can skip the tracing engine
// entirely. Three backends are provided:
//   - NullCache: caching disabled (CLI default)
//   - FileCache: file-based storage for single-instance deployments
//   - RedisCache: Redis-backed storage for multi-instance deployments
package cache

import (
	"context"
	"time"
)

// Cache is the interface for cache backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns (nil, false, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value in the cache with the given TTL.
	// A zero TTL means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
