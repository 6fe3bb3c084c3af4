// Package cache stores solve reports so that repeated runs over the same
// graphs and options skip the SAT search.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for a shared deployment of the HTTP API, and [NullCache] when caching is
// disabled. Keys are built by a [Keyer] from content hashes of the input
// graphs and the search options, so renaming a file does not invalidate its
// entry while editing it does.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
