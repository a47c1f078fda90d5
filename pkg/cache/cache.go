// Package cache stores parsed dependency records keyed by manifest content.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for shared deployments of the HTTP server and [NullCache] when caching is
// disabled. Keys come from a [Keyer] so the same manifest bytes map to the
// same entry regardless of where the file lives.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long parsed records stay cached. Entries are keyed by
// content hash, so a stale entry can only be served for identical bytes.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}
