// Package cache stores pipeline results and rendered artifacts by content
// hash.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the API server
//   - [NullCache]: stores nothing, for tests and --no-cache
//
// # Keys
//
// A [Keyer] derives keys from the hash of a document's encoded form plus the
// options that affect the result, so a changed document or option never
// reads a stale entry:
//
//	k := cache.NewDefaultKeyer()
//	key := k.ResultKey(cache.Hash(data), cache.ResultKeyOpts{Sloppy: true})
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. Implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss
	// (false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero keeps the entry until it is
	// deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}
