// Package cache provides response caching for depdrift's outbound API
// calls, with interchangeable backends:
//   - file: per-entry JSON files under the user cache directory (CLI default)
//   - redis: shared cache for CI fleets running the same checks
//   - null: caching disabled
//
// Entries are opaque byte slices with a TTL. Keys are free-form strings;
// backends are responsible for making them storage-safe (the file backend
// hashes them).
package cache

import (
	"context"
	"time"
)

// Cache is the interface all cache backends implement.
type Cache interface {
	// Get retrieves a value. The second return reports a hit; a miss is
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
