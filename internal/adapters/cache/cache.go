package cache

import (
	"context"
	"time"
)

// Store is a TTL key/value store for short-lived secrets such as the NIBSS
// API token. Implementations must be safe for concurrent use; expiry is
// enforced by the store, not by callers.
type Store interface {
	// Get returns the value for key, and whether a live entry exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key for the given TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key if present.
	Delete(ctx context.Context, key string) error
}
