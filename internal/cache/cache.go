package cache

import (
	"context"
	"time"
)

// Key namespaces. The two AI gateway operations share one store, so their
// keys carry a kind prefix to avoid collisions.
const (
	SearchKeyPrefix   = "search:"
	AnalysisKeyPrefix = "analysis:"
	IndexKey          = "index:ids"
	FeaturedKey       = "featured:recipes"
)

// DefaultTTL is the time-to-live applied to AI gateway entries.
const DefaultTTL = 24 * time.Hour

// Cache defines the interface for caching operations. Values are opaque
// JSON-encoded bytes; callers own the encoding.
type Cache interface {
	// Get retrieves a value from the cache by key.
	// Returns nil, nil if the key is not found or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the given key and TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache by key.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
