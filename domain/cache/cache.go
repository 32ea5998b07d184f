// Package cache defines the response cache used for read-only tool calls.
package cache

import (
	"context"
	"time"
)

// Cache stores upstream response bodies keyed by tool call. Implementations
// live in infrastructure/storage (memory, redis).
type Cache interface {
	// Get returns the cached body for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a body under key.
	Set(ctx context.Context, key string, value []byte, opts SetOptions) error

	// Delete removes one entry.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry owned by this cache.
	Clear(ctx context.Context) error
}

// SetOptions configures how a value is stored.
type SetOptions struct {
	// TTL is the entry lifetime. Zero means no expiration.
	TTL time.Duration
}

// Stats reports cache usage.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Size    int64 `json:"size"`
	MaxSize int64 `json:"max_size"`
}

// HitRate returns hits over lookups, or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// StatsProvider is implemented by caches that count hits and misses.
type StatsProvider interface {
	Stats() Stats
}
