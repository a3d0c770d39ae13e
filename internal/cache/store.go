// file: internal/cache/store.go
// version: 1.0.0
// guid: d283aecf-7091-42b3-e4f5-607182930415

package cache

import (
	"context"
	"fmt"
	"time"
)

// Store is a TTL key/value store for resolution results. Implementations
// are no-throw from the caller's perspective: a backend failure on Get is
// a miss, a failure on Put or Invalidate is a logged no-op.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, bool)
	Put(ctx context.Context, key string, entry *Entry, ttl time.Duration)
	Invalidate(ctx context.Context, key string)
	Close() error
}

// Open builds a Store for the configured backend type: "memory",
// "pebble" or "redis". Unknown types are a configuration error.
func Open(ctx context.Context, backend, path, redisAddr string, redisDB int, defaultTTL time.Duration) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemoryStore(defaultTTL), nil
	case "pebble":
		return NewPebbleStore(path)
	case "redis":
		return NewRedisStore(ctx, redisAddr, redisDB)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", backend)
	}
}
