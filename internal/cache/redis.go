// file: internal/cache/redis.go
// version: 1.0.0
// guid: f4a5c0e1-92b3-44d5-0617-82930415263a

package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps cache entries in Redis with per-key TTLs. Connectivity
// problems after startup degrade to misses and dropped writes; they are
// never surfaced to the resolution path.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and pings it once to catch obvious
// misconfiguration at startup.
func NewRedisStore(ctx context.Context, addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

// Get retrieves an entry. redis.Nil is a normal miss; any other backend
// error is logged and also treated as a miss.
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, bool) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[WARN] redis cache get failed for %s: %v", key, err)
		}
		return nil, false
	}
	entry, err := DecodeEntry(raw)
	if err != nil {
		log.Printf("[WARN] redis cache entry corrupt for %s: %v", key, err)
		return nil, false
	}
	return entry, true
}

// Put stores an entry with the given TTL. Failures are logged no-ops.
func (s *RedisStore) Put(ctx context.Context, key string, entry *Entry, ttl time.Duration) {
	raw, err := entry.Encode()
	if err != nil {
		log.Printf("[WARN] redis cache encode failed for %s: %v", key, err)
		return
	}
	if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("[WARN] redis cache put failed for %s: %v", key, err)
	}
}

// Invalidate removes a single key. Failures are logged no-ops.
func (s *RedisStore) Invalidate(ctx context.Context, key string) {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		log.Printf("[WARN] redis cache invalidate failed for %s: %v", key, err)
	}
}

// Close closes the client connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
