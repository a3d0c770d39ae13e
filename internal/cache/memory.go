// file: internal/cache/memory.go
// version: 1.1.0
// guid: a1b2c3d4-e5f6-7a8b-9c0d-1e2f3a4b5c6d

package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	entry     *Entry
	expiresAt time.Time
}

// MemoryStore is an in-process TTL store safe for concurrent use.
// Concurrent writes to the same key are last-write-wins.
type MemoryStore struct {
	mu         sync.RWMutex
	items      map[string]memoryItem
	defaultTTL time.Duration
}

// NewMemoryStore creates a store with the given default TTL, applied when
// Put is called with ttl <= 0.
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		items:      make(map[string]memoryItem),
		defaultTTL: defaultTTL,
	}
}

// Get retrieves an entry if it exists and hasn't expired.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, bool) {
	s.mu.RLock()
	item, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || time.Now().After(item.expiresAt) {
		return nil, false
	}
	return item.entry, true
}

// Put stores an entry with the given TTL.
func (s *MemoryStore) Put(_ context.Context, key string, entry *Entry, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	s.mu.Lock()
	s.items[key] = memoryItem{entry: entry, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
}

// Invalidate removes a single key.
func (s *MemoryStore) Invalidate(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}

// Close is a no-op for the in-process store.
func (s *MemoryStore) Close() error { return nil }
