// file: internal/cache/pebble.go
// version: 1.0.0
// guid: e394bfd0-81a2-43c4-f506-718293041526

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/cockroachdb/pebble/v2"
)

// pebbleRecord wraps an entry with its absolute expiry so TTL survives
// process restarts.
type pebbleRecord struct {
	Entry     *Entry    `json:"entry"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PebbleStore persists cache entries in a PebbleDB key-value store.
// Expired records are dropped lazily on read.
type PebbleStore struct {
	db *pebble.DB
}

// NewPebbleStore opens (or creates) the database at path.
func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open PebbleDB cache: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

// Get retrieves an entry. Backend errors and corrupt values are misses.
func (s *PebbleStore) Get(_ context.Context, key string) (*Entry, bool) {
	value, closer, err := s.db.Get([]byte(key))
	if err == pebble.ErrNotFound {
		return nil, false
	}
	if err != nil {
		log.Printf("[WARN] pebble cache get failed for %s: %v", key, err)
		return nil, false
	}
	raw := append([]byte(nil), value...)
	closer.Close()

	var rec pebbleRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		log.Printf("[WARN] pebble cache entry corrupt for %s: %v", key, err)
		return nil, false
	}
	if time.Now().After(rec.ExpiresAt) {
		if err := s.db.Delete([]byte(key), pebble.NoSync); err != nil {
			log.Printf("[DEBUG] pebble cache expiry delete failed for %s: %v", key, err)
		}
		return nil, false
	}
	return rec.Entry, true
}

// Put stores an entry with the given TTL. Failures are logged no-ops.
func (s *PebbleStore) Put(_ context.Context, key string, entry *Entry, ttl time.Duration) {
	rec := pebbleRecord{Entry: entry, ExpiresAt: time.Now().Add(ttl)}
	raw, err := json.Marshal(rec)
	if err != nil {
		log.Printf("[WARN] pebble cache encode failed for %s: %v", key, err)
		return
	}
	if err := s.db.Set([]byte(key), raw, pebble.Sync); err != nil {
		log.Printf("[WARN] pebble cache put failed for %s: %v", key, err)
	}
}

// Invalidate removes a single key. Failures are logged no-ops.
func (s *PebbleStore) Invalidate(_ context.Context, key string) {
	if err := s.db.Delete([]byte(key), pebble.Sync); err != nil {
		log.Printf("[WARN] pebble cache invalidate failed for %s: %v", key, err)
	}
}

// Close closes the database.
func (s *PebbleStore) Close() error {
	return s.db.Close()
}
