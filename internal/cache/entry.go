// file: internal/cache/entry.go
// version: 1.0.0
// guid: c1729dbe-6f80-41a2-d3e4-5f6071829304

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Entry is a cached resolution result. Serialized as JSON so URLs
// containing reserved characters (notably '|') round-trip byte-for-byte.
type Entry struct {
	URL         string    `json:"url,omitempty"`
	Data        []byte    `json:"data,omitempty"`
	Provider    string    `json:"provider,omitempty"`
	StoredAt    time.Time `json:"stored_at"`
	Fingerprint string    `json:"fingerprint,omitempty"`
}

// NewEntry builds a positive cache entry, stamping it with the current
// time and a content fingerprint usable for ETag construction.
func NewEntry(url string, data []byte, provider string) *Entry {
	e := &Entry{
		URL:      url,
		Data:     data,
		Provider: provider,
		StoredAt: time.Now().UTC(),
	}
	e.Fingerprint = e.fingerprint()
	return e
}

func (e *Entry) fingerprint() string {
	h := sha256.New()
	if len(e.Data) > 0 {
		h.Write(e.Data)
	} else {
		h.Write([]byte(e.URL))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Encode serializes the entry for storage.
func (e *Entry) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEntry deserializes an entry; a decode failure means the stored
// value is unusable and should be treated as a miss by callers.
func DecodeEntry(raw []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Key returns the cache key for an ISBN.
func Key(isbn string) string {
	return "thumb:" + isbn
}
