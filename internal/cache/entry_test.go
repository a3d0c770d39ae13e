// file: internal/cache/entry_test.go
// version: 1.0.0
// guid: 05b6d1f2-a3c4-45e6-1728-93041526374b

package cache

import (
	"testing"
	"time"
)

func TestEntryRoundTripReservedCharacters(t *testing.T) {
	// URLs with delimiter characters must survive serialization unchanged.
	urls := []string{
		"https://example.com/cover?a=1|b=2",
		"https://example.com/{isbn}/cover.jpg",
		"https://example.com/couverture?appName=NE&idArk=ark:/12148/cb450989938&couverture=1",
		"https://example.com/livre/élan-über-本.jpg",
	}
	for _, u := range urls {
		e := NewEntry(u, nil, "bnf")
		raw, err := e.Encode()
		if err != nil {
			t.Fatalf("encode failed for %q: %v", u, err)
		}
		got, err := DecodeEntry(raw)
		if err != nil {
			t.Fatalf("decode failed for %q: %v", u, err)
		}
		if got.URL != u {
			t.Errorf("URL mangled: want %q, got %q", u, got.URL)
		}
		if got.Provider != "bnf" {
			t.Errorf("provider mangled: got %q", got.Provider)
		}
	}
}

func TestEntryRoundTripBytes(t *testing.T) {
	data := []byte{0xFF, 0xD8, 0xFF, 0x00, 0x7C, 0x7B, 0x7D}
	e := NewEntry("", data, "open library")
	raw, err := e.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	got, err := DecodeEntry(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if string(got.Data) != string(data) {
		t.Error("image bytes mangled in round trip")
	}
}

func TestEntryFingerprintStable(t *testing.T) {
	a := NewEntry("https://example.com/a.jpg", nil, "dnb")
	b := NewEntry("https://example.com/a.jpg", nil, "dnb")
	if a.Fingerprint == "" || a.Fingerprint != b.Fingerprint {
		t.Errorf("expected stable fingerprint, got %q vs %q", a.Fingerprint, b.Fingerprint)
	}
	c := NewEntry("https://example.com/b.jpg", nil, "dnb")
	if c.Fingerprint == a.Fingerprint {
		t.Error("different URLs should produce different fingerprints")
	}
}

func TestDecodeEntryRejectsGarbage(t *testing.T) {
	if _, err := DecodeEntry([]byte("not json")); err == nil {
		t.Error("expected decode error")
	}
}

func TestKey(t *testing.T) {
	if Key("9780134685991") != "thumb:9780134685991" {
		t.Errorf("unexpected key: %s", Key("9780134685991"))
	}
}

func TestStoredAtIsRecent(t *testing.T) {
	e := NewEntry("https://example.com/x.jpg", nil, "files")
	if time.Since(e.StoredAt) > time.Minute {
		t.Error("stored_at should be stamped at creation")
	}
}
