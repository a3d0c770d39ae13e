// file: internal/providers/provider.go
// version: 1.0.0
// guid: 27d8f314-c5e6-47a8-394a-15263748596d

// Package providers implements the thumbnail source chain: a set of
// stateless, reentrant lookups that map an ISBN to a cover image URL or
// raw bytes. Each provider reports failures through a typed ProviderError
// so the resolver can distinguish "no cover here" from service trouble.
package providers

import "context"

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	// KindNotFound means the identifier has no cover at this provider.
	// Terminal; never retried.
	KindNotFound ErrorKind = "not_found"
	// KindTransient means a network or service issue. Retry-eligible.
	KindTransient ErrorKind = "transient"
	// KindInvalidResponse means the provider answered with a malformed or
	// unusable payload. Terminal for the attempt, but kept distinct from
	// NotFound for diagnostics.
	KindInvalidResponse ErrorKind = "invalid_response"
)

// ProviderError is a per-provider failure. It never crosses the resolver
// boundary; the resolver records it and moves on to the next provider.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + " from " + e.Provider + ": " + e.Err.Error()
	}
	return string(e.Kind) + " from " + e.Provider
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Candidate is an unvalidated provider result: a URL, optionally the
// bytes already fetched for it, and the originating provider's name.
// Validated marks candidates the provider already ran through image
// validation itself.
type Candidate struct {
	URL       string
	Data      []byte
	Provider  string
	Validated bool
}

// Provider is a pluggable thumbnail source. Implementations are
// stateless across calls and must not mutate the identifier.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, isbn string) (*Candidate, error)
}
