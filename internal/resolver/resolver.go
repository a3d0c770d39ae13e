// file: internal/resolver/resolver.go
// version: 1.0.0
// guid: c1729dbe-6f80-4142-d3e4-bfcddeeff037

// Package resolver walks the configured provider chain for an ISBN: it
// consults the cache, tries each provider in order, validates candidates
// and caches the first success. Provider failures never escape this
// package; callers see a result, NotFoundError or ErrInvalidIdentifier.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rero/thumbnails/internal/cache"
	"github.com/rero/thumbnails/internal/imagecheck"
	"github.com/rero/thumbnails/internal/isbn"
	"github.com/rero/thumbnails/internal/metrics"
	"github.com/rero/thumbnails/internal/providers"
	"github.com/rero/thumbnails/internal/retry"
)

// ErrInvalidIdentifier is returned for malformed identifiers; no
// provider is tried.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Failure records why one provider did not produce a usable thumbnail.
type Failure struct {
	Provider string
	Kind     providers.ErrorKind
	Detail   string
}

// NotFoundError is the overall negative outcome: every configured
// provider was tried and none produced a validated result. It is the
// expected miss case, distinct from any system fault.
type NotFoundError struct {
	ISBN     string
	Failures []Failure
}

func (e *NotFoundError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Provider, f.Kind))
	}
	return fmt.Sprintf("no thumbnail for ISBN %s (%s)", e.ISBN, strings.Join(parts, ", "))
}

// Result is a successful resolution. Exactly one of URL/Data is the
// primary payload; Data is populated when the winning provider already
// fetched the image bytes, so callers can stream directly instead of
// redirecting. Fingerprint and StoredAt support ETag/Last-Modified
// construction in the serving layer.
type Result struct {
	URL         string
	Data        []byte
	Provider    string
	FromCache   bool
	Fingerprint string
	StoredAt    time.Time
}

// Resolver orchestrates the provider chain. It holds no per-request
// state and is safe for concurrent use.
type Resolver struct {
	chain        []providers.Provider
	store        cache.Store
	fetcher      *providers.Fetcher
	ttl          time.Duration
	minDimension int
}

// New creates a resolver over an already-built provider chain.
func New(chain []providers.Provider, store cache.Store, fetcher *providers.Fetcher, ttl time.Duration, minDimension int) *Resolver {
	return &Resolver{
		chain:        chain,
		store:        store,
		fetcher:      fetcher,
		ttl:          ttl,
		minDimension: minDimension,
	}
}

// Resolve maps an identifier to a thumbnail. With useCache, a fresh
// cached entry short-circuits the chain and a success is written back
// with the configured TTL. Exhausting the chain returns a NotFoundError
// carrying per-provider diagnostics; nothing is cached for misses.
func (r *Resolver) Resolve(ctx context.Context, identifier string, useCache bool) (*Result, error) {
	start := time.Now()
	defer func() { metrics.ObserveResolutionDuration(time.Since(start)) }()

	normalized, err := isbn.Normalize(identifier)
	if err != nil {
		metrics.IncResolution("invalid")
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, identifier)
	}

	key := cache.Key(normalized)
	if useCache {
		if entry, ok := r.store.Get(ctx, key); ok {
			metrics.IncCacheHit()
			metrics.IncResolution("found")
			log.Printf("[DEBUG] cache hit for ISBN %s (provider: %s)", normalized, entry.Provider)
			return &Result{
				URL:         entry.URL,
				Data:        entry.Data,
				Provider:    entry.Provider,
				FromCache:   true,
				Fingerprint: entry.Fingerprint,
				StoredAt:    entry.StoredAt,
			}, nil
		}
		metrics.IncCacheMiss()
	}

	var failures []Failure
	for _, provider := range r.chain {
		metrics.IncProviderAttempt(provider.Name())

		candidate, err := provider.Fetch(ctx, normalized)
		if err != nil {
			failures = append(failures, r.recordFailure(provider.Name(), normalized, err))
			continue
		}

		if !candidate.Validated {
			if reject, ok := r.validate(ctx, provider.Name(), candidate); !ok {
				failures = append(failures, reject)
				continue
			}
		}

		metrics.IncProviderSuccess(provider.Name())
		metrics.IncResolution("found")
		log.Printf("[INFO] resolved ISBN %s via %s", normalized, candidate.Provider)

		entry := cache.NewEntry(candidate.URL, candidate.Data, candidate.Provider)
		if useCache {
			r.store.Put(ctx, key, entry, r.ttl)
		}
		return &Result{
			URL:         candidate.URL,
			Data:        candidate.Data,
			Provider:    candidate.Provider,
			Fingerprint: entry.Fingerprint,
			StoredAt:    entry.StoredAt,
		}, nil
	}

	metrics.IncResolution("not_found")
	log.Printf("[DEBUG] no thumbnail for ISBN %s after %d providers", normalized, len(r.chain))
	return nil, &NotFoundError{ISBN: normalized, Failures: failures}
}

// validate runs a candidate through image validation, fetching its bytes
// first when the provider returned only a URL.
func (r *Resolver) validate(ctx context.Context, name string, candidate *providers.Candidate) (Failure, bool) {
	data := candidate.Data
	if len(data) == 0 {
		resp, err := r.fetcher.Get(ctx, name, candidate.URL)
		if err != nil {
			metrics.IncProviderFailure(name, string(imagecheck.ReasonFetchFailed))
			return Failure{Provider: name, Kind: providers.KindTransient, Detail: string(imagecheck.ReasonFetchFailed)}, false
		}
		if resp.StatusCode != 200 {
			// Only server-side errors are retry-eligible; a 404 on the
			// image URL is a terminal miss for this provider.
			kind := providers.KindNotFound
			if resp.StatusCode >= 500 {
				kind = providers.KindTransient
			}
			metrics.IncProviderFailure(name, string(imagecheck.ReasonFetchFailed))
			return Failure{Provider: name, Kind: kind, Detail: fmt.Sprintf("fetch status %d", resp.StatusCode)}, false
		}
		data = resp.Body
	}

	out := imagecheck.Validate(data, r.minDimension)
	if !out.OK {
		metrics.IncProviderFailure(name, string(out.Reason))
		log.Printf("[DEBUG] rejected candidate from %s: %s", name, out.Reason)
		return Failure{Provider: name, Kind: providers.KindInvalidResponse, Detail: string(out.Reason)}, false
	}
	candidate.Data = data
	return Failure{}, true
}

// recordFailure normalizes a provider error into chain diagnostics.
func (r *Resolver) recordFailure(name, isbn string, err error) Failure {
	kind := providers.KindInvalidResponse
	detail := err.Error()

	var pe *providers.ProviderError
	if errors.As(err, &pe) {
		kind = pe.Kind
	}
	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		metrics.IncRetryExhausted(name)
		detail = fmt.Sprintf("retry budget spent: %s", detail)
	}

	metrics.IncProviderFailure(name, string(kind))
	if kind == providers.KindNotFound {
		log.Printf("[DEBUG] provider %s has no cover for ISBN %s", name, isbn)
	} else {
		log.Printf("[WARN] provider %s failed for ISBN %s: %v", name, isbn, err)
	}
	return Failure{Provider: name, Kind: kind, Detail: detail}
}
