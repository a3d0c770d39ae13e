// file: internal/providers/httpfetch.go
// version: 1.1.0
// guid: 38e90425-d6f7-48b9-4a5b-263748596a7e

package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/rero/thumbnails/internal/retry"
)

// maxBodySize caps downloaded payloads; cover images are small.
const maxBodySize = 10 * 1024 * 1024

// Response is a fully-read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ContentType returns the response Content-Type header.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Fetcher issues outbound GETs for providers. Every call goes through the
// retry executor; network errors, 5xx and 429 responses are classified
// transient, everything else is returned for the provider to interpret.
// Each provider gets its own token bucket because the catalog services
// behind the chain are quota-limited.
type Fetcher struct {
	client *http.Client
	exec   *retry.Executor

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// NewFetcher creates a fetcher with the given request timeout and retry
// executor. rps <= 0 disables outbound rate limiting.
func NewFetcher(timeout time.Duration, exec *retry.Executor, rps float64, burst int) *Fetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if burst < 1 {
		burst = 1
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		exec:     exec,
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

// Executor exposes the fetcher's retry executor for callers that wrap
// non-HTTP work with the same policy.
func (f *Fetcher) Executor() *retry.Executor { return f.exec }

func (f *Fetcher) limiterFor(provider string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[provider]
	if !ok {
		l = rate.NewLimiter(rate.Limit(f.rps), f.burst)
		f.limiters[provider] = l
	}
	return l
}

// Get fetches url on behalf of provider, retrying transient failures per
// the executor's policy. The returned response has its body fully read.
func (f *Fetcher) Get(ctx context.Context, provider, url string) (*Response, error) {
	if f.rps > 0 {
		if err := f.limiterFor(provider).Wait(ctx); err != nil {
			return nil, err
		}
	}

	return retry.Do(ctx, f.exec, func() (*Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, retry.Transient(err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, retry.Transient(fmt.Errorf("failed to read response body: %w", err))
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, retry.Transient(fmt.Errorf("server returned status %d", resp.StatusCode))
		}

		return &Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       body,
		}, nil
	})
}

// classifyFetchError maps a Fetcher.Get failure onto a ProviderError.
func classifyFetchError(provider string, err error) *ProviderError {
	kind := KindInvalidResponse
	if retry.IsTransient(err) {
		kind = KindTransient
	}
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}
