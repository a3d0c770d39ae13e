// file: internal/providers/openlibrary.go
// version: 1.1.0
// guid: 5a0b2647-f819-4adb-6c7d-48596a7b8c90

package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// OpenLibraryProvider fetches covers from the Open Library Covers API.
// Covers are requested in the large size; default=false makes the API
// 404 instead of answering with a placeholder image.
type OpenLibraryProvider struct {
	fetcher *Fetcher
	baseURL string
}

// NewOpenLibraryProvider creates a provider against the public Covers
// API, honoring the OPENLIBRARY_BASE_URL override.
func NewOpenLibraryProvider(fetcher *Fetcher) *OpenLibraryProvider {
	baseURL := os.Getenv("OPENLIBRARY_BASE_URL")
	if baseURL == "" {
		baseURL = "https://covers.openlibrary.org"
	}
	return NewOpenLibraryProviderWithBaseURL(fetcher, baseURL)
}

// NewOpenLibraryProviderWithBaseURL creates a provider with a custom base URL.
func NewOpenLibraryProviderWithBaseURL(fetcher *Fetcher, baseURL string) *OpenLibraryProvider {
	return &OpenLibraryProvider{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the configured chain name for this provider.
func (p *OpenLibraryProvider) Name() string { return "open library" }

// Fetch retrieves the large cover for isbn and returns both the cover
// URL and the fetched bytes for validation by the resolver.
func (p *OpenLibraryProvider) Fetch(ctx context.Context, isbn string) (*Candidate, error) {
	url := fmt.Sprintf("%s/b/isbn/%s-L.jpg?default=false", p.baseURL, isbn)

	resp, err := p.fetcher.Get(ctx, p.Name(), url)
	if err != nil {
		return nil, classifyFetchError(p.Name(), err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindNotFound, Err: fmt.Errorf("no cover for ISBN %s", isbn)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindInvalidResponse, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	if !strings.HasPrefix(resp.ContentType(), "image/") {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindInvalidResponse, Err: fmt.Errorf("non-image content type %q", resp.ContentType())}
	}

	return &Candidate{URL: url, Data: resp.Body, Provider: p.Name()}, nil
}
