// file: internal/providers/googlebooks.go
// version: 1.0.0
// guid: 8d3e597a-2b4c-4d0e-9fa0-7b8c9daebfc3

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// GoogleBooksProvider fetches preview thumbnails through the Google
// Books viewapi endpoint, which answers JSONP: the payload is wrapped in
// a callback invocation that has to be stripped before decoding.
type GoogleBooksProvider struct {
	fetcher *Fetcher
	baseURL string
}

// NewGoogleBooksProvider creates a provider against books.google.com.
func NewGoogleBooksProvider(fetcher *Fetcher) *GoogleBooksProvider {
	return NewGoogleBooksProviderWithBaseURL(fetcher, "https://books.google.com/books")
}

// NewGoogleBooksProviderWithBaseURL creates a provider with a custom base URL.
func NewGoogleBooksProviderWithBaseURL(fetcher *Fetcher, baseURL string) *GoogleBooksProvider {
	return &GoogleBooksProvider{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name returns the configured chain name for this provider.
func (p *GoogleBooksProvider) Name() string { return "google books" }

type googleBooksEntry struct {
	ThumbnailURL string `json:"thumbnail_url"`
}

// stripJSONP extracts the JSON object from a `book({...});` payload.
func stripJSONP(text string) (string, bool) {
	start := strings.Index(text, "(")
	end := strings.LastIndex(text, ")")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return text[start+1 : end], true
}

// Fetch queries the viewapi endpoint for isbn and returns the listed
// thumbnail with its bytes for validation by the resolver.
func (p *GoogleBooksProvider) Fetch(ctx context.Context, isbn string) (*Candidate, error) {
	url := fmt.Sprintf("%s?jscmd=viewapi&callback=book&bibkeys=%s", p.baseURL, isbn)

	resp, err := p.fetcher.Get(ctx, p.Name(), url)
	if err != nil {
		return nil, classifyFetchError(p.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindInvalidResponse, Err: fmt.Errorf("viewapi returned status %d", resp.StatusCode)}
	}

	jsonText, ok := stripJSONP(strings.TrimSpace(string(resp.Body)))
	if !ok {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindInvalidResponse, Err: fmt.Errorf("malformed JSONP response")}
	}

	var entries map[string]googleBooksEntry
	if err := json.Unmarshal([]byte(jsonText), &entries); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindInvalidResponse, Err: fmt.Errorf("failed to decode viewapi payload: %w", err)}
	}

	thumbnailURL := entries[isbn].ThumbnailURL
	if thumbnailURL == "" {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindNotFound, Err: fmt.Errorf("no thumbnail for ISBN %s", isbn)}
	}

	imgResp, err := p.fetcher.Get(ctx, p.Name(), thumbnailURL)
	if err != nil {
		return nil, classifyFetchError(p.Name(), err)
	}
	if imgResp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindNotFound, Err: fmt.Errorf("thumbnail fetch returned status %d", imgResp.StatusCode)}
	}

	return &Candidate{URL: thumbnailURL, Data: imgResp.Body, Provider: p.Name()}, nil
}
