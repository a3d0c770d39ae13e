// file: internal/providers/googleapi.go
// version: 1.0.0
// guid: 9e4f6a8b-3c5d-4e1f-a0b1-8c9daebfcd04

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// GoogleApiProvider fetches thumbnails through the Google Books volumes
// API. Only an unambiguous match (exactly one result) is accepted.
type GoogleApiProvider struct {
	fetcher *Fetcher
	baseURL string
}

// NewGoogleApiProvider creates a provider against the public volumes API.
func NewGoogleApiProvider(fetcher *Fetcher) *GoogleApiProvider {
	return NewGoogleApiProviderWithBaseURL(fetcher, "https://www.googleapis.com/books/v1/volumes")
}

// NewGoogleApiProviderWithBaseURL creates a provider with a custom base URL.
func NewGoogleApiProviderWithBaseURL(fetcher *Fetcher, baseURL string) *GoogleApiProvider {
	return &GoogleApiProvider{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name returns the configured chain name for this provider.
func (p *GoogleApiProvider) Name() string { return "google api" }

type googleVolumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			ImageLinks struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Fetch searches the volumes API by ISBN and returns the thumbnail of a
// single unambiguous match, with its bytes for validation by the resolver.
func (p *GoogleApiProvider) Fetch(ctx context.Context, isbn string) (*Candidate, error) {
	url := fmt.Sprintf("%s?q=isbn:%s", p.baseURL, isbn)

	resp, err := p.fetcher.Get(ctx, p.Name(), url)
	if err != nil {
		return nil, classifyFetchError(p.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindInvalidResponse, Err: fmt.Errorf("volumes API returned status %d", resp.StatusCode)}
	}

	var parsed googleVolumesResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindInvalidResponse, Err: fmt.Errorf("failed to decode volumes response: %w", err)}
	}

	if parsed.TotalItems != 1 || len(parsed.Items) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindNotFound, Err: fmt.Errorf("no unambiguous match for ISBN %s (%d items)", isbn, parsed.TotalItems)}
	}

	thumbnailURL := parsed.Items[0].VolumeInfo.ImageLinks.Thumbnail
	if thumbnailURL == "" {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindNotFound, Err: fmt.Errorf("match for ISBN %s has no thumbnail", isbn)}
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
