// file: internal/providers/amazon.go
// version: 1.0.0
// guid: af507b9c-4d6e-4f20-b1c2-9daebfcdde15

package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rero/thumbnails/internal/isbn"
)

// Amazon image URL parameters. The country code selects the storefront
// image pool (08 = amazon.com); the size code selects the rendition
// (SCLZZZZZZZ is the ~500px standard size).
const (
	amazonDefaultCountry = "08"
	amazonDefaultSize    = "SCLZZZZZZZ"
)

// AmazonProvider fetches covers from Amazon's product image service.
// The service is keyed by ISBN-10, so ISBN-13 identifiers are converted
// first; 979-prefixed ISBNs have no ISBN-10 form and always miss here.
type AmazonProvider struct {
	fetcher *Fetcher
	baseURL string
	country string
	size    string
}

// NewAmazonProvider creates a provider with the default storefront and size.
func NewAmazonProvider(fetcher *Fetcher) *AmazonProvider {
	return NewAmazonProviderWithBaseURL(fetcher, "https://images-na.ssl-images-amazon.com/images/P")
}

// NewAmazonProviderWithBaseURL creates a provider with a custom base URL.
func NewAmazonProviderWithBaseURL(fetcher *Fetcher, baseURL string) *AmazonProvider {
	return &AmazonProvider{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		country: amazonDefaultCountry,
		size:    amazonDefaultSize,
	}
}

// Name returns the configured chain name for this provider.
func (p *AmazonProvider) Name() string { return "amazon" }

// Fetch converts isbn to ISBN-10, constructs the product image URL and
// returns it with the fetched bytes for validation by the resolver.
func (p *AmazonProvider) Fetch(ctx context.Context, identifier string) (*Candidate, error) {
	isbn10, err := isbn.ToISBN10(identifier)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindNotFound, Err: fmt.Errorf("no ISBN-10 form for %s: %w", identifier, err)}
	}

	url := fmt.Sprintf("%s/%s.%s._%s_.jpg", p.baseURL, isbn10, p.country, p.size)

	resp, err := p.fetcher.Get(ctx, p.Name(), url)
	if err != nil {
		return nil, classifyFetchError(p.Name(), err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindNotFound, Err: fmt.Errorf("no cover for ISBN %s", identifier)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindInvalidResponse, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	// Amazon serves a 1x1 GIF for unknown ISBNs; resolver validation
	// filters it through the minimum dimension check.
	return &Candidate{URL: url, Data: resp.Body, Provider: p.Name()}, nil
}
