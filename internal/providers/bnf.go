// file: internal/providers/bnf.go
// version: 1.0.0
// guid: 6b1c3758-092a-4bec-7d8e-596a7b8c9da1

package providers

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rero/thumbnails/internal/imagecheck"
)

// BnfProvider fetches covers from the Bibliothèque nationale de France.
// The catalogue has no direct ISBN endpoint: the ISBN is first resolved
// to an ARK identifier through the SRU API, then the cover is fetched
// from the couverture service. That service answers 200 with an HTML
// error page for unknown ARKs, so the bytes are validated here before
// the provider reports success.
type BnfProvider struct {
	fetcher      *Fetcher
	sruBaseURL   string
	coverBaseURL string
	appName      string
	coverPage    int
	minDimension int
}

// NewBnfProvider creates a provider against the public BNF services.
func NewBnfProvider(fetcher *Fetcher, minDimension int) *BnfProvider {
	return NewBnfProviderWithBaseURLs(fetcher,
		"https://catalogue.bnf.fr/api/SRU",
		"http://catalogue.bnf.fr/couverture",
		minDimension)
}

// NewBnfProviderWithBaseURLs creates a provider with custom endpoints.
func NewBnfProviderWithBaseURLs(fetcher *Fetcher, sruBaseURL, coverBaseURL string, minDimension int) *BnfProvider {
	return &BnfProvider{
		fetcher:      fetcher,
		sruBaseURL:   strings.TrimRight(sruBaseURL, "/"),
		coverBaseURL: strings.TrimRight(coverBaseURL, "/"),
		appName:      "NE", // required by the couverture service
		coverPage:    1,    // 1=front cover, 4=back cover
		minDimension: minDimension,
	}
}

// Name returns the configured chain name for this provider.
func (p *BnfProvider) Name() string { return "bnf" }

type bnfSruResponse struct {
	Records []struct {
		RecordData struct {
			Record struct {
				ID string `xml:"id,attr"`
			} `xml:"record"`
		} `xml:"recordData"`
	} `xml:"records>record"`
}

// isbnToArk resolves an ISBN to an ARK identifier via the SRU API.
func (p *BnfProvider) isbnToArk(ctx context.Context, isbn string) (string, error) {
	query := url.QueryEscape(fmt.Sprintf(`bib.isbn all "%s"`, isbn))
	sruURL := fmt.Sprintf("%s?version=1.2&operation=searchRetrieve&query=%s&recordSchema=unimarcxchange&maximumRecords=1",
		p.sruBaseURL, query)

	resp, err := p.fetcher.Get(ctx, p.Name(), sruURL)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("SRU lookup returned status %d", resp.StatusCode)
	}

	var parsed bnfSruResponse
	if err := xml.Unmarshal(resp.Body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse SRU response: %w", err)
	}
	for _, rec := range parsed.Records {
		if ark := rec.RecordData.Record.ID; ark != "" {
			return ark, nil
		}
	}
	return "", nil
}

// Fetch resolves isbn to an ARK, retrieves the cover and validates the
// bytes before reporting success.
func (p *BnfProvider) Fetch(ctx context.Context, isbn string) (*Candidate, error) {
	ark, err := p.isbnToArk(ctx, isbn)
	if err != nil {
		return nil, classifyFetchError(p.Name(), err)
	}
	if ark == "" {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindNotFound, Err: fmt.Errorf("no ARK for ISBN %s", isbn)}
	}

	coverURL := fmt.Sprintf("%s?appName=%s&idArk=%s&couverture=%d", p.coverBaseURL, p.appName, ark, p.coverPage)
	resp, err := p.fetcher.Get(ctx, p.Name(), coverURL)
	if err != nil {
		return nil, classifyFetchError(p.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindNotFound, Err: fmt.Errorf("cover request returned status %d", resp.StatusCode)}
	}
	if !strings.HasPrefix(resp.ContentType(), "image/") {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindInvalidResponse, Err: fmt.Errorf("non-image content type %q", resp.ContentType())}
	}
	if out := imagecheck.Validate(resp.Body, p.minDimension); !out.OK {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindInvalidResponse, Err: fmt.Errorf("cover rejected: %s", out.Reason)}
	}

	return &Candidate{URL: coverURL, Data: resp.Body, Provider: p.Name(), Validated: true}, nil
}
