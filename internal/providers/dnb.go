// file: internal/providers/dnb.go
// version: 1.0.0
// guid: 7c2d4869-1a3b-4cfd-8e9f-6a7b8c9daeb2

package providers

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/rero/thumbnails/internal/imagecheck"
)

// DnbProvider fetches covers from the Deutsche Nationalbibliothek. Cover
// URLs are extracted from MARC21 field 856 of the SRU response; when a
// record exists but carries no usable 856 link, the portal's constructed
// cover URL is probed instead. Candidate URLs are fetched and validated
// here because the portal answers 200 for missing covers.
type DnbProvider struct {
	fetcher      *Fetcher
	sruBaseURL   string
	coverBaseURL string
	minDimension int
}

// NewDnbProvider creates a provider against the public DNB services.
func NewDnbProvider(fetcher *Fetcher, minDimension int) *DnbProvider {
	return NewDnbProviderWithBaseURLs(fetcher,
		"https://services.dnb.de/sru/dnb",
		"https://portal.dnb.de/opac/mvb/cover",
		minDimension)
}

// NewDnbProviderWithBaseURLs creates a provider with custom endpoints.
func NewDnbProviderWithBaseURLs(fetcher *Fetcher, sruBaseURL, coverBaseURL string, minDimension int) *DnbProvider {
	return &DnbProvider{
		fetcher:      fetcher,
		sruBaseURL:   strings.TrimRight(sruBaseURL, "/"),
		coverBaseURL: strings.TrimRight(coverBaseURL, "/"),
		minDimension: minDimension,
	}
}

// Name returns the configured chain name for this provider.
func (p *DnbProvider) Name() string { return "dnb" }

type dnbSubfield struct {
	Code string `xml:"code,attr"`
	Text string `xml:",chardata"`
}

type dnbDatafield struct {
	Tag       string        `xml:"tag,attr"`
	Subfields []dnbSubfield `xml:"subfield"`
}

type dnbSruResponse struct {
	Records []struct {
		Datafields []dnbDatafield `xml:"recordData>record>datafield"`
	} `xml:"records>record"`
}

func (f dnbDatafield) subfield(code string) string {
	for _, sf := range f.Subfields {
		if sf.Code == code {
			return strings.TrimSpace(sf.Text)
		}
	}
	return ""
}

func containsAny(s string, keywords ...string) bool {
	s = strings.ToLower(s)
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// probeCover fetches a candidate cover URL and validates the bytes.
func (p *DnbProvider) probeCover(ctx context.Context, isbn, coverURL string) (*Candidate, bool) {
	resp, err := p.fetcher.Get(ctx, p.Name(), coverURL)
	if err != nil || resp.StatusCode != http.StatusOK {
		return nil, false
	}
	if out := imagecheck.Validate(resp.Body, p.minDimension); !out.OK {
		return nil, false
	}
	return &Candidate{URL: coverURL, Data: resp.Body, Provider: p.Name(), Validated: true}, true
}

// Fetch queries the DNB SRU interface and returns the first cover URL
// whose bytes validate as a real image.
func (p *DnbProvider) Fetch(ctx context.Context, isbn string) (*Candidate, error) {
	sruURL := fmt.Sprintf("%s?version=1.1&operation=searchRetrieve&query=isbn=%s&recordSchema=MARC21-xml&maximumRecords=1",
		p.sruBaseURL, isbn)

	resp, err := p.fetcher.Get(ctx, p.Name(), sruURL)
	if err != nil {
		return nil, classifyFetchError(p.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindInvalidResponse, Err: fmt.Errorf("SRU lookup returned status %d", resp.StatusCode)}
	}

	var parsed dnbSruResponse
	if err := xml.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindInvalidResponse, Err: fmt.Errorf("failed to parse SRU response: %w", err)}
	}
	if len(parsed.Records) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindNotFound, Err: fmt.Errorf("no record for ISBN %s", isbn)}
	}

	for _, record := range parsed.Records {
		hasISBNField := false
		// Field 856 is "Electronic Location and Access"; subfield u holds
		// the URL, subfield x a note describing it.
		for _, field := range record.Datafields {
			switch field.Tag {
			case "856":
				u := field.subfield("u")
				if u == "" {
					continue
				}
				if containsAny(u, "cover", "thumbnail", "bild") {
					if c, ok := p.probeCover(ctx, isbn, u); ok {
						return c, nil
					}
					continue
				}
				if note := field.subfield("x"); note != "" && containsAny(note, "cover", "umschlag", "thumbnail") {
					if c, ok := p.probeCover(ctx, isbn, u); ok {
						return c, nil
					}
				}
			case "020":
				hasISBNField = true
			}
		}
		// Records without a usable 856 link may still have a cover on the
		// portal, reachable through the constructed MVB URL.
		if hasISBNField {
			constructed := fmt.Sprintf("%s?isbn=%s", p.coverBaseURL, isbn)
			if c, ok := p.probeCover(ctx, isbn, constructed); ok {
				return c, nil
			}
		}
	}

	return nil, &ProviderError{Provider: p.Name(), Kind: KindNotFound, Err: fmt.Errorf("no cover for ISBN %s", isbn)}
}
