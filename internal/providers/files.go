// file: internal/providers/files.go
// version: 1.0.0
// guid: 49fa1536-e708-49ca-5b6c-3748596a7b8f

package providers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// supportedExtensions are the local thumbnail file types, probed in order.
var supportedExtensions = []string{".jpg", ".jpeg", ".png"}

// FilesProvider serves thumbnails from a local directory containing
// files named <isbn>.<ext>. Synchronous, no network, never retried.
type FilesProvider struct {
	dir       string
	publicURL string
}

// NewFilesProvider creates a provider over dir. publicURL is the external
// base used to build the served thumbnail URL.
func NewFilesProvider(dir, publicURL string) *FilesProvider {
	return &FilesProvider{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Name returns the configured chain name for this provider.
func (p *FilesProvider) Name() string { return "files" }

// ThumbnailPath returns the local file path for isbn, or "" when no
// matching file exists. Used directly by the serving layer.
func (p *FilesProvider) ThumbnailPath(isbn string) string {
	if p.dir == "" {
		return ""
	}
	for _, ext := range supportedExtensions {
		path := filepath.Join(p.dir, isbn+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Fetch looks up a local thumbnail and returns its served URL. The local
// file's existence is the validity check; no image decoding happens here.
func (p *FilesProvider) Fetch(_ context.Context, isbn string) (*Candidate, error) {
	if p.dir == "" {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindNotFound, Err: errors.New("no files directory configured")}
	}
	if _, err := os.Stat(p.dir); err != nil {
		if os.IsNotExist(err) {
			log.Printf("[DEBUG] files provider: directory does not exist: %s", p.dir)
			return nil, &ProviderError{Provider: p.Name(), Kind: KindNotFound, Err: err}
		}
		return nil, &ProviderError{Provider: p.Name(), Kind: KindInvalidResponse, Err: err}
	}

	path := p.ThumbnailPath(isbn)
	if path == "" {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindNotFound, Err: fmt.Errorf("no local thumbnail for %s", isbn)}
	}

	base := p.publicURL
	if base == "" {
		base = "http://localhost"
	}
	return &Candidate{
		URL:       fmt.Sprintf("%s/api/thumbnails/%s", base, isbn),
		Provider:  p.Name(),
		Validated: true,
	}, nil
}
