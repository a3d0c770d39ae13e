// file: internal/server/server_test.go
// version: 1.0.0
// guid: 6e7f8a9b-0c1d-2e3f-4a5b-6c7d8e9fa0b1

package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rero/thumbnails/internal/cache"
	"github.com/rero/thumbnails/internal/providers"
	"github.com/rero/thumbnails/internal/resolver"
	"github.com/rero/thumbnails/internal/retry"
)

const testISBN = "9780134685991"

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// newTestServer builds a server over a files-only chain rooted at a
// temp directory seeded with one thumbnail.
func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, testISBN+".png"), pngBytes(t, 120, 180), 0644); err != nil {
		t.Fatal(err)
	}

	files := providers.NewFilesProvider(dir, "http://public.example.org")
	exec := retry.NewExecutor(retry.Policy{Enabled: false, MaxAttempts: 1})
	fetcher := providers.NewFetcher(2*time.Second, exec, 0, 1)
	store := cache.NewMemoryStore(time.Minute)
	t.Cleanup(func() { store.Close() })

	res := resolver.New([]providers.Provider{files}, store, fetcher, time.Minute, 10)

	srv := NewServer(Options{
		Resolver: res,
		Files:    files,
		MaxAge:   24 * time.Hour,
	})
	return srv, dir
}

func do(t *testing.T, srv *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	resp := httptest.NewRecorder()
	srv.Router().ServeHTTP(resp, req)
	return resp
}

func TestThumbnailURLSuccess(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/thumbnails-url/"+testISBN, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}

	var body thumbnailURLResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Provider != "files" {
		t.Errorf("provider = %q, want files", body.Provider)
	}
	if !strings.HasSuffix(body.URL, "/api/thumbnails/"+testISBN) {
		t.Errorf("unexpected url: %s", body.URL)
	}
	if cc := resp.Header().Get("Cache-Control"); !strings.Contains(cc, "max-age=86400") {
		t.Errorf("unexpected Cache-Control: %q", cc)
	}
}

func TestThumbnailURLSecondHitIsCached(t *testing.T) {
	srv, _ := newTestServer(t)

	first := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/thumbnails-url/"+testISBN, nil))
	if first.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", first.Code)
	}

	second := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/thumbnails-url/"+testISBN, nil))
	var body thumbnailURLResponse
	if err := json.Unmarshal(second.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Cached {
		t.Error("second resolution must come from cache")
	}
}

func TestThumbnailURLBypassCache(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, httptest.NewRequest(http.MethodGet, "/api/thumbnails-url/"+testISBN, nil))
	resp := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/thumbnails-url/"+testISBN+"?cached=false", nil))

	var body thumbnailURLResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Cached {
		t.Error("cached=false must bypass the cache")
	}
}

func TestThumbnailURLInvalidISBN(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/thumbnails-url/not-an-isbn", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "invalid ISBN") {
		t.Errorf("unexpected body: %s", resp.Body.String())
	}
}

func TestThumbnailURLNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	// Valid ISBN with no local file and no other providers in the chain.
	resp := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/thumbnails-url/9783161484100", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Code)
	}
}

func TestThumbnailFileServing(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/thumbnails/"+testISBN, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if resp.Header().Get("ETag") == "" {
		t.Error("missing ETag header")
	}
	if resp.Header().Get("Last-Modified") == "" {
		t.Error("missing Last-Modified header")
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "image/png") {
		t.Errorf("unexpected content type: %q", ct)
	}
}

func TestThumbnailFileNotModified(t *testing.T) {
	srv, _ := newTestServer(t)

	first := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/thumbnails/"+testISBN, nil))
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag header")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/thumbnails/"+testISBN, nil)
	req.Header.Set("If-None-Match", etag)
	resp := do(t, srv, req)
	if resp.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", resp.Code)
	}
	if resp.Body.Len() != 0 {
		t.Error("304 must not carry a body")
	}
}

func TestThumbnailFileETagChangesOnRewrite(t *testing.T) {
	srv, dir := newTestServer(t)

	first := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/thumbnails/"+testISBN, nil))
	etag := first.Header().Get("ETag")

	// Rewrite the file with different content and a newer mtime.
	path := filepath.Join(dir, testISBN+".png")
	if err := os.WriteFile(path, pngBytes(t, 240, 360), 0644); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	second := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/thumbnails/"+testISBN, nil))
	if second.Header().Get("ETag") == etag {
		t.Error("ETag must change when the file changes")
	}
}

func TestThumbnailFileMissing(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/thumbnails/9783161484100", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body: %s", resp.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	// Drive one resolution so counters exist.
	do(t, srv, httptest.NewRequest(http.MethodGet, "/api/thumbnails-url/"+testISBN, nil))

	resp := do(t, srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "thumbnails_") {
		t.Error("metrics output missing thumbnails namespace")
	}
}

func TestRequestIDHeaderOnResponses(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestRateLimitedServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := NewServer(Options{RateLimitRPS: 1, RateLimitBurst: 1})

	req1 := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req1.RemoteAddr = "192.0.2.9:1000"
	if resp := do(t, srv, req1); resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req2.RemoteAddr = "192.0.2.9:1000"
	if resp := do(t, srv, req2); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.Code)
	}
}
