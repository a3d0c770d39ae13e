// file: internal/providers/files_test.go
// version: 1.0.0
// guid: f4a5c0e1-92b3-4475-0617-eff001122360

package providers

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFilesProviderFound(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, testISBN+".jpg"), []byte("fake"), 0644); err != nil {
		t.Fatal(err)
	}

	p := NewFilesProvider(dir, "https://library.example.org/")
	c, err := p.Fetch(context.Background(), testISBN)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://library.example.org/api/thumbnails/" + testISBN
	if c.URL != want {
		t.Errorf("expected %s, got %s", want, c.URL)
	}
	if !c.Validated {
		t.Error("local files are pre-validated")
	}
	if c.Provider != "files" {
		t.Errorf("unexpected provider name: %s", c.Provider)
	}
}

func TestFilesProviderChecksAllExtensions(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, testISBN+".png"), []byte("fake"), 0644); err != nil {
		t.Fatal(err)
	}
	p := NewFilesProvider(dir, "http://localhost")
	if path := p.ThumbnailPath(testISBN); filepath.Ext(path) != ".png" {
		t.Errorf("expected png path, got %q", path)
	}
}

func TestFilesProviderMiss(t *testing.T) {
	p := NewFilesProvider(t.TempDir(), "http://localhost")
	_, err := p.Fetch(context.Background(), testISBN)
	if kindOf(t, err) != KindNotFound {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestFilesProviderMissingDirectory(t *testing.T) {
	p := NewFilesProvider(filepath.Join(t.TempDir(), "absent"), "http://localhost")
	_, err := p.Fetch(context.Background(), testISBN)
	if kindOf(t, err) != KindNotFound {
		t.Errorf("expected not_found for missing directory, got %v", err)
	}
}

func TestFilesProviderUnconfigured(t *testing.T) {
	p := NewFilesProvider("", "http://localhost")
	_, err := p.Fetch(context.Background(), testISBN)
	if kindOf(t, err) != KindNotFound {
		t.Errorf("expected not_found for unconfigured directory, got %v", err)
	}
	if p.ThumbnailPath(testISBN) != "" {
		t.Error("expected empty path for unconfigured directory")
	}
}

func TestFilesProviderIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, testISBN+".jpg"), 0755); err != nil {
		t.Fatal(err)
	}
	p := NewFilesProvider(dir, "http://localhost")
	if p.ThumbnailPath(testISBN) != "" {
		t.Error("a directory must not count as a thumbnail file")
	}
}
