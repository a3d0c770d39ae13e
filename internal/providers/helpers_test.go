// file: internal/providers/helpers_test.go
// version: 1.0.0
// guid: e394bfd0-81a2-4364-f506-deeff0011259

package providers

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/rero/thumbnails/internal/retry"
)

const testISBN = "9780134685991"

func testFetcher() *Fetcher {
	return NewFetcher(time.Second, retry.NewExecutor(retry.Policy{MaxAttempts: 1}), 0, 1)
}

func retryingFetcher(maxAttempts int) *Fetcher {
	return NewFetcher(time.Second, retry.NewExecutor(retry.Policy{
		Enabled:           true,
		MaxAttempts:       maxAttempts,
		BackoffMultiplier: 2.0,
		BackoffMin:        time.Millisecond,
		BackoffMax:        5 * time.Millisecond,
	}), 0, 1)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 180, G: 60, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func kindOf(t *testing.T, err error) ErrorKind {
	t.Helper()
	pe, ok := err.(*ProviderError)
	if !ok {
		t.Fatalf("expected ProviderError, got %T: %v", err, err)
	}
	return pe.Kind
}
