// file: internal/imagecheck/imagecheck.go
// version: 1.0.0
// guid: af507b9c-4d6e-4f80-b1c2-3d4e5f607182

package imagecheck

import (
	"bytes"

	"github.com/disintegration/imaging"
)

// MinDimension is the default minimum width/height in pixels. Anything
// smaller is treated as a placeholder (typically a 1x1 tracking pixel).
const MinDimension = 10

// Reason classifies why a payload was rejected.
type Reason string

const (
	ReasonOK          Reason = "ok"
	ReasonEmpty       Reason = "empty"
	ReasonUndecodable Reason = "undecodable"
	ReasonTooSmall    Reason = "too-small"
	// ReasonFetchFailed is used by callers that needed a network fetch to
	// obtain the bytes and could not complete it.
	ReasonFetchFailed Reason = "fetch-failed"
)

// Outcome is the result of validating candidate image bytes.
type Outcome struct {
	OK     bool
	Reason Reason
	Width  int
	Height int
}

// Validate decides whether content is an acceptable thumbnail: non-empty,
// decodable as a raster image, and at least minDimension pixels on each
// side. A minDimension <= 0 falls back to MinDimension. Malformed input
// is a rejection, never a panic.
func Validate(content []byte, minDimension int) Outcome {
	if minDimension <= 0 {
		minDimension = MinDimension
	}
	if len(content) == 0 {
		return Outcome{Reason: ReasonEmpty}
	}

	img, err := imaging.Decode(bytes.NewReader(content))
	if err != nil {
		return Outcome{Reason: ReasonUndecodable}
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < minDimension || h < minDimension {
		return Outcome{Reason: ReasonTooSmall, Width: w, Height: h}
	}
	return Outcome{OK: true, Reason: ReasonOK, Width: w, Height: h}
}
