// Package thumbnail renders fixed-size PNG thumbnails from uploaded images.
//
// Every engine follows the same policy: halve the source repeatedly while it is
// at least twice the target size, finish with one resize to the exact target
// (aspect ratio is not preserved), apply a soft sharpen and encode as PNG.
package thumbnail

import (
	"errors"
	"fmt"
	"image"
)

const ContentType = "image/png"

// DefaultMaxPixels bounds the decoded size of a source image.
const DefaultMaxPixels = 50_000_000

// ErrDecode is returned when the source bytes are not a supported image.
var ErrDecode = errors.New("decode image")

type Thumbnail struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

type Generator interface {
	Generate(src []byte, width, height int) (*Thumbnail, error)
}

// Plan returns the intermediate sizes used to scale a srcW×srcH image down to
// w×h. The last element is always the target itself.
func Plan(srcW, srcH, w, h int) []image.Point {
	var steps []image.Point
	for srcW >= 2*w || srcH >= 2*h {
		srcW = max(srcW/2, w)
		srcH = max(srcH/2, h)
		if srcW == w && srcH == h {
			break
		}
		steps = append(steps, image.Pt(srcW, srcH))
	}
	return append(steps, image.Pt(w, h))
}

// CheckPixels rejects sources whose declared dimensions exceed maxPixels,
// before any pixel data is allocated. A non-positive maxPixels disables the
// check.
func CheckPixels(srcW, srcH, maxPixels int) error {
	if srcW <= 0 || srcH <= 0 {
		return fmt.Errorf("%w: empty image %dx%d", ErrDecode, srcW, srcH)
	}
	if maxPixels > 0 && int64(srcW)*int64(srcH) > int64(maxPixels) {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrDecode, srcW, srcH, maxPixels)
	}
	return nil
}

func validSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid thumbnail size %dx%d", width, height)
	}
	return nil
}
