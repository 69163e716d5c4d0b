package thumbnail

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// softSharpenSigma is a light unsharp pass to recover edges lost while scaling.
const softSharpenSigma = 0.5

// Imaging is a pure Go engine built on disintegration/imaging.
type Imaging struct {
	// MaxPixels caps width*height of the source; zero means no cap.
	MaxPixels int
}

func NewImaging() *Imaging {
	return &Imaging{MaxPixels: DefaultMaxPixels}
}

func (g *Imaging) Generate(src []byte, width, height int) (*Thumbnail, error) {
	if err := validSize(width, height); err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := CheckPixels(cfg.Width, cfg.Height, g.MaxPixels); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	b := img.Bounds()
	for _, step := range Plan(b.Dx(), b.Dy(), width, height) {
		img = imaging.Resize(img, step.X, step.Y, imaging.CatmullRom)
	}
	img = imaging.Sharpen(img, softSharpenSigma)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return &Thumbnail{
		Data:        buf.Bytes(),
		ContentType: ContentType,
		Width:       width,
		Height:      height,
	}, nil
}
