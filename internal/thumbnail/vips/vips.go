//go:build vips

// Package vips renders thumbnails with libvips through h2non/bimg.
package vips

import (
	"fmt"

	"github.com/h2non/bimg"
	"github.com/petermazzocco/go-profile-images/internal/thumbnail"
)

// softSharpen mirrors a mild unsharp mask: small radius, low flat/jagged gain.
var softSharpen = bimg.Sharpen{Radius: 1, X1: 2, Y2: 10, Y3: 20, M1: 0, M2: 3}

type Engine struct {
	MaxPixels int
}

func New() *Engine {
	return &Engine{MaxPixels: thumbnail.DefaultMaxPixels}
}

func (e *Engine) Generate(src []byte, width, height int) (*thumbnail.Thumbnail, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid thumbnail size %dx%d", width, height)
	}

	size, err := bimg.NewImage(src).Size()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", thumbnail.ErrDecode, err)
	}
	if err := thumbnail.CheckPixels(size.Width, size.Height, e.MaxPixels); err != nil {
		return nil, err
	}

	buf := src
	steps := thumbnail.Plan(size.Width, size.Height, width, height)
	for i, step := range steps {
		opts := bimg.Options{
			Width:        step.X,
			Height:       step.Y,
			Force:        true,
			Interpolator: bimg.Bicubic,
		}
		if i == len(steps)-1 {
			opts.Sharpen = softSharpen
			opts.Type = bimg.PNG
		}
		buf, err = bimg.NewImage(buf).Process(opts)
		if err != nil {
			return nil, fmt.Errorf("resize to %dx%d: %w", step.X, step.Y, err)
		}
	}

	return &thumbnail.Thumbnail{
		Data:        buf,
		ContentType: thumbnail.ContentType,
		Width:       width,
		Height:      height,
	}, nil
}
