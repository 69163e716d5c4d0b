//go:build !vips

package app

import (
	"fmt"

	"github.com/petermazzocco/go-profile-images/internal/thumbnail"
)

// newGenerator for builds without libvips. Build with -tags vips to enable
// the vips engine.
func newGenerator(engine string) (thumbnail.Generator, error) {
	switch engine {
	case "imaging":
		return thumbnail.NewImaging(), nil
	case "vips":
		return nil, fmt.Errorf("thumbnail engine %q needs a build with -tags vips", engine)
	}
	return nil, fmt.Errorf("unknown thumbnail engine %q", engine)
}
