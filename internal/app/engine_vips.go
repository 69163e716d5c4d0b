//go:build vips

package app

import (
	"fmt"

	"github.com/petermazzocco/go-profile-images/internal/thumbnail"
	"github.com/petermazzocco/go-profile-images/internal/thumbnail/vips"
)

func newGenerator(engine string) (thumbnail.Generator, error) {
	switch engine {
	case "vips":
		return vips.New(), nil
	case "imaging":
		return thumbnail.NewImaging(), nil
	}
	return nil, fmt.Errorf("unknown thumbnail engine %q", engine)
}
