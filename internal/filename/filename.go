// Package filename derives storage keys for uploaded images.
package filename

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ThumbnailSuffix is appended to an original's key to name its thumbnail object.
const ThumbnailSuffix = "_resized"

var ErrInvalidFileName = errors.New("invalid file name")

// Extension returns everything from the last '.' in name, dot included.
func Extension(name string) (string, error) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return "", fmt.Errorf("%w: %q has no extension", ErrInvalidFileName, name)
	}
	return name[i:], nil
}

// NewKey returns a random storage key that keeps the extension of name.
func NewKey(name string) (string, error) {
	ext, err := Extension(name)
	if err != nil {
		return "", err
	}
	return uuid.NewString() + ext, nil
}

func ThumbnailName(key string) string {
	return key + ThumbnailSuffix
}
