package filename

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"photo.JPG", ".JPG"},
		{"archive.tar.gz", ".gz"},
		{".profile", ".profile"},
		{"trailing.", "."},
		{"dir.v2/avatar.png", ".png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extension(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtensionRejectsNamesWithoutDot(t *testing.T) {
	for _, name := range []string{"", "photo", "README", "a/b/c"} {
		_, err := Extension(name)
		assert.ErrorIs(t, err, ErrInvalidFileName, "name %q", name)

		_, err = NewKey(name)
		assert.ErrorIs(t, err, ErrInvalidFileName, "name %q", name)
	}
}

func TestNewKeyKeepsExtension(t *testing.T) {
	key, err := NewKey("photo.JPG")
	require.NoError(t, err)

	require.True(t, strings.HasSuffix(key, ".JPG"), key)
	_, err = uuid.Parse(strings.TrimSuffix(key, ".JPG"))
	assert.NoError(t, err)
}

func TestNewKeyIsUnique(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		key, err := NewKey("avatar.png")
		require.NoError(t, err)
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate key after %d generations: %s", i, key)
		}
		seen[key] = struct{}{}
	}
}

func TestThumbnailName(t *testing.T) {
	assert.Equal(t, "abc.JPG_resized", ThumbnailName("abc.JPG"))
}
