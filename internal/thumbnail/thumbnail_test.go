package thumbnail

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name       string
		srcW, srcH int
		want       []image.Point
	}{
		{"large landscape", 4000, 3000, []image.Point{{2000, 1500}, {1000, 750}, {500, 375}, {300, 300}}},
		{"just above double", 600, 300, []image.Point{{300, 300}}},
		{"small source", 100, 80, []image.Point{{300, 300}}},
		{"tall strip", 300, 1300, []image.Point{{300, 650}, {300, 325}, {300, 300}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Plan(tt.srcW, tt.srcH, 300, 300))
		})
	}
}

func TestImagingGenerateExactSize(t *testing.T) {
	gen := NewImaging()
	for _, size := range []image.Point{{1200, 800}, {640, 1280}, {120, 90}, {300, 300}} {
		thumb, err := gen.Generate(encodeJPEG(t, size.X, size.Y), 300, 300)
		require.NoError(t, err)
		assert.Equal(t, ContentType, thumb.ContentType)

		out, err := png.Decode(bytes.NewReader(thumb.Data))
		require.NoError(t, err, "thumbnail is not a PNG")
		assert.Equal(t, 300, out.Bounds().Dx(), "source %v", size)
		assert.Equal(t, 300, out.Bounds().Dy(), "source %v", size)
	}
}

func TestImagingGenerateCustomSize(t *testing.T) {
	thumb, err := NewImaging().Generate(encodeJPEG(t, 500, 500), 64, 48)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(thumb.Data))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 48, cfg.Height)
}

func TestImagingGenerateRejectsGarbage(t *testing.T) {
	_, err := NewImaging().Generate([]byte("definitely not an image"), 300, 300)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestImagingGenerateRejectsBadSize(t *testing.T) {
	_, err := NewImaging().Generate(encodeJPEG(t, 10, 10), 0, 300)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDecode)
}

func TestImagingGenerateRejectsOversizedSource(t *testing.T) {
	g := &Imaging{MaxPixels: 1000}
	_, err := g.Generate(encodeJPEG(t, 200, 200), 300, 300)
	assert.ErrorIs(t, err, ErrDecode)

	_, err = g.Generate(encodeJPEG(t, 30, 30), 16, 16)
	assert.NoError(t, err)
}

// A PNG whose header claims 100000x100000 pixels must be refused before the
// decoder allocates a frame for it.
func TestImagingGenerateRejectsDeclaredBomb(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	data := buf.Bytes()

	// signature(8) length(4) "IHDR"(4) width(4) height(4) ... crc at 29.
	binary.BigEndian.PutUint32(data[16:20], 100000)
	binary.BigEndian.PutUint32(data[20:24], 100000)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))

	_, err := NewImaging().Generate(data, 300, 300)
	assert.ErrorIs(t, err, ErrDecode)
	assert.Contains(t, err.Error(), "100000x100000")
}

func TestCheckPixels(t *testing.T) {
	assert.NoError(t, CheckPixels(100, 100, 10000))
	assert.NoError(t, CheckPixels(100000, 100000, 0))
	assert.ErrorIs(t, CheckPixels(101, 100, 10000), ErrDecode)
	assert.ErrorIs(t, CheckPixels(0, 10, 10000), ErrDecode)
}
