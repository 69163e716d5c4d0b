package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DSN", "file:test.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("STORAGE_BACKEND", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, 300, cfg.ThumbnailWidth)
	assert.Equal(t, 300, cfg.ThumbnailHeight)
	assert.Equal(t, "imaging", cfg.ThumbnailEngine)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadCollectsErrors(t *testing.T) {
	t.Setenv("DSN", "")
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("BUCKET_NAME", "")
	t.Setenv("THUMBNAIL_WIDTH", "wide")
	t.Setenv("THUMBNAIL_ENGINE", "magick")

	_, err := Load()
	require.Error(t, err)
	for _, want := range []string{"DSN is required", "BUCKET_NAME", "THUMBNAIL_WIDTH", "THUMBNAIL_ENGINE"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "https://abc.r2.cloudflarestorage.com", (&Config{AccountID: "abc"}).Endpoint())
	assert.Equal(t, "http://minio:9000", (&Config{AccountID: "abc", S3Endpoint: "http://minio:9000"}).Endpoint())
	assert.Empty(t, (&Config{}).Endpoint())
}
