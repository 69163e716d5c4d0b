// Package config loads service settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr string

	DBDriver string
	DSN      string

	StorageBackend  string
	BucketName      string
	AccountID       string
	S3Endpoint      string
	S3Region        string
	AccessKeyID     string
	AccessKeySecret string
	// PublicURL is the base objects are served from, e.g.
	// https://pub-xxx.r2.dev. The older "https://pub-xxx.r2.dev/%s" form
	// still works.
	PublicURL string

	ThumbnailEngine string
	ThumbnailWidth  int
	ThumbnailHeight int
	MaxUploadBytes  int64

	RateLimitPerMinute int

	GoogleKey        string
	GoogleSecret     string
	OAuthCallbackURL string
	SessionSecret    string
	SecureCookies    bool

	LogLevel  slog.Level
	LogFormat string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var errs []error
	cfg := &Config{
		Addr:               get("ADDR", ":3000"),
		DBDriver:           get("DB_DRIVER", "postgres"),
		DSN:                os.Getenv("DSN"),
		StorageBackend:     get("STORAGE_BACKEND", "s3"),
		BucketName:         os.Getenv("BUCKET_NAME"),
		AccountID:          os.Getenv("ACCOUNT_ID"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),
		S3Region:           get("S3_REGION", "auto"),
		AccessKeyID:        os.Getenv("ACCESS_KEY_ID"),
		AccessKeySecret:    os.Getenv("ACCESS_KEY_SECRET"),
		PublicURL:          os.Getenv("PUBLIC_URL"),
		ThumbnailEngine:    get("THUMBNAIL_ENGINE", "imaging"),
		ThumbnailWidth:     getInt("THUMBNAIL_WIDTH", 300, &errs),
		ThumbnailHeight:    getInt("THUMBNAIL_HEIGHT", 300, &errs),
		MaxUploadBytes:     int64(getInt("MAX_UPLOAD_BYTES", 10<<20, &errs)),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 20, &errs),
		GoogleKey:          os.Getenv("GOOGLE_KEY"),
		GoogleSecret:       os.Getenv("GOOGLE_SECRET"),
		OAuthCallbackURL:   get("OAUTH_CALLBACK_URL", "http://localhost:3000/auth/google/callback"),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		SecureCookies:      getBool("SECURE_COOKIES", false, &errs),
		LogFormat:          get("LOG_FORMAT", "text"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	errs = append(errs, cfg.validate()...)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() []error {
	var errs []error
	if c.DSN == "" {
		errs = append(errs, errors.New("DSN is required"))
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER: unknown driver %q", c.DBDriver))
	}
	switch c.StorageBackend {
	case "s3":
		if c.BucketName == "" {
			errs = append(errs, errors.New("BUCKET_NAME is required for the s3 backend"))
		}
		if c.S3Endpoint == "" && c.AccountID == "" && c.S3Region == "auto" {
			errs = append(errs, errors.New("set S3_ENDPOINT, ACCOUNT_ID or S3_REGION"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND: unknown backend %q", c.StorageBackend))
	}
	switch c.ThumbnailEngine {
	case "vips", "imaging":
	default:
		errs = append(errs, fmt.Errorf("THUMBNAIL_ENGINE: unknown engine %q", c.ThumbnailEngine))
	}
	if c.ThumbnailWidth <= 0 || c.ThumbnailHeight <= 0 {
		errs = append(errs, fmt.Errorf("thumbnail size %dx%d must be positive", c.ThumbnailWidth, c.ThumbnailHeight))
	}
	return errs
}

// Endpoint returns the S3 endpoint override, deriving the Cloudflare R2
// endpoint from ACCOUNT_ID when no explicit endpoint is set.
func (c *Config) Endpoint() string {
	if c.S3Endpoint != "" {
		return c.S3Endpoint
	}
	if c.AccountID != "" {
		return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
	}
	return ""
}

func get(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int, errs *[]error) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func getBool(key string, def bool, errs *[]error) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}
