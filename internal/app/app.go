// Package app builds the service graph shared by the API server and imgctl.
package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/petermazzocco/go-profile-images/internal/catalog"
	"github.com/petermazzocco/go-profile-images/internal/config"
	"github.com/petermazzocco/go-profile-images/internal/database"
	"github.com/petermazzocco/go-profile-images/internal/storage"
	"github.com/petermazzocco/go-profile-images/internal/upload"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	DB      *gorm.DB
	Catalog *catalog.Catalog
	Store   storage.ObjectStore
	Uploads *upload.Service
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := NewLogger(cfg)

	gormLevel := logger.Warn
	if cfg.LogLevel <= slog.LevelDebug {
		gormLevel = logger.Info
	}
	db, err := database.Open(cfg.DBDriver, cfg.DSN, gormLevel)
	if err != nil {
		return nil, err
	}
	cat := catalog.New(db)
	if err := cat.Migrate(ctx); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	store, err := newStore(ctx, cfg, log)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	gen, err := newGenerator(cfg.ThumbnailEngine)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	uploads := upload.NewService(cat, store, gen, upload.Options{
		ThumbnailWidth:  cfg.ThumbnailWidth,
		ThumbnailHeight: cfg.ThumbnailHeight,
		MaxUploadBytes:  cfg.MaxUploadBytes,
	}, log)

	log.Info("app ready",
		slog.String("db_driver", cfg.DBDriver),
		slog.String("storage", cfg.StorageBackend),
		slog.String("thumbnail_engine", cfg.ThumbnailEngine),
		slog.Int("thumbnail_width", cfg.ThumbnailWidth),
		slog.Int("thumbnail_height", cfg.ThumbnailHeight),
	)

	return &App{
		Config:  cfg,
		Logger:  log,
		DB:      db,
		Catalog: cat,
		Store:   store,
		Uploads: uploads,
	}, nil
}

func (a *App) Close() error {
	return database.Close(a.DB)
}

// NewLogger builds the process logger and installs it as the slog default.
func NewLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	log := slog.New(h)
	slog.SetDefault(log)
	return log
}

func newStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.ObjectStore, error) {
	if cfg.StorageBackend == "memory" {
		return storage.NewMemory(cfg.PublicURL), nil
	}

	httpClient := &http.Client{Transport: &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS13,
			CipherSuites: []uint16{
				tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
				tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			},
		},
	}}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithHTTPClient(httpClient),
		awsconfig.WithRegion(cfg.S3Region),
		// Put is single-shot; failures surface to the caller.
		awsconfig.WithRetryMaxAttempts(1),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := cfg.Endpoint(); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = cfg.S3Endpoint != ""
		}
	})
	return storage.NewS3(client, cfg.BucketName, cfg.PublicURL, log), nil
}
