// Package upload stores a user's profile image and its thumbnail and records
// both in the catalog.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/petermazzocco/go-profile-images/internal/catalog"
	"github.com/petermazzocco/go-profile-images/internal/filename"
	"github.com/petermazzocco/go-profile-images/internal/metrics"
	"github.com/petermazzocco/go-profile-images/internal/storage"
	"github.com/petermazzocco/go-profile-images/internal/thumbnail"
	"github.com/petermazzocco/go-profile-images/models"
)

// Catalog is the slice of the image catalog the service needs.
type Catalog interface {
	FindOwner(ctx context.Context, nickname string) (*models.User, error)
	FindSlot(ctx context.Context, ownerID uint, resized bool) (*models.Image, error)
	Upsert(ctx context.Context, rec models.Image) (*models.Image, error)
}

type Options struct {
	ThumbnailWidth  int
	ThumbnailHeight int
	// MaxUploadBytes bounds the original; zero disables the check.
	MaxUploadBytes int64
}

// Request is one upload for an already authenticated owner.
type Request struct {
	Owner       string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Result struct {
	Original     *models.Image
	Thumbnail    *models.Image
	OriginalURL  string
	ThumbnailURL string
}

type Service struct {
	catalog   Catalog
	store     storage.ObjectStore
	generator thumbnail.Generator
	opts      Options
	logger    *slog.Logger
}

func NewService(c Catalog, store storage.ObjectStore, gen thumbnail.Generator, opts Options, logger *slog.Logger) *Service {
	if opts.ThumbnailWidth <= 0 {
		opts.ThumbnailWidth = 300
	}
	if opts.ThumbnailHeight <= 0 {
		opts.ThumbnailHeight = 300
	}
	return &Service{
		catalog:   c,
		store:     store,
		generator: gen,
		opts:      opts,
		logger:    logger.With(slog.String("component", "upload_service")),
	}
}

// Upload runs the upload steps in order:
//  1. resolve the owner
//  2. derive a random key from the file name
//  3. store the original
//  4. write the original slot
//  5. name the thumbnail after the key
//  6. render the thumbnail
//  7. store the thumbnail
//  8. write the thumbnail slot
//
// Nothing is rolled back. When a step after 4 fails the returned Result still
// describes the stored original, alongside the error.
func (s *Service) Upload(ctx context.Context, req Request) (*Result, error) {
	log := s.logger.With(slog.String("owner", req.Owner), slog.String("file_name", req.FileName))

	// 1. Owner
	owner, err := s.catalog.FindOwner(ctx, req.Owner)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrOwnerNotFound, req.Owner)
	}
	if err != nil {
		return nil, err
	}

	// 2. Key
	key, err := filename.NewKey(req.FileName)
	if err != nil {
		return nil, err
	}

	data, err := s.read(req)
	if err != nil {
		return nil, err
	}
	if req.Size > 0 && req.Size != int64(len(data)) {
		log.Warn("declared size differs from body", slog.Int64("declared", req.Size), slog.Int("actual", len(data)))
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	// 3. Original object
	err = s.store.Put(ctx, key, bytes.NewReader(data), contentType, int64(len(data)))
	metrics.Step("store_original", err)
	if err != nil {
		log.Error("store original failed", slog.String("key", key), slog.String("error", err.Error()))
		return nil, &UploadFailedError{Phase: PhaseOriginal, FileName: req.FileName, Key: key, Err: err}
	}
	metrics.UploadBytes.WithLabelValues(string(PhaseOriginal)).Observe(float64(len(data)))

	// 4. Original slot
	original, err := s.catalog.Upsert(ctx, models.Image{
		UserID:         owner.ID,
		IsResized:      false,
		OriginFileName: req.FileName,
		StoredKey:      key,
		MimeType:       contentType,
	})
	metrics.Step("catalog_original", err)
	if err != nil {
		return nil, fmt.Errorf("catalog original %s: %w", key, err)
	}
	res := &Result{Original: original, OriginalURL: s.store.URL(key)}

	// 5. Thumbnail name
	thumbName := filename.ThumbnailName(key)

	// 6. Thumbnail
	thumb, err := s.generator.Generate(data, s.opts.ThumbnailWidth, s.opts.ThumbnailHeight)
	metrics.Step("generate_thumbnail", err)
	if err != nil {
		log.Warn("thumbnail generation failed, original kept", slog.String("key", key), slog.String("error", err.Error()))
		return res, fmt.Errorf("thumbnail for %q: %w", req.FileName, err)
	}

	// 7. Thumbnail object
	err = s.store.Put(ctx, thumbName, bytes.NewReader(thumb.Data), thumb.ContentType, int64(len(thumb.Data)))
	metrics.Step("store_thumbnail", err)
	if err != nil {
		log.Warn("store thumbnail failed, original kept", slog.String("key", thumbName), slog.String("error", err.Error()))
		return res, &UploadFailedError{Phase: PhaseThumbnail, FileName: req.FileName, Key: thumbName, Err: err}
	}
	metrics.UploadBytes.WithLabelValues(string(PhaseThumbnail)).Observe(float64(len(thumb.Data)))

	// 8. Thumbnail slot. StoredKey keeps the original's key; the thumbnail
	// object name lives in OriginFileName.
	resized, err := s.catalog.Upsert(ctx, models.Image{
		UserID:         owner.ID,
		IsResized:      true,
		OriginFileName: thumbName,
		StoredKey:      key,
		MimeType:       thumb.ContentType,
	})
	metrics.Step("catalog_thumbnail", err)
	if err != nil {
		return res, fmt.Errorf("catalog thumbnail %s: %w", thumbName, err)
	}
	res.Thumbnail = resized
	res.ThumbnailURL = s.store.URL(thumbName)

	log.Info("profile image uploaded", slog.String("key", key), slog.Int("size", len(data)))
	return res, nil
}

func (s *Service) read(req Request) ([]byte, error) {
	if req.Body == nil {
		return nil, errors.New("upload has no body")
	}
	body := req.Body
	if s.opts.MaxUploadBytes > 0 {
		body = io.LimitReader(body, s.opts.MaxUploadBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upload %q: %w", req.FileName, err)
	}
	if s.opts.MaxUploadBytes > 0 && int64(len(data)) > s.opts.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %q exceeds %d bytes", ErrTooLarge, req.FileName, s.opts.MaxUploadBytes)
	}
	return data, nil
}

// ProfileImage is where an owner's current images can be fetched. URLs are
// empty for slots that were never written.
type ProfileImage struct {
	Original     *models.Image `json:"original,omitempty"`
	Thumbnail    *models.Image `json:"thumbnail,omitempty"`
	OriginalURL  string        `json:"original_url"`
	ThumbnailURL string        `json:"thumbnail_url"`
}

func (s *Service) ProfileImage(ctx context.Context, nickname string) (*ProfileImage, error) {
	owner, err := s.catalog.FindOwner(ctx, nickname)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrOwnerNotFound, nickname)
	}
	if err != nil {
		return nil, err
	}

	var p ProfileImage
	for _, resized := range []bool{false, true} {
		rec, err := s.catalog.FindSlot(ctx, owner.ID, resized)
		if errors.Is(err, catalog.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if resized {
			p.Thumbnail = rec
			p.ThumbnailURL = s.store.URL(filename.ThumbnailName(rec.StoredKey))
		} else {
			p.Original = rec
			p.OriginalURL = s.store.URL(rec.StoredKey)
		}
	}
	return &p, nil
}
