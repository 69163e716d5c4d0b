package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store writes objects to an S3 compatible bucket (AWS, R2, MinIO).
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
	logger    *slog.Logger
}

// NewS3 returns a store for bucket. publicURL is the base objects are served
// from; when empty the virtual-hosted AWS URL of the bucket is used.
func NewS3(client *s3.Client, bucket, publicURL string, logger *slog.Logger) *S3Store {
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return &S3Store{
		client:    client,
		bucket:    bucket,
		publicURL: publicURL,
		logger:    logger.With(slog.String("component", "s3_store")),
	}
}

func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) error {
	obj, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("put object %s/%s: %w", s.bucket, key, err)
	}

	s.logger.Info("object stored",
		slog.String("bucket", s.bucket),
		slog.String("key", key),
		slog.Int64("size", size),
		slog.String("etag", aws.ToString(obj.ETag)),
	)
	return nil
}

func (s *S3Store) URL(key string) string {
	return objectURL(s.publicURL, key)
}
