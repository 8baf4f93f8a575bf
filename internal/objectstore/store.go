// Package objectstore provides photo-asset uploads to MinIO-compatible
// object storage.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/estatelink/property-importer/internal/config"
	"github.com/estatelink/property-importer/internal/logger"
)

// Uploader pushes one object under a key and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// MinIOStore implements Uploader against a MinIO/S3 bucket.
type MinIOStore struct {
	client        *miniogo.Client
	bucket        string
	publicBaseURL string
	logger        logger.Interface
}

var _ Uploader = (*MinIOStore)(nil)

// NewMinIOStore creates a store from configuration and ensures the bucket
// exists.
func NewMinIOStore(ctx context.Context, cfg *config.StorageConfig, log logger.Interface) (*MinIOStore, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if makeErr := client.MakeBucket(ctx, cfg.Bucket, miniogo.MakeBucketOptions{}); makeErr != nil {
			return nil, fmt.Errorf("create bucket: %w", makeErr)
		}
	}

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicBase = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &MinIOStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(publicBase, "/"),
		logger:        log.WithComponent("objectstore"),
	}, nil
}

// Upload stores the object and returns its public URL.
func (s *MinIOStore) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		miniogo.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return s.publicBaseURL + "/" + key, nil
}
