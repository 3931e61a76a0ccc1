// Package minio stores post media in a MinIO/S3 bucket.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/comuna-app/feed-service/internal/config"
	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MediaStorage struct {
	cfg     config.S3Config
	client  *mclient.Client
	baseURL string
}

// New connects to the endpoint and fails fast when the bucket is missing.
func New(ctx context.Context, cfg config.S3Config) (*MediaStorage, error) {
	const op = "storage/minio/New"

	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.Bucket)
	}

	scheme := "http"
	if secure {
		scheme = "https"
	}

	return &MediaStorage{
		cfg:     cfg,
		client:  client,
		baseURL: PublicBaseURL(cfg, scheme+"://"+endpoint),
	}, nil
}

// Upload stores the object under key and returns its public URL.
func (s *MediaStorage) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	const op = "storage/minio/Upload"

	if _, err := s.client.PutObject(ctx, s.cfg.Bucket, key, r, size, mclient.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return ObjectURL(s.baseURL, key), nil
}

// PublicBaseURL prefers the configured CDN base and falls back to
// <endpoint>/<bucket>.
func PublicBaseURL(cfg config.S3Config, endpointURL string) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	return strings.TrimRight(endpointURL, "/") + "/" + cfg.Bucket
}

func ObjectURL(baseURL string, key string) string {
	return baseURL + "/" + strings.TrimLeft(key, "/")
}
