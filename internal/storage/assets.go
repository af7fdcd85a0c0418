// Package storage implements the asset ingestion collaborator: it turns an
// uploaded multipart file into a durable public URL in an S3-compatible
// bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AssetStorage ingests a file and returns a durable URI for it.
type AssetStorage interface {
	Upload(ctx context.Context, prefix string, file io.Reader, size int64, contentType string) (string, error)
}

// MinIOConfig holds the connection settings for the asset bucket.
type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

// MinIOStorage implements AssetStorage on top of a MinIO/S3 bucket.
type MinIOStorage struct {
	client *minio.Client
	cfg    MinIOConfig
}

// NewMinIOStorage creates the MinIO client and fails fast when the target
// bucket does not exist.
func NewMinIOStorage(ctx context.Context, cfg MinIOConfig) (*MinIOStorage, error) {
	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")
	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	return &MinIOStorage{client: client, cfg: cfg}, nil
}

// Upload stores the file under "<prefix>/<uuid><ext>" and returns its public URL.
func (s *MinIOStorage) Upload(ctx context.Context, prefix string, file io.Reader, size int64, contentType string) (string, error) {
	key := path.Join(prefix, uuid.NewString()+extensionFor(contentType))

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, file, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	base := strings.TrimRight(s.cfg.PublicBaseURL, "/")
	return base + "/" + key, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	default:
		return ""
	}
}
