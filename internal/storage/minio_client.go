package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"blogCPT/internal/config"
)

// Storage keeps post header images.
type Storage interface {
	UploadImage(ctx context.Context, fileName string, file io.Reader, size int64) (string, error)
	DeleteImage(ctx context.Context, imageURL string) error
}

type MinIOClient struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// NewMinIOClient connects to MinIO and makes sure the bucket exists.
func NewMinIOClient(ctx context.Context, cfg config.MinIO) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.BucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.BucketName, err)
		}
		log.Info().Str("bucket", cfg.BucketName).Msg("created image bucket")
	}

	return &MinIOClient{
		client:     client,
		bucket:     cfg.BucketName,
		publicBase: PublicBase(cfg),
	}, nil
}

// PublicBase is the URL prefix under which uploaded objects are served.
func PublicBase(cfg config.MinIO) string {
	if cfg.PublicURL != "" {
		return strings.TrimSuffix(cfg.PublicURL, "/") + "/" + cfg.BucketName
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.BucketName)
}

// ObjectName builds posts/<yyyy>/<mm>/<uuid><ext> for an uploaded file.
func ObjectName(fileName string, now time.Time) string {
	fileExt := strings.ToLower(filepath.Ext(fileName))
	if fileExt == "" {
		fileExt = ".jpg"
	}
	return fmt.Sprintf("posts/%d/%02d/%s%s", now.Year(), now.Month(), uuid.New().String(), fileExt)
}

// ObjectFromURL returns the object key when imageURL points into this bucket.
func ObjectFromURL(publicBase, imageURL string) (string, bool) {
	prefix := publicBase + "/"
	if !strings.HasPrefix(imageURL, prefix) {
		return "", false
	}
	object := strings.TrimPrefix(imageURL, prefix)
	return object, object != ""
}

func (m *MinIOClient) UploadImage(ctx context.Context, fileName string, file io.Reader, size int64) (string, error) {
	now := time.Now()
	objectName := ObjectName(fileName, now)

	contentType := mime.TypeByExtension(filepath.Ext(objectName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := m.client.PutObject(ctx, m.bucket, objectName, file, size,
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"original-filename": fileName,
				"uploaded-at":       now.Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to MinIO: %w", err)
	}

	return m.publicBase + "/" + objectName, nil
}

// DeleteImage removes an uploaded image. URLs outside the bucket are ignored.
func (m *MinIOClient) DeleteImage(ctx context.Context, imageURL string) error {
	objectName, ok := ObjectFromURL(m.publicBase, imageURL)
	if !ok {
		return nil
	}

	err := m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete image from MinIO: %w", err)
	}
	return nil
}
