package minio

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"todoboard/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type MinioProvider struct {
	client    *minio.Client
	bucket    string
	maxSize   int64
	logger    *zap.Logger
	publicURL string
}

func NewMinioProvider(cfg *config.Config, logger *zap.Logger) (*MinioProvider, error) {
	minioURL := cfg.MinioURL
	if !strings.HasPrefix(minioURL, "http://") && !strings.HasPrefix(minioURL, "https://") {
		minioURL = "https://" + minioURL
	}

	u, err := url.Parse(minioURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse minio URL: %w", err)
	}
	secure := u.Scheme == "https"

	logger.Info("Initializing MinIO", zap.String("endpoint", u.Host), zap.Bool("secure", secure))

	tr := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: false},
	}
	tr.MaxIdleConnsPerHost = 256

	client, err := minio.New(u.Host, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.MinioUser, cfg.MinioPassword, ""),
		Secure:    secure,
		Transport: tr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	publicURL := strings.TrimRight(cfg.MinioPublicURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("%s://%s/%s", u.Scheme, u.Host, cfg.MinioBucket)
	}

	provider := &MinioProvider{
		client:    client,
		bucket:    cfg.MinioBucket,
		maxSize:   cfg.MaxFileSize,
		logger:    logger,
		publicURL: publicURL,
	}

	if err := provider.ensureBucket(); err != nil {
		return nil, err
	}

	return provider, nil
}

func (m *MinioProvider) ensureBucket() error {
	ctx := context.Background()

	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		m.logger.Error("BucketExists error", zap.Error(err), zap.String("bucket", m.bucket))
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		m.logger.Info("Created MinIO bucket", zap.String("bucket", m.bucket))
	}

	if err := m.setBucketPolicy(ctx); err != nil {
		m.logger.Warn("Failed to set bucket policy", zap.Error(err))
	}

	return nil
}

// Attachment and avatar URLs are handed to browsers directly, so objects must
// be publicly readable.
func (m *MinioProvider) setBucketPolicy(ctx context.Context) error {
	policy := `{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Sid": "PublicReadGetObject",
				"Effect": "Allow",
				"Principal": "*",
				"Action": ["s3:GetObject"],
				"Resource": ["arn:aws:s3:::` + m.bucket + `/*"]
			}
		]
	}`
	return m.client.SetBucketPolicy(ctx, m.bucket, policy)
}

// Upload stores r under objectName, replacing any existing object.
func (m *MinioProvider) Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	if m.maxSize > 0 && size > m.maxSize {
		return fmt.Errorf("file size exceeds maximum allowed size of %d MB", m.maxSize/(1024*1024))
	}
	if contentType == "" {
		contentType = DetectContentType(filepath.Ext(objectName))
	}

	_, err := m.client.PutObject(ctx, m.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}

	m.logger.Info("File uploaded",
		zap.String("object_name", objectName),
		zap.Int64("size", size),
	)
	return nil
}

func (m *MinioProvider) PublicURL(objectName string) string {
	return m.publicURL + "/" + objectName
}

func (m *MinioProvider) Delete(ctx context.Context, objectName string) error {
	err := m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	m.logger.Info("File deleted successfully", zap.String("object_name", objectName))
	return nil
}

func (m *MinioProvider) Ping(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", m.bucket)
	}
	return nil
}

// ListObjects returns the objects under prefix; the admin CLI uses it to find
// blobs that no attachment row references anymore.
func (m *MinioProvider) ListObjects(ctx context.Context, prefix string) ([]minio.ObjectInfo, error) {
	var objects []minio.ObjectInfo
	for object := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, object.Err
		}
		objects = append(objects, object)
	}
	return objects, nil
}

// GenerateObjectName places task images under the owner's prefix:
// {userID}/{unixMillis}-{uuid}{ext}.
func GenerateObjectName(userID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%d-%s%s", userID, time.Now().UnixMilli(), uuid.New().String(), ext)
}

func DetectContentType(ext string) string {
	ext = strings.ToLower(ext)
	contentTypes := map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
		".svg":  "image/svg+xml",
		".bmp":  "image/bmp",
	}

	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
