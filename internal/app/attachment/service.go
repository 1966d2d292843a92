package attachment

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"todoboard/internal/providers/minio"

	"go.uber.org/zap"
)

// BlobStore is the blob half of the remote store.
type BlobStore interface {
	Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
	PublicURL(objectName string) string
	Delete(ctx context.Context, objectName string) error
}

type Service interface {
	// UploadAll uploads files one after another. A failed upload is logged
	// and skipped; it never aborts the remaining files.
	UploadAll(ctx context.Context, userID string, files []File) []Attachment
	Remove(ctx context.Context, objectName string) error
	RemoveAll(ctx context.Context, atts []Attachment)
}

type service struct {
	blobs      BlobStore
	objectName func(userID, filename string) string
	logger     *zap.Logger
}

func NewService(blobs BlobStore, objectName func(userID, filename string) string, logger *zap.Logger) Service {
	return &service{
		blobs:      blobs,
		objectName: objectName,
		logger:     logger,
	}
}

func (s *service) UploadAll(ctx context.Context, userID string, files []File) []Attachment {
	if len(files) == 0 {
		return nil
	}

	uploaded := make([]Attachment, 0, len(files))
	for _, file := range files {
		att, err := s.upload(ctx, userID, file)
		if err != nil {
			s.logger.Error("Failed to upload image",
				zap.String("user_id", userID),
				zap.String("filename", file.Name),
				zap.Error(err),
			)
			continue
		}
		uploaded = append(uploaded, att)
	}

	s.logger.Info("Uploaded task images",
		zap.String("user_id", userID),
		zap.Int("requested", len(files)),
		zap.Int("uploaded", len(uploaded)),
	)
	return uploaded
}

func (s *service) upload(ctx context.Context, userID string, file File) (Attachment, error) {
	if s.blobs == nil {
		return Attachment{}, fmt.Errorf("blob store not configured")
	}
	if file.Open == nil {
		return Attachment{}, fmt.Errorf("file %s has no content", file.Name)
	}

	src, err := file.Open()
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	objectName := s.objectName(userID, file.Name)
	contentType := file.ContentType
	if contentType == "" {
		contentType = minio.DetectContentType(filepath.Ext(file.Name))
	}

	if err := s.blobs.Upload(ctx, objectName, src, file.Size, contentType); err != nil {
		return Attachment{}, err
	}

	return Attachment{
		FileName:    file.Name,
		FileURL:     s.blobs.PublicURL(objectName),
		FileSize:    file.Size,
		ContentType: contentType,
		ObjectName:  objectName,
	}, nil
}

func (s *service) Remove(ctx context.Context, objectName string) error {
	if s.blobs == nil {
		return fmt.Errorf("blob store not configured")
	}
	return s.blobs.Delete(ctx, objectName)
}

// RemoveAll deletes blobs best-effort, logging each failure.
func (s *service) RemoveAll(ctx context.Context, atts []Attachment) {
	for _, att := range atts {
		if att.ObjectName == "" {
			continue
		}
		if err := s.Remove(ctx, att.ObjectName); err != nil {
			s.logger.Warn("Failed to delete image from blob store",
				zap.String("object_name", att.ObjectName),
				zap.Error(err),
			)
		}
	}
}
