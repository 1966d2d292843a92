package profile

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"todoboard/internal/app/attachment"
	"todoboard/internal/providers/minio"

	"go.uber.org/zap"
)

var ErrProfileNotFound = errors.New("profile not found")

type UpdateInput struct {
	Nickname    string
	FirstName   string
	LastName    string
	BirthDate   *time.Time
	PhoneNumber string
	Avatar      *attachment.File
}

type Service interface {
	// Get returns the user's profile, creating an empty one on first access.
	Get(ctx context.Context, userID string) (*ProfileResponse, error)
	// Update upserts the profile. Without a new avatar the stored one is kept.
	Update(ctx context.Context, userID string, in UpdateInput) (*ProfileResponse, error)
}

type service struct {
	repo   Repository
	blobs  attachment.BlobStore
	logger *zap.Logger
}

func NewService(repo Repository, blobs attachment.BlobStore, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		blobs:  blobs,
		logger: logger,
	}
}

// AvatarObjectName is avatar/{userID}/{file name with spaces as underscores}.
func AvatarObjectName(userID, fileName string) string {
	return "avatar/" + userID + "/" + strings.ReplaceAll(fileName, " ", "_")
}

func (s *service) Get(ctx context.Context, userID string) (*ProfileResponse, error) {
	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		p = &Profile{ID: userID}
		if err := s.repo.Upsert(ctx, p); err != nil {
			s.logger.Error("Failed to create profile", zap.String("user_id", userID), zap.Error(err))
			return nil, fmt.Errorf("create profile: %w", err)
		}
		s.logger.Info("Created empty profile", zap.String("user_id", userID))
	} else if err != nil {
		s.logger.Error("Failed to load profile", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return s.response(p), nil
}

func (s *service) Update(ctx context.Context, userID string, in UpdateInput) (*ProfileResponse, error) {
	p := &Profile{
		ID:          userID,
		Nickname:    in.Nickname,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		BirthDate:   in.BirthDate,
		PhoneNumber: in.PhoneNumber,
	}

	if in.Avatar != nil {
		name, err := s.uploadAvatar(ctx, userID, *in.Avatar)
		if err != nil {
			s.logger.Error("Failed to upload avatar", zap.String("user_id", userID), zap.Error(err))
			return nil, fmt.Errorf("upload avatar: %w", err)
		}
		p.AvatarFileName = name
	} else {
		existing, err := s.repo.Get(ctx, userID)
		switch {
		case err == nil:
			p.AvatarFileName = existing.AvatarFileName
		case !errors.Is(err, ErrProfileNotFound):
			s.logger.Warn("Failed to read current avatar", zap.String("user_id", userID), zap.Error(err))
		}
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		s.logger.Error("Failed to save profile", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return s.response(p), nil
}

func (s *service) uploadAvatar(ctx context.Context, userID string, file attachment.File) (string, error) {
	if s.blobs == nil {
		return "", errors.New("blob store not configured")
	}
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := strings.ReplaceAll(file.Name, " ", "_")
	contentType := file.ContentType
	if contentType == "" {
		contentType = minio.DetectContentType(filepath.Ext(name))
	}
	if err := s.blobs.Upload(ctx, AvatarObjectName(userID, name), src, file.Size, contentType); err != nil {
		return "", err
	}
	return name, nil
}

func (s *service) response(p *Profile) *ProfileResponse {
	resp := &ProfileResponse{Profile: *p}
	if p.AvatarFileName != "" && s.blobs != nil {
		resp.AvatarURL = s.blobs.PublicURL(AvatarObjectName(p.ID, p.AvatarFileName))
	}
	return resp
}
