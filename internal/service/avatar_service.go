package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"devconnector/internal/domain"
	"devconnector/internal/storage"
)

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AvatarService replaces the generated avatar with an uploaded image.
type AvatarService interface {
	Upload(ctx context.Context, userID, filename, contentType string, body io.Reader) (*domain.User, error)
	Purge(ctx context.Context, userID string) error
}

type avatarService struct {
	store     storage.Service
	users     UserService
	keyPrefix string
}

// NewAvatarService returns an avatar service; store may be nil, in which case
// uploads fail with ErrStorageNotConfigured.
func NewAvatarService(store storage.Service, users UserService, keyPrefix string) AvatarService {
	return &avatarService{
		store:     store,
		users:     users,
		keyPrefix: strings.Trim(keyPrefix, "/"),
	}
}

func (s *avatarService) Upload(ctx context.Context, userID, filename, contentType string, body io.Reader) (*domain.User, error) {
	if s.store == nil {
		return nil, ErrStorageNotConfigured
	}

	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, newValidationError("Avatar must be a JPEG, PNG, GIF or WebP image")
	}
	if e := strings.ToLower(filepath.Ext(filename)); e == ".jpeg" || e == ext {
		ext = e
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	key := path.Join(s.userPrefix(userID), uuid.NewString()+ext)
	location, err := s.store.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("store avatar: %w", err)
	}

	return s.users.SetAvatar(ctx, userID, location)
}

func (s *avatarService) Purge(ctx context.Context, userID string) error {
	if s.store == nil {
		return ErrStorageNotConfigured
	}
	return s.store.DeletePrefix(ctx, s.userPrefix(userID)+"/")
}

func (s *avatarService) userPrefix(userID string) string {
	if s.keyPrefix == "" {
		return userID
	}
	return s.keyPrefix + "/" + userID
}
