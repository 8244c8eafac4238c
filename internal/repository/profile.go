package repository

import (
	"context"

	"devconnector/internal/domain"
)

// ProfileRepository stores one profile document per user.
type ProfileRepository interface {
	Init(ctx context.Context) error
	// Save inserts the profile or replaces the existing document for profile.UserID.
	Save(ctx context.Context, profile *domain.Profile) error
	GetByUser(ctx context.Context, userID string) (*domain.Profile, error)
	List(ctx context.Context) ([]domain.Profile, error)
	DeleteByUser(ctx context.Context, userID string) error
}
