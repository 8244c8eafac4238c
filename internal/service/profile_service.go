package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"devconnector/internal/domain"
	"devconnector/internal/repository"
)

// ProfileFields carries a partial profile update. Nil fields are left untouched.
type ProfileFields struct {
	Bio     *string
	Address *string
	Company *string
	Website *string
	GitHub  *string
	Status  *string
	// Skills is a comma separated list.
	Skills   *string
	Facebook *string
	LinkedIn *string
	YouTube  *string
}

// ExperienceInput describes a new experience entry.
type ExperienceInput struct {
	Title   string
	Company string
	From    time.Time
	To      *time.Time
	Current bool
}

// EducationInput describes a new education entry.
type EducationInput struct {
	School  string
	Degree  string
	From    time.Time
	To      *time.Time
	Current bool
}

// AvatarPurger removes stored avatar objects for a user.
type AvatarPurger interface {
	Purge(ctx context.Context, userID string) error
}

// ProfileService manages profile aggregates and the account cascade delete.
type ProfileService interface {
	Upsert(ctx context.Context, userID string, fields ProfileFields) (*domain.Profile, error)
	GetByUser(ctx context.Context, userID string) (*domain.Profile, error)
	List(ctx context.Context) ([]domain.Profile, error)
	AddExperience(ctx context.Context, userID string, in ExperienceInput) (*domain.Profile, error)
	RemoveExperience(ctx context.Context, userID, entryID string) (*domain.Profile, error)
	AddEducation(ctx context.Context, userID string, in EducationInput) (*domain.Profile, error)
	RemoveEducation(ctx context.Context, userID, entryID string) (*domain.Profile, error)
	DeleteCascade(ctx context.Context, userID string) error
}

type profileService struct {
	profiles repository.ProfileRepository
	posts    repository.PostRepository
	users    repository.UserRepository
	avatars  AvatarPurger
	logger   *logrus.Logger
}

// NewProfileService wires the profile manager. avatars may be nil when no object storage is configured.
func NewProfileService(profiles repository.ProfileRepository, posts repository.PostRepository, users repository.UserRepository, avatars AvatarPurger, logger *logrus.Logger) ProfileService {
	if logger == nil {
		logger = logrus.New()
	}
	return &profileService{
		profiles: profiles,
		posts:    posts,
		users:    users,
		avatars:  avatars,
		logger:   logger,
	}
}

func (s *profileService) Upsert(ctx context.Context, userID string, fields ProfileFields) (*domain.Profile, error) {
	profile, err := s.profiles.GetByUser(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		var msgs []string
		if fields.Status == nil || strings.TrimSpace(*fields.Status) == "" {
			msgs = append(msgs, "Status is required")
		}
		if fields.Skills == nil || len(SplitSkills(*fields.Skills)) == 0 {
			msgs = append(msgs, "Skills is required")
		}
		if len(msgs) > 0 {
			return nil, newValidationError(msgs...)
		}
		profile = &domain.Profile{
			ID:         uuid.NewString(),
			UserID:     userID,
			Experience: []domain.Experience{},
			Education:  []domain.Education{},
		}
	case err != nil:
		return nil, err
	}

	if err := applyProfileFields(profile, fields); err != nil {
		return nil, err
	}

	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return s.populate(ctx, profile)
}

func applyProfileFields(p *domain.Profile, f ProfileFields) error {
	var msgs []string
	if f.Status != nil {
		if status := strings.TrimSpace(*f.Status); status != "" {
			p.Status = status
		} else {
			msgs = append(msgs, "Status is required")
		}
	}
	if f.Skills != nil {
		if skills := SplitSkills(*f.Skills); len(skills) > 0 {
			p.Skills = skills
		} else {
			msgs = append(msgs, "Skills is required")
		}
	}
	if len(msgs) > 0 {
		return newValidationError(msgs...)
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&p.Bio, f.Bio)
	set(&p.Address, f.Address)
	set(&p.Company, f.Company)
	set(&p.Website, f.Website)
	set(&p.GitHub, f.GitHub)
	set(&p.Social.Facebook, f.Facebook)
	set(&p.Social.LinkedIn, f.LinkedIn)
	set(&p.Social.YouTube, f.YouTube)
	return nil
}

// SplitSkills turns "go, sql ,docker" into ["go" "sql" "docker"], dropping empty items.
func SplitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		if skill := strings.TrimSpace(part); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}

func (s *profileService) GetByUser(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, profile)
}

func (s *profileService) List(ctx context.Context) ([]domain.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(profiles))
	for i := range profiles {
		ids = append(ids, profiles[i].UserID)
	}
	owners, err := s.users.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range profiles {
		normalizeProfile(&profiles[i])
		if owner, ok := owners[profiles[i].UserID]; ok {
			summary := owner.Summary()
			profiles[i].Owner = &summary
		}
	}
	return profiles, nil
}

func (s *profileService) AddExperience(ctx context.Context, userID string, in ExperienceInput) (*domain.Profile, error) {
	var msgs []string
	if strings.TrimSpace(in.Title) == "" {
		msgs = append(msgs, "Title is required")
	}
	if strings.TrimSpace(in.Company) == "" {
		msgs = append(msgs, "Company is required")
	}
	if in.From.IsZero() {
		msgs = append(msgs, "From Date is required")
	}
	if len(msgs) > 0 {
		return nil, newValidationError(msgs...)
	}

	return s.mutate(ctx, userID, func(p *domain.Profile) error {
		entry := domain.Experience{
			ID:      uuid.NewString(),
			Title:   strings.TrimSpace(in.Title),
			Company: strings.TrimSpace(in.Company),
			From:    in.From,
			To:      in.To,
			Current: in.Current,
		}
		p.Experience = append([]domain.Experience{entry}, p.Experience...)
		return nil
	})
}

func (s *profileService) RemoveExperience(ctx context.Context, userID, entryID string) (*domain.Profile, error) {
	return s.mutate(ctx, userID, func(p *domain.Profile) error {
		idx := p.ExperienceIndex(entryID)
		if idx < 0 {
			return ErrEntryNotFound
		}
		p.Experience = append(p.Experience[:idx], p.Experience[idx+1:]...)
		return nil
	})
}

func (s *profileService) AddEducation(ctx context.Context, userID string, in EducationInput) (*domain.Profile, error) {
	var msgs []string
	if strings.TrimSpace(in.School) == "" {
		msgs = append(msgs, "School is required")
	}
	if strings.TrimSpace(in.Degree) == "" {
		msgs = append(msgs, "Degree is required")
	}
	if in.From.IsZero() {
		msgs = append(msgs, "From Date is required")
	}
	if len(msgs) > 0 {
		return nil, newValidationError(msgs...)
	}

	return s.mutate(ctx, userID, func(p *domain.Profile) error {
		entry := domain.Education{
			ID:      uuid.NewString(),
			School:  strings.TrimSpace(in.School),
			Degree:  strings.TrimSpace(in.Degree),
			From:    in.From,
			To:      in.To,
			Current: in.Current,
		}
		p.Education = append([]domain.Education{entry}, p.Education...)
		return nil
	})
}

func (s *profileService) RemoveEducation(ctx context.Context, userID, entryID string) (*domain.Profile, error) {
	return s.mutate(ctx, userID, func(p *domain.Profile) error {
		idx := p.EducationIndex(entryID)
		if idx < 0 {
			return ErrEntryNotFound
		}
		p.Education = append(p.Education[:idx], p.Education[idx+1:]...)
		return nil
	})
}

// DeleteCascade removes the user's posts, then the profile, then the user and
// finally any stored avatars. The steps are not atomic: a failure stops the
// sequence and leaves earlier steps applied.
func (s *profileService) DeleteCascade(ctx context.Context, userID string) error {
	log := s.logger.WithField("user_id", userID)

	removed, err := s.posts.DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("cascade delete posts: %w", err)
	}
	log.WithField("posts", removed).Debug("deleted user posts")

	if err := s.profiles.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("cascade delete profile: %w", err)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("cascade delete user: %w", err)
	}

	if s.avatars != nil {
		if err := s.avatars.Purge(ctx, userID); err != nil && !errors.Is(err, ErrStorageNotConfigured) {
			log.Warnf("purge avatars: %v", err)
		}
	}

	log.Info("account deleted")
	return nil
}

func (s *profileService) load(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	normalizeProfile(profile)
	return profile, nil
}

// mutate loads the user's profile, applies fn and stores the result.
// Concurrent mutations of the same profile are last-writer-wins.
func (s *profileService) mutate(ctx context.Context, userID string, fn func(*domain.Profile) error) (*domain.Profile, error) {
	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(profile); err != nil {
		return nil, err
	}
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return s.populate(ctx, profile)
}

func (s *profileService) populate(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	normalizeProfile(profile)
	owner, err := s.users.GetByID(ctx, profile.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return profile, nil
		}
		return nil, err
	}
	summary := owner.Summary()
	profile.Owner = &summary
	return profile, nil
}

func normalizeProfile(p *domain.Profile) {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Experience == nil {
		p.Experience = []domain.Experience{}
	}
	if p.Education == nil {
		p.Education = []domain.Education{}
	}
}
