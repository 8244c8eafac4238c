package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"devconnector/internal/domain"
	"devconnector/internal/repository"
)

// Profiles are stored as JSON documents keyed by their owner.
const createProfilesTable = `
CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE,
	document TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
`

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createProfilesTable); err != nil {
		return fmt.Errorf("create profiles table: %w", err)
	}
	return nil
}

// Save upserts the profile keyed by its owner. On conflict the stored id and
// creation time win and are copied back into profile.
func (r *ProfileRepository) Save(ctx context.Context, profile *domain.Profile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	var (
		id      string
		created int64
	)
	err = r.db.QueryRowContext(ctx, `
INSERT INTO profiles (id, user_id, document, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET document=excluded.document, updated_at=excluded.updated_at
RETURNING id, created_at`,
		profile.ID,
		profile.UserID,
		string(doc),
		profile.CreatedAt.UnixNano(),
		profile.UpdatedAt.UnixNano(),
	).Scan(&id, &created)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	profile.ID = id
	profile.CreatedAt = time.Unix(0, created).UTC()
	return nil
}

func (r *ProfileRepository) GetByUser(ctx context.Context, userID string) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, document, created_at FROM profiles WHERE user_id = ?`, userID)
	return scanProfile(row)
}

func (r *ProfileRepository) List(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, document, created_at FROM profiles ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

func (r *ProfileRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE user_id=?`, userID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// scanProfile decodes the stored document; the id and created_at columns are authoritative.
func scanProfile(row interface {
	Scan(dest ...any) error
}) (*domain.Profile, error) {
	var (
		id      string
		doc     string
		created int64
	)
	if err := row.Scan(&id, &doc, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	var profile domain.Profile
	if err := json.Unmarshal([]byte(doc), &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	profile.ID = id
	profile.CreatedAt = time.Unix(0, created).UTC()
	return &profile, nil
}
