package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"devconnector/internal/domain"
	"devconnector/internal/repository"
)

type ProfileRepository struct {
	coll *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &ProfileRepository{coll: db.Collection(profilesCollection)}
}

func (r *ProfileRepository) Init(ctx context.Context) error {
	return createIndex(ctx, r.coll, "user", true)
}

// Save upserts the profile keyed by its owner. _id and created_at are only
// written on insert; the stored values are copied back into profile.
func (r *ProfileRepository) Save(ctx context.Context, profile *domain.Profile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	raw, err := bson.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	delete(fields, "_id")
	delete(fields, "created_at")

	update := bson.M{
		"$set":         fields,
		"$setOnInsert": bson.M{"_id": profile.ID, "created_at": profile.CreatedAt},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored domain.Profile
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"user": profile.UserID}, update, opts).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		// a concurrent first save inserted the document; this one now updates it
		err = r.coll.FindOneAndUpdate(ctx, bson.M{"user": profile.UserID}, update, opts).Decode(&stored)
	}
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	profile.ID = stored.ID
	profile.CreatedAt = stored.CreatedAt
	return nil
}

func (r *ProfileRepository) GetByUser(ctx context.Context, userID string) (*domain.Profile, error) {
	var profile domain.Profile
	if err := r.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&profile); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("profile: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]domain.Profile, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find profiles: %w", err)
	}
	var profiles []domain.Profile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return profiles, nil
}

func (r *ProfileRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"user": userID}); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
