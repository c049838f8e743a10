package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parentdesk/portal-auth/internal/core/domain"
)

const profileCollection = "users"

// MongoProfileRepository persists role profiles keyed by identity id. The
// document shape matches what the security rules were written against:
// email, role, and an ISO-8601 created_at string.
type MongoProfileRepository struct {
	coll *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *MongoProfileRepository {
	return &MongoProfileRepository{coll: db.Collection(profileCollection)}
}

type mongoProfile struct {
	IdentityID string `bson:"_id"`
	Email      string `bson:"email"`
	Role       string `bson:"role"`
	CreatedAt  string `bson:"created_at"`
}

func (r *MongoProfileRepository) GetProfile(ctx context.Context, identityID string) (*domain.UserProfile, error) {
	var mp mongoProfile
	if err := r.coll.FindOne(ctx, bson.M{"_id": identityID}).Decode(&mp); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}

	return &domain.UserProfile{
		Email:     mp.Email,
		Role:      domain.ParseRole(mp.Role),
		CreatedAt: isoToTime(mp.CreatedAt),
	}, nil
}

func (r *MongoProfileRepository) PutProfile(ctx context.Context, identityID string, profile *domain.UserProfile) error {
	doc := mongoProfile{
		IdentityID: identityID,
		Email:      profile.Email,
		Role:       string(profile.Role),
		CreatedAt:  profile.CreatedAt.UTC().Format(time.RFC3339),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": identityID}, doc, opts); err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}

func (r *MongoProfileRepository) DeleteProfile(ctx context.Context, identityID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": identityID})
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func isoToTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
