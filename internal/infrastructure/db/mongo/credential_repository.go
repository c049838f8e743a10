package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/parentdesk/portal-auth/internal/core/domain"
)

const credentialCollection = "credentials"

// MongoCredentialRepository stores the email/password credential records the
// identity provider verifies against. Requires a unique index on email.
type MongoCredentialRepository struct {
	coll *mongo.Collection
}

func NewCredentialRepository(db *mongo.Database) *MongoCredentialRepository {
	return &MongoCredentialRepository{coll: db.Collection(credentialCollection)}
}

type mongoCredential struct {
	IdentityID   string `bson:"_id"`
	Email        string `bson:"email"`
	PasswordHash string `bson:"password_hash"`
	CreatedAt    int64  `bson:"created_at"`
}

func (r *MongoCredentialRepository) Create(ctx context.Context, cred *domain.Credential) error {
	doc := mongoCredential{
		IdentityID:   cred.IdentityID,
		Email:        cred.Email,
		PasswordHash: cred.PasswordHash,
		CreatedAt:    cred.CreatedAt.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailInUse
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (r *MongoCredentialRepository) FindByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	var mc mongoCredential
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}

	return &domain.Credential{
		IdentityID:   mc.IdentityID,
		Email:        mc.Email,
		PasswordHash: mc.PasswordHash,
		CreatedAt:    unixToTime(mc.CreatedAt),
	}, nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
