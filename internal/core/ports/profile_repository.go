package ports

import (
	"context"

	"github.com/parentdesk/portal-auth/internal/core/domain"
)

// ProfileReader is the read side of the profile store. The rule engine and
// the client session store both resolve roles through it.
type ProfileReader interface {
	GetProfile(ctx context.Context, identityID string) (*domain.UserProfile, error)
}

// ProfileRepository defines the interface for role profile persistence,
// keyed by identity id.
type ProfileRepository interface {
	ProfileReader
	PutProfile(ctx context.Context, identityID string, profile *domain.UserProfile) error
	DeleteProfile(ctx context.Context, identityID string) error
}
