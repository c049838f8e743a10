package ports

import (
	"context"

	"github.com/parentdesk/portal-auth/internal/core/domain"
)

// CredentialRepository defines the interface for stored credential records.
type CredentialRepository interface {
	Create(ctx context.Context, cred *domain.Credential) error
	FindByEmail(ctx context.Context, email string) (*domain.Credential, error)
}
