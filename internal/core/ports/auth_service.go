package ports

import (
	"context"

	"github.com/parentdesk/portal-auth/internal/core/domain"
)

type AuthService interface {
	SignUp(ctx context.Context, email, password string, role domain.Role) (*domain.Identity, error)
	SignIn(ctx context.Context, email, password string) (string, *domain.Identity, error)
	SignOut(ctx context.Context) error
}
