package ports

import (
	"context"

	"github.com/parentdesk/portal-auth/internal/core/domain"
)

// UnsubscribeFunc detaches an identity-change subscription. Calling it more
// than once is a no-op.
type UnsubscribeFunc func()

// IdentityProvider is the external authenticator boundary: credential
// verification, identity creation, and the identity-change event stream the
// session store consumes.
type IdentityProvider interface {
	// CreateIdentity registers a new email/password identity and signs it in.
	CreateIdentity(ctx context.Context, email, password string) (*domain.Identity, error)

	// VerifyIdentity checks the credential pair and signs the identity in.
	VerifyIdentity(ctx context.Context, email, password string) (*domain.Identity, error)

	// SubscribeIdentityChanges registers fn to be called with the current
	// identity immediately and on every subsequent sign-in or sign-out. A nil
	// identity means signed out.
	SubscribeIdentityChanges(fn func(*domain.Identity)) UnsubscribeFunc

	// EndSession clears the local signed-in identity before attempting the
	// remote sign-out, so a transport failure can never leave a stuck
	// authenticated session. The returned error reports the remote failure.
	EndSession(ctx context.Context) error
}
