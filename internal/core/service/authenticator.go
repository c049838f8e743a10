package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/parentdesk/portal-auth/internal/core/domain"
	"github.com/parentdesk/portal-auth/internal/core/ports"
)

const minPasswordLen = 8

// Authenticator implements sign-up, sign-in, and sign-out on top of the
// identity provider and the profile store.
type Authenticator struct {
	identities ports.IdentityProvider
	profiles   ports.ProfileRepository
	jwtSecret  string
	tokenTTL   time.Duration
	log        zerolog.Logger
}

func NewAuthenticator(
	identities ports.IdentityProvider,
	profiles ports.ProfileRepository,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *Authenticator {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Authenticator{
		identities: identities,
		profiles:   profiles,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		log:        log,
	}
}

// SignUp creates a new identity and writes its role profile. The two steps
// are not transactional: when the profile write fails after the identity was
// created, the write is retried once and then surfaced as ErrProfileWrite.
// The identity is still returned so callers can see the orphaned account;
// until SignIn repairs it, the account resolves to no role and zero
// privilege.
func (a *Authenticator) SignUp(ctx context.Context, email, password string, role domain.Role) (*domain.Identity, error) {
	if role == "" {
		role = domain.RoleViewer
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return nil, domain.ErrWeakPassword
	}

	identity, err := a.identities.CreateIdentity(ctx, email, password)
	if err != nil {
		return nil, err
	}

	profile := &domain.UserProfile{
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.writeProfile(ctx, identity.ID, profile); err != nil {
		a.log.Error().Err(err).Str("identity_id", identity.ID).Msg("profile write failed after identity creation")
		return identity, fmt.Errorf("%w: %w", domain.ErrProfileWrite, err)
	}

	a.log.Info().Str("identity_id", identity.ID).Str("role", string(role)).Msg("user signed up")
	return identity, nil
}

// writeProfile retries a failed profile write once before giving up.
func (a *Authenticator) writeProfile(ctx context.Context, id string, profile *domain.UserProfile) error {
	err := a.profiles.PutProfile(ctx, id, profile)
	if err == nil {
		return nil
	}
	a.log.Warn().Err(err).Str("identity_id", id).Msg("profile write failed, retrying")
	return a.profiles.PutProfile(ctx, id, profile)
}

// SignIn verifies the credential pair and issues a bearer token. The token
// carries only the identity id and email; role resolution is left to the
// session store and, authoritatively, to the server rule engine. An identity
// whose sign-up left no profile behind is repaired here with a default
// viewer profile.
func (a *Authenticator) SignIn(ctx context.Context, email, password string) (string, *domain.Identity, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	identity, err := a.identities.VerifyIdentity(ctx, email, password)
	if err != nil {
		return "", nil, err
	}

	a.repairProfile(ctx, identity)

	token, err := a.generateToken(identity)
	if err != nil {
		return "", nil, err
	}
	return token, identity, nil
}

// repairProfile backfills a viewer profile for identities orphaned by a
// sign-up partial failure. Best effort: a failed repair is logged and the
// account keeps resolving to no role.
func (a *Authenticator) repairProfile(ctx context.Context, identity *domain.Identity) {
	_, err := a.profiles.GetProfile(ctx, identity.ID)
	if err == nil {
		return
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		a.log.Warn().Err(err).Str("identity_id", identity.ID).Msg("profile lookup failed during sign-in")
		return
	}

	profile := &domain.UserProfile{
		Email:     identity.Email,
		Role:      domain.RoleViewer,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.profiles.PutProfile(ctx, identity.ID, profile); err != nil {
		a.log.Error().Err(err).Str("identity_id", identity.ID).Msg("orphaned profile repair failed")
		return
	}
	a.log.Info().Str("identity_id", identity.ID).Msg("orphaned identity repaired with viewer profile")
}

// SignOut ends the provider session. The provider clears the local identity
// before the remote call, so the error only reports the remote outcome.
func (a *Authenticator) SignOut(ctx context.Context) error {
	if err := a.identities.EndSession(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	return nil
}

func (a *Authenticator) generateToken(identity *domain.Identity) (string, error) {
	claims := jwt.MapClaims{
		"sub":   identity.ID,
		"email": identity.Email,
		"exp":   time.Now().Add(a.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(a.jwtSecret))
}
