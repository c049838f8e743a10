package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/parentdesk/portal-auth/internal/core/domain"
	"github.com/parentdesk/portal-auth/internal/core/ports"
)

type stubIdentities struct {
	byEmail   map[string]*domain.Identity
	passwords map[string]string
	ended     int
	endErr    error
	current   *domain.Identity
}

func newStubIdentities() *stubIdentities {
	return &stubIdentities{
		byEmail:   make(map[string]*domain.Identity),
		passwords: make(map[string]string),
	}
}

func (s *stubIdentities) CreateIdentity(_ context.Context, email, password string) (*domain.Identity, error) {
	if _, exists := s.byEmail[email]; exists {
		return nil, domain.ErrEmailInUse
	}
	id := &domain.Identity{ID: "id-" + email, Email: email}
	s.byEmail[email] = id
	s.passwords[email] = password
	s.current = id
	return id, nil
}

func (s *stubIdentities) VerifyIdentity(_ context.Context, email, password string) (*domain.Identity, error) {
	id, ok := s.byEmail[email]
	if !ok || s.passwords[email] != password {
		return nil, domain.ErrInvalidCredentials
	}
	s.current = id
	return id, nil
}

func (s *stubIdentities) SubscribeIdentityChanges(func(*domain.Identity)) ports.UnsubscribeFunc {
	return func() {}
}

func (s *stubIdentities) EndSession(context.Context) error {
	s.current = nil
	s.ended++
	return s.endErr
}

type stubProfileRepo struct {
	profiles map[string]*domain.UserProfile
	putErrs  int // number of PutProfile calls that fail before succeeding
	putCalls int
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{profiles: make(map[string]*domain.UserProfile)}
}

func (r *stubProfileRepo) GetProfile(_ context.Context, id string) (*domain.UserProfile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return p, nil
}

func (r *stubProfileRepo) PutProfile(_ context.Context, id string, profile *domain.UserProfile) error {
	r.putCalls++
	if r.putErrs > 0 {
		r.putErrs--
		return errors.New("write timeout")
	}
	r.profiles[id] = profile
	return nil
}

func (r *stubProfileRepo) DeleteProfile(_ context.Context, id string) error {
	delete(r.profiles, id)
	return nil
}

func newTestAuthenticator(ids *stubIdentities, profiles *stubProfileRepo) *Authenticator {
	return NewAuthenticator(ids, profiles, "secret", time.Hour, zerolog.Nop())
}

func TestAuthenticator_SignUp_WritesProfile(t *testing.T) {
	ids := newStubIdentities()
	profiles := newStubProfileRepo()
	auth := newTestAuthenticator(ids, profiles)

	identity, err := auth.SignUp(context.Background(), "e@x.com", "longenough", domain.RoleEditor)
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}

	profile, err := profiles.GetProfile(context.Background(), identity.ID)
	if err != nil {
		t.Fatalf("profile lookup after sign-up failed: %v", err)
	}
	if profile.Role != domain.RoleEditor {
		t.Fatalf("profile role = %q, want editor", profile.Role)
	}
	if profile.Email != "e@x.com" {
		t.Fatalf("profile email = %q", profile.Email)
	}
	if profile.CreatedAt.IsZero() {
		t.Fatalf("profile missing created_at")
	}
}

func TestAuthenticator_SignUp_DefaultsToViewer(t *testing.T) {
	ids := newStubIdentities()
	profiles := newStubProfileRepo()
	auth := newTestAuthenticator(ids, profiles)

	identity, err := auth.SignUp(context.Background(), "v@x.com", "longenough", "")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if profiles.profiles[identity.ID].Role != domain.RoleViewer {
		t.Fatalf("expected default viewer role")
	}
}

func TestAuthenticator_SignUp_Validation(t *testing.T) {
	auth := newTestAuthenticator(newStubIdentities(), newStubProfileRepo())

	if _, err := auth.SignUp(context.Background(), "not-an-email", "longenough", domain.RoleViewer); !errors.Is(err, domain.ErrInvalidEmail) {
		t.Fatalf("bad email: got %v, want ErrInvalidEmail", err)
	}
	if _, err := auth.SignUp(context.Background(), "e@x.com", "short", domain.RoleViewer); !errors.Is(err, domain.ErrWeakPassword) {
		t.Fatalf("weak password: got %v, want ErrWeakPassword", err)
	}
	if _, err := auth.SignUp(context.Background(), "e@x.com", "longenough", domain.ParseRole("owner")); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("bad role: got %v, want ErrInvalidRole", err)
	}
}

func TestAuthenticator_SignUp_DuplicateEmail(t *testing.T) {
	auth := newTestAuthenticator(newStubIdentities(), newStubProfileRepo())

	if _, err := auth.SignUp(context.Background(), "e@x.com", "longenough", domain.RoleViewer); err != nil {
		t.Fatalf("first sign-up failed: %v", err)
	}
	if _, err := auth.SignUp(context.Background(), "e@x.com", "different1", domain.RoleViewer); !errors.Is(err, domain.ErrEmailInUse) {
		t.Fatalf("duplicate email: got %v, want ErrEmailInUse", err)
	}
}

func TestAuthenticator_SignUp_ProfileWriteRetriesOnce(t *testing.T) {
	ids := newStubIdentities()
	profiles := newStubProfileRepo()
	profiles.putErrs = 1
	auth := newTestAuthenticator(ids, profiles)

	identity, err := auth.SignUp(context.Background(), "e@x.com", "longenough", domain.RoleEditor)
	if err != nil {
		t.Fatalf("SignUp should succeed after one retry: %v", err)
	}
	if profiles.putCalls != 2 {
		t.Fatalf("expected 2 put attempts, got %d", profiles.putCalls)
	}
	if profiles.profiles[identity.ID] == nil {
		t.Fatalf("profile not written")
	}
}

func TestAuthenticator_SignUp_ProfileWriteFailureSurfaced(t *testing.T) {
	ids := newStubIdentities()
	profiles := newStubProfileRepo()
	profiles.putErrs = 2 // initial attempt and retry both fail
	auth := newTestAuthenticator(ids, profiles)

	identity, err := auth.SignUp(context.Background(), "e@x.com", "longenough", domain.RoleEditor)
	if !errors.Is(err, domain.ErrProfileWrite) {
		t.Fatalf("got %v, want ErrProfileWrite", err)
	}
	// The orphaned identity is returned so callers can reconcile.
	if identity == nil {
		t.Fatalf("expected the orphaned identity alongside ErrProfileWrite")
	}
	if _, err := profiles.GetProfile(context.Background(), identity.ID); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected no profile for the orphaned identity")
	}
}

func TestAuthenticator_SignIn_IssuesTokenWithoutRole(t *testing.T) {
	ids := newStubIdentities()
	profiles := newStubProfileRepo()
	auth := newTestAuthenticator(ids, profiles)

	if _, err := auth.SignUp(context.Background(), "e@x.com", "longenough", domain.RoleAdmin); err != nil {
		t.Fatalf("sign-up failed: %v", err)
	}

	token, identity, err := auth.SignIn(context.Background(), "e@x.com", "longenough")
	if err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	if identity == nil || identity.Email != "e@x.com" {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != identity.ID {
		t.Fatalf("token sub = %v, want %s", claims["sub"], identity.ID)
	}
	if _, hasRole := claims["role"]; hasRole {
		t.Fatalf("token must not carry a role claim")
	}
}

func TestAuthenticator_SignIn_WrongPassword(t *testing.T) {
	ids := newStubIdentities()
	auth := newTestAuthenticator(ids, newStubProfileRepo())

	_, _ = auth.SignUp(context.Background(), "e@x.com", "longenough", domain.RoleViewer)
	if _, _, err := auth.SignIn(context.Background(), "e@x.com", "wrongpass1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticator_SignIn_RepairsOrphanedIdentity(t *testing.T) {
	ids := newStubIdentities()
	profiles := newStubProfileRepo()
	profiles.putErrs = 2
	auth := newTestAuthenticator(ids, profiles)

	identity, err := auth.SignUp(context.Background(), "e@x.com", "longenough", domain.RoleEditor)
	if !errors.Is(err, domain.ErrProfileWrite) {
		t.Fatalf("expected orphaned sign-up, got %v", err)
	}

	if _, _, err := auth.SignIn(context.Background(), "e@x.com", "longenough"); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}

	profile, err := profiles.GetProfile(context.Background(), identity.ID)
	if err != nil {
		t.Fatalf("expected repaired profile: %v", err)
	}
	// Repair backfills the default role, not the role the failed sign-up asked for.
	if profile.Role != domain.RoleViewer {
		t.Fatalf("repaired role = %q, want viewer", profile.Role)
	}
}

func TestAuthenticator_SignOut_ClearsLocallyDespiteRemoteFailure(t *testing.T) {
	ids := newStubIdentities()
	ids.endErr = errors.New("connection reset")
	auth := newTestAuthenticator(ids, newStubProfileRepo())

	_, _ = auth.SignUp(context.Background(), "e@x.com", "longenough", domain.RoleViewer)

	err := auth.SignOut(context.Background())
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("got %v, want ErrNetwork", err)
	}
	if ids.current != nil {
		t.Fatalf("local session must be cleared even when the remote call fails")
	}
}
