// Package identity implements the credential-backed identity provider: it
// creates and verifies email/password identities against the credential
// repository and broadcasts identity changes to subscribers, playing the
// role the external authenticator SDK plays for a browser client.
package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/parentdesk/portal-auth/internal/core/domain"
	"github.com/parentdesk/portal-auth/internal/core/ports"
)

// Provider implements ports.IdentityProvider on top of a credential
// repository. It tracks one signed-in identity per process, mirroring how
// the client SDK it stands in for behaves.
type Provider struct {
	creds ports.CredentialRepository
	log   zerolog.Logger

	mu      sync.Mutex
	current *domain.Identity
	subs    map[int]func(*domain.Identity)
	nextSub int
}

func NewProvider(creds ports.CredentialRepository, log zerolog.Logger) *Provider {
	return &Provider{
		creds: creds,
		log:   log,
		subs:  make(map[int]func(*domain.Identity)),
	}
}

// CreateIdentity registers a new credential pair and signs the identity in.
func (p *Provider) CreateIdentity(ctx context.Context, email, password string) (*domain.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	identity := &domain.Identity{ID: uuid.NewString(), Email: email}
	cred := &domain.Credential{
		IdentityID:   identity.ID,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := p.creds.Create(ctx, cred); err != nil {
		return nil, err
	}

	p.setCurrent(identity)
	p.log.Info().Str("identity_id", identity.ID).Msg("identity created")
	return identity, nil
}

// VerifyIdentity checks the credential pair and signs the identity in. A
// missing email and a wrong password are indistinguishable to the caller.
func (p *Provider) VerifyIdentity(ctx context.Context, email, password string) (*domain.Identity, error) {
	cred, err := p.creds.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	identity := &domain.Identity{ID: cred.IdentityID, Email: cred.Email}
	p.setCurrent(identity)
	return identity, nil
}

// SubscribeIdentityChanges registers fn, fires it immediately with the
// current identity, and returns an idempotent unsubscribe.
func (p *Provider) SubscribeIdentityChanges(fn func(*domain.Identity)) ports.UnsubscribeFunc {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	current := p.current
	p.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

// EndSession signs the current identity out. The local identity is cleared
// and subscribers notified before any remote work, so a transport failure
// can never leave a stuck authenticated session; for this provider the
// remote part is a no-op.
func (p *Provider) EndSession(context.Context) error {
	p.setCurrent(nil)
	return nil
}

func (p *Provider) setCurrent(identity *domain.Identity) {
	p.mu.Lock()
	p.current = identity
	fns := make([]func(*domain.Identity), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(identity)
	}
}
