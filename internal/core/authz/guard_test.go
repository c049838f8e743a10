package authz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/parentdesk/portal-auth/internal/core/domain"
	"github.com/parentdesk/portal-auth/internal/core/ports"
	"github.com/parentdesk/portal-auth/internal/core/session"
)

type stubProvider struct {
	mu   sync.Mutex
	subs map[int]func(*domain.Identity)
	next int
}

func newStubProvider() *stubProvider {
	return &stubProvider{subs: make(map[int]func(*domain.Identity))}
}

func (p *stubProvider) CreateIdentity(context.Context, string, string) (*domain.Identity, error) {
	return nil, errors.New("not implemented")
}

func (p *stubProvider) VerifyIdentity(context.Context, string, string) (*domain.Identity, error) {
	return nil, errors.New("not implemented")
}

func (p *stubProvider) EndSession(context.Context) error { return nil }

func (p *stubProvider) SubscribeIdentityChanges(fn func(*domain.Identity)) ports.UnsubscribeFunc {
	p.mu.Lock()
	id := p.next
	p.next++
	p.subs[id] = fn
	p.mu.Unlock()
	fn(nil)
	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *stubProvider) emit(identity *domain.Identity) {
	p.mu.Lock()
	fns := make([]func(*domain.Identity), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(identity)
	}
}

type stubProfiles struct {
	mu       sync.Mutex
	profiles map[string]*domain.UserProfile
}

func (f *stubProfiles) GetProfile(_ context.Context, id string) (*domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return p, nil
}

func waitDecision(t *testing.T, g *Guard, want Decision) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if g.Decision() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("guard stuck at %s, want %s", g.Decision(), want)
}

func TestEvaluate_StateMachine(t *testing.T) {
	loading := session.Snapshot{Phase: session.PhaseLoading}
	if got := Evaluate(loading, domain.RoleEditor); got != DecisionPending {
		t.Fatalf("loading: got %s, want pending", got)
	}

	anonymous := session.Snapshot{Phase: session.PhaseReady}
	if got := Evaluate(anonymous, domain.RoleEditor); got != DecisionRedirectLogin {
		t.Fatalf("anonymous: got %s, want redirect_login", got)
	}

	viewer := readySnapshot(domain.RoleViewer)
	if got := Evaluate(viewer, domain.RoleEditor); got != DecisionRedirectUnauthorized {
		t.Fatalf("viewer on editor route: got %s, want redirect_unauthorized", got)
	}

	editor := readySnapshot(domain.RoleEditor)
	if got := Evaluate(editor, domain.RoleEditor); got != DecisionAllow {
		t.Fatalf("editor on editor route: got %s, want allow", got)
	}

	noRole := readySnapshot("")
	if got := Evaluate(noRole, domain.RoleViewer); got != DecisionRedirectUnauthorized {
		t.Fatalf("role-less identity on viewer route: got %s, want redirect_unauthorized", got)
	}
}

func TestGuard_SignOutFlipsToLogin(t *testing.T) {
	provider := newStubProvider()
	profiles := &stubProfiles{profiles: map[string]*domain.UserProfile{
		"u1": {Role: domain.RoleAdmin},
	}}

	store := session.NewStore(provider, profiles, zerolog.Nop())
	defer store.Close()

	var mu sync.Mutex
	var transitions []Decision
	guard := NewGuard(store, domain.RoleAdmin, func(d Decision) {
		mu.Lock()
		transitions = append(transitions, d)
		mu.Unlock()
	})
	defer guard.Unmount()

	waitDecision(t, guard, DecisionRedirectLogin)

	provider.emit(&domain.Identity{ID: "u1"})
	waitDecision(t, guard, DecisionAllow)

	// Sign-out resolves synchronously in the session store, so the guard has
	// already flipped by the time emit returns.
	provider.emit(nil)
	if got := guard.Decision(); got != DecisionRedirectLogin {
		t.Fatalf("after sign-out: got %s, want redirect_login", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(transitions) == 0 || transitions[len(transitions)-1] != DecisionRedirectLogin {
		t.Fatalf("unexpected transition history: %v", transitions)
	}
}

func TestGuard_UnmountIdempotent(t *testing.T) {
	provider := newStubProvider()
	profiles := &stubProfiles{profiles: map[string]*domain.UserProfile{}}

	store := session.NewStore(provider, profiles, zerolog.Nop())
	defer store.Close()

	for i := 0; i < 5; i++ {
		guard := NewGuard(store, domain.RoleViewer, nil)
		guard.Unmount()
		guard.Unmount()
	}

	// A fresh guard still works after repeated mount/unmount cycles.
	guard := NewGuard(store, "", nil)
	defer guard.Unmount()
	waitDecision(t, guard, DecisionRedirectLogin)
}
