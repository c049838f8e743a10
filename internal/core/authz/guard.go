package authz

import (
	"sync"

	"github.com/parentdesk/portal-auth/internal/core/domain"
	"github.com/parentdesk/portal-auth/internal/core/ports"
	"github.com/parentdesk/portal-auth/internal/core/session"
)

// Decision is the route guard's verdict for a protected destination.
type Decision int

const (
	// DecisionPending means the session is still loading; render a placeholder.
	DecisionPending Decision = iota
	// DecisionRedirectLogin means no identity is present.
	DecisionRedirectLogin
	// DecisionRedirectUnauthorized means the identity lacks the required role.
	DecisionRedirectUnauthorized
	// DecisionAllow means the protected content may render.
	DecisionAllow
)

func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionRedirectLogin:
		return "redirect_login"
	case DecisionRedirectUnauthorized:
		return "redirect_unauthorized"
	case DecisionAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// Evaluate maps one session snapshot to a guard decision for a destination
// requiring the given role. Pure; the guard below just re-runs it on every
// session change.
func Evaluate(snap session.Snapshot, required domain.Role) Decision {
	switch {
	case snap.Phase != session.PhaseReady:
		return DecisionPending
	case snap.Identity == nil:
		return DecisionRedirectLogin
	case !CanAccess(snap, required):
		return DecisionRedirectUnauthorized
	default:
		return DecisionAllow
	}
}

// Guard watches the session store and keeps a current decision for one
// protected destination. There is no terminal state: a sign-out while the
// content is showing flips the decision back to DecisionRedirectLogin on the
// same session update.
type Guard struct {
	required domain.Role

	mu       sync.Mutex
	current  Decision
	onChange func(Decision)

	unsubscribe ports.UnsubscribeFunc
}

// NewGuard mounts a guard on the store. The guard starts at DecisionPending;
// onChange, when non-nil, is invoked every time the decision moves. Call
// Unmount when the destination unmounts; mounting and unmounting repeatedly
// never accumulates subscriptions.
func NewGuard(store *session.Store, required domain.Role, onChange func(Decision)) *Guard {
	g := &Guard{required: required, current: DecisionPending, onChange: onChange}
	g.unsubscribe = store.Subscribe(g.onSession)
	return g
}

// Decision returns the guard's current verdict.
func (g *Guard) Decision() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Unmount detaches the guard from the session store. Idempotent.
func (g *Guard) Unmount() {
	g.unsubscribe()
}

func (g *Guard) onSession(snap session.Snapshot) {
	next := Evaluate(snap, g.required)

	g.mu.Lock()
	changed := next != g.current
	g.current = next
	fn := g.onChange
	g.mu.Unlock()

	if changed && fn != nil {
		fn(next)
	}
}
