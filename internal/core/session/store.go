// Package session holds the client-side session state: who is signed in,
// what role they resolved to, and whether the first identity event has been
// seen yet. It is the single source of truth consumed by the authorization
// gate and the route guard. Everything here is advisory; the rule engine on
// the server re-derives the role on every data access.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/parentdesk/portal-auth/internal/core/domain"
	"github.com/parentdesk/portal-auth/internal/core/ports"
)

// Phase reports whether the store has processed its first identity event.
type Phase int

const (
	// PhaseLoading lasts until the first identity event has fired and, when
	// an identity is present, its role lookup has completed.
	PhaseLoading Phase = iota
	PhaseReady
)

// Snapshot is an immutable view of the session state at one point in time.
type Snapshot struct {
	Identity    *domain.Identity
	Role        domain.Role
	RolePresent bool
	Phase       Phase
}

// HasRole reports whether the session is ready, a role is present, and that
// role satisfies required. It is false for every input while the store is
// still loading.
func (s Snapshot) HasRole(required domain.Role) bool {
	return s.Phase == PhaseReady && s.RolePresent && s.Role.Satisfies(required)
}

// Store tracks the current identity and its resolved role. It subscribes to
// the provider's identity-change stream on construction and resolves the
// role asynchronously on each event. A generation counter discards stale
// lookups so two rapid identity changes always leave the newer role in place.
type Store struct {
	profiles ports.ProfileReader
	log      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	snap         Snapshot
	gen          uint64
	observers    map[int]func(Snapshot)
	nextObserver int
	closed       bool

	unsubscribe ports.UnsubscribeFunc
	closeOnce   sync.Once
}

// NewStore builds a Store and subscribes it to the provider's identity
// changes. Callers own the store and must call Close when done with it.
func NewStore(provider ports.IdentityProvider, profiles ports.ProfileReader, log zerolog.Logger) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		profiles:  profiles,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		snap:      Snapshot{Phase: PhaseLoading},
		observers: make(map[int]func(Snapshot)),
	}
	s.unsubscribe = provider.SubscribeIdentityChanges(s.onIdentityChange)
	return s
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// HasRole reports whether the current session satisfies required. False
// whenever the store is not ready yet.
func (s *Store) HasRole(required domain.Role) bool {
	return s.Snapshot().HasRole(required)
}

// Subscribe registers fn to receive the current snapshot immediately and
// every subsequent snapshot. The returned unsubscribe is idempotent.
func (s *Store) Subscribe(fn func(Snapshot)) ports.UnsubscribeFunc {
	s.mu.Lock()
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	snap := s.snap
	s.mu.Unlock()

	fn(snap)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// Close tears the store down: unsubscribes from the identity stream, cancels
// any in-flight role lookup, and drops all observers. Idempotent; identity
// events arriving after Close never mutate state.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.observers = make(map[int]func(Snapshot))
		s.mu.Unlock()

		s.unsubscribe()
		s.cancel()
	})
}

// onIdentityChange handles one event from the identity stream. A sign-out
// resolves synchronously; a sign-in leaves the snapshot role-less until the
// asynchronous lookup for this generation completes.
func (s *Store) onIdentityChange(identity *domain.Identity) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.gen++
	gen := s.gen
	s.snap.Identity = identity
	s.snap.Role = ""
	s.snap.RolePresent = false

	if identity == nil {
		s.snap.Phase = PhaseReady
		snap, observers := s.snap, s.observersLocked()
		s.mu.Unlock()
		notify(observers, snap)
		return
	}

	s.snap.Phase = PhaseLoading
	snap, observers := s.snap, s.observersLocked()
	s.mu.Unlock()
	notify(observers, snap)

	go s.resolveRole(gen, identity.ID)
}

// resolveRole fetches the profile for one identity generation. Results for a
// superseded generation are discarded: last identity wins. A lookup failure
// or a missing profile degrades to an absent role, never an error.
func (s *Store) resolveRole(gen uint64, identityID string) {
	profile, err := s.profiles.GetProfile(s.ctx, identityID)

	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}

	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("identity_id", identityID).Msg("role lookup failed, session has no role")
	case profile == nil || !profile.Role.Valid():
		s.log.Warn().Str("identity_id", identityID).Msg("profile missing or role unknown, session has no role")
	default:
		s.snap.Role = profile.Role
		s.snap.RolePresent = true
	}
	s.snap.Phase = PhaseReady

	snap, observers := s.snap, s.observersLocked()
	s.mu.Unlock()
	notify(observers, snap)
}

func (s *Store) observersLocked() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(s.observers))
	for _, fn := range s.observers {
		out = append(out, fn)
	}
	return out
}

func notify(observers []func(Snapshot), snap Snapshot) {
	for _, fn := range observers {
		fn(snap)
	}
}
