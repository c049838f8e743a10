// Package authz provides the client-side authorization predicates: the pure
// access gate shared by conditional rendering and the route guard state
// machine. Nothing here performs I/O and nothing here is a security
// boundary; the server rule engine is.
package authz

import (
	"github.com/parentdesk/portal-auth/internal/core/domain"
	"github.com/parentdesk/portal-auth/internal/core/session"
)

// CanAccess reports whether the session may access a destination requiring
// the given role. An empty requirement only asks for a present identity.
// Always false while the session is still loading.
func CanAccess(snap session.Snapshot, required domain.Role) bool {
	if snap.Phase != session.PhaseReady || snap.Identity == nil {
		return false
	}
	if required == "" {
		return true
	}
	return snap.RolePresent && snap.Role.Satisfies(required)
}
