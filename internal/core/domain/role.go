package domain

// Role represents the authorization level assigned to a user profile.
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleEditor     Role = "editor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// roleLevels is the single source of truth for the role ordering. The rule
// engine and the client session packages both compare through it, so the
// hierarchy can never drift between the two sides.
var roleLevels = map[Role]int{
	RoleViewer:     1,
	RoleEditor:     2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// Level returns the hierarchy level of the role. Unknown or empty roles map
// to 0, strictly below RoleViewer, so a corrupt profile degrades to no access
// instead of failing.
func (r Role) Level() int {
	return roleLevels[r]
}

// Satisfies reports whether the role is at least as privileged as required.
func (r Role) Satisfies(required Role) bool {
	return r.Level() >= required.Level()
}

// Valid reports whether the role is a member of the enumerated set.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// ParseRole converts a stored role string to a Role. Values outside the
// enumerated set come back as-is and carry level 0.
func ParseRole(s string) Role {
	return Role(s)
}

// Roles returns the enumerated set ordered from least to most privileged.
func Roles() []Role {
	return []Role{RoleViewer, RoleEditor, RoleAdmin, RoleSuperAdmin}
}
