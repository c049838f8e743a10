package domain

import "time"

// Identity is the record issued by the identity provider. It is immutable
// once created; the assigned role lives in the companion UserProfile, never
// here.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// UserProfile is the per-identity document holding the assigned role. It is
// written exactly once at sign-up and mutated only by a super_admin through
// the users collection rules.
type UserProfile struct {
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Credential is the stored secret for an identity. The hash never leaves the
// credential repository.
type Credential struct {
	IdentityID   string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
