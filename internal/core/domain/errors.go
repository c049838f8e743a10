package domain

import "errors"

// Credential errors: user-correctable sign-up input problems.
var ErrInvalidEmail = errors.New("invalid email address")
var ErrWeakPassword = errors.New("password too weak")
var ErrEmailInUse = errors.New("email already in use")
var ErrInvalidRole = errors.New("invalid role")

// ErrInvalidCredentials covers wrong email/password pairs at sign-in.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrNetwork marks transient transport failures toward the identity provider
// or the profile store. Retryable.
var ErrNetwork = errors.New("network failure")

// ErrProfileWrite marks the sign-up partial failure: the identity exists but
// its profile could not be written, leaving a zero-privilege account. It is
// surfaced distinctly so callers can reconcile.
var ErrProfileWrite = errors.New("profile write failed")

// ErrProfileNotFound is returned when no profile document exists for an id.
var ErrProfileNotFound = errors.New("profile not found")

// ErrDocumentNotFound is returned when a document read misses.
var ErrDocumentNotFound = errors.New("document not found")

// ErrRuleDenied is the rule engine's only refusal. It deliberately carries no
// detail about which rule or role was checked.
var ErrRuleDenied = errors.New("permission denied")

// IsCredentialError reports whether err belongs to the user-correctable
// sign-up input class.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrWeakPassword) ||
		errors.Is(err, ErrEmailInUse) ||
		errors.Is(err, ErrInvalidRole)
}
