// Package rules is the server-side authorization boundary. Every document
// read and write passes through the Engine, which re-fetches the requester's
// profile from the store and evaluates a static predicate table. Roles
// asserted by the client are never consulted; the only input the caller
// controls is its authenticated identity id.
package rules

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/parentdesk/portal-auth/internal/core/domain"
	"github.com/parentdesk/portal-auth/internal/core/ports"
)

// Operation is the kind of document access being authorized.
type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Guarded collections.
const (
	CollectionUsers     = "users"
	CollectionParents   = "parents"
	CollectionAnalytics = "analytics"
)

// Request describes one document access to authorize. RequesterID is the
// authenticated identity id, empty for anonymous requests.
type Request struct {
	RequesterID string
	Collection  string
	Operation   Operation
	DocumentID  string
}

// requester is the evaluated view a predicate sees: derived entirely from
// the server-side profile fetch, never from the request payload.
type requester struct {
	authenticated bool
	id            string
	role          domain.Role
}

type ruleKey struct {
	collection string
	operation  Operation
}

type predicate func(req Request, r requester) bool

func authenticated(_ Request, r requester) bool {
	return r.authenticated
}

func atLeast(required domain.Role) predicate {
	return func(_ Request, r requester) bool {
		return r.authenticated && r.role.Satisfies(required)
	}
}

func owner(req Request, r requester) bool {
	return r.authenticated && req.DocumentID != "" && req.DocumentID == r.id
}

// ruleTable mirrors the deployed security rules one-to-one. Anything not
// listed here is denied.
var ruleTable = map[ruleKey]predicate{
	{CollectionUsers, OpRead}:   owner,
	{CollectionUsers, OpCreate}: atLeast(domain.RoleSuperAdmin),
	{CollectionUsers, OpUpdate}: atLeast(domain.RoleSuperAdmin),
	{CollectionUsers, OpDelete}: atLeast(domain.RoleSuperAdmin),

	{CollectionParents, OpRead}:   authenticated,
	{CollectionParents, OpCreate}: atLeast(domain.RoleEditor),
	{CollectionParents, OpUpdate}: atLeast(domain.RoleEditor),
	{CollectionParents, OpDelete}: atLeast(domain.RoleEditor),

	{CollectionAnalytics, OpRead}:   atLeast(domain.RoleAdmin),
	{CollectionAnalytics, OpCreate}: atLeast(domain.RoleSuperAdmin),
	{CollectionAnalytics, OpUpdate}: atLeast(domain.RoleSuperAdmin),
	{CollectionAnalytics, OpDelete}: atLeast(domain.RoleSuperAdmin),
}

// Engine authorizes document operations against the profile store.
type Engine struct {
	profiles ports.ProfileReader
	log      zerolog.Logger
}

func NewEngine(profiles ports.ProfileReader, log zerolog.Logger) *Engine {
	return &Engine{profiles: profiles, log: log}
}

// Authorize returns nil when the request is allowed and domain.ErrRuleDenied
// otherwise. The denial is deliberately uniform: callers learn nothing about
// which rule or role was evaluated. A failed profile fetch degrades the
// requester to no role rather than erroring.
func (e *Engine) Authorize(ctx context.Context, req Request) error {
	pred, ok := ruleTable[ruleKey{req.Collection, req.Operation}]
	if !ok {
		return domain.ErrRuleDenied
	}

	r := requester{id: req.RequesterID}
	if req.RequesterID != "" {
		r.authenticated = true
		profile, err := e.profiles.GetProfile(ctx, req.RequesterID)
		switch {
		case err != nil && !errors.Is(err, domain.ErrProfileNotFound):
			e.log.Warn().Err(err).Str("requester", req.RequesterID).Msg("profile fetch failed during rule evaluation")
		case err == nil && profile != nil:
			r.role = profile.Role
		}
	}

	if !pred(req, r) {
		return domain.ErrRuleDenied
	}
	return nil
}
