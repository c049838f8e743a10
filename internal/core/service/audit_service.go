package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/parentdesk/portal-auth/internal/core/domain"
	"github.com/parentdesk/portal-auth/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditRecorder that persists entries to the
// audit repository.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditRecorder {
	return &auditService{repo: repo, log: log}
}

// Record persists a single audit entry. Failures are wrapped for the
// dispatcher to log; auditing is never allowed to fail a request.
func (s *auditService) Record(ctx context.Context, entry domain.AuditEntry) error {
	if err := s.repo.Insert(ctx, &entry); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}

	s.log.Debug().
		Str("actor", entry.Actor).
		Str("action", entry.Action).
		Str("decision", entry.Decision).
		Msg("audit entry recorded")

	return nil
}
