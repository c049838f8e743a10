package ports

import (
	"context"

	"github.com/parentdesk/portal-auth/internal/core/domain"
)

// AuditRepository defines the interface for the audit trail persistence.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
}

// AuditRecorder processes a single audit entry. Implemented by the audit
// service, consumed by the dispatcher workers.
type AuditRecorder interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}
