package domain

import "time"

// AuditEntry records a single auth or authorization decision for the audit
// trail. Actor is the requesting identity id, empty for anonymous requests.
type AuditEntry struct {
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	Collection string    `json:"collection,omitempty"`
	DocumentID string    `json:"document_id,omitempty"`
	Decision   string    `json:"decision"`
	Timestamp  time.Time `json:"timestamp"`
}

// Audit decisions.
const (
	AuditAllowed = "allowed"
	AuditDenied  = "denied"
	AuditFailed  = "failed"
)
