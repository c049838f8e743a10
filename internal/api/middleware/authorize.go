package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/parentdesk/portal-auth/internal/api/metrics"
	"github.com/parentdesk/portal-auth/internal/core/domain"
	"github.com/parentdesk/portal-auth/internal/core/rules"
)

// Auditor receives authorization outcomes for the audit trail.
type Auditor interface {
	Enqueue(entry domain.AuditEntry)
}

// Authorize enforces the security rules for one guarded collection. It runs
// after Auth, derives the operation from the HTTP method, and asks the rule
// engine — which re-fetches the requester's profile — for a verdict. The
// request payload has no influence on the decision.
func Authorize(engine *rules.Engine, collection string, auditor Auditor) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			op, ok := operationFor(c.Request().Method)
			if !ok {
				return echo.NewHTTPError(http.StatusMethodNotAllowed, "unsupported method")
			}

			requesterID, _ := c.Get("identity_id").(string)
			req := rules.Request{
				RequesterID: requesterID,
				Collection:  collection,
				Operation:   op,
				DocumentID:  c.Param("id"),
			}

			err := engine.Authorize(c.Request().Context(), req)

			decision := domain.AuditAllowed
			if err != nil {
				decision = domain.AuditDenied
			}
			metrics.RuleDecisionsTotal.WithLabelValues(collection, string(op), decision).Inc()
			if auditor != nil {
				auditor.Enqueue(domain.AuditEntry{
					Actor:      requesterID,
					Action:     "document_" + string(op),
					Collection: collection,
					DocumentID: req.DocumentID,
					Decision:   decision,
					Timestamp:  time.Now().UTC(),
				})
			}

			if err != nil {
				return err
			}
			return next(c)
		}
	}
}

func operationFor(method string) (rules.Operation, bool) {
	switch method {
	case http.MethodGet, http.MethodHead:
		return rules.OpRead, true
	case http.MethodPost:
		return rules.OpCreate, true
	case http.MethodPut, http.MethodPatch:
		return rules.OpUpdate, true
	case http.MethodDelete:
		return rules.OpDelete, true
	default:
		return "", false
	}
}
