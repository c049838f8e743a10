// Package metrics defines and registers all custom Prometheus metrics for
// portal-auth. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portalauth"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// SignupsTotal counts completed sign-ups.
// Labels:
//   - role: the role written to the new profile (e.g. "viewer")
//   - result: "ok", "orphaned" (identity created, profile write failed), or "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of sign-up attempts, by requested role and result.",
	},
	[]string{"role", "result"},
)

// LoginsTotal counts sign-in attempts.
// Label:
//   - result: "ok" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// ── Rule engine metrics ───────────────────────────────────────────────────────

// RuleDecisionsTotal counts rule engine verdicts.
// Labels:
//   - collection: the guarded collection (e.g. "parents")
//   - operation: read/create/update/delete
//   - decision: "allowed" or "denied"
var RuleDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rule_decisions_total",
		Help:      "Total number of security rule evaluations, by collection, operation, and decision.",
	},
	[]string{"collection", "operation", "decision"},
)

// ── Profile cache metrics ─────────────────────────────────────────────────────

// ProfileCacheTotal counts profile cache lookups.
// Label:
//   - result: "hit" or "miss"
var ProfileCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_cache_total",
		Help:      "Total number of profile cache lookups, by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEntriesTotal counts audit entries handed to the dispatcher.
// Label:
//   - action: the audited action (e.g. "login", "document_write")
var AuditEntriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_entries_total",
		Help:      "Total number of audit entries enqueued, by action.",
	},
	[]string{"action"},
)
