// Package metrics defines and registers the custom Prometheus metrics of the
// help-desk API. It is the single source of truth for metric names, labels and
// help strings.
//
// Metrics are registered with the default registry on package init through
// promauto; /metrics serves them alongside the echo request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "helpdesk"

// ── Authentication ────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts POST /token outcomes.
// Label:
//   - result: "success", "invalid_credentials", "inactive" or "throttled"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenValidationsTotal counts bearer token checks made by the auth middleware.
// Label:
//   - result: "valid", "missing", "invalid", "expired", "unknown_subject" or
//     "inactive_subject"
var TokenValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_validations_total",
		Help:      "Total number of bearer token validations, by result.",
	},
	[]string{"result"},
)

// ── Authorization ─────────────────────────────────────────────────────────────

// AuthorizationDenialsTotal counts Forbidden outcomes.
// Label:
//   - rule: "role_gate" or the name of the field-level rule that fired
var AuthorizationDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denials_total",
		Help:      "Total number of requests rejected by the role gate or a policy rule.",
	},
	[]string{"rule"},
)

// ── User management ───────────────────────────────────────────────────────────

// UserMutationsTotal counts successful user mutations.
// Label:
//   - action: "register", "create", "update" or "delete"
var UserMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_mutations_total",
		Help:      "Total number of successful user mutations, by action.",
	},
	[]string{"action"},
)
