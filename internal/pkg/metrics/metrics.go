// Package metrics defines and registers all custom Prometheus metrics for the
// todo service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init through promauto and exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "todo"

// Result label values shared by the counters below.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthEventsTotal counts authentication use cases.
// Labels:
//   - event: "sign_up", "sign_in", "sign_out", "password_change", "username_change"
//   - result: "success" or "failure"
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of authentication use cases, by event and result.",
	},
	[]string{"event", "result"},
)

// SessionsSweptTotal counts expired sessions removed by the sweeper.
var SessionsSweptTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_swept_total",
		Help:      "Total number of expired sessions deleted.",
	},
)

// RateLimitedTotal counts requests rejected by the auth rate limiter.
// Label:
//   - route: "sign_in" or "sign_up"
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
	[]string{"route"},
)

// AuditEventsDroppedTotal counts audit events discarded because the audit
// queue was full or closed.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of auth audit events dropped before being written.",
	},
)

// ── Todo metrics ──────────────────────────────────────────────────────────────

// TodoOperationsTotal counts todo use cases.
// Labels:
//   - operation: "create", "toggle", "delete", "update", "bulk_toggle"
//   - result: "success" or "failure"
var TodoOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "todo_operations_total",
		Help:      "Total number of todo mutations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Unit of work metrics ──────────────────────────────────────────────────────

// UnitsOfWorkInFlight tracks request scopes that hold a persistence context.
// It returns to zero once every scope has been released.
var UnitsOfWorkInFlight = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "units_of_work_in_flight",
		Help:      "Current number of open request-scoped units of work.",
	},
)

// UnitsOfWorkTotal counts released scopes.
// Label:
//   - outcome: "ok", "error", or "panic"
var UnitsOfWorkTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "units_of_work_total",
		Help:      "Total number of request-scoped units of work, by outcome.",
	},
	[]string{"outcome"},
)

// UnitsOfWorkRolledBackTotal counts scopes released with a transaction still
// open. Read-only scopes land here too since reads also begin a transaction.
var UnitsOfWorkRolledBackTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "units_of_work_rolled_back_total",
		Help:      "Total number of units of work whose open transaction was rolled back on release.",
	},
)

// UnitOfWorkDuration measures how long a scope holds its persistence context.
var UnitOfWorkDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "unit_of_work_duration_seconds",
		Help:      "Duration from scope acquisition to release.",
		Buckets:   prometheus.DefBuckets,
	},
)

// Result maps an error to the result label.
func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
