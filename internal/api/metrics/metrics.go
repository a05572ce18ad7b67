// Package metrics defines and registers all custom Prometheus metrics for the
// hotel web front end. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry through promauto
// when the package is imported; the HTTP request metrics themselves come from
// the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hotel_web"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionBootstrapsTotal counts finished bootstrap sequences.
// Label:
//   - outcome: "anonymous", "verified", "invalidated", "stale", "corrupt",
//     "unreadable"
var SessionBootstrapsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_bootstraps_total",
		Help:      "Total number of session bootstrap sequences, by outcome.",
	},
	[]string{"outcome"},
)

// SessionAuthTotal counts login and registration attempts.
// Labels:
//   - operation: "login" or "register"
//   - result: "success" or "failure"
var SessionAuthTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_auth_total",
		Help:      "Total number of login and registration attempts.",
	},
	[]string{"operation", "result"},
)

// SessionsActive tracks the number of in-memory browser sessions.
var SessionsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Current number of browser sessions held in memory.",
	},
)

// ── Gate metrics ──────────────────────────────────────────────────────────────

// GateDecisionsTotal counts route gate outcomes.
// Labels:
//   - gate: "public_only", "authenticated", "admin", "member_only"
//   - outcome: "render", "placeholder", "redirect"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of route authorization decisions.",
	},
	[]string{"gate", "outcome"},
)

// ── Upstream API metrics ──────────────────────────────────────────────────────

// APIRequestsTotal counts calls to the hotel REST API.
// Labels:
//   - method: HTTP method
//   - class: "2xx", "4xx", "5xx", "401" or "network"
var APIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of upstream API requests, by response class.",
	},
	[]string{"method", "class"},
)

// APIRequestDuration measures upstream API latency.
var APIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of upstream API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// APIUnauthorizedTotal counts 401 responses that cleared a session.
var APIUnauthorizedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_unauthorized_total",
		Help:      "Total number of upstream 401 responses that invalidated a session.",
	},
)
