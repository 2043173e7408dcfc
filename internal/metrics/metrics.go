// Package metrics provides the Prometheus metrics of the session broker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConferenceSessions tracks the number of registered conference sessions.
	ActiveConferenceSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "broker_active_conference_sessions",
			Help: "Number of currently registered conference sessions",
		},
	)

	// TokensIssued tracks the total number of issued tokens by role.
	TokensIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_tokens_issued_total",
			Help: "Total number of conference tokens issued",
		},
		[]string{"role"},
	)

	// TokensRemoved tracks the total number of removed tokens.
	TokensRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broker_tokens_removed_total",
			Help: "Total number of conference tokens removed",
		},
	)

	// UpstreamFailures tracks failed calls to the conferencing platform.
	UpstreamFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broker_upstream_failures_total",
			Help: "Total number of failed conferencing platform calls",
		},
	)

	// Logins tracks login attempts by outcome.
	Logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_logins_total",
			Help: "Total number of login attempts",
		},
		[]string{"outcome"},
	)

	// PlatformCallDuration tracks the duration of token issuance including remote session creation.
	PlatformCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "broker_platform_call_duration_seconds",
			Help:    "Duration of conferencing platform calls",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RecordTokenIssued increments the token metrics and the session gauge if a session was created.
func RecordTokenIssued(role string, sessionCreated bool) {
	TokensIssued.WithLabelValues(role).Inc()
	if sessionCreated {
		ActiveConferenceSessions.Inc()
	}
}

// RecordTokenRemoved increments the removal metrics and decrements the session gauge if a session was deleted.
func RecordTokenRemoved(sessionDeleted bool) {
	TokensRemoved.Inc()
	if sessionDeleted {
		ActiveConferenceSessions.Dec()
	}
}

// RecordLogin records the outcome of a login attempt ("success", "failure" or "throttled").
func RecordLogin(outcome string) {
	Logins.WithLabelValues(outcome).Inc()
}
