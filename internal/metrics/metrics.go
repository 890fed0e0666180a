// Package metrics defines the Prometheus instrumentation shared across the
// service. All collectors are registered on the default registry via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Presence tracking metrics
var (
	// SessionsOpenedTotal counts sessions created by arrival events.
	SessionsOpenedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "presence_sessions_opened_total",
			Help: "Total presence sessions opened by arrival events",
		},
	)

	// SessionsClosedTotal counts departure events that set an end time.
	SessionsClosedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "presence_sessions_closed_total",
			Help: "Total presence sessions closed by departure events",
		},
	)

	// ArrivalsIdempotentTotal counts arrivals that found a session already open.
	ArrivalsIdempotentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "presence_arrivals_idempotent_total",
			Help: "Arrival events answered with an already-open session",
		},
	)

	// ArrivalConflictsTotal counts concurrent arrivals that lost the insert
	// race on the one-open-session index and were resolved by re-read.
	ArrivalConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "presence_arrival_conflicts_total",
			Help: "Arrival inserts rejected by the open-session uniqueness constraint",
		},
	)
)

// Weekly statistics metrics
var (
	// StatsRequestsTotal counts weekly statistics computations by outcome.
	StatsRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weekly_stats_requests_total",
			Help: "Weekly statistics requests by cache outcome (hit/miss/bypass)",
		},
		[]string{"outcome"},
	)

	// StatsComputeDuration tracks how long a full aggregation takes.
	StatsComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "weekly_stats_compute_duration_seconds",
			Help:    "Weekly statistics computation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)
)

// Redis metrics
var (
	// RedisConnectionErrors tracks Redis connection errors.
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_connection_errors_total",
			Help: "Total Redis connection errors",
		},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions.
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current circuit breaker state (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)
