// Package metrics defines the Prometheus collectors shared across components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Remote store metrics
var (
	// RemoteOpsTotal tracks remote store operations by operation and status
	RemoteOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_operations_total",
			Help: "Total remote store operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// RemoteOpDuration tracks remote store operation latency in seconds
	RemoteOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remote_operation_duration_seconds",
			Help:    "Remote store operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"operation"},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current circuit breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)

// Catalog metrics
var (
	// CatalogRefreshesTotal tracks catalog refreshes by outcome (fresh/stale)
	CatalogRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_refreshes_total",
			Help: "Catalog refresh attempts by outcome",
		},
		[]string{"outcome"},
	)

	// CatalogSnapshotApps tracks the size of the current catalog snapshot
	CatalogSnapshotApps = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_snapshot_apps",
			Help: "Number of apps in the current catalog snapshot",
		},
	)
)

// Usage recorder metrics
var (
	// UsageLogsOpenedTotal tracks opened usage logs by persistence mode
	UsageLogsOpenedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usage_logs_opened_total",
			Help: "Usage logs opened by mode (persisted/local)",
		},
		[]string{"mode"},
	)

	// UsageLogsClosedTotal tracks closed usage logs
	UsageLogsClosedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "usage_logs_closed_total",
			Help: "Usage logs closed",
		},
	)

	// UsageWritesDroppedTotal tracks fire-and-forget remote writes that failed
	UsageWritesDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "usage_writes_dropped_total",
			Help: "Usage log remote writes that failed and were dropped",
		},
	)
)

// Focus timer metrics
var (
	// FocusSessionsStartedTotal tracks started focus sessions by type
	FocusSessionsStartedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focus_sessions_started_total",
			Help: "Focus sessions started by session type",
		},
		[]string{"type"},
	)

	// FocusSessionsCompletedTotal tracks completed focus sessions by type
	FocusSessionsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focus_sessions_completed_total",
			Help: "Focus sessions completed by session type",
		},
		[]string{"type"},
	)

	// FocusSessionsCancelledTotal tracks cancelled focus sessions by type
	FocusSessionsCancelledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focus_sessions_cancelled_total",
			Help: "Focus sessions cancelled by session type",
		},
		[]string{"type"},
	)
)

// Streak rollup metrics
var (
	// StreakRollupsTotal tracks streak rollup runs by status
	StreakRollupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streak_rollups_total",
			Help: "Streak rollup runs by status",
		},
		[]string{"status"},
	)
)
