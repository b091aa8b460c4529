package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrderLoads tracks order list fetches by outcome (ok, stale, error, auth).
	OrderLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_loads_total",
			Help: "Total number of order list loads",
		},
		[]string{"outcome"},
	)

	// PushEvents tracks push notifications received by kind.
	PushEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_events_total",
			Help: "Total number of push notifications received",
		},
		[]string{"kind"},
	)

	// PersistFailures tracks failed snapshot writes by key.
	PersistFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persist_failures_total",
			Help: "Total number of failed local snapshot writes",
		},
		[]string{"key"},
	)

	// WishlistRemoteFailures tracks best-effort wishlist calls that diverged
	// from the server (logged, not surfaced).
	WishlistRemoteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_remote_failures_total",
			Help: "Total number of failed best-effort wishlist sync calls",
		},
		[]string{"op"},
	)

	// CircuitBreakerState tracks the gateway breaker (0=closed, 1=open, 2=half-open).
	CircuitBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_circuit_breaker_state",
			Help: "Gateway circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
	)
)
