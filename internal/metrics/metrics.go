package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dispatch metrics

	// ListenerInvocations tracks listener calls per capability
	ListenerInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "raycon",
			Subsystem: "dispatch",
			Name:      "listener_invocations_total",
			Help:      "Total listener invocations",
		},
		[]string{"capability", "result"}, // result: ok, panic, skipped
	)

	// ListenerDuration tracks how long a single listener call took
	ListenerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "raycon",
			Subsystem: "dispatch",
			Name:      "listener_duration_seconds",
			Help:      "Time spent inside a listener",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"capability"},
	)

	// RegisteredListeners tracks registrations per capability
	RegisteredListeners = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "raycon",
			Subsystem: "dispatch",
			Name:      "registered_listeners",
			Help:      "Number of registered listeners",
		},
		[]string{"capability"},
	)

	// Gateway metrics

	// GatewayEvents tracks decoded gateway events
	GatewayEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "raycon",
			Subsystem: "gateway",
			Name:      "events_total",
			Help:      "Total gateway events handled by the session",
		},
		[]string{"event_type", "result"}, // result: dispatched, duplicate, unknown_entity, invalid
	)

	// Cache metrics

	// CachedEntities tracks live entities in the session cache
	CachedEntities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "raycon",
			Subsystem: "cache",
			Name:      "entities",
			Help:      "Number of cached entities",
		},
		[]string{"kind"}, // kind: role, channel
	)
)

// Result labels shared by callers.
const (
	ResultOK            = "ok"
	ResultPanic         = "panic"
	ResultSkipped       = "skipped"
	ResultDispatched    = "dispatched"
	ResultDuplicate     = "duplicate"
	ResultUnknownEntity = "unknown_entity"
	ResultInvalid       = "invalid"
	ResultInterrupted   = "interrupted"
)
