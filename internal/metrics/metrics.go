// Package metrics defines the server's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Set bundles the server metrics. A nil *Set is a valid no-op receiver so
// tests can wire components without a registry.
type Set struct {
	connectionsActive    prometheus.Gauge
	evictionsTotal       prometheus.Counter
	sessionsCreatedTotal prometheus.Counter
	wsRejectsTotal       *prometheus.CounterVec
}

// New registers the metric set on reg.
func New(reg prometheus.Registerer) *Set {
	f := promauto.With(reg)
	return &Set{
		connectionsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "intech_ws_connections_active",
			Help: "Currently registered realtime connections.",
		}),
		evictionsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "intech_ws_evictions_total",
			Help: "Stale connections evicted on reconnect.",
		}),
		sessionsCreatedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "intech_sessions_created_total",
			Help: "Sessions created via the HTTP API.",
		}),
		wsRejectsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intech_ws_rejects_total",
			Help: "Realtime connections rejected during establishment.",
		}, []string{"reason"}),
	}
}

// ConnOpened records an admitted connection.
func (s *Set) ConnOpened() {
	if s == nil {
		return
	}
	s.connectionsActive.Inc()
}

// ConnClosed records a disconnected connection.
func (s *Set) ConnClosed() {
	if s == nil {
		return
	}
	s.connectionsActive.Dec()
}

// Evicted records a forced eviction of a stale connection.
func (s *Set) Evicted() {
	if s == nil {
		return
	}
	s.evictionsTotal.Inc()
}

// SessionCreated records a successful session creation.
func (s *Set) SessionCreated() {
	if s == nil {
		return
	}
	s.sessionsCreatedTotal.Inc()
}

// Rejected records a connection aborted during establishment.
func (s *Set) Rejected(reason string) {
	if s == nil {
		return
	}
	s.wsRejectsTotal.WithLabelValues(reason).Inc()
}
