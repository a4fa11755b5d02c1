// Package metrics holds the desk's Prometheus instruments.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all desk metrics on a private Prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	EngineRequests *prometheus.CounterVec
	EngineDuration *prometheus.HistogramVec
	CacheHits      *prometheus.CounterVec
	CacheMisses    *prometheus.CounterVec
	StaleDropped   *prometheus.CounterVec
	Malformed      *prometheus.CounterVec
	BreakerState   *prometheus.GaugeVec
	EngineUp       prometheus.Gauge
	ActiveSessions prometheus.Gauge
}

// NewRegistry creates and registers every desk metric.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		EngineRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desk_engine_requests_total",
				Help: "Engine calls by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),

		EngineDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "desk_engine_request_duration_seconds",
				Help:    "Engine call latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"endpoint"},
		),

		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desk_cache_hits_total",
				Help: "Response cache hits by table",
			},
			[]string{"table"},
		),

		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desk_cache_misses_total",
				Help: "Response cache misses by table",
			},
			[]string{"table"},
		),

		StaleDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desk_stale_responses_total",
				Help: "Superseded responses discarded by result kind",
			},
			[]string{"kind"},
		),

		Malformed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desk_malformed_responses_total",
				Help: "Responses rejected for violating their shape by endpoint",
			},
			[]string{"endpoint"},
		),

		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "desk_engine_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"breaker"},
		),

		EngineUp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "desk_engine_up",
				Help: "Whether the last engine status probe succeeded",
			},
		),

		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "desk_active_sessions",
				Help: "Sessions currently held in memory",
			},
		),
	}

	r.reg.MustRegister(
		r.EngineRequests,
		r.EngineDuration,
		r.CacheHits,
		r.CacheMisses,
		r.StaleDropped,
		r.Malformed,
		r.BreakerState,
		r.EngineUp,
		r.ActiveSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Gatherer exposes the underlying registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
