package server

import (
	"context"
	"sync"
	"time"

	"github.com/aristath/scenariodesk/internal/metrics"
	"github.com/rs/zerolog"
)

// EngineMonitor periodically probes the engine and logs reachability
// changes. The engine_up gauge follows the last probe.
type EngineMonitor struct {
	engine  EngineProbe
	metrics *metrics.Registry
	log     zerolog.Logger

	mu        sync.Mutex
	checked   bool
	reachable bool
	stop      chan struct{}
	done      chan struct{}
}

// NewEngineMonitor creates a new engine monitor
func NewEngineMonitor(engine EngineProbe, m *metrics.Registry, log zerolog.Logger) *EngineMonitor {
	return &EngineMonitor{
		engine:  engine,
		metrics: m,
		log:     log.With().Str("component", "engine_monitor").Logger(),
	}
}

// Start begins periodic monitoring. Calling Start twice is a no-op.
func (m *EngineMonitor) Start(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil || m.engine == nil {
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.monitor(interval, m.stop, m.done)
}

// Stop ends monitoring and waits for the loop to exit.
func (m *EngineMonitor) Stop() {
	m.mu.Lock()
	stop, done := m.stop, m.done
	m.stop, m.done = nil, nil
	m.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (m *EngineMonitor) monitor(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Do initial check
	m.Check(context.Background())

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.Check(context.Background())
		}
	}
}

// Check probes the engine once and reports whether it answered.
func (m *EngineMonitor) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, engineProbeTimeout)
	defer cancel()

	_, err := m.engine.Status(ctx)
	reachable := err == nil

	m.mu.Lock()
	changed := !m.checked || reachable != m.reachable
	m.checked = true
	m.reachable = reachable
	m.mu.Unlock()

	if m.metrics != nil {
		if reachable {
			m.metrics.EngineUp.Set(1)
		} else {
			m.metrics.EngineUp.Set(0)
		}
	}

	if changed {
		if reachable {
			m.log.Info().Str("breaker", m.engine.BreakerState()).Msg("Engine reachable")
		} else {
			m.log.Warn().Err(err).Str("breaker", m.engine.BreakerState()).Msg("Engine unreachable")
		}
	}
	return reachable
}

// Reachable reports the last probe result.
func (m *EngineMonitor) Reachable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reachable
}
