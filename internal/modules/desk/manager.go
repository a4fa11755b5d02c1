package desk

import (
	"errors"
	"sync"
	"time"

	"github.com/aristath/scenariodesk/internal/events"
	"github.com/aristath/scenariodesk/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrSessionNotFound is returned for unknown or evicted session IDs.
var ErrSessionNotFound = errors.New("session not found")

type session struct {
	desk     *Desk
	lastSeen time.Time
}

// Manager holds in-memory sessions keyed by UUID. Sessions are never
// persisted and are evicted once idle longer than the configured TTL.
type Manager struct {
	engine  Engine
	opts    Options
	idleTTL time.Duration
	metrics *metrics.Registry
	log     zerolog.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

// NewManager creates a session manager. m may be nil.
func NewManager(engine Engine, opts Options, idleTTL time.Duration, m *metrics.Registry, log zerolog.Logger) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		engine:   engine,
		opts:     opts,
		idleTTL:  idleTTL,
		metrics:  m,
		log:      log.With().Str("component", "sessions").Logger(),
		sessions: make(map[uuid.UUID]*session),
	}
}

// Create starts a new session.
func (m *Manager) Create() (uuid.UUID, *Desk) {
	id := uuid.New()
	sessionLog := m.log.With().Str("session", id.String()).Logger()
	d := New(m.engine, events.NewBus(sessionLog), m.metrics, m.opts, sessionLog)

	m.mu.Lock()
	m.sessions[id] = &session{desk: d, lastSeen: m.opts.Now()}
	n := len(m.sessions)
	m.mu.Unlock()

	m.reportActive(n)
	m.log.Info().Str("session", id.String()).Int("active", n).Msg("Session created")
	return id, d
}

// Get returns the session's desk and marks it as recently used.
func (m *Manager) Get(id uuid.UUID) (*Desk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = m.opts.Now()
	return s.desk, nil
}

// Delete closes and removes a session.
func (m *Manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	closeSession(s)
	m.reportActive(n)
	m.log.Info().Str("session", id.String()).Msg("Session deleted")
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// EvictIdle removes sessions unused for longer than the idle TTL and
// returns how many were removed.
func (m *Manager) EvictIdle() int {
	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := m.opts.Now().Add(-m.idleTTL)

	var evicted []*session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			evicted = append(evicted, s)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range evicted {
		closeSession(s)
	}
	if len(evicted) > 0 {
		m.reportActive(n)
		m.log.Info().Int("evicted", len(evicted)).Int("active", n).Msg("Evicted idle sessions")
	}
	return len(evicted)
}

// CloseAll removes every session, used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[uuid.UUID]*session)
	m.mu.Unlock()

	for _, s := range all {
		closeSession(s)
	}
	m.reportActive(0)
}

func closeSession(s *session) {
	s.desk.emit(events.SessionClosed, nil)
	s.desk.Events().Close()
}

func (m *Manager) reportActive(n int) {
	if m.metrics != nil {
		m.metrics.ActiveSessions.Set(float64(n))
	}
}

// EvictionJob runs idle-session eviction on a schedule.
type EvictionJob struct {
	manager *Manager
}

// NewEvictionJob creates the eviction job for m.
func NewEvictionJob(m *Manager) *EvictionJob {
	return &EvictionJob{manager: m}
}

// Run evicts idle sessions.
func (j *EvictionJob) Run() error {
	j.manager.EvictIdle()
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *EvictionJob) Name() string {
	return "session_eviction"
}
