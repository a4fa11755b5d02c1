package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/aristath/scenariodesk/internal/database"
	"github.com/aristath/scenariodesk/internal/modules/desk"
	"github.com/aristath/scenariodesk/internal/scheduler"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const engineProbeTimeout = 5 * time.Second

// SystemHandlers handles system-wide monitoring and operations endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	engine      EngineProbe
	scheduler   *scheduler.Scheduler
	sessions    *desk.Manager
	cacheDB     *database.DB

	mu   sync.RWMutex
	jobs map[string]scheduler.Job
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(
	log zerolog.Logger,
	engine EngineProbe,
	sched *scheduler.Scheduler,
	sessions *desk.Manager,
	cacheDB *database.DB,
) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("service", "system").Logger(),
		startupTime: time.Now(),
		engine:      engine,
		scheduler:   sched,
		sessions:    sessions,
		cacheDB:     cacheDB,
		jobs:        make(map[string]scheduler.Job),
	}
}

// SetJobs registers jobs that may be triggered by name.
func (h *SystemHandlers) SetJobs(jobs ...scheduler.Job) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, j := range jobs {
		h.jobs[j.Name()] = j
	}
}

// EngineStatusResponse describes engine reachability.
type EngineStatusResponse struct {
	Reachable bool   `json:"reachable"`
	Status    string `json:"status,omitempty"`
	Model     string `json:"model,omitempty"`
	Breaker   string `json:"breaker"`
	Error     string `json:"error,omitempty"`
}

// SystemStatusResponse is the payload of GET /api/system/status.
type SystemStatusResponse struct {
	Status         string               `json:"status"`
	UptimeSeconds  int64                `json:"uptime_seconds"`
	CPUPercent     float64              `json:"cpu_percent"`
	MemoryPercent  float64              `json:"memory_percent"`
	ActiveSessions int                  `json:"active_sessions"`
	CacheEnabled   bool                 `json:"cache_enabled"`
	CacheSizeMB    float64              `json:"cache_size_mb,omitempty"`
	Engine         EngineStatusResponse `json:"engine"`
	Jobs           []scheduler.Status   `json:"jobs"`
	LastUpdated    string               `json:"last_updated"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()
	engineStatus := h.probeEngine(r.Context())

	status := "healthy"
	if !engineStatus.Reachable {
		status = "degraded"
	}

	response := SystemStatusResponse{
		Status:        status,
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		CacheEnabled:  h.cacheDB != nil,
		Engine:        engineStatus,
		Jobs:          h.jobStatuses(),
		LastUpdated:   time.Now().Format(time.RFC3339),
	}
	if h.sessions != nil {
		response.ActiveSessions = h.sessions.Len()
	}
	if h.cacheDB != nil {
		response.CacheSizeMB = fileSizeMB(h.cacheDB.Path())
	}

	h.writeJSON(w, response)
}

// HandleJobsStatus handles GET /api/system/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]interface{}{
		"jobs": h.jobStatuses(),
	})
}

// HandleTriggerJob runs a registered job immediately
// POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	h.mu.RLock()
	job, ok := h.jobs[name]
	h.mu.RUnlock()
	if !ok {
		h.writeJSONStatus(w, http.StatusNotFound, map[string]string{
			"status":  "error",
			"message": "Unknown job: " + name,
		})
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job run triggered")

	var err error
	if h.scheduler != nil {
		err = h.scheduler.RunNow(job)
	} else {
		err = job.Run()
	}
	if err != nil {
		h.writeJSONStatus(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	h.writeJSON(w, map[string]string{
		"status":  "success",
		"message": "Job " + name + " completed",
	})
}

func (h *SystemHandlers) jobStatuses() []scheduler.Status {
	if h.scheduler == nil {
		return []scheduler.Status{}
	}
	return h.scheduler.Statuses()
}

func (h *SystemHandlers) probeEngine(ctx context.Context) EngineStatusResponse {
	if h.engine == nil {
		return EngineStatusResponse{Breaker: "unknown", Error: "engine not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, engineProbeTimeout)
	defer cancel()

	out := EngineStatusResponse{Breaker: h.engine.BreakerState()}
	st, err := h.engine.Status(ctx)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Reachable = true
	out.Status = st.Status
	out.Model = st.Model
	return out
}

// getSystemStats calculates CPU and RAM usage percentages
// Uses a short interval (100ms) so the status call does not block for long
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func fileSizeMB(path string) float64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return float64(info.Size()) / 1024 / 1024
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *SystemHandlers) writeJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
