// Package scheduler runs the desk's background maintenance jobs on cron
// schedules.
package scheduler

import (
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of scheduled work.
type Job interface {
	Run() error
	Name() string
}

// Status describes the last run of a registered job.
type Status struct {
	Name     string        `json:"name"`
	Schedule string        `json:"schedule"`
	LastRun  time.Time     `json:"last_run,omitempty"`
	Duration time.Duration `json:"duration_ns"`
	LastErr  string        `json:"last_error,omitempty"`
	Runs     int           `json:"runs"`
}

// Scheduler manages background jobs.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu     sync.Mutex
	status map[string]*Status
}

// New creates a scheduler whose schedules accept a seconds field.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		log:    log.With().Str("component", "scheduler").Logger(),
		status: make(map[string]*Status),
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a job. Schedule examples:
//   - "0 */5 * * * *" every 5 minutes
//   - "@hourly"
//   - "@every 30s"
func (s *Scheduler) AddJob(schedule string, job Job) error {
	if _, err := s.cron.AddFunc(schedule, func() { s.execute(job) }); err != nil {
		return err
	}

	s.mu.Lock()
	s.status[job.Name()] = &Status{Name: job.Name(), Schedule: schedule}
	s.mu.Unlock()

	s.log.Info().Str("schedule", schedule).Str("job", job.Name()).Msg("Job registered")
	return nil
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return s.execute(job)
}

// Statuses returns a snapshot of every registered job, ordered by name.
func (s *Scheduler) Statuses() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Status, 0, len(s.status))
	for _, st := range s.status {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Scheduler) execute(job Job) error {
	start := time.Now()
	s.log.Debug().Str("job", job.Name()).Msg("Running job")

	err := job.Run()
	elapsed := time.Since(start)

	s.mu.Lock()
	if st, ok := s.status[job.Name()]; ok {
		st.LastRun = start
		st.Duration = elapsed
		st.Runs++
		st.LastErr = ""
		if err != nil {
			st.LastErr = err.Error()
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error().Err(err).Str("job", job.Name()).Dur("duration", elapsed).Msg("Job failed")
		return err
	}
	s.log.Debug().Str("job", job.Name()).Dur("duration", elapsed).Msg("Job completed")
	return nil
}

// FuncJob adapts a function to the Job interface.
type FuncJob struct {
	JobName string
	Fn      func() error
}

// Run calls the wrapped function.
func (j FuncJob) Run() error { return j.Fn() }

// Name returns the job name.
func (j FuncJob) Name() string { return j.JobName }
