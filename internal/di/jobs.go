package di

import (
	"fmt"

	"github.com/aristath/scenariodesk/internal/clientdata"
	"github.com/aristath/scenariodesk/internal/modules/desk"
	"github.com/rs/zerolog"
)

// Job schedules
const (
	cacheCleanupSchedule    = "0 0 * * * *"   // hourly
	sessionEvictionSchedule = "0 */5 * * * *" // every 5 minutes
)

// RegisterJobs creates the background jobs and schedules them.
func RegisterJobs(container *Container, log zerolog.Logger) (*JobInstances, error) {
	jobs := &JobInstances{}

	if container.ResponseCache != nil {
		jobs.CacheCleanup = clientdata.NewCleanupJob(container.ResponseCache, log)
		if err := container.Scheduler.AddJob(cacheCleanupSchedule, jobs.CacheCleanup); err != nil {
			return nil, fmt.Errorf("failed to schedule %s: %w", jobs.CacheCleanup.Name(), err)
		}
	}

	jobs.SessionEviction = desk.NewEvictionJob(container.Sessions)
	if err := container.Scheduler.AddJob(sessionEvictionSchedule, jobs.SessionEviction); err != nil {
		return nil, fmt.Errorf("failed to schedule %s: %w", jobs.SessionEviction.Name(), err)
	}

	return jobs, nil
}
