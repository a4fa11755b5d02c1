// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/scenariodesk/internal/clientdata"
	"github.com/aristath/scenariodesk/internal/clients/engine"
	"github.com/aristath/scenariodesk/internal/database"
	"github.com/aristath/scenariodesk/internal/metrics"
	"github.com/aristath/scenariodesk/internal/modules/desk"
	"github.com/aristath/scenariodesk/internal/scheduler"
)

// Container holds every long-lived dependency.
type Container struct {
	// Databases. CacheDB is nil when the response cache is disabled.
	CacheDB *database.DB

	// Repositories
	ResponseCache *clientdata.Repository

	// Services
	Metrics   *metrics.Registry
	Engine    *engine.Client
	Sessions  *desk.Manager
	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered background jobs.
type JobInstances struct {
	CacheCleanup    scheduler.Job // nil when the cache is disabled
	SessionEviction scheduler.Job
}

// All returns the non-nil jobs.
func (j *JobInstances) All() []scheduler.Job {
	var out []scheduler.Job
	if j.CacheCleanup != nil {
		out = append(out, j.CacheCleanup)
	}
	if j.SessionEviction != nil {
		out = append(out, j.SessionEviction)
	}
	return out
}

// Close releases the container's resources. Safe on a partially built
// container.
func (c *Container) Close() error {
	if c.Sessions != nil {
		c.Sessions.CloseAll()
	}
	if c.CacheDB != nil {
		return c.CacheDB.Close()
	}
	return nil
}
