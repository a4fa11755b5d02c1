package di

import (
	"github.com/aristath/scenariodesk/internal/clients/engine"
	"github.com/aristath/scenariodesk/internal/config"
	"github.com/aristath/scenariodesk/internal/metrics"
	"github.com/aristath/scenariodesk/internal/modules/desk"
	"github.com/aristath/scenariodesk/internal/scheduler"
	"github.com/rs/zerolog"
)

// InitializeServices creates the metrics registry, engine client, session
// manager and scheduler.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) {
	container.Metrics = metrics.NewRegistry()

	container.Engine = engine.NewClient(engine.Options{
		BaseURL:  cfg.EngineURL,
		Timeout:  cfg.EngineTimeout,
		RPS:      cfg.EngineRPS,
		Burst:    cfg.EngineBurst,
		CacheTTL: cfg.CacheTTL,
	}, container.ResponseCache, container.Metrics, log)

	container.Sessions = desk.NewManager(
		container.Engine,
		desk.Options{MonteCarloDays: cfg.MonteCarloDays},
		cfg.SessionIdleTTL,
		container.Metrics,
		log,
	)

	container.Scheduler = scheduler.New(log)
}
