// Package main is the entry point for the scenario desk server. It serves the
// session API the browser talks to and forwards scenario, projection and
// backtest requests to the optimization engine.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/scenariodesk/internal/config"
	"github.com/aristath/scenariodesk/internal/di"
	"github.com/aristath/scenariodesk/internal/server"
	"github.com/aristath/scenariodesk/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Str("engine", cfg.EngineURL).Bool("cache", cfg.CacheEnabled).Msg("Starting scenario desk")

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	log.Info().Msg("Dependencies wired successfully")

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Sessions:  container.Sessions,
		Engine:    container.Engine,
		Scheduler: container.Scheduler,
		Metrics:   container.Metrics,
		CacheDB:   container.CacheDB,
	})
	srv.SetJobs(jobs.All()...)

	container.Scheduler.Start()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Stop accepting requests first so no new sessions appear while the
	// container is closed.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	container.Scheduler.Stop()

	if err := container.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close resources")
	}

	log.Info().Msg("Server stopped")
}
