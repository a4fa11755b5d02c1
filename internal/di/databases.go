package di

import (
	"fmt"

	"github.com/aristath/scenariodesk/internal/clientdata"
	"github.com/aristath/scenariodesk/internal/config"
	"github.com/aristath/scenariodesk/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the response cache database when caching is
// enabled and applies its schema.
func InitializeDatabases(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if !cfg.CacheEnabled {
		log.Info().Msg("Response cache disabled")
		return nil
	}

	cacheDB, err := database.New(database.Config{
		Path:    cfg.CachePath(),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize cache database: %w", err)
	}
	if err := cacheDB.Migrate(clientdata.Schema); err != nil {
		cacheDB.Close()
		return fmt.Errorf("failed to migrate cache database: %w", err)
	}
	container.CacheDB = cacheDB

	log.Info().Str("path", cacheDB.Path()).Msg("Cache database ready")
	return nil
}

// InitializeRepositories creates repositories over the open databases.
func InitializeRepositories(container *Container) {
	if container.CacheDB != nil {
		container.ResponseCache = clientdata.NewRepository(container.CacheDB.Conn())
	}
}
