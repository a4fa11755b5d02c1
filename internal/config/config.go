// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir        string // Directory for the response cache database, always absolute
	Port           int
	LogLevel       string
	DevMode        bool
	EngineURL      string
	EngineTimeout  time.Duration
	EngineRPS      float64
	EngineBurst    int
	CacheEnabled   bool
	CacheTTL       time.Duration
	SessionIdleTTL time.Duration
	MonteCarloDays int
	AllowedOrigins []string
}

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("DESK_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	cfg := &Config{
		DataDir:        absDataDir,
		Port:           getEnvAsInt("DESK_PORT", 8080),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		EngineURL:      strings.TrimRight(getEnv("ENGINE_URL", "http://127.0.0.1:8000"), "/"),
		EngineTimeout:  getEnvAsDuration("ENGINE_TIMEOUT", 60*time.Second),
		EngineRPS:      getEnvAsFloat("ENGINE_RPS", 5),
		EngineBurst:    getEnvAsInt("ENGINE_BURST", 10),
		CacheEnabled:   getEnvAsBool("CACHE_ENABLED", true),
		CacheTTL:       getEnvAsDuration("CACHE_TTL", 6*time.Hour),
		SessionIdleTTL: getEnvAsDuration("SESSION_IDLE_TTL", 2*time.Hour),
		MonteCarloDays: getEnvAsInt("MONTE_CARLO_DAYS", 252),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.CacheEnabled {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.EngineURL == "" {
		return fmt.Errorf("ENGINE_URL is required")
	}
	if c.EngineTimeout <= 0 {
		return fmt.Errorf("ENGINE_TIMEOUT must be positive")
	}
	if c.MonteCarloDays <= 0 {
		return fmt.Errorf("MONTE_CARLO_DAYS must be positive")
	}
	return nil
}

// CachePath is the response cache database file.
func (c *Config) CachePath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
