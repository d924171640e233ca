// Package cli provides common initialization shared by the cmd binaries.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"twonest/internal/backend"
	"twonest/internal/config"
	applog "twonest/internal/log"
)

// SetupLogger initializes structured logging with default settings.
// Returns the configured logger and sets it as the default logger.
func SetupLogger() *applog.Logger {
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore builds the configured state store or exits on failure.
func OpenStore(logger *applog.Logger, cfg *config.Config) *backend.Result {
	res, err := backend.Open(cfg, logger.WithComponent(applog.ComponentBackend).Logger)
	if err != nil {
		logger.Error("Failed to initialize state store",
			applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return res
}
