// Package cli provides common CLI initialization utilities shared by the
// warsha subcommands.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"warsha/internal/config"
	applog "warsha/internal/log"
	"warsha/internal/services"
	"warsha/internal/storage"
)

// SetupLogger initializes structured logging and sets the default logger.
func SetupLogger(level slog.Level) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = level
	cfg.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenLedger opens the SQLite store and wraps it in the ledger service.
// The caller owns the returned ledger and must Close it.
func OpenLedger(dbPath string) (*services.Ledger, *storage.SQLiteRepository, error) {
	store, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return services.NewLedger(store), store, nil
}
