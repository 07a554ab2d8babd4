// Inkwell - token-authenticated blogging backend
//
// This is the main entry point for the Inkwell API server. It wires
// configuration, logging, the SQLite store, and the HTTP API together,
// then blocks until an interrupt signal asks for a graceful shutdown.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/rdelacroix/inkwell/migrations"

	"github.com/rdelacroix/inkwell/internal/api"
	"github.com/rdelacroix/inkwell/internal/article"
	"github.com/rdelacroix/inkwell/internal/auth"
	"github.com/rdelacroix/inkwell/internal/infrastructure/config"
	"github.com/rdelacroix/inkwell/internal/infrastructure/database"
	"github.com/rdelacroix/inkwell/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Inkwell", "version", version, "commit", commit)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Start the API server
	server, err := api.New(api.Deps{
		Config:   cfg.Server,
		Logger:   log,
		Users:    auth.NewUserRepository(db.DB),
		Tokens:   auth.NewTokenRepository(db.DB),
		Articles: article.NewRepository(db.DB),
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.Server.Host, "port", cfg.Server.Port)

	// Block until shutdown is requested
	<-ctx.Done()
	log.Info("shutdown signal received")

	return nil
}

// getConfigPath returns the configuration file path.
// Uses INKWELL_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("INKWELL_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
