// Telegram bot for managing a pool of contracted drivers.
//
// Operators authenticate over chat, register drivers under their LH key,
// look them up by plate or key, walk them through the completed/cancelled
// lifecycle, and pull a colour-coded closing spreadsheet. Commands are
// ingested from the Telegram Bot API by long polling.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/Franca20/telegram-motorista-bot/migrations"

	"github.com/Franca20/telegram-motorista-bot/internal/api"
	"github.com/Franca20/telegram-motorista-bot/internal/audit"
	"github.com/Franca20/telegram-motorista-bot/internal/bot"
	"github.com/Franca20/telegram-motorista-bot/internal/driver"
	"github.com/Franca20/telegram-motorista-bot/internal/infrastructure/config"
	"github.com/Franca20/telegram-motorista-bot/internal/infrastructure/database"
	"github.com/Franca20/telegram-motorista-bot/internal/infrastructure/influxdb"
	"github.com/Franca20/telegram-motorista-bot/internal/infrastructure/logging"
	"github.com/Franca20/telegram-motorista-bot/internal/infrastructure/telegram"
	"github.com/Franca20/telegram-motorista-bot/internal/ownership"
	"github.com/Franca20/telegram-motorista-bot/internal/report"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting motorista bot",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
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

	// Open audit database
	db, err := database.Open(ctx, database.Config{
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

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	auditRepo := audit.NewSQLiteRepository(db.DB)

	// Load operator ownership state
	owners, err := ownership.Open(cfg.Ownership.Path, log)
	if err != nil {
		return fmt.Errorf("opening ownership store: %w", err)
	}
	log.Info("ownership store loaded",
		"path", cfg.Ownership.Path,
		"operators", owners.OperatorCount(),
	)

	// In-memory driver registry; the audit trail is what persists.
	registry := driver.NewRegistry()

	// Telegram transport
	tg := telegram.New(cfg.Telegram)

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// A typed-nil *influxdb.Client must not become a non-nil Telemetry.
	var telemetry bot.Telemetry
	if influxClient != nil {
		telemetry = influxClient
	}

	// Worker pool for searches and report generation
	pool := bot.NewPool(ctx, cfg.Workers, log)
	defer func() {
		log.Info("draining worker pool")
		if closeErr := pool.Close(); closeErr != nil {
			log.Error("error closing worker pool", "error", closeErr)
		}
	}()

	router := bot.NewRouter(bot.RouterConfig{
		Registry:  registry,
		Owners:    owners,
		Sender:    tg,
		Renderer:  report.NewRenderer(cfg.Report.Dir),
		Auth:      cfg.Auth,
		Audit:     auditRepo,
		Telemetry: telemetry,
		Pool:      pool,
		Logger:    log,
	})

	loop := bot.NewLoop(tg, router, cfg.Ingestion, cfg.GetFetchRetryDelay(), telemetry, log)

	// Status API (optional)
	if cfg.API.Enabled {
		statusServer, apiErr := api.New(api.Deps{
			Config:    cfg.API,
			Logger:    log,
			Registry:  registry,
			Owners:    owners,
			Loop:      loop,
			Audit:     auditRepo,
			Version:   version,
			StartedAt: time.Now(),
		})
		if apiErr != nil {
			return fmt.Errorf("creating status API: %w", apiErr)
		}
		if startErr := statusServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting status API: %w", startErr)
		}
		defer func() {
			if closeErr := statusServer.Close(); closeErr != nil {
				log.Error("error closing status API", "error", closeErr)
			}
		}()
	} else {
		log.Info("status API disabled")
	}

	log.Info("initialisation complete, polling for updates")

	// The loop blocks until the context is cancelled.
	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("ingestion loop: %w", err)
	}

	log.Info("shutdown signal received, cleaning up")
	log.Info("motorista bot stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses MOTORISTA_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("MOTORISTA_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
