// Package api provides the HTTP status surface for the bot.
//
// It exposes read-only operational endpoints: liveness, registry and
// ingestion status, and the recent audit trail. The bot itself is driven
// entirely through Telegram; this server exists for monitoring.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Franca20/telegram-motorista-bot/internal/audit"
	"github.com/Franca20/telegram-motorista-bot/internal/bot"
	"github.com/Franca20/telegram-motorista-bot/internal/driver"
	"github.com/Franca20/telegram-motorista-bot/internal/infrastructure/config"
	"github.com/Franca20/telegram-motorista-bot/internal/infrastructure/logging"
	"github.com/Franca20/telegram-motorista-bot/internal/ownership"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the status server.
type Deps struct {
	Config    config.APIConfig
	Logger    *logging.Logger
	Registry  *driver.Registry
	Owners    *ownership.Store
	Loop      *bot.Loop
	Audit     audit.Repository // optional; /audit returns 404 when absent
	Version   string
	StartedAt time.Time
}

// Server is the read-only HTTP status server.
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	registry  *driver.Registry
	owners    *ownership.Store
	loop      *bot.Loop
	audit     audit.Repository
	version   string
	startedAt time.Time
	server    *http.Server
}

// New creates a status server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("driver registry is required")
	}

	startedAt := deps.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		registry:  deps.Registry,
		owners:    deps.Owners,
		loop:      deps.Loop,
		audit:     deps.Audit,
		version:   deps.Version,
		startedAt: startedAt,
	}, nil
}

// Start launches the HTTP listener in a background goroutine.
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("status API starting", "address", s.server.Addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the server, waiting up to 10 seconds for
// in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("status API shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down status API: %w", err)
	}
	return nil
}
