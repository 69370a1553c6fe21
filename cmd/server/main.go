package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/shiftclock/internal/api"
	"github.com/mcoot/shiftclock/internal/config"
	"github.com/mcoot/shiftclock/internal/factory"
	"github.com/mcoot/shiftclock/internal/web"
)

// How often expired sessions are purged from the in-memory store
const sessionCleanupInterval = 10 * time.Minute

func main() {
	// Bootstrap logger until the configured level is known
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		logger.Error("invalid log level", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(factory.FromConfig(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	// Restore who is clocked in from the ledger
	open, err := app.ShiftController.Rebuild(context.Background())
	if err != nil {
		logger.Error("failed to rebuild status from ledger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("status rebuilt from ledger",
		slog.String("roster", app.Roster.Path()),
		slog.String("ledger", app.Ledger.Path()),
		slog.Int("clocked_in", open))

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		ShiftController: app.ShiftController,
		SessionService:  app.SessionService,
	})

	// Create web router
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:          logger,
		ShiftController: app.ShiftController,
		SessionService:  app.SessionService,
		Hub:             app.Hub,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	// Create server
	server := api.NewServer(mux, api.ServerConfigFromPort(cfg.Port), logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go cleanSessions(ctx, app, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			stop()
			return
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		// Ends open SSE streams so Shutdown does not wait on them
		app.Hub.Close()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	logger.Info("server stopped")
}

func cleanSessions(ctx context.Context, app *factory.App, logger *slog.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := app.SessionService.CleanExpired(); removed > 0 {
				logger.Debug("purged expired sessions", slog.Int("count", removed))
			}
		case <-ctx.Done():
			return
		}
	}
}
