// Package app initializes and orchestrates the main components of the Review
// Warden server: the webhook HTTP server, the job dispatcher, and the
// approval store they share.
package app

import (
	"context"
	"log/slog"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/db"
	"github.com/sevigo/review-warden/internal/server"
	"github.com/sevigo/review-warden/internal/storage"
)

// App holds the main application components.
type App struct {
	ctx        context.Context
	cfg        *config.Config
	server     *server.Server
	logger     *slog.Logger
	dispatcher core.JobDispatcher
	store      storage.Store
	dbConn     *db.DB
}

// NewApp assembles the application from its already-constructed components.
func NewApp(ctx context.Context, cfg *config.Config, dbConn *db.DB, store storage.Store, dispatcher core.JobDispatcher, srv *server.Server, logger *slog.Logger) *App {
	return &App{
		ctx:        ctx,
		cfg:        cfg,
		server:     srv,
		logger:     logger,
		dispatcher: dispatcher,
		store:      store,
		dbConn:     dbConn,
	}
}

// Start runs the HTTP server.
func (a *App) Start() error {
	a.logger.Info("starting Review Warden",
		"server_port", a.cfg.Server.Port,
		"max_workers", a.cfg.Evaluator.MaxWorkers)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	a.logger.Info("shutting down Review Warden services")

	// Stop the HTTP server first to prevent new incoming requests.
	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
		// Continue to stop other components even if the server failed.
	}

	// Stop the job dispatcher, allowing in-flight tasks to finish.
	a.dispatcher.Stop()

	if serverErr != nil {
		a.logger.Error("Review Warden stopped with errors", "error", serverErr)
		return serverErr
	}

	a.logger.Info("Review Warden stopped successfully")
	return nil
}
