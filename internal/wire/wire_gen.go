// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sevigo/review-warden/internal/app"
	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/db"
	"github.com/sevigo/review-warden/internal/jobs"
	"github.com/sevigo/review-warden/internal/logger"
	"github.com/sevigo/review-warden/internal/server"
	"github.com/sevigo/review-warden/internal/storage"
)

// InitializeApp creates and wires all application dependencies.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		return nil, nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	// Setup logger
	loggerConfig := cfg.Logging
	var logWriter io.Writer
	switch cfg.Logging.Output {
	case "stderr":
		logWriter = os.Stderr
	case "file":
		f, _ := os.OpenFile("review-warden.log", os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		logWriter = f
	default:
		logWriter = os.Stdout
	}
	slogLogger := logger.NewLogger(loggerConfig, logWriter)

	// Database
	dbConn, dbCleanup, err := db.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Storage
	store := storage.NewStore(dbConn.DB)

	// Jobs
	recordJob := jobs.NewRecordApprovalJob(cfg, store, slogLogger)
	evaluateJob := jobs.NewEvaluateJob(cfg, store, slogLogger)

	// Dispatcher
	dispatcher := jobs.NewDispatcher(recordJob, evaluateJob, cfg.Evaluator.MaxWorkers, slogLogger)

	// Server
	srv := server.NewServer(ctx, cfg, dispatcher, slogLogger)

	// App
	application := app.NewApp(ctx, cfg, dbConn, store, dispatcher, srv, slogLogger)

	cleanup := func() {
		dbCleanup()
	}

	return application, cleanup, nil
}
