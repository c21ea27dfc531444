package wire

import (
	"io"
	"os"

	"github.com/google/wire"

	"github.com/sevigo/review-warden/internal/app"
	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/db"
	"github.com/sevigo/review-warden/internal/jobs"
	"github.com/sevigo/review-warden/internal/logger"
	"github.com/sevigo/review-warden/internal/server"
	"github.com/sevigo/review-warden/internal/storage"
)

var AppSet = wire.NewSet(
	app.NewApp,
	server.NewServer,
	logger.NewLogger,
	config.LoadConfig,
	db.NewDatabase,
	storage.NewStore,
	jobs.NewDispatcher,
	jobs.NewEvaluateJob,
	jobs.NewRecordApprovalJob,
	provideLoggerConfig,
	provideLogWriter,
	provideDBConfig,
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

func provideLogWriter() io.Writer {
	return os.Stdout
}

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return &cfg.Database
}
