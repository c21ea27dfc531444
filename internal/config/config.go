package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/review-warden/internal/logger"
)

// Config holds the application's configuration values.
type Config struct {
	Server    ServerConfig
	Logging   logger.Config
	Database  DBConfig
	GitHub    GitHubConfig
	Git       GitConfig
	Evaluator EvaluatorConfig
}

// ServerConfig configures the webhook HTTP server.
type ServerConfig struct {
	Port string
}

// DBConfig configures the Postgres connection used in server mode.
type DBConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// GitHubConfig holds API credentials. Server mode authenticates as a GitHub
// App installation; CLI mode uses a plain token.
type GitHubConfig struct {
	AppID          int64
	WebhookSecret  string
	PrivateKeyPath string
	Token          string
}

// GitConfig configures the local working copies the evaluator diffs against.
type GitConfig struct {
	// WorkDir is the directory under which per-run scratch clones live.
	WorkDir string
}

// EvaluatorConfig tunes the staleness engine.
type EvaluatorConfig struct {
	MaxWorkers int
	// CacheDir is where the CI cache step restores approval artifacts in
	// CLI mode.
	CacheDir string
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates nothing mode-specific. It uses the
// Viper library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("LOG_OUTPUT", "stdout")
	viper.SetDefault("MAX_WORKERS", 5)
	viper.SetDefault("GIT_WORK_DIR", "")
	viper.SetDefault("CACHE_DIR", ".review-warden-cache")
	viper.SetDefault("GITHUB_PRIVATE_KEY_PATH", "keys/review-warden-app.private-key.pem")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "warden")
	viper.SetDefault("DB_NAME", "review_warden")
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME", "5m")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", "error", err)
		}
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Logging: logger.Config{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
			Output: viper.GetString("LOG_OUTPUT"),
		},
		Database: DBConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			Username:        viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Database:        viper.GetString("DB_NAME"),
			ConnMaxLifetime: viper.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: viper.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		},
		GitHub: GitHubConfig{
			AppID:          viper.GetInt64("GITHUB_APP_ID"),
			WebhookSecret:  viper.GetString("GITHUB_WEBHOOK_SECRET"),
			PrivateKeyPath: viper.GetString("GITHUB_PRIVATE_KEY_PATH"),
			Token:          viper.GetString("GITHUB_TOKEN"),
		},
		Git: GitConfig{
			WorkDir: viper.GetString("GIT_WORK_DIR"),
		},
		Evaluator: EvaluatorConfig{
			MaxWorkers: viper.GetInt("MAX_WORKERS"),
			CacheDir:   viper.GetString("CACHE_DIR"),
		},
	}, nil
}

// ValidateServer checks the fields server mode cannot run without.
func (c *Config) ValidateServer() error {
	if c.GitHub.AppID == 0 {
		return fmt.Errorf("GITHUB_APP_ID must be set")
	}
	if c.GitHub.WebhookSecret == "" {
		return fmt.Errorf("GITHUB_WEBHOOK_SECRET must be set")
	}
	if c.GitHub.PrivateKeyPath == "" {
		return fmt.Errorf("GITHUB_PRIVATE_KEY_PATH must be set")
	}
	return nil
}

// ValidateCLI checks the fields CI-action mode cannot run without.
func (c *Config) ValidateCLI() error {
	if c.GitHub.Token == "" {
		return fmt.Errorf("GITHUB_TOKEN must be set")
	}
	return nil
}
