package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/github"
	"github.com/sevigo/review-warden/internal/gitutil"
	"github.com/sevigo/review-warden/internal/staleness"
	"github.com/sevigo/review-warden/internal/storage"
)

// EvaluateJob runs the staleness evaluation for a pull request that changed.
type EvaluateJob struct {
	cfg    *config.Config
	store  storage.Store
	logger *slog.Logger
}

// NewEvaluateJob creates a new EvaluateJob with config, approval store, and logger.
func NewEvaluateJob(cfg *config.Config, store storage.Store, logger *slog.Logger) core.Job {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if store == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &EvaluateJob{cfg: cfg, store: store, logger: logger}
}

// Run executes the staleness evaluation for a queued task.
func (j *EvaluateJob) Run(ctx context.Context, task *core.Task) error {
	if err := validateTask(task); err != nil {
		j.logger.Error("task validation failed", "error", err)
		return fmt.Errorf("task validation failed: %w", err)
	}
	snapshot := task.Snapshot

	j.logger.Info("starting staleness evaluation", "repo", snapshot.RepoFullName, "pr", snapshot.Number)

	ghClient, token, err := github.CreateInstallationClient(ctx, j.cfg, snapshot.InstallationID, j.logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	// Webhook payloads often carry rebaseable=null; refresh it, along with the
	// head SHA in case more pushes landed while the task sat in the queue.
	pr, err := ghClient.GetPullRequest(ctx, snapshot.RepoOwner, snapshot.RepoName, snapshot.Number)
	if err != nil {
		return fmt.Errorf("failed to get PR details: %w", err)
	}
	if pr.GetHead().GetSHA() != "" {
		snapshot.HeadSHA = pr.GetHead().GetSHA()
	}
	if pr.GetBase().GetSHA() != "" {
		snapshot.BaseSHA = pr.GetBase().GetSHA()
	}
	snapshot.Rebaseable = pr.GetRebaseable()

	evaluator := staleness.NewEvaluator(
		ghClient,
		gitutil.NewClient(j.logger),
		j.store,
		nil, // server mode runs with default per-repo settings
		token,
		j.cfg.Git.WorkDir,
		j.logger,
	)

	verdict, err := evaluator.Evaluate(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	j.logger.Info("staleness evaluation finished",
		"repo", snapshot.RepoFullName, "pr", snapshot.Number,
		"outcome", verdict.Outcome, "summary", verdict.Summary)
	return nil
}
