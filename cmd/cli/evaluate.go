package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/review-warden/internal/cache"
	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/github"
	"github.com/sevigo/review-warden/internal/gitutil"
	"github.com/sevigo/review-warden/internal/logger"
	"github.com/sevigo/review-warden/internal/staleness"
)

var (
	triggerAction string
	prevBaseSHA   string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [pr-url]",
	Short: "Evaluate whether a pull request's approval is stale",
	Long: `Evaluate whether a pull request's approval still covers its current content.

The command reads the approval artifacts recorded by check-approval from the
cache directory, runs the staleness evaluation, and dismisses every approved
review if the approval no longer holds. It is intended to run from a CI
workflow triggered by pull request changes.

Examples:
  warden-cli evaluate https://github.com/owner/repo/pull/123
  warden-cli evaluate --action edited --prev-base-sha 1a2b3c4 https://github.com/owner/repo/pull/123`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	evaluateCmd.Flags().StringVar(&triggerAction, "action", "synchronize", "Webhook action that triggered this run (synchronize, edited)")
	evaluateCmd.Flags().StringVar(&prevBaseSHA, "prev-base-sha", "", "Base SHA before an edited event retargeted the pull request")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateCLI(); err != nil {
		return fmt.Errorf("%w\n\nTip: Set RW_GITHUB_TOKEN or pass --github-token", err)
	}
	log := logger.NewLogger(cfg.Logging, os.Stderr)

	owner, repoName, prNumber, err := gitutil.ParsePullRequestURL(args[0])
	if err != nil {
		return fmt.Errorf("invalid PR URL: %w\n\nExpected format: https://github.com/owner/repo/pull/123", err)
	}

	ghClient := github.NewPATClient(ctx, cfg.GitHub.Token, log)

	pr, err := ghClient.GetPullRequest(ctx, owner, repoName, prNumber)
	if err != nil {
		return fmt.Errorf("failed to fetch PR: %w\n\nTip: Check that the PR exists and your token has access", err)
	}

	snapshot := &core.PullRequestSnapshot{
		RepoOwner:    owner,
		RepoName:     repoName,
		RepoFullName: fmt.Sprintf("%s/%s", owner, repoName),
		RepoCloneURL: pr.GetBase().GetRepo().GetCloneURL(),
		Number:       prNumber,
		BaseRef:      pr.GetBase().GetRef(),
		BaseSHA:      pr.GetBase().GetSHA(),
		HeadSHA:      pr.GetHead().GetSHA(),
		Rebaseable:   pr.GetRebaseable(),
		Action:       core.ParseAction(triggerAction),
	}
	if prevBaseSHA != "" {
		snapshot.BaseChanged = true
		snapshot.PrevBaseSHA = prevBaseSHA
	}

	store, err := cache.NewStore(cfg.Evaluator.CacheDir, log)
	if err != nil {
		return fmt.Errorf("failed to open cache directory: %w", err)
	}

	repoCfg := loadRepoConfig(log)

	evaluator := staleness.NewEvaluator(
		ghClient,
		gitutil.NewClient(log),
		store,
		repoCfg,
		cfg.GitHub.Token,
		cfg.Git.WorkDir,
		log,
	)

	verdict, err := evaluator.Evaluate(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	printVerdict(snapshot, verdict)
	return nil
}

// loadRepoConfig reads .review-warden.yml from the CI checkout. GitHub Actions
// exposes the checkout path as GITHUB_WORKSPACE; locally the working directory
// stands in. A missing file means defaults, a broken one is only a warning.
func loadRepoConfig(log *slog.Logger) *core.RepoConfig {
	dir := os.Getenv("GITHUB_WORKSPACE")
	if dir == "" {
		dir = "."
	}
	repoCfg, err := config.LoadRepoConfig(dir)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		log.Warn("failed to load .review-warden.yml, using defaults", "error", err)
		return core.DefaultRepoConfig()
	}
	return repoCfg
}

func printVerdict(snapshot *core.PullRequestSnapshot, verdict core.Verdict) {
	titleColor.Printf("Review Warden - %s #%d\n", snapshot.RepoFullName, snapshot.Number)

	switch verdict.Outcome {
	case core.OutcomeSkip:
		dimColor.Printf("Skipped: %s\n", verdict.Summary)
	case core.OutcomeFastPathNotStale:
		successColor.Printf("Approval still valid (%s)\n", verdict.Summary)
	case core.OutcomeNotStale:
		successColor.Printf("Approval still valid: %s\n", verdict.Summary)
	case core.OutcomeStale:
		errorColor.Printf("Approval dismissed: %s\n", verdict.Cause)
	}
}
