package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/review-warden/internal/cache"
	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/diffutil"
	"github.com/sevigo/review-warden/internal/github"
	"github.com/sevigo/review-warden/internal/gitutil"
	"github.com/sevigo/review-warden/internal/logger"
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
)

var checkCmd = &cobra.Command{
	Use:   "check-approval [pr-url]",
	Short: "Record approval artifacts for a pull request's latest approval",
	Long: `Record approval artifacts for a pull request's latest approval.

The command looks up the most recent APPROVED review, captures the metadata
and diff a later evaluation run needs, and stores both in the cache directory.
It prints the approved head SHA on success and nothing when no approval exists,
so a CI cache step can key on the output.

Examples:
  warden-cli check-approval https://github.com/owner/repo/pull/123
  warden-cli check-approval --cache-dir .approval-cache https://github.com/owner/repo/pull/123`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckApproval,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(checkCmd)
}

func runCheckApproval(_ *cobra.Command, args []string) error {
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

	reviews, err := ghClient.ListReviews(ctx, owner, repoName, prNumber)
	if err != nil {
		return fmt.Errorf("failed to list reviews: %w", err)
	}
	approval := core.LatestApproval(reviews)
	if approval == nil {
		dimColor.Fprintln(os.Stderr, "No approved reviews found, nothing to record.")
		return nil
	}

	baseRef := pr.GetBase().GetRef()
	mergeBase, err := ghClient.MergeBase(ctx, owner, repoName, baseRef, approval.CommitID)
	if err != nil {
		return fmt.Errorf("failed to resolve merge base for approved commit: %w", err)
	}

	store, err := cache.NewStore(cfg.Evaluator.CacheDir, log)
	if err != nil {
		return fmt.Errorf("failed to open cache directory: %w", err)
	}

	meta := &core.ApprovalMetadata{
		Version:      core.ApprovalMetadataVersion,
		ApprovedSHA:  approval.CommitID,
		MergeBaseSHA: mergeBase,
		BaseSHA:      pr.GetBase().GetSHA(),
		BaseRef:      baseRef,
		ApprovedAt:   approval.SubmittedAt,
	}
	if err := store.SaveMetadata(ctx, meta); err != nil {
		return fmt.Errorf("failed to save approval metadata: %w", err)
	}

	if raw, err := ghClient.CompareRaw(ctx, owner, repoName, baseRef, approval.CommitID); err == nil {
		if err := store.SaveReviewedDiff(ctx, approval.CommitID, diffutil.Normalize(raw)); err != nil {
			return fmt.Errorf("failed to save reviewed diff: %w", err)
		}
	} else {
		warnColor.Fprintf(os.Stderr, "Could not capture reviewed diff, saved metadata only: %v\n", err)
	}

	// Stdout carries only the approved SHA so scripts can consume it.
	fmt.Println(approval.CommitID)
	return nil
}
