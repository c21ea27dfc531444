package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/diffutil"
	"github.com/sevigo/review-warden/internal/github"
	"github.com/sevigo/review-warden/internal/storage"
)

// RecordApprovalJob persists approval artifacts when a review is approved: the
// metadata record for the range-diff fast path and the normalized diff blob
// the reviewer saw. Both are read back by a later evaluation run.
type RecordApprovalJob struct {
	cfg    *config.Config
	store  storage.Store
	logger *slog.Logger
}

// NewRecordApprovalJob creates a new RecordApprovalJob with config, approval store, and logger.
func NewRecordApprovalJob(cfg *config.Config, store storage.Store, logger *slog.Logger) core.Job {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if store == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &RecordApprovalJob{cfg: cfg, store: store, logger: logger}
}

// Run captures the approval artifacts for a queued task. Failures here only
// cost a later evaluation its fast path, so the diff blob is best effort, but
// the metadata record itself must be written.
func (j *RecordApprovalJob) Run(ctx context.Context, task *core.Task) error {
	if err := validateTask(task); err != nil {
		j.logger.Error("task validation failed", "error", err)
		return fmt.Errorf("task validation failed: %w", err)
	}
	snapshot, approval := task.Snapshot, task.Approval

	j.logger.Info("recording approval artifacts",
		"repo", snapshot.RepoFullName, "pr", snapshot.Number, "approved_sha", approval.CommitID)

	ghClient, _, err := github.CreateInstallationClient(ctx, j.cfg, snapshot.InstallationID, j.logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	mergeBase, err := ghClient.MergeBase(ctx, snapshot.RepoOwner, snapshot.RepoName, snapshot.BaseRef, approval.CommitID)
	if err != nil {
		return fmt.Errorf("failed to resolve merge base for approved commit: %w", err)
	}

	meta := &core.ApprovalMetadata{
		Version:      core.ApprovalMetadataVersion,
		ApprovedSHA:  approval.CommitID,
		MergeBaseSHA: mergeBase,
		BaseSHA:      snapshot.BaseSHA,
		BaseRef:      snapshot.BaseRef,
		ApprovedAt:   approval.SubmittedAt,
	}

	reviewedDiff := ""
	if raw, err := ghClient.CompareRaw(ctx, snapshot.RepoOwner, snapshot.RepoName, snapshot.BaseRef, approval.CommitID); err == nil {
		reviewedDiff = diffutil.Normalize(raw)
	} else {
		j.logger.Warn("failed to capture reviewed diff, saving metadata only", "error", err)
	}

	if err := j.store.SaveApproval(ctx, snapshot.RepoFullName, snapshot.Number, meta, reviewedDiff); err != nil {
		return fmt.Errorf("failed to save approval artifacts: %w", err)
	}

	j.logger.Info("approval artifacts recorded",
		"repo", snapshot.RepoFullName, "pr", snapshot.Number,
		"approved_sha", approval.CommitID, "merge_base", mergeBase)
	return nil
}
