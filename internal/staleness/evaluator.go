// Package staleness implements the stale-review evaluation engine: deciding
// whether an earlier approval still covers the current content of a pull
// request, and dismissing it when it does not.
//
// The engine is deliberately pessimistic. Any inability to prove that the
// reviewed content matches the current content results in dismissal; false
// positives (an unnecessary re-review) are acceptable, a stale approval
// slipping through is not.
package staleness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/diffutil"
	"github.com/sevigo/review-warden/internal/github"
	"github.com/sevigo/review-warden/internal/gitutil"
	"github.com/sevigo/review-warden/internal/rangediff"
)

// ArtifactSource provides the approval artifacts persisted when the review
// was approved: the metadata record and the reviewed-diff blob. A miss is
// (nil, nil) / ("", false), never an error the evaluator has to branch on.
//
//go:generate mockgen -destination=../../mocks/mock_artifact_source.go -package=mocks . ArtifactSource
type ArtifactSource interface {
	Metadata(ctx context.Context, approvedSHA string) (*core.ApprovalMetadata, error)
	ReviewedDiff(ctx context.Context, approvedSHA string) (string, bool)
}

// Evaluator orchestrates one staleness evaluation run.
type Evaluator struct {
	gh        github.Client
	git       gitutil.Git
	artifacts ArtifactSource
	repoCfg   *core.RepoConfig
	logger    *slog.Logger

	// token authenticates clone/fetch against the hosting platform.
	token string
	// workDir, when set, roots the per-run scratch working copies.
	workDir string
}

// NewEvaluator builds an evaluator from its capability collaborators.
// repoCfg may be nil; defaults apply.
func NewEvaluator(gh github.Client, git gitutil.Git, artifacts ArtifactSource, repoCfg *core.RepoConfig, token, workDir string, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	if repoCfg == nil {
		repoCfg = core.DefaultRepoConfig()
	}
	return &Evaluator{
		gh:        gh,
		git:       git,
		artifacts: artifacts,
		repoCfg:   repoCfg,
		logger:    logger,
		token:     token,
		workDir:   workDir,
	}
}

// Evaluate runs the full state machine for one triggering event and returns
// the verdict. On a stale verdict every approved review has already been
// dismissed. The returned error is reserved for fatal conditions (missing
// context, unreachable review API); every recoverable failure degrades into
// the pessimistic path instead.
func (e *Evaluator) Evaluate(ctx context.Context, snapshot *core.PullRequestSnapshot) (core.Verdict, error) {
	if snapshot == nil || snapshot.RepoOwner == "" || snapshot.RepoName == "" {
		return core.Verdict{}, fmt.Errorf("snapshot is missing repository context")
	}

	// Step 1: trigger filter. Anything that cannot invalidate an approval is
	// a clean no-op so the engine can back a required status check.
	if !snapshot.ShouldEvaluate() {
		e.logger.Info("event cannot invalidate an approval, skipping",
			"repo", snapshot.RepoFullName, "pr", snapshot.Number, "action", snapshot.Action)
		return core.Verdict{Outcome: core.OutcomeSkip, Summary: fmt.Sprintf("action %q is not evaluated", snapshot.Action)}, nil
	}

	reviews, err := e.gh.ListReviews(ctx, snapshot.RepoOwner, snapshot.RepoName, snapshot.Number)
	if err != nil {
		return core.Verdict{}, fmt.Errorf("failed to list reviews: %w", err)
	}
	approval := core.LatestApproval(reviews)
	if approval == nil {
		e.logger.Info("no approved reviews, nothing to evaluate",
			"repo", snapshot.RepoFullName, "pr", snapshot.Number)
		return core.Verdict{Outcome: core.OutcomeSkip, Summary: "no approved reviews"}, nil
	}

	run := &run{evaluator: e, snapshot: snapshot}
	defer run.cleanup()

	// Step 2: range-diff fast path. Proves "clean rebase, nothing edited"
	// without reconstructing any content diff.
	if e.repoCfg.FastPath {
		if verdict, ok := e.fastPath(ctx, run, approval); ok {
			return verdict, nil
		}
	}

	// Steps 3-6: full diff comparison.
	reviewedDiff, reviewedKnown := e.reviewedDiff(ctx, snapshot, approval)
	return e.compareAndConclude(ctx, run, reviews, reviewedDiff, reviewedKnown)
}

// fastPath loads the persisted approval metadata and compares the approved
// commit range against the current one. A clean result (every commit
// identical) terminates the evaluation; anything else, including any failure
// along the way, returns ok=false and falls through to diff comparison. A
// positive range-diff is evidence, not proof: content comparison still
// decides the final message.
func (e *Evaluator) fastPath(ctx context.Context, run *run, approval *core.ReviewApproval) (core.Verdict, bool) {
	snapshot := run.snapshot

	meta, err := e.artifacts.Metadata(ctx, approval.CommitID)
	if err != nil || meta == nil {
		e.logger.Info("no usable approval metadata, skipping fast path",
			"repo", snapshot.RepoFullName, "pr", snapshot.Number, "error", err)
		return core.Verdict{}, false
	}

	currentMergeBase, err := e.gh.MergeBase(ctx, snapshot.RepoOwner, snapshot.RepoName, snapshot.BaseRef, snapshot.HeadSHA)
	if err != nil {
		e.logger.Warn("failed to resolve current merge base, skipping fast path", "error", err)
		return core.Verdict{}, false
	}

	path, err := run.workingCopy(ctx)
	if err != nil {
		e.logger.Warn("working copy unavailable, skipping fast path", "error", err)
		return core.Verdict{}, false
	}
	if err := e.git.Fetch(ctx, path, meta.MergeBaseSHA, meta.ApprovedSHA, currentMergeBase, snapshot.HeadSHA); err != nil {
		e.logger.Warn("failed to fetch revisions for range comparison, skipping fast path", "error", err)
		return core.Verdict{}, false
	}

	approvedRange := meta.MergeBaseSHA + ".." + meta.ApprovedSHA
	currentRange := currentMergeBase + ".." + snapshot.HeadSHA
	raw, err := e.git.RangeDiff(ctx, path, approvedRange, currentRange)
	if err != nil {
		e.logger.Warn("range-diff failed, falling back to diff comparison", "error", err)
		return core.Verdict{}, false
	}

	classification := rangediff.Parse(raw)
	if classification.Stale() {
		e.logger.Info("range comparison shows changes, confirming with diff comparison",
			"repo", snapshot.RepoFullName, "pr", snapshot.Number, "summary", classification.Summary())
		return core.Verdict{}, false
	}

	e.logger.Info("range comparison proves approval still valid",
		"repo", snapshot.RepoFullName, "pr", snapshot.Number, "summary", classification.Summary())
	return core.Verdict{
		Outcome: core.OutcomeFastPathNotStale,
		Summary: classification.Summary(),
	}, true
}

// compareAndConclude implements steps 4-6: current-diff reconstruction,
// two-dot and rebase reconciliation, and the pessimistic verdict.
func (e *Evaluator) compareAndConclude(ctx context.Context, run *run, reviews []*core.ReviewApproval, reviewedDiff string, reviewedKnown bool) (core.Verdict, error) {
	snapshot := run.snapshot

	if !reviewedKnown {
		// Nothing to compare against; dismiss.
		return e.dismissAll(ctx, snapshot, reviews, core.CauseUnknownReviewedDiff)
	}

	currentDiff, currentKnown := "", false
	if raw, err := e.gh.CompareRaw(ctx, snapshot.RepoOwner, snapshot.RepoName, snapshot.BaseRef, snapshot.HeadSHA); err == nil {
		currentDiff, currentKnown = diffutil.Normalize(raw), true
	} else {
		e.logger.Warn("failed to fetch current three-dot diff, recomputing locally", "error", err)
	}

	if currentKnown && reviewedDiff == currentDiff {
		return core.Verdict{Outcome: core.OutcomeNotStale, Summary: "reviewed diff matches current diff"}, nil
	}

	// The three-dot diff against a just-merged ancestor branch can include
	// foreign changes; a straight two-dot diff between base and head removes
	// that artifact.
	twoDot, err := e.twoDotDiff(ctx, run)
	if err != nil {
		e.logger.Warn("two-dot diff unavailable, treating as changed", "error", err)
		return e.dismissAll(ctx, snapshot, reviews, core.CauseDiffUnavailable)
	}
	if reviewedDiff == twoDot {
		return core.Verdict{Outcome: core.OutcomeNotStale, Summary: "reviewed diff matches current two-dot diff"}, nil
	}

	// Last reconciliation: replay head onto base and diff again. A conflict
	// is swallowed and the pre-rebase two-dot diff stands.
	if snapshot.Rebaseable && e.repoCfg.AttemptRebase {
		if rebased, ok := e.rebasedDiff(ctx, run); ok {
			if reviewedDiff == rebased {
				return core.Verdict{Outcome: core.OutcomeNotStale, Summary: "reviewed diff matches rebased two-dot diff"}, nil
			}
			twoDot = rebased
		}
	}

	e.logger.Info("reviewed diff no longer matches current content",
		"repo", snapshot.RepoFullName, "pr", snapshot.Number)
	e.logger.Debug("diff mismatch detail", "delta", diffutil.Delta(reviewedDiff, twoDot))
	return e.dismissAll(ctx, snapshot, reviews, core.CauseCodeChanged)
}

// twoDotDiff computes the normalized straight diff between the base and head
// commits in the scratch working copy.
func (e *Evaluator) twoDotDiff(ctx context.Context, run *run) (string, error) {
	path, err := run.workingCopy(ctx)
	if err != nil {
		return "", err
	}
	snapshot := run.snapshot
	if err := e.git.Fetch(ctx, path, snapshot.BaseSHA, snapshot.HeadSHA); err != nil {
		return "", err
	}
	raw, err := e.git.TwoDotDiff(ctx, path, snapshot.BaseSHA, snapshot.HeadSHA)
	if err != nil {
		return "", err
	}
	return diffutil.Normalize(raw), nil
}

// rebasedDiff replays head onto base in the scratch working copy and diffs
// once more. Any failure is swallowed; the caller keeps its previous diff.
func (e *Evaluator) rebasedDiff(ctx context.Context, run *run) (string, bool) {
	path, err := run.workingCopy(ctx)
	if err != nil {
		return "", false
	}
	snapshot := run.snapshot
	if err := e.git.Rebase(ctx, path, snapshot.HeadSHA, snapshot.BaseSHA); err != nil {
		e.logger.Info("rebase failed, keeping pre-rebase diff",
			"repo", snapshot.RepoFullName, "pr", snapshot.Number, "error", err)
		return "", false
	}
	head, err := e.git.HeadSHA(ctx, path)
	if err != nil {
		return "", false
	}
	raw, err := e.git.TwoDotDiff(ctx, path, snapshot.BaseSHA, head)
	if err != nil {
		return "", false
	}
	return diffutil.Normalize(raw), true
}

// dismissAll dismisses every approved review concurrently. Each dismissal is
// independent; all are attempted before the first failure is surfaced.
func (e *Evaluator) dismissAll(ctx context.Context, snapshot *core.PullRequestSnapshot, reviews []*core.ReviewApproval, cause core.StaleCause) (core.Verdict, error) {
	message := e.dismissalMessage(cause)

	var g errgroup.Group
	for _, review := range reviews {
		if !review.Approved() {
			continue
		}
		g.Go(func() error {
			e.logger.Info("dismissing stale approval",
				"repo", snapshot.RepoFullName, "pr", snapshot.Number, "review_id", review.ID)
			return e.gh.DismissReview(ctx, snapshot.RepoOwner, snapshot.RepoName, snapshot.Number, review.ID, message)
		})
	}
	if err := g.Wait(); err != nil {
		return core.Verdict{}, fmt.Errorf("failed to dismiss stale approval: %w", err)
	}

	return core.Verdict{Outcome: core.OutcomeStale, Cause: cause, Summary: message}, nil
}

// dismissalMessage composes the reviewer-facing dismissal text.
func (e *Evaluator) dismissalMessage(cause core.StaleCause) string {
	message := fmt.Sprintf("This approval no longer covers the current changes: %s. Please re-review.", cause)
	if prefix := strings.TrimSpace(e.repoCfg.MessagePrefix); prefix != "" {
		message = prefix + " " + message
	}
	return message
}

// run holds per-evaluation state: the lazily created scratch working copy.
// The copy is exclusively owned by this run; its lifecycle is monotonic
// (absent, then cloned, then fetched) and it is removed when the run ends.
type run struct {
	evaluator *Evaluator
	snapshot  *core.PullRequestSnapshot
	repoPath  string
}

func (r *run) workingCopy(ctx context.Context) (string, error) {
	if r.repoPath != "" {
		return r.repoPath, nil
	}
	path, err := os.MkdirTemp(r.evaluator.workDir, "review-warden-repo-*")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	if err := r.evaluator.git.EnsureCloned(ctx, r.snapshot.RepoCloneURL, path, r.evaluator.token); err != nil {
		_ = os.RemoveAll(path)
		return "", err
	}
	r.repoPath = path
	return path, nil
}

func (r *run) cleanup() {
	if r.repoPath == "" {
		return
	}
	if err := os.RemoveAll(r.repoPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		r.evaluator.logger.Error("failed to remove scratch working copy", "path", r.repoPath, "error", err)
	}
	r.repoPath = ""
}
