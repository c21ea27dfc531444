package staleness

import (
	"context"

	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/diffutil"
)

// eventBaseRefChanged is the timeline event GitHub records when a pull
// request is retargeted onto a different base branch.
const eventBaseRefChanged = "base_ref_changed"

// reviewedDiff reconstructs the diff the reviewer actually saw, normalized.
// A cached blob is authoritative. Otherwise the diff is rebuilt from the
// review history: a base-branch retarget at or after the approval makes it
// unknowable (the previous base can no longer be resolved through the API);
// absent that, it is the three-dot comparison between the base ref and the
// approved commit. Every failure on this path degrades to "unknown" -- the
// verdict logic treats unknown pessimistically, so losing this diff can only
// cause an unnecessary dismissal, never a missed one.
func (e *Evaluator) reviewedDiff(ctx context.Context, snapshot *core.PullRequestSnapshot, approval *core.ReviewApproval) (string, bool) {
	if diff, ok := e.artifacts.ReviewedDiff(ctx, approval.CommitID); ok {
		e.logger.Debug("using cached reviewed diff", "approved_sha", approval.CommitID)
		return diffutil.Normalize(diff), true
	}

	events, err := e.gh.ListTimeline(ctx, snapshot.RepoOwner, snapshot.RepoName, snapshot.Number)
	if err != nil {
		e.logger.Warn("failed to list timeline, reviewed diff unknown", "error", err)
		return "", false
	}
	for i := len(events) - 1; i >= 0; i-- {
		event := events[i]
		if event.Event != eventBaseRefChanged {
			continue
		}
		if !event.CreatedAt.Before(approval.SubmittedAt) {
			e.logger.Info("base branch changed after approval, reviewed diff unknown",
				"repo", snapshot.RepoFullName, "pr", snapshot.Number,
				"approved_at", approval.SubmittedAt, "retargeted_at", event.CreatedAt)
			return "", false
		}
		// Timeline is chronological; older retargets predate the approval.
		break
	}

	raw, err := e.gh.CompareRaw(ctx, snapshot.RepoOwner, snapshot.RepoName, snapshot.BaseRef, approval.CommitID)
	if err != nil {
		e.logger.Warn("failed to reconstruct reviewed diff", "approved_sha", approval.CommitID, "error", err)
		return "", false
	}
	return diffutil.Normalize(raw), true
}
