package staleness

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/gitutil"
	"github.com/sevigo/review-warden/mocks"
)

const (
	approvedSHA  = "e0e7cca34bf046aa11bb22cc33dd44ee55ff6677"
	mergeBaseSHA = "badcafe00c0ffee112233445566778899aabbccd"
	baseSHA      = "aabbccddeeff00112233445566778899aabbccdd"
	headSHA      = "1234567890abcdef1234567890abcdef12345678"
)

type testDeps struct {
	gh        *mocks.MockClient
	git       *mocks.MockGit
	artifacts *mocks.MockArtifactSource
}

func newEvaluatorForTest(t *testing.T, repoCfg *core.RepoConfig) (*Evaluator, testDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	deps := testDeps{
		gh:        mocks.NewMockClient(ctrl),
		git:       mocks.NewMockGit(ctrl),
		artifacts: mocks.NewMockArtifactSource(ctrl),
	}
	ev := NewEvaluator(deps.gh, deps.git, deps.artifacts, repoCfg, "token", t.TempDir(), slog.Default())
	return ev, deps
}

func snapshot(action core.Action) *core.PullRequestSnapshot {
	return &core.PullRequestSnapshot{
		RepoOwner:    "sevigo",
		RepoName:     "review-warden",
		RepoFullName: "sevigo/review-warden",
		RepoCloneURL: "https://github.com/sevigo/review-warden.git",
		Number:       42,
		BaseRef:      "main",
		BaseSHA:      baseSHA,
		HeadSHA:      headSHA,
		Action:       action,
	}
}

func approvedReview() *core.ReviewApproval {
	return &core.ReviewApproval{
		ID:          101,
		CommitID:    approvedSHA,
		SubmittedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		State:       "APPROVED",
	}
}

func TestEvaluate_TriggerFilter(t *testing.T) {
	tests := []struct {
		name     string
		snapshot *core.PullRequestSnapshot
		wantSkip bool
	}{
		{name: "opened is skipped", snapshot: snapshot(core.ActionOpened), wantSkip: true},
		{name: "other is skipped", snapshot: snapshot(core.ActionOther), wantSkip: true},
		{
			name: "edited without base change is skipped",
			snapshot: func() *core.PullRequestSnapshot {
				s := snapshot(core.ActionEdited)
				s.BaseChanged = false
				return s
			}(),
			wantSkip: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No expectations registered: any API or git call fails the test.
			ev, _ := newEvaluatorForTest(t, nil)

			verdict, err := ev.Evaluate(context.Background(), tt.snapshot)
			require.NoError(t, err)
			assert.Equal(t, core.OutcomeSkip, verdict.Outcome)
		})
	}
}

func TestEvaluate_NoApprovals(t *testing.T) {
	ev, deps := newEvaluatorForTest(t, nil)
	snap := snapshot(core.ActionSynchronize)

	deps.gh.EXPECT().ListReviews(gomock.Any(), "sevigo", "review-warden", 42).
		Return([]*core.ReviewApproval{{ID: 7, State: "COMMENTED"}}, nil)

	verdict, err := ev.Evaluate(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeSkip, verdict.Outcome)
	assert.Contains(t, verdict.Summary, "no approved reviews")
}

func TestEvaluate_FastPathProvesNotStale(t *testing.T) {
	ev, deps := newEvaluatorForTest(t, nil)
	snap := snapshot(core.ActionSynchronize)

	meta := &core.ApprovalMetadata{
		Version:      core.ApprovalMetadataVersion,
		ApprovedSHA:  approvedSHA,
		MergeBaseSHA: mergeBaseSHA,
		BaseSHA:      baseSHA,
		BaseRef:      "main",
	}

	deps.gh.EXPECT().ListReviews(gomock.Any(), "sevigo", "review-warden", 42).
		Return([]*core.ReviewApproval{approvedReview()}, nil)
	deps.artifacts.EXPECT().Metadata(gomock.Any(), approvedSHA).Return(meta, nil)
	deps.gh.EXPECT().MergeBase(gomock.Any(), "sevigo", "review-warden", "main", headSHA).
		Return("ffff567890abcdef1234567890abcdef12345678", nil)
	deps.git.EXPECT().EnsureCloned(gomock.Any(), snap.RepoCloneURL, gomock.Any(), "token").Return(nil)
	deps.git.EXPECT().Fetch(gomock.Any(), gomock.Any(), mergeBaseSHA, approvedSHA,
		"ffff567890abcdef1234567890abcdef12345678", headSHA).Return(nil)
	deps.git.EXPECT().RangeDiff(gomock.Any(), gomock.Any(),
		mergeBaseSHA+".."+approvedSHA,
		"ffff567890abcdef1234567890abcdef12345678.."+headSHA).
		Return("1:  34bf046 =  1:  e0e7cca keep\n2:  f00ba12 =  2:  9acc811 keep too\n", nil)

	// No CompareRaw, TwoDotDiff or DismissReview expectations: the fast path
	// must terminate without reconstructing any diff or dismissing anything.
	verdict, err := ev.Evaluate(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeFastPathNotStale, verdict.Outcome)
	assert.Contains(t, verdict.Summary, "2 identical commits")
}

func TestEvaluate_PessimisticOnUnknownReviewedDiff(t *testing.T) {
	ev, deps := newEvaluatorForTest(t, nil)
	snap := snapshot(core.ActionSynchronize)

	deps.gh.EXPECT().ListReviews(gomock.Any(), "sevigo", "review-warden", 42).
		Return([]*core.ReviewApproval{approvedReview()}, nil)
	// Double cache miss.
	deps.artifacts.EXPECT().Metadata(gomock.Any(), approvedSHA).Return(nil, nil)
	deps.artifacts.EXPECT().ReviewedDiff(gomock.Any(), approvedSHA).Return("", false)
	deps.gh.EXPECT().ListTimeline(gomock.Any(), "sevigo", "review-warden", 42).
		Return(nil, nil)
	// Historical three-dot reconstruction fails.
	deps.gh.EXPECT().CompareRaw(gomock.Any(), "sevigo", "review-warden", "main", approvedSHA).
		Return("", errors.New("api: 502"))

	var message string
	deps.gh.EXPECT().DismissReview(gomock.Any(), "sevigo", "review-warden", 42, int64(101), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, _ int64, msg string) error {
			message = msg
			return nil
		})

	verdict, err := ev.Evaluate(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeStale, verdict.Outcome)
	assert.Equal(t, core.CauseUnknownReviewedDiff, verdict.Cause)
	assert.Contains(t, message, "could not determine the diff that was approved")
}

func TestEvaluate_BaseRetargetAfterApprovalIsStale(t *testing.T) {
	ev, deps := newEvaluatorForTest(t, nil)
	snap := snapshot(core.ActionSynchronize)
	approval := approvedReview()

	deps.gh.EXPECT().ListReviews(gomock.Any(), "sevigo", "review-warden", 42).
		Return([]*core.ReviewApproval{approval}, nil)
	deps.artifacts.EXPECT().Metadata(gomock.Any(), approvedSHA).Return(nil, nil)
	deps.artifacts.EXPECT().ReviewedDiff(gomock.Any(), approvedSHA).Return("", false)
	deps.gh.EXPECT().ListTimeline(gomock.Any(), "sevigo", "review-warden", 42).
		Return([]*core.TimelineEvent{
			{Event: "committed", CreatedAt: approval.SubmittedAt.Add(-time.Hour)},
			{Event: "base_ref_changed", CreatedAt: approval.SubmittedAt.Add(time.Hour)},
		}, nil)
	deps.gh.EXPECT().DismissReview(gomock.Any(), "sevigo", "review-warden", 42, int64(101), gomock.Any()).
		Return(nil)

	verdict, err := ev.Evaluate(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeStale, verdict.Outcome)
	assert.Equal(t, core.CauseUnknownReviewedDiff, verdict.Cause)
}

func TestEvaluate_NotStaleWhenThreeDotDiffsMatch(t *testing.T) {
	ev, deps := newEvaluatorForTest(t, nil)
	snap := snapshot(core.ActionSynchronize)

	// Same content, different blob hashes: normalization must bridge them.
	reviewed := "diff --git a/f b/f\nindex aaa111..bbb222 100644\n+line\n"
	current := "diff --git a/f b/f\nindex ccc333..ddd444 100644\n+line\n"

	deps.gh.EXPECT().ListReviews(gomock.Any(), "sevigo", "review-warden", 42).
		Return([]*core.ReviewApproval{approvedReview()}, nil)
	deps.artifacts.EXPECT().Metadata(gomock.Any(), approvedSHA).Return(nil, nil)
	deps.artifacts.EXPECT().ReviewedDiff(gomock.Any(), approvedSHA).Return(reviewed, true)
	deps.gh.EXPECT().CompareRaw(gomock.Any(), "sevigo", "review-warden", "main", headSHA).
		Return(current, nil)

	verdict, err := ev.Evaluate(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeNotStale, verdict.Outcome)
}

func TestEvaluate_TwoDotReconciliation(t *testing.T) {
	ev, deps := newEvaluatorForTest(t, nil)
	snap := snapshot(core.ActionSynchronize)

	deps.gh.EXPECT().ListReviews(gomock.Any(), "sevigo", "review-warden", 42).
		Return([]*core.ReviewApproval{approvedReview()}, nil)
	deps.artifacts.EXPECT().Metadata(gomock.Any(), approvedSHA).Return(nil, nil)
	deps.artifacts.EXPECT().ReviewedDiff(gomock.Any(), approvedSHA).Return("+line\n", true)
	// Three-dot picks up foreign changes from a just-merged ancestor branch.
	deps.gh.EXPECT().CompareRaw(gomock.Any(), "sevigo", "review-warden", "main", headSHA).
		Return("+line\n+foreign change\n", nil)
	deps.git.EXPECT().EnsureCloned(gomock.Any(), snap.RepoCloneURL, gomock.Any(), "token").Return(nil)
	deps.git.EXPECT().Fetch(gomock.Any(), gomock.Any(), baseSHA, headSHA).Return(nil)
	deps.git.EXPECT().TwoDotDiff(gomock.Any(), gomock.Any(), baseSHA, headSHA).Return("+line\n", nil)

	verdict, err := ev.Evaluate(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeNotStale, verdict.Outcome)
}

func TestEvaluate_RebaseReconciliation(t *testing.T) {
	ev, deps := newEvaluatorForTest(t, nil)
	snap := snapshot(core.ActionSynchronize)
	snap.Rebaseable = true

	rebasedHead := "feedface00112233445566778899aabbccddeeff"

	deps.gh.EXPECT().ListReviews(gomock.Any(), "sevigo", "review-warden", 42).
		Return([]*core.ReviewApproval{approvedReview()}, nil)
	deps.artifacts.EXPECT().Metadata(gomock.Any(), approvedSHA).Return(nil, nil)
	deps.artifacts.EXPECT().ReviewedDiff(gomock.Any(), approvedSHA).Return("+line\n", true)
	deps.gh.EXPECT().CompareRaw(gomock.Any(), "sevigo", "review-warden", "main", headSHA).
		Return("+line\n+noise\n", nil)
	deps.git.EXPECT().EnsureCloned(gomock.Any(), snap.RepoCloneURL, gomock.Any(), "token").Return(nil)
	deps.git.EXPECT().Fetch(gomock.Any(), gomock.Any(), baseSHA, headSHA).Return(nil)
	deps.git.EXPECT().TwoDotDiff(gomock.Any(), gomock.Any(), baseSHA, headSHA).Return("+line\n+noise\n", nil)
	deps.git.EXPECT().Rebase(gomock.Any(), gomock.Any(), headSHA, baseSHA).Return(nil)
	deps.git.EXPECT().HeadSHA(gomock.Any(), gomock.Any()).Return(rebasedHead, nil)
	deps.git.EXPECT().TwoDotDiff(gomock.Any(), gomock.Any(), baseSHA, rebasedHead).Return("+line\n", nil)

	verdict, err := ev.Evaluate(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeNotStale, verdict.Outcome)
}

func TestEvaluate_CodeChangedDismissesOnlyApprovals(t *testing.T) {
	ev, deps := newEvaluatorForTest(t, nil)
	snap := snapshot(core.ActionSynchronize)

	reviews := []*core.ReviewApproval{
		approvedReview(),
		{ID: 102, State: "COMMENTED", CommitID: approvedSHA},
		{ID: 103, State: "APPROVED", CommitID: approvedSHA, SubmittedAt: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)},
	}

	deps.gh.EXPECT().ListReviews(gomock.Any(), "sevigo", "review-warden", 42).Return(reviews, nil)
	deps.artifacts.EXPECT().Metadata(gomock.Any(), approvedSHA).Return(nil, nil)
	deps.artifacts.EXPECT().ReviewedDiff(gomock.Any(), approvedSHA).Return("+old\n", true)
	deps.gh.EXPECT().CompareRaw(gomock.Any(), "sevigo", "review-warden", "main", headSHA).
		Return("+new\n", nil)
	deps.git.EXPECT().EnsureCloned(gomock.Any(), snap.RepoCloneURL, gomock.Any(), "token").Return(nil)
	deps.git.EXPECT().Fetch(gomock.Any(), gomock.Any(), baseSHA, headSHA).Return(nil)
	deps.git.EXPECT().TwoDotDiff(gomock.Any(), gomock.Any(), baseSHA, headSHA).Return("+new\n", nil)

	// Both approvals dismissed, the comment-only review left alone.
	deps.gh.EXPECT().DismissReview(gomock.Any(), "sevigo", "review-warden", 42, int64(101), gomock.Any()).Return(nil)
	deps.gh.EXPECT().DismissReview(gomock.Any(), "sevigo", "review-warden", 42, int64(103), gomock.Any()).Return(nil)

	verdict, err := ev.Evaluate(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeStale, verdict.Outcome)
	assert.Equal(t, core.CauseCodeChanged, verdict.Cause)
}

func TestEvaluate_TwoDotFailureIsTreatedAsChanged(t *testing.T) {
	ev, deps := newEvaluatorForTest(t, nil)
	snap := snapshot(core.ActionSynchronize)

	deps.gh.EXPECT().ListReviews(gomock.Any(), "sevigo", "review-warden", 42).
		Return([]*core.ReviewApproval{approvedReview()}, nil)
	deps.artifacts.EXPECT().Metadata(gomock.Any(), approvedSHA).Return(nil, nil)
	deps.artifacts.EXPECT().ReviewedDiff(gomock.Any(), approvedSHA).Return("+line\n", true)
	deps.gh.EXPECT().CompareRaw(gomock.Any(), "sevigo", "review-warden", "main", headSHA).
		Return("+different\n", nil)
	deps.git.EXPECT().EnsureCloned(gomock.Any(), snap.RepoCloneURL, gomock.Any(), "token").Return(nil)
	deps.git.EXPECT().Fetch(gomock.Any(), gomock.Any(), baseSHA, headSHA).Return(nil)
	deps.git.EXPECT().TwoDotDiff(gomock.Any(), gomock.Any(), baseSHA, headSHA).
		Return("", gitutil.ErrOutputTruncated)

	var message string
	deps.gh.EXPECT().DismissReview(gomock.Any(), "sevigo", "review-warden", 42, int64(101), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, _ int64, msg string) error {
			message = msg
			return nil
		})

	verdict, err := ev.Evaluate(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeStale, verdict.Outcome)
	assert.Equal(t, core.CauseDiffUnavailable, verdict.Cause)
	assert.Contains(t, message, "could not compute the current diff")
}

func TestEvaluate_DismissalFailureIsSurfacedAfterAllAttempts(t *testing.T) {
	ev, deps := newEvaluatorForTest(t, nil)
	snap := snapshot(core.ActionSynchronize)

	reviews := []*core.ReviewApproval{
		approvedReview(),
		{ID: 103, State: "APPROVED", CommitID: approvedSHA},
	}

	deps.gh.EXPECT().ListReviews(gomock.Any(), "sevigo", "review-warden", 42).Return(reviews, nil)
	deps.artifacts.EXPECT().Metadata(gomock.Any(), approvedSHA).Return(nil, nil)
	deps.artifacts.EXPECT().ReviewedDiff(gomock.Any(), approvedSHA).Return("", false)
	deps.gh.EXPECT().ListTimeline(gomock.Any(), "sevigo", "review-warden", 42).Return(nil, nil)
	deps.gh.EXPECT().CompareRaw(gomock.Any(), "sevigo", "review-warden", "main", approvedSHA).
		Return("", errors.New("api: 500"))

	// One dismissal fails; the other must still be attempted.
	deps.gh.EXPECT().DismissReview(gomock.Any(), "sevigo", "review-warden", 42, int64(101), gomock.Any()).
		Return(errors.New("api: 403"))
	deps.gh.EXPECT().DismissReview(gomock.Any(), "sevigo", "review-warden", 42, int64(103), gomock.Any()).
		Return(nil)

	_, err := ev.Evaluate(context.Background(), snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to dismiss stale approval")
}

func TestEvaluate_RepoConfigDisablesFastPath(t *testing.T) {
	cfg := core.DefaultRepoConfig()
	cfg.FastPath = false
	cfg.MessagePrefix = "[platform-team]"
	ev, deps := newEvaluatorForTest(t, cfg)
	snap := snapshot(core.ActionSynchronize)

	deps.gh.EXPECT().ListReviews(gomock.Any(), "sevigo", "review-warden", 42).
		Return([]*core.ReviewApproval{approvedReview()}, nil)
	// Metadata must not be consulted when the fast path is disabled.
	deps.artifacts.EXPECT().ReviewedDiff(gomock.Any(), approvedSHA).Return("", false)
	deps.gh.EXPECT().ListTimeline(gomock.Any(), "sevigo", "review-warden", 42).Return(nil, nil)
	deps.gh.EXPECT().CompareRaw(gomock.Any(), "sevigo", "review-warden", "main", approvedSHA).
		Return("", errors.New("api: 500"))

	var message string
	deps.gh.EXPECT().DismissReview(gomock.Any(), "sevigo", "review-warden", 42, int64(101), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, _ int64, msg string) error {
			message = msg
			return nil
		})

	verdict, err := ev.Evaluate(context.Background(), snap)
	require.NoError(t, err)
	assert.True(t, verdict.Stale())
	assert.Contains(t, message, "[platform-team]")
}
