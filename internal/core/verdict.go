package core

// Outcome is the terminal state of a staleness evaluation.
type Outcome string

const (
	// OutcomeSkip means the triggering event cannot invalidate an approval;
	// the run did no work and had no side effects.
	OutcomeSkip Outcome = "skip"
	// OutcomeFastPathNotStale means the commit-range comparison proved the
	// approved changes survived unmodified (typically a clean rebase).
	OutcomeFastPathNotStale Outcome = "fast-path-not-stale"
	// OutcomeNotStale means the reviewed diff matches the current diff.
	OutcomeNotStale Outcome = "not-stale"
	// OutcomeStale means the approval no longer covers the current code and
	// dismissal was triggered.
	OutcomeStale Outcome = "stale"
)

// StaleCause distinguishes why an evaluation concluded stale. The cause is
// embedded in the dismissal message shown to reviewers.
type StaleCause string

const (
	CauseUnknownReviewedDiff StaleCause = "could not determine the diff that was approved"
	CauseCodeChanged         StaleCause = "the code has changed since the approval"
	CauseDiffUnavailable     StaleCause = "could not compute the current diff (treated as changed)"
)

// Verdict is the result of one evaluation run.
type Verdict struct {
	Outcome Outcome
	Cause   StaleCause
	// Summary carries human-readable detail, e.g. the range-diff tally or
	// the reason an event was skipped.
	Summary string
}

// Stale reports whether the verdict requires dismissing approvals.
func (v Verdict) Stale() bool {
	return v.Outcome == OutcomeStale
}
