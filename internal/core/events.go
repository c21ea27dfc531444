// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"fmt"
	"strings"

	"github.com/google/go-github/v73/github"
)

// Action classifies the pull-request event that triggered an evaluation.
type Action string

const (
	ActionOpened      Action = "opened"
	ActionSynchronize Action = "synchronize"
	ActionEdited      Action = "edited"
	ActionOther       Action = "other"
)

// ParseAction maps a raw webhook action string onto the internal enum.
// Anything the evaluator does not care about collapses to ActionOther.
func ParseAction(raw string) Action {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "opened":
		return ActionOpened
	case "synchronize":
		return ActionSynchronize
	case "edited":
		return ActionEdited
	default:
		return ActionOther
	}
}

// PullRequestSnapshot is a simplified, internal view of the pull request at
// the moment the triggering event fired. It is constructed once per run and
// passed explicitly into the evaluator; nothing reads ambient event state.
type PullRequestSnapshot struct {
	RepoOwner    string
	RepoName     string
	RepoFullName string
	RepoCloneURL string

	Number     int
	BaseRef    string
	BaseSHA    string
	HeadSHA    string
	Rebaseable bool

	Action Action
	// BaseChanged is true only for an "edited" event that carries the
	// previous base SHA in its change set.
	BaseChanged bool
	PrevBaseSHA string

	InstallationID int64
}

// ShouldEvaluate reports whether this event can invalidate an approval at all.
// Only new commits (synchronize) and base-branch retargets (edited with a
// recorded prior base) are relevant; everything else is a no-op, not a failure.
func (s *PullRequestSnapshot) ShouldEvaluate() bool {
	if s.Action == ActionSynchronize {
		return true
	}
	return s.Action == ActionEdited && s.BaseChanged
}

// SnapshotFromPullRequestEvent transforms a raw GitHub PullRequestEvent into the
// application's internal snapshot. It acts as an anti-corruption layer, ensuring
// the incoming webhook payload is valid and complete before a job processes it.
func SnapshotFromPullRequestEvent(event *github.PullRequestEvent) (*PullRequestSnapshot, error) {
	repo := event.GetRepo()
	if repo == nil || repo.GetOwner() == nil || repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return nil, fmt.Errorf("repository or owner information is missing from the event")
	}

	pr := event.GetPullRequest()
	if pr == nil {
		return nil, fmt.Errorf("event does not carry a pull request")
	}
	if pr.GetNumber() <= 0 {
		return nil, fmt.Errorf("invalid pull request number: %d", pr.GetNumber())
	}
	if pr.GetHead().GetSHA() == "" || pr.GetBase().GetRef() == "" {
		return nil, fmt.Errorf("pull request head SHA or base ref is missing")
	}

	snapshot := &PullRequestSnapshot{
		RepoOwner:      repo.GetOwner().GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   repo.GetFullName(),
		RepoCloneURL:   repo.GetCloneURL(),
		Number:         pr.GetNumber(),
		BaseRef:        pr.GetBase().GetRef(),
		BaseSHA:        pr.GetBase().GetSHA(),
		HeadSHA:        pr.GetHead().GetSHA(),
		Rebaseable:     pr.GetRebaseable(),
		Action:         ParseAction(event.GetAction()),
		InstallationID: event.GetInstallation().GetID(),
	}

	// A base retarget shows up as an "edited" event whose change set records
	// the SHA the base pointed at before the edit.
	if snapshot.Action == ActionEdited {
		if from := event.GetChanges().GetBase().GetSHA().GetFrom(); from != "" {
			snapshot.BaseChanged = true
			snapshot.PrevBaseSHA = from
		}
	}

	return snapshot, nil
}

// SnapshotFromReviewEvent transforms a PullRequestReviewEvent into the internal
// snapshot plus the approval it carries. Only submitted APPROVED reviews are
// accepted; everything else is rejected so the caller can ignore the event cheaply.
func SnapshotFromReviewEvent(event *github.PullRequestReviewEvent) (*PullRequestSnapshot, *ReviewApproval, error) {
	if !strings.EqualFold(event.GetAction(), "submitted") {
		return nil, nil, fmt.Errorf("review event action is %q, not submitted", event.GetAction())
	}
	review := event.GetReview()
	if review == nil || !strings.EqualFold(review.GetState(), ReviewStateApproved) {
		return nil, nil, fmt.Errorf("review is not an approval")
	}

	repo := event.GetRepo()
	if repo == nil || repo.GetOwner() == nil || repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return nil, nil, fmt.Errorf("repository or owner information is missing from the event")
	}
	pr := event.GetPullRequest()
	if pr == nil || pr.GetNumber() <= 0 {
		return nil, nil, fmt.Errorf("pull request information is missing from the event")
	}

	snapshot := &PullRequestSnapshot{
		RepoOwner:      repo.GetOwner().GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   repo.GetFullName(),
		RepoCloneURL:   repo.GetCloneURL(),
		Number:         pr.GetNumber(),
		BaseRef:        pr.GetBase().GetRef(),
		BaseSHA:        pr.GetBase().GetSHA(),
		HeadSHA:        pr.GetHead().GetSHA(),
		Rebaseable:     pr.GetRebaseable(),
		Action:         ActionOther,
		InstallationID: event.GetInstallation().GetID(),
	}

	approval := &ReviewApproval{
		ID:          review.GetID(),
		CommitID:    review.GetCommitID(),
		SubmittedAt: review.GetSubmittedAt().Time,
		State:       review.GetState(),
	}
	return snapshot, approval, nil
}
