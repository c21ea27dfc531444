// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/review-warden/internal/core"
)

// Client defines the review-platform capability the evaluator consumes:
// review history, timeline events, three-dot comparisons and dismissal.
//
//go:generate mockgen -destination=../../mocks/mock_github_client.go -package=mocks . Client
type Client interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	// ListReviews returns every review of the pull request, all states,
	// in the order the API reports them.
	ListReviews(ctx context.Context, owner, repo string, number int) ([]*core.ReviewApproval, error)
	// ListTimeline returns the pull request's issue timeline events.
	ListTimeline(ctx context.Context, owner, repo string, number int) ([]*core.TimelineEvent, error)
	// CompareRaw returns the three-dot (merge-base) diff between two
	// committish references as raw unified diff text.
	CompareRaw(ctx context.Context, owner, repo, base, head string) (string, error)
	// MergeBase resolves the merge base of two committish references.
	MergeBase(ctx context.Context, owner, repo, base, head string) (string, error)
	// DismissReview dismisses one review with a human-readable message.
	DismissReview(ctx context.Context, owner, repo string, number int, reviewID int64, message string) error
}

type gitHubClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewClient wraps the official go-github client to provide a focused,
// testable interface for application-specific GitHub operations.
func NewClient(client *github.Client, logger *slog.Logger) Client {
	return &gitHubClient{client: client, logger: logger}
}

// NewPATClient creates a new GitHub client authenticated with a Personal Access Token (PAT).
// This is useful for CI jobs or local development where an App installation is not available.
func NewPATClient(ctx context.Context, token string, logger *slog.Logger) Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)
	return &gitHubClient{client: client, logger: logger}
}

// GetPullRequest retrieves a single pull request by its number.
func (g *gitHubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, _, err := g.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		g.logger.Error("failed to get pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
		return nil, err
	}
	return pr, nil
}

// ListReviews retrieves all reviews of a pull request. It handles pagination
// automatically; GitHub returns at most 100 reviews per page.
func (g *gitHubClient) ListReviews(ctx context.Context, owner, repo string, number int) ([]*core.ReviewApproval, error) {
	var all []*core.ReviewApproval
	opts := &github.ListOptions{PerPage: 100}

	for {
		reviews, resp, err := g.client.PullRequests.ListReviews(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list reviews", "owner", owner, "repo", repo, "pr", number, "error", err)
			return nil, err
		}

		for _, r := range reviews {
			all = append(all, &core.ReviewApproval{
				ID:          r.GetID(),
				CommitID:    r.GetCommitID(),
				SubmittedAt: r.GetSubmittedAt().Time,
				State:       r.GetState(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// ListTimeline retrieves the issue timeline of a pull request, paginated.
func (g *gitHubClient) ListTimeline(ctx context.Context, owner, repo string, number int) ([]*core.TimelineEvent, error) {
	var all []*core.TimelineEvent
	opts := &github.ListOptions{PerPage: 100}

	for {
		events, resp, err := g.client.Issues.ListIssueTimeline(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list timeline", "owner", owner, "repo", repo, "pr", number, "error", err)
			return nil, err
		}

		for _, e := range events {
			all = append(all, &core.TimelineEvent{
				Event:     e.GetEvent(),
				CreatedAt: e.GetCreatedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// CompareRaw returns the three-dot diff between base and head as raw text.
// This is the same diff the platform renders on its compare pages: the head
// against the merge base of the two references.
func (g *gitHubClient) CompareRaw(ctx context.Context, owner, repo, base, head string) (string, error) {
	diff, _, err := g.client.Repositories.CompareCommitsRaw(ctx, owner, repo, base, head, github.RawOptions{
		Type: github.Diff,
	})
	if err != nil {
		g.logger.Error("failed to compare commits", "owner", owner, "repo", repo, "base", base, "head", head, "error", err)
		return "", err
	}
	return diff, nil
}

// MergeBase resolves the most recent common ancestor of base and head.
func (g *gitHubClient) MergeBase(ctx context.Context, owner, repo, base, head string) (string, error) {
	cmp, _, err := g.client.Repositories.CompareCommits(ctx, owner, repo, base, head, &github.ListOptions{PerPage: 1})
	if err != nil {
		g.logger.Error("failed to resolve merge base", "owner", owner, "repo", repo, "base", base, "head", head, "error", err)
		return "", err
	}
	sha := cmp.GetMergeBaseCommit().GetSHA()
	if sha == "" {
		return "", fmt.Errorf("compare response for %s...%s carries no merge base", base, head)
	}
	return sha, nil
}

// DismissReview dismisses a review with the given message.
func (g *gitHubClient) DismissReview(ctx context.Context, owner, repo string, number int, reviewID int64, message string) error {
	req := &github.PullRequestReviewDismissalRequest{Message: github.Ptr(message)}
	_, _, err := g.client.PullRequests.DismissReview(ctx, owner, repo, number, reviewID, req)
	if err != nil {
		g.logger.Error("failed to dismiss review", "owner", owner, "repo", repo, "pr", number, "review_id", reviewID, "error", err)
	}
	return err
}
