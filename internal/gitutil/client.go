// Package gitutil provides a client for working with Git repositories.
package gitutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5"
)

// defaultMaxOutputBytes bounds the output captured from diff and range-diff
// commands. Exceeding it is a soft failure: the caller must be able to treat
// "unable to compute" pessimistically instead of crashing.
const defaultMaxOutputBytes = 10 << 20

var (
	// ErrOutputTruncated signals that a command produced more output than the
	// configured ceiling. The result is unusable but the run continues.
	ErrOutputTruncated = errors.New("git output exceeded buffer limit")
	// ErrCommandFailed signals a recoverable git failure (diff, range-diff,
	// rebase). Clone and fetch failures are fatal and wrapped normally.
	ErrCommandFailed = errors.New("git command failed")
)

// Git is the version-control capability consumed by the evaluator. It covers
// the operations the hosting API cannot produce directly: two-dot diffs,
// range-diffs and rebases against a local working copy.
//
//go:generate mockgen -destination=../../mocks/mock_git.go -package=mocks . Git
type Git interface {
	// EnsureCloned makes sure path contains a working copy of the repository,
	// creating it with a shallow clone when absent. Failure is fatal.
	EnsureCloned(ctx context.Context, repoURL, path, token string) error
	// Fetch shallow-fetches one or more revisions into the working copy.
	// Failure is fatal: unresolved revisions invalidate everything downstream.
	Fetch(ctx context.Context, path string, revisions ...string) error
	// TwoDotDiff computes the straight file-content diff between two commits,
	// ignoring ancestry. Soft failure.
	TwoDotDiff(ctx context.Context, path, baseRev, headRev string) (string, error)
	// RangeDiff compares two historical commit ranges (e.g.
	// "mergeBase..approved" vs "mergeBase..head"). Soft failure.
	RangeDiff(ctx context.Context, path, rangeA, rangeB string) (string, error)
	// Rebase replays head onto onto in a detached worktree. A conflict is a
	// recoverable failure; the working copy is restored with rebase --abort.
	Rebase(ctx context.Context, path, head, onto string) error
	// HeadSHA resolves the current HEAD of the working copy.
	HeadSHA(ctx context.Context, path string) (string, error)
}

// Client implements Git by shelling out to the git binary. go-git is used to
// validate working copies, but the diff, range-diff and rebase plumbing only
// exists in the CLI.
type Client struct {
	logger    *slog.Logger
	maxOutput int
}

// NewClient returns a new Client instance.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{logger: logger, maxOutput: defaultMaxOutputBytes}
}

var _ Git = (*Client)(nil)

// EnsureCloned clones the repository to path unless a working copy already
// exists there. The clone is shallow; the evaluator fetches the specific
// revisions it needs afterwards.
func (c *Client) EnsureCloned(ctx context.Context, repoURL, path, token string) error {
	if _, err := git.PlainOpen(path); err == nil {
		c.logger.DebugContext(ctx, "working copy already present", "path", path)
		return nil
	}

	authURL, err := AuthenticatedURL(repoURL, token)
	if err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "cloning repository", "url", repoURL, "path", path)
	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", "--no-tags", authURL, path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git clone failed: %s: %w", string(out), err)
	}

	// Make sure the clone is openable before anything diffs against it.
	if _, err := git.PlainOpen(path); err != nil {
		return fmt.Errorf("failed to open cloned repo: %w", err)
	}
	return nil
}

// Fetch shallow-fetches the given revisions from origin.
func (c *Client) Fetch(ctx context.Context, path string, revisions ...string) error {
	if len(revisions) == 0 {
		return nil
	}
	c.logger.InfoContext(ctx, "fetching revisions", "path", path, "revisions", revisions)

	args := []string{"fetch", "origin", "--force", "--depth", "1", "--no-tags"}
	args = append(args, revisions...)
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = path

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git fetch failed: %s: %w", string(out), err)
	}
	return nil
}

// TwoDotDiff runs a plain content diff between two commits. Git exit status 1
// is "differences found" in some configurations and is treated as success;
// any other non-zero status or a truncated buffer is a soft failure.
func (c *Client) TwoDotDiff(ctx context.Context, path, baseRev, headRev string) (string, error) {
	return c.capture(ctx, path, "diff", "--no-color", baseRev, headRev)
}

// RangeDiff compares two commit ranges. Output feeds the range-diff
// classifier; failure routes the evaluator to full diff comparison.
func (c *Client) RangeDiff(ctx context.Context, path, rangeA, rangeB string) (string, error) {
	return c.capture(ctx, path, "range-diff", "--no-color", rangeA, rangeB)
}

// Rebase checks out head detached and replays it onto onto. On conflict the
// rebase is aborted so the working copy stays usable, and the error is
// recoverable: the caller keeps its pre-rebase diff.
func (c *Client) Rebase(ctx context.Context, path, head, onto string) error {
	checkout := exec.CommandContext(ctx, "git", "checkout", "--force", "--detach", head)
	checkout.Dir = path
	if out, err := checkout.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: checkout %s: %s", ErrCommandFailed, head, strings.TrimSpace(string(out)))
	}

	rebase := exec.CommandContext(ctx, "git",
		"-c", "user.name=review-warden",
		"-c", "user.email=review-warden@localhost",
		"rebase", onto)
	rebase.Dir = path
	if out, err := rebase.CombinedOutput(); err != nil {
		abort := exec.CommandContext(ctx, "git", "rebase", "--abort")
		abort.Dir = path
		if abortOut, abortErr := abort.CombinedOutput(); abortErr != nil {
			c.logger.WarnContext(ctx, "rebase abort failed", "path", path, "output", string(abortOut))
		}
		return fmt.Errorf("%w: rebase onto %s: %s", ErrCommandFailed, onto, strings.TrimSpace(string(out)))
	}
	return nil
}

// HeadSHA returns the current HEAD SHA of the repository at the given path.
func (c *Client) HeadSHA(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "HEAD")
	cmd.Dir = path
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse failed: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// capture runs a git subcommand with pager disabled and a bounded stdout
// buffer, mapping failures onto the soft-failure sentinels.
func (c *Client) capture(ctx context.Context, path string, args ...string) (string, error) {
	full := append([]string{"--no-pager"}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	cmd.Dir = path

	stdout := &boundedBuffer{max: c.maxOutput}
	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if stdout.truncated {
		c.logger.WarnContext(ctx, "git output truncated", "path", path, "command", args[0], "limit_bytes", c.maxOutput)
		return "", ErrOutputTruncated
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return stdout.String(), nil
		}
		return "", fmt.Errorf("%w: git %s: %s", ErrCommandFailed, args[0], strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// boundedBuffer keeps at most max bytes and records whether anything beyond
// that was discarded. The process is allowed to finish; the surrounding CI
// step's timeout is the only deadline.
type boundedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	if remaining := b.max - b.buf.Len(); remaining > 0 {
		if len(p) <= remaining {
			return b.buf.Write(p)
		}
		if _, err := b.buf.Write(p[:remaining]); err != nil {
			return 0, err
		}
		b.truncated = true
		return len(p), nil
	}
	b.truncated = true
	return len(p), nil
}

func (b *boundedBuffer) String() string {
	return b.buf.String()
}
