package jobs

import (
	"fmt"

	"github.com/sevigo/review-warden/internal/core"
)

// validateTask ensures a queued task carries everything a job needs before any
// API call is made on its behalf.
func validateTask(task *core.Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}
	if task.Snapshot == nil {
		return fmt.Errorf("task snapshot cannot be nil")
	}
	s := task.Snapshot
	if s.RepoOwner == "" {
		return fmt.Errorf("repository owner cannot be empty")
	}
	if s.RepoName == "" {
		return fmt.Errorf("repository name cannot be empty")
	}
	if s.RepoCloneURL == "" {
		return fmt.Errorf("repository clone URL cannot be empty")
	}
	if s.Number <= 0 {
		return fmt.Errorf("pull request number must be positive, got: %d", s.Number)
	}
	if s.InstallationID <= 0 {
		return fmt.Errorf("installation ID must be positive, got: %d", s.InstallationID)
	}
	if task.Kind == core.TaskRecordApproval && task.Approval == nil {
		return fmt.Errorf("record-approval task carries no approval")
	}
	return nil
}
