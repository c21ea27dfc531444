package core

import (
	"context"
)

// JobDispatcher defines the contract for a system that can accept and queue
// background jobs for asynchronous processing. This interface decouples the
// event source (e.g., a webhook handler) from the job execution mechanism.
type JobDispatcher interface {
	// Dispatch accepts a unit of work and queues it for processing.
	// It returns an error if the job cannot be queued, for example, if the
	// queue is full, providing a mechanism for backpressure.
	Dispatch(ctx context.Context, task *Task) error

	// Stop shuts the dispatcher down, letting in-flight jobs finish.
	Stop()
}

// TaskKind selects which job a queued task runs.
type TaskKind string

const (
	// TaskRecordApproval persists approval artifacts when a review is submitted.
	TaskRecordApproval TaskKind = "record-approval"
	// TaskEvaluate runs the staleness evaluation after a pull request changes.
	TaskEvaluate TaskKind = "evaluate"
)

// Task is one queued unit of work.
type Task struct {
	Kind     TaskKind
	Snapshot *PullRequestSnapshot
	// Approval is set for TaskRecordApproval only.
	Approval *ReviewApproval
}

// Job represents a single, executable unit of work that can be processed by
// the application's job dispatcher.
type Job interface {
	// Run executes the job's logic. It receives a context for managing its
	// lifecycle and the task containing the data needed to perform it.
	Run(ctx context.Context, task *Task) error
}
