// Package jobs defines the background tasks the webhook server queues:
// recording approval artifacts and evaluating approval staleness.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sevigo/review-warden/internal/core"
)

// dispatcher implements core.JobDispatcher and manages a pool of worker
// goroutines for processing webhook events as background tasks.
type dispatcher struct {
	recordJob   core.Job        // Runs for TaskRecordApproval tasks.
	evaluateJob core.Job        // Runs for TaskEvaluate tasks.
	taskQueue   chan *core.Task // Queue of incoming tasks.
	maxWorkers  int             // Number of concurrent workers.
	wg          sync.WaitGroup  // Tracks active workers for graceful shutdown.
	logger      *slog.Logger    // Logger instance for the dispatcher.
}

// NewDispatcher initializes a dispatcher with a worker pool.
// If maxWorkers is 0 or negative, it defaults to 1.
func NewDispatcher(recordJob, evaluateJob core.Job, maxWorkers int, logger *slog.Logger) core.JobDispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	d := &dispatcher{
		recordJob:   recordJob,
		evaluateJob: evaluateJob,
		maxWorkers:  maxWorkers,
		taskQueue:   make(chan *core.Task, 100),
		logger:      logger,
	}
	d.startWorkers()
	return d
}

// startWorkers launches maxWorkers goroutines to process tasks from the queue.
func (d *dispatcher) startWorkers() {
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.startWorker(i)
	}
}

// startWorker processes tasks from the queue until it's closed.
func (d *dispatcher) startWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Info("starting worker", "id", workerID)

	for task := range d.taskQueue {
		d.processTask(workerID, task)
	}

	d.logger.Info("shutting down worker", "id", workerID)
}

// processTask routes a task to its job by kind and runs it.
func (d *dispatcher) processTask(workerID int, task *core.Task) {
	d.logger.Info("worker processing task",
		"worker_id", workerID,
		"kind", task.Kind,
		"repo", task.Snapshot.RepoFullName,
	)

	var job core.Job
	switch task.Kind {
	case core.TaskRecordApproval:
		job = d.recordJob
	case core.TaskEvaluate:
		job = d.evaluateJob
	default:
		d.logger.Error("unknown task kind", "kind", task.Kind)
		return
	}

	if err := job.Run(context.Background(), task); err != nil {
		d.logger.Error("task failed",
			"kind", task.Kind,
			"repo", task.Snapshot.RepoFullName,
			"pr", task.Snapshot.Number,
			"error", err,
		)
	}
}

// Dispatch queues a task for processing by a worker.
func (d *dispatcher) Dispatch(_ context.Context, task *core.Task) error {
	d.logger.Info("queuing task", "kind", task.Kind, "repo", task.Snapshot.RepoFullName, "pr", task.Snapshot.Number)

	select {
	case d.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full, cannot accept new task")
	}
}

// Stop gracefully shuts down the dispatcher, waiting for all workers to finish.
func (d *dispatcher) Stop() {
	d.logger.Info("stopping dispatcher and waiting for tasks to finish")
	close(d.taskQueue)
	d.wg.Wait()
	d.logger.Info("all tasks have finished")
}
