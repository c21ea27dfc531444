// Package handler provides HTTP handlers for the Review-Warden application.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
)

// WebhookHandler processes incoming webhooks from GitHub.
type WebhookHandler struct {
	cfg        *config.Config
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewWebhookHandler creates a new webhook handler with the given configuration and dispatcher.
func NewWebhookHandler(cfg *config.Config, dispatcher core.JobDispatcher, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle processes GitHub webhook requests.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := github.ValidatePayload(r, []byte(h.cfg.GitHub.WebhookSecret))
	if err != nil {
		h.logger.Error("invalid webhook payload signature", "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := github.ParseWebHook(github.WebHookType(r), payload)
	if err != nil {
		h.logger.Error("could not parse webhook", "error", err)
		http.Error(w, "Could not parse webhook", http.StatusBadRequest)
		return
	}

	switch e := event.(type) {
	case *github.PullRequestEvent:
		h.handlePullRequest(r.Context(), w, e)
	case *github.PullRequestReviewEvent:
		h.handleReview(r.Context(), w, e)
	default:
		h.logger.Debug("ignoring unhandled webhook event type", "type", github.WebHookType(r))
		_, _ = fmt.Fprint(w, "Event type not handled")
	}
}

// handlePullRequest queues a staleness evaluation for pull request changes.
// Irrelevant actions are still accepted; the evaluator's own trigger filter
// turns them into clean skips.
func (h *WebhookHandler) handlePullRequest(ctx context.Context, w http.ResponseWriter, event *github.PullRequestEvent) {
	snapshot, err := core.SnapshotFromPullRequestEvent(event)
	if err != nil {
		h.logger.Debug("ignoring pull request event", "reason", err.Error(), "repo", event.GetRepo().GetFullName())
		_, _ = fmt.Fprint(w, "Event ignored")
		return
	}

	task := &core.Task{Kind: core.TaskEvaluate, Snapshot: snapshot}
	if err := h.dispatcher.Dispatch(ctx, task); err != nil {
		h.logger.Error("failed to dispatch evaluation task", "error", err, "repo", snapshot.RepoFullName)
		http.Error(w, "Failed to queue evaluation", http.StatusInternalServerError)
		return
	}

	h.logger.Info("evaluation task dispatched", "repo", snapshot.RepoFullName, "pr", snapshot.Number)
	w.WriteHeader(http.StatusAccepted)
	_, _ = fmt.Fprint(w, "Evaluation accepted")
}

// handleReview queues artifact recording for a freshly submitted approval.
func (h *WebhookHandler) handleReview(ctx context.Context, w http.ResponseWriter, event *github.PullRequestReviewEvent) {
	snapshot, approval, err := core.SnapshotFromReviewEvent(event)
	if err != nil {
		h.logger.Debug("ignoring review event", "reason", err.Error(), "repo", event.GetRepo().GetFullName())
		_, _ = fmt.Fprint(w, "Review ignored")
		return
	}

	task := &core.Task{Kind: core.TaskRecordApproval, Snapshot: snapshot, Approval: approval}
	if err := h.dispatcher.Dispatch(ctx, task); err != nil {
		h.logger.Error("failed to dispatch record task", "error", err, "repo", snapshot.RepoFullName)
		http.Error(w, "Failed to queue approval recording", http.StatusInternalServerError)
		return
	}

	h.logger.Info("record task dispatched", "repo", snapshot.RepoFullName, "pr", snapshot.Number, "approved_sha", approval.CommitID)
	w.WriteHeader(http.StatusAccepted)
	_, _ = fmt.Fprint(w, "Approval recording accepted")
}
