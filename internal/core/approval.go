package core

import (
	"sort"
	"strings"
	"time"
)

// ApprovalMetadataVersion is the schema version written into persisted
// metadata records. A record with any other version is treated as absent.
const ApprovalMetadataVersion = 1

// ReviewStateApproved is the review state string GitHub uses for approvals.
const ReviewStateApproved = "APPROVED"

// ApprovalMetadata is the persisted record written when a review is approved
// and read back, once and read-only, when a later push is evaluated. It holds
// everything the range-diff fast path needs to reconstruct the approved
// commit range without touching the review API.
type ApprovalMetadata struct {
	Version      int       `json:"version"`
	ApprovedSHA  string    `json:"approved_sha"`
	MergeBaseSHA string    `json:"merge_base_sha"`
	BaseSHA      string    `json:"base_sha"`
	BaseRef      string    `json:"base_ref"`
	ApprovedAt   time.Time `json:"approved_at"`
}

// Valid reports whether the record can be trusted by the current engine.
// Version drift fails open: the caller falls back to the slow path.
func (m *ApprovalMetadata) Valid() bool {
	return m != nil &&
		m.Version == ApprovalMetadataVersion &&
		m.ApprovedSHA != "" &&
		m.MergeBaseSHA != ""
}

// ReviewApproval is one review record from the hosting platform.
type ReviewApproval struct {
	ID          int64
	CommitID    string
	SubmittedAt time.Time
	State       string
}

// Approved reports whether this review counts as an approval.
func (r *ReviewApproval) Approved() bool {
	return strings.EqualFold(r.State, ReviewStateApproved)
}

// TimelineEvent is one entry from the pull request's issue timeline.
type TimelineEvent struct {
	Event     string
	CreatedAt time.Time
}

// LatestApproval returns the most recent APPROVED review, ordering
// chronologically by submission time. It returns nil when no approval exists.
func LatestApproval(reviews []*ReviewApproval) *ReviewApproval {
	approved := make([]*ReviewApproval, 0, len(reviews))
	for _, r := range reviews {
		if r != nil && r.Approved() {
			approved = append(approved, r)
		}
	}
	if len(approved) == 0 {
		return nil
	}
	sort.SliceStable(approved, func(i, j int) bool {
		return approved[i].SubmittedAt.Before(approved[j].SubmittedAt)
	})
	return approved[len(approved)-1]
}
