package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	// import db drivers
	_ "github.com/lib/pq"

	"github.com/sevigo/review-warden/internal/core"
)

// Store defines the interface for all database operations. Reads follow the
// fail-open contract of staleness.ArtifactSource: a missing or stale-schema
// record is a miss, not an error.
type Store interface {
	SaveApproval(ctx context.Context, repoFullName string, prNumber int, meta *core.ApprovalMetadata, reviewedDiff string) error
	Metadata(ctx context.Context, approvedSHA string) (*core.ApprovalMetadata, error)
	ReviewedDiff(ctx context.Context, approvedSHA string) (string, bool)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a new Store
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// SaveApproval upserts the approval artifacts keyed by the approved head SHA.
// A re-approval of the same commit overwrites the earlier record.
func (s *postgresStore) SaveApproval(ctx context.Context, repoFullName string, prNumber int, meta *core.ApprovalMetadata, reviewedDiff string) error {
	query := `
		INSERT INTO approvals (repo_full_name, pr_number, approved_sha, merge_base_sha, base_sha, base_ref, approved_at, version, reviewed_diff, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (approved_sha) DO UPDATE SET
			merge_base_sha = EXCLUDED.merge_base_sha,
			base_sha = EXCLUDED.base_sha,
			base_ref = EXCLUDED.base_ref,
			approved_at = EXCLUDED.approved_at,
			version = EXCLUDED.version,
			reviewed_diff = EXCLUDED.reviewed_diff`
	_, err := s.db.ExecContext(ctx, query,
		repoFullName, prNumber, meta.ApprovedSHA, meta.MergeBaseSHA, meta.BaseSHA,
		meta.BaseRef, meta.ApprovedAt, meta.Version, reviewedDiff, time.Now())
	return err
}

// Metadata retrieves the approval metadata for a reviewed commit. It returns
// (nil, nil) when no usable record exists.
func (s *postgresStore) Metadata(ctx context.Context, approvedSHA string) (*core.ApprovalMetadata, error) {
	query := `
		SELECT approved_sha, merge_base_sha, base_sha, base_ref, approved_at, version
		FROM approvals
		WHERE approved_sha = $1`

	row := s.db.QueryRowContext(ctx, query, approvedSHA)

	var m core.ApprovalMetadata
	err := row.Scan(&m.ApprovedSHA, &m.MergeBaseSHA, &m.BaseSHA, &m.BaseRef, &m.ApprovedAt, &m.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if !m.Valid() {
		return nil, nil
	}
	return &m, nil
}

// ReviewedDiff retrieves the diff blob persisted at approval time.
func (s *postgresStore) ReviewedDiff(ctx context.Context, approvedSHA string) (string, bool) {
	query := `SELECT reviewed_diff FROM approvals WHERE approved_sha = $1`

	var diff string
	if err := s.db.QueryRowContext(ctx, query, approvedSHA).Scan(&diff); err != nil {
		return "", false
	}
	if diff == "" {
		return "", false
	}
	return diff, true
}
