// Package cache stores approval artifacts (metadata and the reviewed diff
// blob) as plain files under a directory. In CI the surrounding workflow's
// cache step is what actually moves that directory across job runs; locally
// it is just a folder. A missing or unreadable artifact is an expected cache
// miss, never an error the caller has to handle.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/sevigo/review-warden/internal/core"
)

var keyRegexp = regexp.MustCompile(`^[0-9a-fA-F]{7,64}$`)

// Store reads and writes approval artifacts keyed by the approved commit SHA.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a Store rooted at dir, creating the directory if needed.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Metadata loads the ApprovalMetadata stored for the given approved SHA.
// A miss, a malformed record, or a schema version mismatch all return
// (nil, nil): the caller falls open to the slow path.
func (s *Store) Metadata(_ context.Context, approvedSHA string) (*core.ApprovalMetadata, error) {
	path, err := s.artifactPath(approvedSHA, "meta.json")
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		s.logger.Warn("unreadable metadata artifact, treating as miss", "path", path, "error", err)
		return nil, nil
	}

	var meta core.ApprovalMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		s.logger.Warn("malformed metadata artifact, treating as miss", "path", path, "error", err)
		return nil, nil
	}
	if !meta.Valid() {
		s.logger.Info("metadata schema version mismatch, treating as miss",
			"found", meta.Version, "expected", core.ApprovalMetadataVersion)
		return nil, nil
	}
	return &meta, nil
}

// ReviewedDiff loads the cached reviewed-diff blob for the given approved SHA.
func (s *Store) ReviewedDiff(_ context.Context, approvedSHA string) (string, bool) {
	path, err := s.artifactPath(approvedSHA, "diff")
	if err != nil {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// SaveMetadata persists the metadata record for its approved SHA.
func (s *Store) SaveMetadata(_ context.Context, meta *core.ApprovalMetadata) error {
	path, err := s.artifactPath(meta.ApprovedSHA, "meta.json")
	if err != nil {
		return err
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode approval metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("failed to write approval metadata: %w", err)
	}
	return nil
}

// SaveReviewedDiff persists the reviewed-diff blob under the approved SHA.
func (s *Store) SaveReviewedDiff(_ context.Context, approvedSHA, diff string) error {
	path, err := s.artifactPath(approvedSHA, "diff")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(diff), 0o640); err != nil {
		return fmt.Errorf("failed to write reviewed diff: %w", err)
	}
	return nil
}

// artifactPath validates the SHA key before using it as a file name.
func (s *Store) artifactPath(approvedSHA, suffix string) (string, error) {
	if !keyRegexp.MatchString(approvedSHA) {
		return "", fmt.Errorf("invalid cache key %q", approvedSHA)
	}
	return filepath.Join(s.dir, approvedSHA+"."+suffix), nil
}
