package core

// RepoConfig holds per-repository overrides loaded from an optional
// .review-warden.yml at the root of the checked-out repository.
type RepoConfig struct {
	// FastPath enables the range-diff fast path. Disabling it forces every
	// evaluation through full diff comparison.
	FastPath bool `yaml:"fast_path"`
	// MessagePrefix is prepended to the dismissal message, e.g. a team tag.
	MessagePrefix string `yaml:"message_prefix"`
	// AttemptRebase controls whether a scratch rebase is tried when the
	// two-dot diffs still disagree and the platform flags the PR rebaseable.
	AttemptRebase bool `yaml:"attempt_rebase"`
}

// DefaultRepoConfig returns the configuration used when a repository ships no
// .review-warden.yml of its own.
func DefaultRepoConfig() *RepoConfig {
	return &RepoConfig{
		FastPath:      true,
		AttemptRebase: true,
	}
}
