package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRepoConfig(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := LoadRepoConfig(dir)
		assert.ErrorIs(t, err, ErrConfigNotFound)
		require.NotNil(t, cfg)
		assert.True(t, cfg.FastPath)
		assert.True(t, cfg.AttemptRebase)
		assert.Empty(t, cfg.MessagePrefix)
	})

	t.Run("overrides applied over defaults", func(t *testing.T) {
		dir := t.TempDir()
		content := "fast_path: false\nmessage_prefix: \"[platform-team]\"\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".review-warden.yml"), []byte(content), 0600))

		cfg, err := LoadRepoConfig(dir)
		require.NoError(t, err)
		assert.False(t, cfg.FastPath)
		assert.Equal(t, "[platform-team]", cfg.MessagePrefix)
		// Unset keys keep their defaults.
		assert.True(t, cfg.AttemptRebase)
	})

	t.Run("malformed yaml is a parse error", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".review-warden.yml"), []byte("fast_path: [oops"), 0600))

		_, err := LoadRepoConfig(dir)
		assert.ErrorIs(t, err, ErrConfigParsing)
	})
}
