package gitutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundedBuffer(t *testing.T) {
	t.Run("under the limit", func(t *testing.T) {
		b := &boundedBuffer{max: 16}
		n, err := b.Write([]byte("hello"))
		assert.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.False(t, b.truncated)
		assert.Equal(t, "hello", b.String())
	})

	t.Run("single write over the limit", func(t *testing.T) {
		b := &boundedBuffer{max: 4}
		n, err := b.Write([]byte("hello"))
		assert.NoError(t, err)
		// The writer never errors; it discards and records the overflow so
		// the process can run to completion.
		assert.Equal(t, 5, n)
		assert.True(t, b.truncated)
		assert.Equal(t, "hell", b.String())
	})

	t.Run("overflow across writes", func(t *testing.T) {
		b := &boundedBuffer{max: 8}
		_, _ = b.Write([]byte("12345678"))
		assert.False(t, b.truncated)
		_, _ = b.Write([]byte("9"))
		assert.True(t, b.truncated)
		assert.Equal(t, "12345678", b.String())
	})

	t.Run("large payload keeps prefix", func(t *testing.T) {
		b := &boundedBuffer{max: 10}
		_, _ = b.Write([]byte(strings.Repeat("a", 100)))
		assert.True(t, b.truncated)
		assert.Len(t, b.String(), 10)
	})
}
