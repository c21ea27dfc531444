package rangediff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_EmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   \n  ", "\t\n"} {
		c := Parse(raw)
		assert.False(t, c.Stale())
		assert.Equal(t, "no changes detected", c.Summary())
	}
}

func TestParse_CleanRebase(t *testing.T) {
	raw := "1:  34bf046 =  1:  e0e7cca add retry logic\n" +
		"2:  f00ba12 =  2:  9acc811 fix typo in docs\n" +
		"3:  0c0ffee =  3:  badcafe bump deps\n"

	c := Parse(raw)
	assert.False(t, c.Stale())
	assert.Equal(t, 3, c.Identical)
	assert.Equal(t, "3 identical commits", c.Summary())
}

func TestParse_SingleIdenticalCommit(t *testing.T) {
	c := Parse("1:  34bf046 =  1:  e0e7cca add retry logic\n")
	assert.False(t, c.Stale())
	assert.Equal(t, "1 identical commit", c.Summary())
}

func TestParse_ModifiedCommitWithContinuationLines(t *testing.T) {
	raw := "1:  34bf046 =  1:  e0e7cca add retry logic\n" +
		"2:  f00ba12 !  2:  9acc811 rework error handling\n" +
		"    @@ internal/client.go: func retry\n" +
		"    -\told code\n" +
		"    +\tnew code\n" +
		"3:  0c0ffee =  3:  badcafe bump deps\n"

	c := Parse(raw)
	assert.True(t, c.Stale())
	assert.Equal(t, 1, c.Modified)
	assert.Equal(t, 2, c.Identical)
	// Indented diff detail must not be counted as commit records.
	assert.Equal(t, 0, c.Added)
	assert.Equal(t, 0, c.Removed)
	assert.Contains(t, c.Summary(), "1 modified")
}

func TestParse_StructuralChange(t *testing.T) {
	raw := "1:  34bf046 <  -:  ------- dropped commit\n" +
		"-:  ------- >  2:  bc01dea new commit\n"

	c := Parse(raw)
	assert.True(t, c.Stale())
	assert.Equal(t, 1, c.Removed)
	assert.Equal(t, 1, c.Added)
	assert.Contains(t, c.Summary(), "1 added")
	assert.Contains(t, c.Summary(), "1 removed")
}

func TestParse_UnknownLinesIgnored(t *testing.T) {
	raw := "warning: something unexpected\n" +
		"1:  34bf046 =  1:  e0e7cca ok\n" +
		"not a record at all\n"

	c := Parse(raw)
	assert.False(t, c.Stale())
	assert.Equal(t, 1, c.Identical)
}

func TestSummary_AllCategories(t *testing.T) {
	c := Classification{Modified: 2, Added: 1, Removed: 3}
	assert.Equal(t, "2 modified, 1 added, 3 removed", c.Summary())
}
