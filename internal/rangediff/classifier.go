// Package rangediff interprets the output of a commit-range comparison
// (git range-diff) as a cheap stale / not-stale verdict. A range comparison
// can prove that the same logical changes still exist after a clean rebase
// even when a content diff against the moved base would show spurious
// differences, which lets the evaluator skip full diff reconciliation in the
// common "rebased, nothing edited" case.
package rangediff

import (
	"fmt"
	"regexp"
	"strings"
)

// recordRegexp matches one commit record of range-diff output:
//
//	1:  34bf046 =  1:  e0e7cca subject line
//	2:  f00ba12 !  2:  9acc811 reworded commit
//	-:  ------- >  3:  bc01dea new commit
//
// Continuation lines (the embedded diff of a "!" record) are indented and
// intentionally not matched.
var recordRegexp = regexp.MustCompile(`^(?:\d+|-+):\s+(?:[0-9a-f]+|-+)\s+([=!<>])\s+(?:\d+|-+):\s+(?:[0-9a-f]+|-+)`)

// Classification tallies the per-commit relations found in a comparison of
// two commit ranges.
type Classification struct {
	Identical int
	Modified  int
	Added     int
	Removed   int
}

// Stale reports whether the comparison shows any semantic change. An empty
// comparison is not stale by definition.
func (c Classification) Stale() bool {
	return c.Modified+c.Added+c.Removed > 0
}

// Summary renders the tally for humans: the non-zero change categories, or
// the identical-commit count when nothing changed.
func (c Classification) Summary() string {
	if c.Stale() {
		parts := make([]string, 0, 3)
		if c.Modified > 0 {
			parts = append(parts, fmt.Sprintf("%d modified", c.Modified))
		}
		if c.Added > 0 {
			parts = append(parts, fmt.Sprintf("%d added", c.Added))
		}
		if c.Removed > 0 {
			parts = append(parts, fmt.Sprintf("%d removed", c.Removed))
		}
		return strings.Join(parts, ", ")
	}
	if c.Identical == 0 {
		return "no changes detected"
	}
	if c.Identical == 1 {
		return "1 identical commit"
	}
	return fmt.Sprintf("%d identical commits", c.Identical)
}

// Parse scans raw range-diff output line by line and tallies commit records.
// Blank lines and indented continuation lines are skipped; lines that match
// no known shape are ignored so an unexpected output format degrades to "no
// evidence found" instead of failing the run.
func Parse(raw string) Classification {
	var c Classification
	if strings.TrimSpace(raw) == "" {
		return c
	}

	for _, line := range strings.Split(raw, "\n") {
		if line == "" || line[0] == ' ' || line[0] == '\t' {
			continue
		}
		m := recordRegexp.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		switch m[1] {
		case "=":
			c.Identical++
		case "!":
			c.Modified++
		case ">":
			c.Added++
		case "<":
			c.Removed++
		}
	}
	return c
}
