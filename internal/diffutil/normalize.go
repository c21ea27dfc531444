// Package diffutil provides helpers for comparing unified diffs.
package diffutil

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// indexLineRegexp matches git's blob-index header lines, e.g.
// "index 3f5a1c2..9b0d4e7 100644". These encode object hashes that change on
// every rebase even when the file contents a reviewer saw are identical, so
// they must not participate in diff equality.
var indexLineRegexp = regexp.MustCompile(`^index [0-9a-f]+\.\.[0-9a-f]+( [0-7]+)?$`)

// Normalize strips blob-index header lines from a unified diff so that two
// diffs covering the same file contents compare byte-equal. Every other line,
// including whitespace, is preserved verbatim. Normalize is pure and
// idempotent.
func Normalize(diff string) string {
	if diff == "" {
		return diff
	}

	lines := strings.Split(diff, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if indexLineRegexp.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// Equal reports whether two diffs are semantically equal, i.e. byte-equal
// after normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Delta renders a unified diff between two already-normalized diffs for log
// output. It is purely diagnostic; the verdict never depends on it.
func Delta(reviewed, current string) string {
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(reviewed),
		B:        difflib.SplitLines(current),
		FromFile: "reviewed",
		ToFile:   "current",
		Context:  2,
	})
	if err != nil {
		return ""
	}
	return out
}
