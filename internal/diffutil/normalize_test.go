package diffutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_StripsIndexLines(t *testing.T) {
	in := "diff --git a/main.go b/main.go\n" +
		"index abc123..def456 100644\n" +
		"--- a/main.go\n" +
		"+++ b/main.go\n" +
		"@@ -1,3 +1,3 @@\n" +
		"-old line\n" +
		"+new line\n" +
		" context\n"

	want := "diff --git a/main.go b/main.go\n" +
		"--- a/main.go\n" +
		"+++ b/main.go\n" +
		"@@ -1,3 +1,3 @@\n" +
		"-old line\n" +
		"+new line\n" +
		" context\n"

	assert.Equal(t, want, Normalize(in))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty diff unchanged",
			in:   "",
			want: "",
		},
		{
			name: "index line without mode suffix",
			in:   "index 0a1b2c..3d4e5f\n+added\n",
			want: "+added\n",
		},
		{
			name: "indented index line is content, not metadata",
			in:   " index abc123..def456 100644\n",
			want: " index abc123..def456 100644\n",
		},
		{
			name: "added line mentioning index is preserved",
			in:   "+index abc123..def456 100644\n",
			want: "+index abc123..def456 100644\n",
		},
		{
			name: "non-hex identifiers are preserved",
			in:   "index zzz..yyy 100644\n",
			want: "index zzz..yyy 100644\n",
		},
		{
			name: "whitespace elsewhere untouched",
			in:   "@@ -1 +1 @@\n \t spaced context\t\n",
			want: "@@ -1 +1 @@\n \t spaced context\t\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"index abc123..def456 100644\ncontent\n",
		"diff --git a/x b/x\nindex 11..22\n@@ -1 +1 @@\n-a\n+b\n",
		"no metadata at all\n",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestEqual(t *testing.T) {
	a := "diff --git a/f b/f\nindex aaa111..bbb222 100644\n+line\n"
	b := "diff --git a/f b/f\nindex ccc333..ddd444 100644\n+line\n"
	assert.True(t, Equal(a, b))

	c := "diff --git a/f b/f\nindex ccc333..ddd444 100644\n+other\n"
	assert.False(t, Equal(a, c))
}

func TestDelta(t *testing.T) {
	out := Delta("+one\n", "+two\n")
	assert.Contains(t, out, "-+one")
	assert.Contains(t, out, "++two")
}
