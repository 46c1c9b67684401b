package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestColoredWithoutColor(t *testing.T) {
	prevColor, prevVersion := color.NoColor, Version
	color.NoColor = true
	defer func() { color.NoColor, Version = prevColor, prevVersion }()

	cases := []struct {
		version string
		want    string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"1.2.3+abc", "1.2.3+abc"},
		{"nightly", "nightly"},
	}
	for _, tc := range cases {
		Version = tc.version
		if got := Colored(); got != tc.want {
			t.Fatalf("Colored() with %q = %q, want %q", tc.version, got, tc.want)
		}
	}
}

func TestCommitOverride(t *testing.T) {
	prev := GitCommit
	defer func() { GitCommit = prev }()
	GitCommit = "abc123"
	if got := Commit(); got != "abc123" {
		t.Fatalf("Commit() = %q", got)
	}
}
