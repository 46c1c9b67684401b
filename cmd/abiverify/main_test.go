package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"abiverify/internal/verify"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags puts every flag of cmd and its subcommands back to its
// default, since rootCmd is shared between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestProgressModeFlag(t *testing.T) {
	cases := []struct {
		in   string
		want progressMode
		err  bool
	}{
		{"", progressAuto, false},
		{"AUTO", progressAuto, false},
		{"on", progressOn, false},
		{" off ", progressOff, false},
		{"sometimes", progressAuto, true},
	}
	for _, tc := range cases {
		mode := progressAuto
		err := mode.Set(tc.in)
		if (err != nil) != tc.err || mode != tc.want {
			t.Fatalf("Set(%q) = %q, %v", tc.in, mode, err)
		}
	}
	if progressOff.draws() || !progressOn.draws() {
		t.Fatal("explicit ui modes ignored")
	}
	if _, err := execute(t, "check", "--ui", "sometimes"); err == nil || !strings.Contains(err.Error(), "expected auto, on or off") {
		t.Fatalf("bad --ui value: %v", err)
	}
}

func TestListWithManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "abiverify.toml")
	body := `
[suite]
builtin = ["stat", "devnum"]

[[struct]]
name = "timespec64"
c_type = "struct timespec"
headers = ["time.h"]
size = 16
  [[struct.field]]
  name = "tv_sec"
  offset = 0
  size = 8
  [[struct.field]]
  name = "tv_nsec"
  offset = 8
  size = 8
`
	if err := os.WriteFile(manifest, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "list", "--config", manifest, "--target", "x86_64-linux-gnu", "--color", "off")
	if err != nil {
		t.Fatalf("list: %v\n%s", err, out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("list output:\n%s", out)
	}
	for i, prefix := range []string{"stat ", "devnum ", "timespec64 "} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Fatalf("line %d = %q, want prefix %q", i, lines[i], prefix)
		}
	}
	if !strings.Contains(lines[2], "struct timespec, 16 bytes, 3 assertions") {
		t.Fatalf("timespec64 detail = %q", lines[2])
	}
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "--format", "json", "--color", "off")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if payload.Tool != "abiverify" || payload.Version == "" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestCaseKind(t *testing.T) {
	cases := []struct {
		c    verify.Case
		want string
	}{
		{verify.StructCase{}, "layout"},
		{verify.ExprCase{}, "assert"},
		{verify.RuntimeCase{}, "runtime"},
	}
	for _, tc := range cases {
		if got := caseKind(tc.c); got != tc.want {
			t.Fatalf("caseKind(%T) = %q, want %q", tc.c, got, tc.want)
		}
	}
}
