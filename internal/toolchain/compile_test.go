package toolchain

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeCompiler writes an empty file at the -o argument and reports code.
func fakeCompiler(t *testing.T, code int, stderr string) *fakeRunner {
	t.Helper()
	return &fakeRunner{fn: func(inv Invocation) (Outcome, error) {
		for i, a := range inv.Args {
			if a == "-o" && i+1 < len(inv.Args) && code == 0 {
				if err := os.WriteFile(inv.Args[i+1], []byte("\x7fELF"), 0o600); err != nil {
					return Outcome{}, err
				}
			}
		}
		return Outcome{ExitCode: code, Stderr: []byte(stderr)}, nil
	}}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCompileArgs(t *testing.T) {
	cases := []struct {
		wide bool
		want string
	}{
		{false, "a.c -Werror -o a.o -lpthread -ldl"},
		{true, "a.c -Werror -D_FILE_OFFSET_BITS=64 -o a.o -lpthread -ldl"},
	}
	for _, tc := range cases {
		chain := &Toolchain{CC: "gcc", WideOffsets: tc.wide}
		got := strings.Join(chain.CompileArgs("a.c", "a.o"), " ")
		if got != tc.want {
			t.Fatalf("CompileArgs(wide=%v) = %q, want %q", tc.wide, got, tc.want)
		}
	}
}

func TestBuildSuccessThenDispose(t *testing.T) {
	dir := t.TempDir()
	runner := fakeCompiler(t, 0, "")
	chain := &Toolchain{CC: "fake-cc", TempDir: dir, Runner: runner}

	art, err := chain.Build(context.Background(), "int main(void) { return 0; }\n")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if filepath.Dir(art.Source) != dir || filepath.Ext(art.Source) != ".c" {
		t.Fatalf("unexpected source path %q", art.Source)
	}
	if filepath.Dir(art.Output) != dir || filepath.Ext(art.Output) != ".o" {
		t.Fatalf("unexpected output path %q", art.Output)
	}
	data, err := os.ReadFile(art.Source)
	if err != nil {
		t.Fatalf("read source: %v", err)
	}
	if string(data) != "int main(void) { return 0; }\n" {
		t.Fatalf("source content = %q", data)
	}
	inv := runner.last()
	if inv.Name != "fake-cc" || inv.Args[0] != art.Source {
		t.Fatalf("unexpected invocation %q", inv.String())
	}

	if err := art.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if names := listDir(t, dir); len(names) != 0 {
		t.Fatalf("temporary files left behind: %v", names)
	}
	if err := art.Dispose(); err != nil {
		t.Fatalf("second Dispose: %v", err)
	}
}

func TestBuildFailureKeepsDiagnosticsAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	stderr := "/tmp/x.c:3:1: error: static assertion failed: \"sizeof(struct timespec) == 12\"\n    3 | _Static_assert(sizeof(struct timespec) == 12, \"sizeof(struct timespec) == 12\");\n      | ^~~~~~~~~~~~~~\n"
	runner := fakeCompiler(t, 1, stderr)
	chain := &Toolchain{CC: "fake-cc", TempDir: dir, Runner: runner}

	art, err := chain.Build(context.Background(), "broken")
	if art != nil {
		t.Fatalf("expected no artifact on failure, got %+v", art)
	}
	var failure *CompilationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("Build error = %T (%v), want *CompilationFailure", err, err)
	}
	if failure.Diagnostics != stderr {
		t.Fatalf("diagnostics were altered:\n%q\nwant\n%q", failure.Diagnostics, stderr)
	}
	if failure.ExitCode != 1 {
		t.Fatalf("ExitCode = %d, want 1", failure.ExitCode)
	}
	if len(failure.Lines()) != 3 {
		t.Fatalf("Lines() = %q, want 3 lines", failure.Lines())
	}
	if names := listDir(t, dir); len(names) != 0 {
		t.Fatalf("temporary files left behind: %v", names)
	}
	if runner.count() != 1 {
		t.Fatalf("compiler ran %d times, want exactly 1 (no retries)", runner.count())
	}
}

func TestBuildSpawnFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{fn: func(Invocation) (Outcome, error) {
		return Outcome{}, exec.ErrNotFound
	}}
	chain := &Toolchain{CC: "fake-cc", TempDir: dir, Runner: runner}
	if _, err := chain.Build(context.Background(), "x"); !errors.Is(err, exec.ErrNotFound) {
		t.Fatalf("Build error = %v, want exec.ErrNotFound", err)
	}
	if names := listDir(t, dir); len(names) != 0 {
		t.Fatalf("temporary files left behind: %v", names)
	}
}

func TestBuildUniqueNames(t *testing.T) {
	dir := t.TempDir()
	chain := &Toolchain{CC: "fake-cc", TempDir: dir, Runner: fakeCompiler(t, 0, "")}
	seen := make(map[string]bool)
	var arts []*Artifact
	for i := 0; i < 8; i++ {
		art, err := chain.Build(context.Background(), "x")
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		for _, p := range []string{art.Source, art.Output} {
			if seen[p] {
				t.Fatalf("path %q reused", p)
			}
			seen[p] = true
		}
		arts = append(arts, art)
	}
	for _, art := range arts {
		if err := art.Dispose(); err != nil {
			t.Fatalf("Dispose: %v", err)
		}
	}
}

func TestDisposeNeverCreated(t *testing.T) {
	dir := t.TempDir()
	art := &Artifact{
		Source: filepath.Join(dir, "never.c"),
		Output: filepath.Join(dir, "never.o"),
	}
	if err := art.Dispose(); err != nil {
		t.Fatalf("Dispose of never-created paths: %v", err)
	}
	var nilArt *Artifact
	if err := nilArt.Dispose(); err != nil {
		t.Fatalf("Dispose on nil artifact: %v", err)
	}
}

func TestArtifactRunReportsExitCode(t *testing.T) {
	runner := &fakeRunner{fn: func(inv Invocation) (Outcome, error) {
		return Outcome{ExitCode: 3, Stdout: []byte("major mismatch\n")}, nil
	}}
	art := &Artifact{Output: "/tmp/prog", runner: runner}
	_, err := art.Run(context.Background())
	var failure *ExecutionFailure
	if !errors.As(err, &failure) {
		t.Fatalf("Run error = %T (%v), want *ExecutionFailure", err, err)
	}
	if failure.ExitCode != 3 || !strings.Contains(failure.Output, "major mismatch") {
		t.Fatalf("unexpected failure %+v", failure)
	}
}

func requireCompiler(t *testing.T) *Toolchain {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("native compile checks run on linux only")
	}
	chain := Default()
	if err := chain.EnsureAvailable(); err != nil {
		t.Skip(err.Error())
	}
	chain.TempDir = t.TempDir()
	return chain
}

func TestBuildNativeCompiler(t *testing.T) {
	chain := requireCompiler(t)
	src := "#include <stddef.h>\n_Static_assert(sizeof(char) == 1, \"char\");\nint main(int argc, char* argv[]) {\nreturn 0;\n}\n"
	art, err := chain.Build(context.Background(), src)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer func() { _ = art.Dispose() }()
	if _, err := art.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestBuildNativeCompilerFailure(t *testing.T) {
	chain := requireCompiler(t)
	src := "_Static_assert(sizeof(char) == 2, \"char is two bytes\");\nint main(int argc, char* argv[]) {\nreturn 0;\n}\n"
	_, err := chain.Build(context.Background(), src)
	var failure *CompilationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("Build error = %T (%v), want *CompilationFailure", err, err)
	}
	if !strings.Contains(failure.Diagnostics, "char is two bytes") {
		t.Fatalf("diagnostics do not mention the assertion:\n%s", failure.Diagnostics)
	}
	if names := listDir(t, chain.TempDir); len(names) != 0 {
		t.Fatalf("temporary files left behind: %v", names)
	}
}

func TestNativeResolverFindsStdio(t *testing.T) {
	chain := requireCompiler(t)
	paths, err := NewResolver(chain.CC, nil).Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(paths) == 0 {
		t.Skip("compiler did not report include search paths")
	}
	if _, ok := paths.Find("stdio.h"); !ok {
		t.Fatalf("stdio.h not found in %q", paths)
	}
}
