package verify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"abiverify/internal/cprog"
	"abiverify/internal/layout"
	"abiverify/internal/toolchain"
)

const fakeCC = "fake-cc"

// scriptedRunner plays the compiler and the compiled program.
type scriptedRunner struct {
	mu            sync.Mutex
	compileExit   int
	compileStderr string
	runExit       int
	runStdout     string
	compiles      int
	runs          int
	sources       []string
}

func (r *scriptedRunner) Run(_ context.Context, inv toolchain.Invocation) (toolchain.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv.Name == fakeCC {
		r.compiles++
		if src, err := os.ReadFile(inv.Args[0]); err == nil {
			r.sources = append(r.sources, string(src))
		}
		return toolchain.Outcome{ExitCode: r.compileExit, Stderr: []byte(r.compileStderr)}, nil
	}
	r.runs++
	return toolchain.Outcome{ExitCode: r.runExit, Stdout: []byte(r.runStdout)}, nil
}

func includeDir(t *testing.T, headers ...string) toolchain.SearchPathSet {
	t.Helper()
	dir := t.TempDir()
	for _, h := range headers {
		p := filepath.Join(dir, filepath.FromSlash(h))
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return toolchain.SearchPathSet{dir}
}

func fakeHarness(t *testing.T, r *scriptedRunner, headers ...string) (*Harness, string) {
	t.Helper()
	tmp := t.TempDir()
	return &Harness{
		Toolchain: &toolchain.Toolchain{CC: fakeCC, TempDir: tmp, Runner: r},
		Paths:     includeDir(t, headers...),
	}, tmp
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("%d temporary files left in %s", len(entries), dir)
	}
}

func timespec64(size int) layout.Struct {
	return layout.Struct{
		Name:    "timespec64",
		CType:   "struct timespec",
		Headers: []string{"time.h"},
		Fields: []layout.Field{
			{Name: "tv_sec", Offset: 0, Size: 8},
			{Name: "tv_nsec", Offset: 8, Size: 8},
		},
		Size: size,
	}
}

func TestStructCaseAssertions(t *testing.T) {
	c := StructCase{Layout: timespec64(12)}
	want := []Assertion{
		{"offsetof(struct timespec, tv_sec) == 0", "timespec64: offsetof(struct timespec, tv_sec) == 0"},
		{"offsetof(struct timespec, tv_nsec) == 8", "timespec64: offsetof(struct timespec, tv_nsec) == 8"},
		{"sizeof(struct timespec) == 12", "timespec64: sizeof(struct timespec) == 12"},
	}
	if got := c.Assertions(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Assertions() = %#v\nwant %#v", got, want)
	}

	c.FieldSizes = true
	c.Layout.Fields = append(c.Layout.Fields, layout.Field{Name: "__pad", Offset: 16, Size: 4, Private: true})
	if n := len(c.Assertions()); n != 5 {
		t.Fatalf("with field sizes: %d assertions, want 5", n)
	}
}

func TestRunSuccess(t *testing.T) {
	r := &scriptedRunner{}
	h, tmp := fakeHarness(t, r, "stddef.h", "time.h")
	var stages []Stage
	h.OnStage = func(_ Case, s Stage) { stages = append(stages, s) }

	v := h.Run(context.Background(), StructCase{Layout: timespec64(16), Guard: "__x86_64__"})
	if !v.Success || v.Err != nil {
		t.Fatalf("verdict = %+v", v)
	}
	if v.Cause() != "" {
		t.Fatalf("Cause() on success = %q", v.Cause())
	}
	if want := []Stage{StageResolve, StageSynthesize, StageCompile}; !reflect.DeepEqual(stages, want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	if len(v.Timings.Phases) != 3 || v.Timings.Phases[2].Name != "compile" {
		t.Fatalf("timings = %+v", v.Timings)
	}
	src := r.sources[0]
	for _, line := range []string{
		"#include <stddef.h>\n#include <time.h>\n#ifdef __x86_64__\n",
		`_Static_assert(sizeof(struct timespec) == 16, "timespec64: sizeof(struct timespec) == 16");`,
		"#else\n#error \"timespec64: compiler does not define __x86_64__\"\n#endif\nint main(int argc, char* argv[]) {\nreturn 0;\n}\n",
	} {
		if !strings.Contains(src, line) {
			t.Fatalf("source lacks %q:\n%s", line, src)
		}
	}
	if r.runs != 0 {
		t.Fatal("static case must not be executed")
	}
	assertNoTempFiles(t, tmp)
}

func TestRunCompileFailureKeepsDiagnostics(t *testing.T) {
	stderr := "/tmp/abiverify-1.c:5:1: error: static assertion failed: \"timespec64: sizeof(struct timespec) == 12\"\n" +
		"    5 | _Static_assert(sizeof(struct timespec) == 12, \"timespec64: sizeof(struct timespec) == 12\");\n" +
		"      | ^~~~~~~~~~~~~~\n"
	r := &scriptedRunner{compileExit: 1, compileStderr: stderr}
	h, tmp := fakeHarness(t, r, "stddef.h", "time.h")

	v := h.Run(context.Background(), StructCase{Layout: timespec64(12)})
	if v.Success {
		t.Fatal("expected failure")
	}
	if v.Stage != StageCompile {
		t.Fatalf("Stage = %v, want compile", v.Stage)
	}
	if want := strings.Split(strings.TrimRight(stderr, "\n"), "\n"); !reflect.DeepEqual(v.Diagnostics, want) {
		t.Fatalf("Diagnostics = %q\nwant %q", v.Diagnostics, want)
	}
	var failure *toolchain.CompilationFailure
	if !errors.As(v.Err, &failure) || failure.Diagnostics != stderr {
		t.Fatalf("Err = %v, want *CompilationFailure with verbatim stderr", v.Err)
	}
	if got := v.Cause(); got != "assertion failed: timespec64: sizeof(struct timespec) == 12" {
		t.Fatalf("Cause() = %q", got)
	}
	assertNoTempFiles(t, tmp)
}

func TestRunMissingHeaderNeverCompiles(t *testing.T) {
	r := &scriptedRunner{}
	h, tmp := fakeHarness(t, r, "stddef.h")

	v := h.Run(context.Background(), StructCase{Layout: timespec64(16)})
	var missing *cprog.MissingHeaderError
	if v.Success || !errors.As(v.Err, &missing) || missing.Header != "time.h" {
		t.Fatalf("verdict = %+v, want missing time.h", v)
	}
	if v.Stage != StageSynthesize || r.compiles != 0 {
		t.Fatalf("stage %v, %d compiles; want synthesize and none", v.Stage, r.compiles)
	}
	if len(v.Diagnostics) != 1 || !strings.Contains(v.Diagnostics[0], "time.h") {
		t.Fatalf("Diagnostics = %q", v.Diagnostics)
	}
	if v.Cause() != "missing header time.h" {
		t.Fatalf("Cause() = %q", v.Cause())
	}
	assertNoTempFiles(t, tmp)
}

func TestRunInvalidDescriptor(t *testing.T) {
	h, _ := fakeHarness(t, &scriptedRunner{}, "stddef.h")
	bad := layout.Struct{Name: "bad", CType: "struct bad", Fields: []layout.Field{{Name: "a"}, {Name: "a"}}}
	v := h.Run(context.Background(), StructCase{Layout: bad})
	var lerr *layout.LayoutError
	if v.Success || !errors.As(v.Err, &lerr) {
		t.Fatalf("verdict = %+v, want *layout.LayoutError", v)
	}
}

func TestExprCase(t *testing.T) {
	r := &scriptedRunner{}
	h, _ := fakeHarness(t, r, "sys/types.h")
	c := ExprCase{
		Label:    "widths",
		Includes: cprog.IncludeSpec{Headers: []string{"sys/types.h"}},
		Asserts:  []Assertion{{Cond: "sizeof(off_t) == 8"}, {Cond: "1", Message: "custom"}},
	}
	if v := h.Run(context.Background(), c); !v.Success {
		t.Fatalf("verdict = %+v", v)
	}
	if !strings.Contains(r.sources[0], `_Static_assert(sizeof(off_t) == 8, "widths: sizeof(off_t) == 8");`) ||
		!strings.Contains(r.sources[0], `_Static_assert(1, "custom");`) {
		t.Fatalf("source:\n%s", r.sources[0])
	}

	empty := ExprCase{Label: "empty"}
	if v := h.Run(context.Background(), empty); v.Success {
		t.Fatal("case without assertions must fail")
	}
}

func TestRuntimeCase(t *testing.T) {
	body := func(p *cprog.Program) { p.AddCall("", "puts", `"7"`) }
	cases := []struct {
		name    string
		runner  *scriptedRunner
		check   func(string) error
		success bool
		diag    string
	}{
		{"passes", &scriptedRunner{runStdout: "7\n"}, nil, true, ""},
		{"nonzero exit", &scriptedRunner{runExit: 3, runStdout: "mismatch at 1\n"}, nil, false, "mismatch at 1"},
		{"output rejected", &scriptedRunner{runStdout: "8\n"}, func(out string) error {
			if out != "7\n" {
				return errors.New("want 7")
			}
			return nil
		}, false, "want 7"},
	}
	for _, tc := range cases {
		h, tmp := fakeHarness(t, tc.runner, "stdio.h")
		c := RuntimeCase{Label: tc.name, Includes: cprog.IncludeSpec{Headers: []string{"stdio.h"}}, Body: body, Check: tc.check}
		v := h.Run(context.Background(), c)
		if v.Success != tc.success {
			t.Fatalf("%s: Success = %v, want %v (%+v)", tc.name, v.Success, tc.success, v)
		}
		if tc.runner.runs != 1 {
			t.Fatalf("%s: program ran %d times", tc.name, tc.runner.runs)
		}
		if !tc.success {
			if v.Stage != StageRun || len(v.Diagnostics) == 0 || v.Diagnostics[0] != tc.diag {
				t.Fatalf("%s: stage %v diagnostics %q", tc.name, v.Stage, v.Diagnostics)
			}
		}
		if !strings.Contains(tc.runner.sources[0], "puts(\"7\");\nreturn 0;\n}\n") {
			t.Fatalf("%s: source:\n%s", tc.name, tc.runner.sources[0])
		}
		assertNoTempFiles(t, tmp)
	}
}

func TestStageText(t *testing.T) {
	b, err := StageCompile.MarshalText()
	if err != nil || string(b) != "compile" {
		t.Fatalf("MarshalText = %q, %v", b, err)
	}
	if StageNone.String() != "none" {
		t.Fatalf("StageNone = %q", StageNone.String())
	}
}
