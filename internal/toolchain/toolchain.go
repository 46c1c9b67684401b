package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// DefaultCompiler is the compiler used when none is configured.
const DefaultCompiler = "gcc"

// Invocation describes a single external process run.
type Invocation struct {
	Name  string
	Args  []string
	Stdin string
	Dir   string
}

// String renders the invocation as a shell-like command line.
func (inv Invocation) String() string {
	if len(inv.Args) == 0 {
		return inv.Name
	}
	return inv.Name + " " + strings.Join(inv.Args, " ")
}

// Outcome holds what a finished process produced.
type Outcome struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Runner executes one process to completion. Output streams are fully
// drained before the exit status is reported. A non-zero exit is not an
// error; the error return is reserved for failures to start or wait.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Outcome, error)
}

// ExecRunner runs processes with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, inv Invocation) (Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	// #nosec G204 -- compiler and arguments come from the verifier configuration
	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
	cmd.Dir = inv.Dir
	if inv.Stdin != "" {
		cmd.Stdin = strings.NewReader(inv.Stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	out := Outcome{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, err
	}
	return out, nil
}

// Toolchain is a configured C compiler.
type Toolchain struct {
	// CC is the compiler driver, e.g. "gcc" or "clang".
	CC string
	// TempDir holds generated sources and executables. Empty means os.TempDir().
	TempDir string
	// WideOffsets forces -D_FILE_OFFSET_BITS=64. Descriptors always assume
	// a 64-bit off_t, which 32-bit hosts only provide behind this macro.
	WideOffsets bool
	// StrictSearchPaths turns an empty include search list into an error.
	StrictSearchPaths bool
	// Runner spawns processes. Nil means ExecRunner.
	Runner Runner
	// Paths overrides the shared per-compiler resolver.
	Paths *Resolver
}

// New returns a toolchain for cc with host defaults.
func New(cc string) *Toolchain {
	if strings.TrimSpace(cc) == "" {
		cc = DefaultCompiler
	}
	return &Toolchain{
		CC:          cc,
		WideOffsets: strconv.IntSize == 32,
	}
}

// Default returns a toolchain for $CC, falling back to gcc.
func Default() *Toolchain {
	return New(os.Getenv("CC"))
}

// EnsureAvailable reports whether the compiler driver can be found in PATH.
func (tc *Toolchain) EnsureAvailable() error {
	if _, err := exec.LookPath(tc.compiler()); err != nil {
		return fmt.Errorf("%s not found; install with: sudo apt-get update && sudo apt-get install -y build-essential", tc.compiler())
	}
	return nil
}

// SearchPaths returns the resolver used for header lookups.
func (tc *Toolchain) SearchPaths() *Resolver {
	if tc.Paths != nil {
		return tc.Paths
	}
	return sharedResolver(tc)
}

func (tc *Toolchain) compiler() string {
	if tc == nil || strings.TrimSpace(tc.CC) == "" {
		return DefaultCompiler
	}
	return tc.CC
}

func (tc *Toolchain) runner() Runner {
	if tc == nil || tc.Runner == nil {
		return ExecRunner{}
	}
	return tc.Runner
}

func (tc *Toolchain) tempDir() string {
	if tc == nil || tc.TempDir == "" {
		return os.TempDir()
	}
	return tc.TempDir
}

type sharedKey struct {
	cc     string
	strict bool
}

var (
	sharedMu        sync.Mutex
	sharedResolvers = make(map[sharedKey]*Resolver)
)

// sharedResolver returns the process-wide resolver for the toolchain's
// compiler and strictness. Every resolver for one compiler shares a single
// discovery; the first toolchain to ask decides the runner used for it.
func sharedResolver(tc *Toolchain) *Resolver {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	key := sharedKey{cc: tc.compiler(), strict: tc.StrictSearchPaths}
	if r, ok := sharedResolvers[key]; ok {
		return r
	}
	var r *Resolver
	if other, ok := sharedResolvers[sharedKey{cc: key.cc, strict: !key.strict}]; ok {
		r = other.withStrict(key.strict)
	} else {
		r = NewResolver(key.cc, tc.runner())
		r.Strict = key.strict
	}
	sharedResolvers[key] = r
	return r
}
