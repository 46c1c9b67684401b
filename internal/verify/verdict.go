package verify

import (
	"errors"
	"fmt"
	"strings"

	"abiverify/internal/cprog"
	"abiverify/internal/diag"
	"abiverify/internal/observ"
	"abiverify/internal/toolchain"
)

// Stage is a step of a single verification.
type Stage uint8

const (
	StageNone Stage = iota
	StageResolve
	StageSynthesize
	StageCompile
	StageRun
)

func (s Stage) String() string {
	switch s {
	case StageResolve:
		return "resolve"
	case StageSynthesize:
		return "synthesize"
	case StageCompile:
		return "compile"
	case StageRun:
		return "run"
	}
	return "none"
}

// MarshalText encodes the stage by name.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Verdict is the outcome of one case. Diagnostics holds the compiler's
// stderr line by line when compilation failed, the program's output when it
// ran and failed, and the error text otherwise.
type Verdict struct {
	Case        string   `json:"case" msgpack:"case"`
	Success     bool     `json:"success" msgpack:"success"`
	Diagnostics []string `json:"diagnostics,omitempty" msgpack:"diagnostics,omitempty"`
	// Stage is the last stage entered; on failure, the one that failed.
	Stage   Stage         `json:"stage" msgpack:"stage"`
	Error   string        `json:"error,omitempty" msgpack:"error,omitempty"`
	Timings observ.Report `json:"timings" msgpack:"timings"`

	// Err is the typed failure, for errors.As.
	Err error `json:"-" msgpack:"-"`
}

// FailedAssertions returns the messages of the static assertions the
// compiler rejected.
func (v Verdict) FailedAssertions() []string {
	return diag.FailedAssertions(diag.Parse(v.Diagnostics))
}

// Cause summarizes why the verdict failed in one line.
func (v Verdict) Cause() string {
	if v.Success {
		return ""
	}
	if failed := v.FailedAssertions(); len(failed) == 1 {
		return "assertion failed: " + failed[0]
	} else if len(failed) > 1 {
		return fmt.Sprintf("%d assertions failed, first: %s", len(failed), failed[0])
	}
	var missing *cprog.MissingHeaderError
	if errors.As(v.Err, &missing) {
		return fmt.Sprintf("missing header %s", missing.Header)
	}
	if v.Error != "" {
		return fmt.Sprintf("%s: %s", v.Stage, firstLine(v.Error))
	}
	return v.Stage.String() + " failed"
}

func failed(v Verdict, err error) Verdict {
	v.Success = false
	v.Err = err
	v.Error = err.Error()

	var compileErr *toolchain.CompilationFailure
	var execErr *toolchain.ExecutionFailure
	switch {
	case errors.As(err, &compileErr):
		v.Diagnostics = compileErr.Lines()
	case errors.As(err, &execErr):
		v.Diagnostics = execErr.Lines()
	}
	if len(v.Diagnostics) == 0 {
		v.Diagnostics = strings.Split(strings.TrimRight(err.Error(), "\n"), "\n")
	}
	return v
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
