package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Artifact is a compiled executable together with the temporary source it
// was built from. It is owned by whoever called Build; Dispose removes both
// files and is safe to call any number of times.
type Artifact struct {
	Source string
	Output string

	runner Runner
	once   sync.Once
	err    error
}

// Run executes the compiled program. A non-zero exit is reported as
// *ExecutionFailure carrying the program's combined stdout and stderr.
func (a *Artifact) Run(ctx context.Context, args ...string) (Outcome, error) {
	if a == nil || a.Output == "" {
		return Outcome{}, fmt.Errorf("no compiled artifact to run")
	}
	runner := a.runner
	if runner == nil {
		runner = ExecRunner{}
	}
	out, err := runner.Run(ctx, Invocation{Name: a.Output, Args: args})
	if err != nil {
		return out, fmt.Errorf("run %s: %w", a.Output, err)
	}
	if out.ExitCode != 0 {
		return out, &ExecutionFailure{
			Path:     a.Output,
			ExitCode: out.ExitCode,
			Output:   string(out.Stdout) + string(out.Stderr),
		}
	}
	return out, nil
}

// Dispose deletes the source and the executable. Paths that were never
// created are skipped.
func (a *Artifact) Dispose() error {
	if a == nil {
		return nil
	}
	a.once.Do(func() {
		a.err = errors.Join(removeIfExists(a.Source), removeIfExists(a.Output))
		if a.err != nil {
			Logger().Warn("failed to remove temporary files",
				zap.String("source", a.Source),
				zap.String("output", a.Output),
				zap.Error(a.err))
		}
	})
	return a.err
}

func removeIfExists(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
