// Package verify runs verification cases: it synthesizes a program for a
// case, compiles it, runs it when the case asks for that, and reduces the
// outcome to a Verdict. Temporary files are removed on every path.
package verify

import (
	"context"

	"go.uber.org/zap"

	"abiverify/internal/cprog"
	"abiverify/internal/observ"
	"abiverify/internal/toolchain"
)

// Harness runs cases against one toolchain. A zero Harness uses
// toolchain.Default() and its shared search paths.
type Harness struct {
	Toolchain *toolchain.Toolchain
	// Paths overrides the toolchain's search paths.
	Paths cprog.SearchPaths
	// OnStage is called as each stage starts. It must be safe for
	// concurrent use when the harness is shared.
	OnStage func(c Case, s Stage)
}

// Run verifies c with tc.
func Run(ctx context.Context, tc *toolchain.Toolchain, c Case) Verdict {
	h := Harness{Toolchain: tc}
	return h.Run(ctx, c)
}

type step struct {
	stage Stage
	fn    func() error
}

// Run verifies c. The verdict is final; the program and its artifact are
// gone by the time Run returns.
func (h *Harness) Run(ctx context.Context, c Case) (v Verdict) {
	tc := h.Toolchain
	if tc == nil {
		tc = toolchain.Default()
	}
	paths := h.Paths
	if paths == nil {
		paths = tc.SearchPaths()
	}

	v = Verdict{Case: c.Name()}
	timer := observ.NewTimer()
	prog := cprog.New(paths)
	defer func() {
		if err := prog.Close(); err != nil {
			Logger().Warn("cleanup failed", zap.String("case", v.Case), zap.Error(err))
		}
		v.Timings = timer.Report()
	}()

	var art *toolchain.Artifact
	steps := []step{
		{StageResolve, func() error {
			_, err := paths.Resolve(ctx)
			return err
		}},
		{StageSynthesize, func() error { return c.Build(ctx, prog) }},
		{StageCompile, func() error {
			var err error
			art, err = prog.Compile(ctx, tc)
			return err
		}},
	}
	if c.Runtime() {
		steps = append(steps, step{StageRun, func() error {
			out, err := art.Run(ctx)
			if err != nil {
				return err
			}
			if checker, ok := c.(OutputChecker); ok {
				return checker.CheckOutput(string(out.Stdout))
			}
			return nil
		}})
	}

	for _, s := range steps {
		v.Stage = s.stage
		if h.OnStage != nil {
			h.OnStage(c, s.stage)
		}
		if err := timer.Measure(s.stage.String(), s.fn); err != nil {
			Logger().Debug("case failed",
				zap.String("case", v.Case),
				zap.Stringer("stage", s.stage),
				zap.Error(err))
			return failed(v, err)
		}
	}
	v.Success = true
	Logger().Debug("case passed", zap.String("case", v.Case))
	return v
}
