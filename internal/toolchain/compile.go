package toolchain

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

const (
	sourcePattern = "abiverify-*.c"
	outputPattern = "abiverify-*.o"
	wideOffsetDef = "-D_FILE_OFFSET_BITS=64"
)

// CompileArgs returns the compiler arguments used to build src into out.
// Warnings are errors; pthread and libdl are always linked.
func (tc *Toolchain) CompileArgs(src, out string) []string {
	args := []string{src, "-Werror"}
	if tc != nil && tc.WideOffsets {
		args = append(args, wideOffsetDef)
	}
	return append(args, "-o", out, "-lpthread", "-ldl")
}

// Build writes source to a fresh temporary file and compiles it into a
// fresh temporary executable. On any failure both files are removed before
// returning; on success the caller owns the returned Artifact and must
// Dispose it.
func (tc *Toolchain) Build(ctx context.Context, source string) (*Artifact, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	art := &Artifact{runner: tc.runner()}
	built := false
	defer func() {
		if !built {
			_ = art.Dispose()
		}
	}()

	src, err := os.CreateTemp(tc.tempDir(), sourcePattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary source: %w", err)
	}
	art.Source = src.Name()
	if _, err := src.WriteString(source); err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("failed to write temporary source %q: %w", art.Source, err)
	}
	if err := src.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temporary source %q: %w", art.Source, err)
	}

	// reserve a unique output name; the compiler overwrites it
	out, err := os.CreateTemp(tc.tempDir(), outputPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary output: %w", err)
	}
	art.Output = out.Name()
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temporary output %q: %w", art.Output, err)
	}

	inv := Invocation{Name: tc.compiler(), Args: tc.CompileArgs(art.Source, art.Output)}
	log := Logger().With(zap.String("cc", inv.Name))
	log.Debug("compiling", zap.String("cmd", inv.String()))

	res, err := tc.runner().Run(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", inv.Name, err)
	}
	if res.ExitCode != 0 {
		log.Debug("compilation failed", zap.Int("exit_code", res.ExitCode))
		return nil, &CompilationFailure{
			Command:     inv.String(),
			ExitCode:    res.ExitCode,
			Diagnostics: string(res.Stderr),
		}
	}
	built = true
	return art, nil
}
