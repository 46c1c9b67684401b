package toolchain

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Version asks the compiler for its version string, e.g. "13.2.0".
func (tc *Toolchain) Version(ctx context.Context) (string, error) {
	inv := Invocation{Name: tc.compiler(), Args: []string{"-dumpfullversion", "-dumpversion"}}
	out, err := tc.runner().Run(ctx, inv)
	if err != nil {
		return "", fmt.Errorf("%s: %w", inv.Name, err)
	}
	if out.ExitCode != 0 {
		return "", fmt.Errorf("%s: version query exited with code %d: %s", inv.Name, out.ExitCode, strings.TrimSpace(string(out.Stderr)))
	}
	v := strings.TrimSpace(string(out.Stdout))
	if i := strings.IndexByte(v, '\n'); i >= 0 {
		v = v[:i]
	}
	if v == "" {
		return "", fmt.Errorf("%s: empty version output", inv.Name)
	}
	return v, nil
}

// CheckMinVersion fails when the compiler is older than minimum.
// An empty minimum always passes.
func (tc *Toolchain) CheckMinVersion(ctx context.Context, minimum string) error {
	if strings.TrimSpace(minimum) == "" {
		return nil
	}
	want := canonicalVersion(minimum)
	if want == "" {
		return fmt.Errorf("invalid minimum compiler version %q", minimum)
	}
	got, err := tc.Version(ctx)
	if err != nil {
		return err
	}
	have := canonicalVersion(got)
	if have == "" {
		return fmt.Errorf("%s: unrecognized version %q", tc.compiler(), got)
	}
	if semver.Compare(have, want) < 0 {
		return fmt.Errorf("%s %s is older than required %s", tc.compiler(), got, minimum)
	}
	return nil
}

// canonicalVersion maps "13", "13.2" or "v13.2.0" to "v13.2.0".
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}
