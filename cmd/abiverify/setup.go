package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"abiverify/internal/checks"
	"abiverify/internal/config"
	"abiverify/internal/layout"
	"abiverify/internal/toolchain"
	"abiverify/internal/verify"
)

// env is what every command needs: the manifest (if any), the toolchain
// and the target for built-in descriptors.
type env struct {
	manifest *config.Manifest
	cfg      config.Config
	tc       *toolchain.Toolchain
	target   layout.Target
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	flags := cmd.Root().PersistentFlags()
	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	e := &env{}
	if configPath != "" {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		e.manifest = &config.Manifest{Path: configPath, Root: filepath.Dir(configPath), Config: cfg}
	} else {
		m, ok, err := config.Load(".")
		if err != nil {
			return nil, err
		}
		if ok {
			e.manifest = m
		}
	}
	if e.manifest != nil {
		e.cfg = e.manifest.Config
	}

	cc, err := flags.GetString("cc")
	if err != nil {
		return nil, err
	}
	if cc == "" {
		cc = e.cfg.Toolchain.CC
	}
	if cc != "" {
		e.tc = toolchain.New(cc)
	} else {
		e.tc = toolchain.Default()
	}
	e.tc.TempDir = e.cfg.Toolchain.TempDir
	e.tc.StrictSearchPaths = e.cfg.Toolchain.StrictSearchPaths

	targetName, err := flags.GetString("target")
	if err != nil {
		return nil, err
	}
	if targetName == "" {
		targetName = e.cfg.Toolchain.Target
	}
	if targetName == "" {
		t, ok := layout.HostTarget()
		if !ok {
			return nil, fmt.Errorf("host is not a known target; pass --target (one of %s)", targetNames())
		}
		e.target = t
	} else {
		t, ok := layout.TargetByTriple(targetName)
		if !ok {
			return nil, fmt.Errorf("unknown target %q (one of %s)", targetName, targetNames())
		}
		e.target = t
	}
	if e.target.NarrowOffT {
		e.tc.WideOffsets = true
	}
	return e, nil
}

func targetNames() string {
	var names []string
	for _, t := range layout.Targets() {
		names = append(names, t.Triple)
	}
	return strings.Join(names, ", ")
}

// checkToolchain verifies the compiler exists and is recent enough.
func (e *env) checkToolchain(ctx context.Context) error {
	if err := e.tc.EnsureAvailable(); err != nil {
		return err
	}
	return e.tc.CheckMinVersion(ctx, e.cfg.Toolchain.MinVersion)
}

// cases returns the built-in cases selected by [suite].builtin followed by
// the manifest's own cases. When names is non-empty only those run, in the
// given order.
func (e *env) cases(names []string) ([]verify.Case, error) {
	builtin, err := checks.Builtin(e.target)
	if err != nil {
		return nil, err
	}
	own, err := e.cfg.Cases()
	if err != nil {
		return nil, err
	}
	if len(names) > 0 {
		return checks.Select(append(builtin, own...), names)
	}
	builtin, err = checks.Select(builtin, e.cfg.Suite.Builtin)
	if err != nil {
		return nil, fmt.Errorf("[suite].builtin: %w", err)
	}
	return append(builtin, own...), nil
}
