package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"abiverify/internal/cprog"
	"abiverify/internal/suite"
	"abiverify/internal/toolchain"
	"abiverify/internal/verify"
)

// setupLogging installs one logger in every package and applies --color.
func setupLogging(cmd *cobra.Command, _ []string) error {
	root := cmd.Root()
	verbose, err := root.PersistentFlags().GetBool("verbose")
	if err != nil {
		return err
	}
	colorFlag, err := root.PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch colorFlag {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}

	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	toolchain.SetLogger(logger.Named("toolchain"))
	cprog.SetLogger(logger.Named("cprog"))
	verify.SetLogger(logger.Named("verify"))
	suite.SetLogger(logger.Named("suite"))
	return nil
}

// newLogger writes to stderr: everything from debug up when verbose,
// otherwise warnings and errors only so a degraded toolchain is still
// reported.
func newLogger(verbose bool) (*zap.Logger, error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.DisableStacktrace = true
		cfg.Sampling = nil
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
