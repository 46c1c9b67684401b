package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"abiverify/internal/report"
	"abiverify/internal/suite"
	"abiverify/internal/verify"
	"abiverify/internal/version"
)

// failedCasesError makes the process exit non-zero without printing an
// extra error line; the report already explains what failed.
type failedCasesError struct {
	summary suite.Summary
}

func (e *failedCasesError) Error() string {
	return fmt.Sprintf("%d of %d cases failed", e.summary.Failed+e.summary.Skipped, e.summary.Total)
}

var checkProgress = progressAuto

var checkCmd = &cobra.Command{
	Use:   "check [case...]",
	Short: "Compile and run verification cases",
	Long: `Runs the built-in cases selected by [suite].builtin plus every descriptor and
assertion group from abiverify.toml. Naming cases runs only those.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Int("jobs", 0, "max parallel cases (0=auto)")
	checkCmd.Flags().String("format", "text", "report format (text|json|msgpack)")
	checkCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
	checkCmd.Flags().Var(&checkProgress, "ui", "progress UI (auto|on|off)")
	checkCmd.Flags().Bool("keep-going", false, "run every case even after a failure (overrides [suite].fail_fast)")
	checkCmd.Flags().Bool("fail-fast", false, "stop starting cases after the first failure")
	checkCmd.Flags().Bool("timings", false, "print per-stage timings in text reports")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	outputPath, _ := cmd.Flags().GetString("output")
	timings, _ := cmd.Flags().GetBool("timings")

	jobs, _ := cmd.Flags().GetInt("jobs")
	if !cmd.Flags().Changed("jobs") {
		if jobs, err = e.cfg.Jobs(); err != nil {
			return err
		}
	}
	failFast := e.cfg.Suite.FailFast
	if ff, _ := cmd.Flags().GetBool("fail-fast"); ff {
		failFast = true
	}
	if kg, _ := cmd.Flags().GetBool("keep-going"); kg {
		failFast = false
	}

	if err := e.checkToolchain(ctx); err != nil {
		return err
	}
	cases, err := e.cases(args)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		return fmt.Errorf("no cases selected")
	}

	h := &verify.Harness{Toolchain: e.tc}
	opts := suite.Options{Jobs: jobs, FailFast: failFast}
	var res suite.Result
	if checkProgress.draws() {
		res, err = runSuiteWithUI(ctx, "abiverify check", h, cases, opts)
	} else {
		res, err = suite.Run(ctx, h, cases, opts)
	}
	if err != nil {
		return err
	}

	ccVersion, _ := e.tc.Version(ctx)
	doc := report.Build(report.Meta{
		Tool:            "abiverify",
		Version:         version.Version,
		Target:          e.target.Triple,
		Compiler:        e.tc.CC,
		CompilerVersion: ccVersion,
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
	}, res)

	var out io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		defer f.Close()
		out = f
	} else if format == report.FormatMsgpack && isTerminal(os.Stdout) {
		return fmt.Errorf("refusing to write msgpack to a terminal; use --output")
	}
	if err := report.Write(out, format, doc, report.TextOptions{Verbose: timings}); err != nil {
		return err
	}
	if outputPath != "" && format != report.FormatText {
		fmt.Fprintln(cmd.ErrOrStderr(), summaryLine(doc.Summary))
	}
	if !doc.Summary.OK() {
		return &failedCasesError{summary: doc.Summary}
	}
	return nil
}

func summaryLine(s suite.Summary) string {
	return fmt.Sprintf("%d passed, %d failed, %d skipped", s.Passed, s.Failed, s.Skipped)
}
