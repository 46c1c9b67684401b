package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"abiverify/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "abiverify",
	Short: "Verify hand-written C layout descriptors against the native toolchain",
	Long: `abiverify compiles small C programs full of static assertions to prove that
declared struct layouts, typedef widths and device number encodings match what
the system compiler and headers produce.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every compiler invocation")
	rootCmd.PersistentFlags().String("config", "", "path to abiverify.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().String("cc", "", "C compiler driver (default: $CC, then gcc)")
	rootCmd.PersistentFlags().String("target", "", "target triple or GOARCH for built-in descriptors (default: host)")
}

// main executes the root command; Ctrl-C cancels running compilers. Any
// error exits with status 1.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		var failed *failedCasesError
		if !errors.As(err, &failed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

// isTerminal reports whether f is a terminal. Tests replace it.
var isTerminal = func(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
