package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"abiverify/internal/report"
)

var showCmd = &cobra.Command{
	Use:   "show <report>",
	Short: "Render a saved json or msgpack report as text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		formatFlag, _ := cmd.Flags().GetString("format")
		if formatFlag == "" {
			formatFlag = strings.TrimPrefix(filepath.Ext(path), ".")
		}
		format, err := report.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		doc, err := report.Read(f, format)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		verbose, _ := cmd.Flags().GetBool("timings")
		if err := report.WriteText(cmd.OutOrStdout(), doc, report.TextOptions{Verbose: verbose}); err != nil {
			return err
		}
		if !doc.Summary.OK() {
			return &failedCasesError{summary: doc.Summary}
		}
		return nil
	},
}

func init() {
	showCmd.Flags().String("format", "", "report format (json|msgpack; default: from the file extension)")
	showCmd.Flags().Bool("timings", false, "print per-stage timings")
}
