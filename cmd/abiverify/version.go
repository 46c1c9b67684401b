package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"abiverify/internal/version"
)

type versionPayload struct {
	Tool            string `json:"tool"`
	Version         string `json:"version"`
	GitCommit       string `json:"git_commit,omitempty"`
	BuildDate       string `json:"build_date,omitempty"`
	Compiler        string `json:"compiler,omitempty"`
	CompilerVersion string `json:"compiler_version,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show abiverify and compiler versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		format = strings.ToLower(format)
		switch format {
		case "pretty", "json":
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
		}

		payload := versionPayload{
			Tool:      "abiverify",
			Version:   version.Version,
			GitCommit: version.Commit(),
			BuildDate: version.BuildDate,
		}
		if withCC, _ := cmd.Flags().GetBool("compiler"); withCC {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			payload.Compiler = e.tc.CC
			payload.CompilerVersion, err = e.tc.Version(cmd.Context())
			if err != nil {
				return err
			}
		}

		if format == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		}
		renderVersionPretty(cmd.OutOrStdout(), payload)
		return nil
	},
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().Bool("compiler", false, "also query the C compiler's version")
}

func renderVersionPretty(out io.Writer, p versionPayload) {
	fmt.Fprintf(out, "abiverify %s\n", version.Colored())
	if p.GitCommit != "" {
		fmt.Fprintf(out, "commit:   %s\n", p.GitCommit)
	}
	if p.BuildDate != "" {
		fmt.Fprintf(out, "built:    %s\n", p.BuildDate)
	}
	if p.Compiler != "" {
		fmt.Fprintf(out, "compiler: %s %s\n", p.Compiler, p.CompilerVersion)
	}
}
