package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print the compiler's system include search paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		if strict, _ := cmd.Flags().GetBool("strict"); strict {
			e.tc.StrictSearchPaths = true
		}
		if err := e.tc.EnsureAvailable(); err != nil {
			return err
		}
		paths, err := e.tc.SearchPaths().Resolve(cmd.Context())
		if err != nil {
			return err
		}
		header, _ := cmd.Flags().GetString("find")
		out := cmd.OutOrStdout()
		if header != "" {
			dir, ok := paths.Find(header)
			if !ok {
				return fmt.Errorf("%s not found in %d search paths", header, len(paths))
			}
			fmt.Fprintln(out, dir)
			return nil
		}
		for _, p := range paths {
			fmt.Fprintln(out, p)
		}
		return nil
	},
}

func init() {
	pathsCmd.Flags().Bool("strict", false, "fail when the compiler reports no search paths")
	pathsCmd.Flags().String("find", "", "print the first search path containing this header")
}
