package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"abiverify/internal/cprog"
)

var renderCmd = &cobra.Command{
	Use:   "render <case>",
	Short: "Print the C program synthesized for a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		cases, err := e.cases(args)
		if err != nil {
			return err
		}
		prog := cprog.New(e.tc.SearchPaths())
		if err := cases[0].Build(cmd.Context(), prog); err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), prog.Render())
		return err
	},
}
