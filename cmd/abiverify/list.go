package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"abiverify/internal/verify"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the cases check would run",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		cases, err := e.cases(nil)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, c := range cases {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name(), caseKind(c), caseDetail(c))
		}
		return tw.Flush()
	},
}

func caseKind(c verify.Case) string {
	switch c.(type) {
	case verify.StructCase:
		return "layout"
	case verify.ExprCase:
		return "assert"
	case verify.RuntimeCase:
		return "runtime"
	}
	return "custom"
}

func caseDetail(c verify.Case) string {
	switch c := c.(type) {
	case verify.StructCase:
		return fmt.Sprintf("%s, %d bytes, %d assertions", c.Layout.CType, c.Layout.Size, len(c.Assertions()))
	case verify.ExprCase:
		return fmt.Sprintf("%d assertions", len(c.Asserts))
	}
	return ""
}
