package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"framesmith/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tools and directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			results := preflight.RunAll(cmd.Context(), ctx.configValue(), ctx.launcher)
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			for _, r := range results {
				fmt.Fprintln(out, renderCheckLine(r.Name, r.Passed, r.Detail, colorize))
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			return nil
		},
	}
}
