package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"framesmith/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent transcode runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			now := time.Now()
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					strconv.FormatInt(run.ID, 10),
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					string(run.State),
					fmt.Sprintf("%.0f%%", run.Percent*100),
					run.Elapsed(now).Round(time.Second).String(),
					run.OutputPath,
					run.Message,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Started", "State", "Done", "Elapsed", "Output", "Message"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	historyCmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")

	historyCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove finished runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if _, err := store.MarkAbandoned(cmd.Context()); err != nil {
				return err
			}
			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s)\n", removed)
			return nil
		},
	})
	return historyCmd
}

func openHistory(ctx *commandContext) (*history.Store, error) {
	cfg := ctx.configValue()
	if !cfg.History.Enabled {
		return nil, errors.New("run history is disabled (set [history] enabled = true)")
	}
	return history.Open(cfg)
}
