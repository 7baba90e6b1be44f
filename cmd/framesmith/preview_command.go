package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"framesmith/internal/cmdargs"
	"framesmith/internal/config"
	"framesmith/internal/encoding"
	"framesmith/internal/fileutil"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var flags planFlags
	var count int
	var outDir string
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Render still frames with the planned filters applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			job, err := ctx.buildJob(cmd.Context(), args[0], &flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("count") {
				count = cfg.Preview.Count
			}

			generator := encoding.NewPreviewGenerator(
				ctx.launcher,
				cfg.FFmpegBinary(),
				ctx.mapper(),
				cfg.Paths.PreviewDir,
				cfg.Preview.Extension,
				ctx.loggerValue(),
			)
			previews, err := generator.Generate(cmd.Context(), job, job.Source.Duration, count, cfg.PreviewTimeout())
			if err != nil {
				return err
			}

			if dest := strings.TrimSpace(outDir); dest != "" {
				dest, err = config.ExpandPath(dest)
				if err != nil {
					return err
				}
				for i := range previews {
					moved, err := fileutil.MoveInto(previews[i].Path, dest)
					if err != nil {
						return fmt.Errorf("move preview: %w", err)
					}
					previews[i].Path = moved
				}
			}

			out := cmd.OutOrStdout()
			if len(previews) == 0 {
				fmt.Fprintln(out, "No previews were generated")
				return nil
			}
			rows := make([][]string, 0, len(previews))
			for _, p := range previews {
				rows = append(rows, []string{cmdargs.FormatDuration(p.Timestamp.Round(time.Millisecond)), p.Path})
			}
			fmt.Fprintln(out, renderTable([]string{"Timestamp", "File"}, rows, []columnAlignment{alignRight, alignLeft}))
			if missing := count - len(previews); missing > 0 {
				fmt.Fprintf(out, "%d of %d previews failed; see the log for details\n", missing, count)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of stills (default from config)")
	cmd.Flags().StringVar(&outDir, "out", "", "Move the stills into this directory")
	return cmd
}
