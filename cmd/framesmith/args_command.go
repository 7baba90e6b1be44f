package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"framesmith/internal/encoding"
)

func newArgsCommand(ctx *commandContext) *cobra.Command {
	var flags planFlags
	cmd := &cobra.Command{
		Use:   "args <file>",
		Short: "Print the ffmpeg arguments a transcode would run",
		Long: "Probe the source, plan a job from the flags and config, and print the compiled ffmpeg\n" +
			"argument string without running it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := ctx.buildJob(cmd.Context(), args[0], &flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			compiled, err := ctx.mapper().Map(job, encoding.MapOptions{})
			if err != nil {
				return err
			}
			line, err := compiled.Arguments()
			if err != nil {
				return err
			}
			return printCommandLine(cmd.OutOrStdout(), ctx.configValue().FFmpegBinary(), line)
		},
	}
	flags.register(cmd)
	return cmd
}

func printCommandLine(out io.Writer, binary, args string) error {
	_, err := fmt.Fprintf(out, "%s %s\n", binary, args)
	return err
}
