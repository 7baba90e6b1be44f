package main

import (
	"github.com/spf13/cobra"

	"framesmith/internal/procexec"
)

func newRootCommand() *cobra.Command {
	return newRootCommandWithLauncher(nil)
}

func newRootCommandWithLauncher(launcher procexec.Launcher) *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag, launcher)

	rootCmd := &cobra.Command{
		Use:           "framesmith",
		Short:         "Compile, supervise, and preview ffmpeg transcodes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newProbeCommand(ctx))
	rootCmd.AddCommand(newCropCommand(ctx))
	rootCmd.AddCommand(newInterlaceCommand(ctx))
	rootCmd.AddCommand(newArgsCommand(ctx))
	rootCmd.AddCommand(newTranscodeCommand(ctx))
	rootCmd.AddCommand(newPreviewCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))

	return rootCmd
}
