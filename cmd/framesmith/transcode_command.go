package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"framesmith/internal/encoding"
	"framesmith/internal/fileutil"
	"framesmith/internal/history"
	"framesmith/internal/logging"
	"framesmith/internal/media"
	"framesmith/internal/preflight"
	"framesmith/internal/services"
)

// runOutcome is how a supervised transcode ended.
type runOutcome struct {
	state   history.State
	message string
	err     error
}

func newTranscodeCommand(ctx *commandContext) *cobra.Command {
	var flags planFlags
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "transcode <file>",
		Short: "Run a supervised transcode with live progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger := ctx.loggerValue()
			out := cmd.OutOrStdout()

			job, err := ctx.buildJob(cmd.Context(), args[0], &flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if check := preflight.CheckOutputTarget(job.Source.Path, job.OutputPath); !check.Passed {
				return fmt.Errorf("output check failed: %s", check.Detail)
			}
			if !overwrite {
				if _, err := os.Stat(job.OutputPath); err == nil {
					return fmt.Errorf("output %s already exists (use --overwrite to replace it)", job.OutputPath)
				}
			}

			lock, err := fileutil.LockOutput(job.OutputPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := lock.Release(); err != nil {
					logger.Warn("release output lock failed", logging.Error(err))
				}
			}()

			mapper := ctx.mapper()
			compiled, err := mapper.Map(job, encoding.MapOptions{})
			if err != nil {
				return err
			}
			argLine, err := compiled.Arguments()
			if err != nil {
				return err
			}

			runCtx := services.WithRequestID(context.Background(), uuid.NewString())
			runCtx = services.WithStage(runCtx, "transcode")

			var store *history.Store
			var run *history.Run
			if cfg.History.Enabled {
				store, err = history.Open(cfg)
				if err != nil {
					logger.Warn("run history unavailable", logging.Error(err))
				} else {
					defer store.Close()
					run, err = store.Begin(runCtx, history.Run{
						SourcePath:  job.Source.Path,
						OutputPath:  job.OutputPath,
						Container:   job.Container.String(),
						VideoFormat: videoFormatOf(job),
						Arguments:   argLine,
					})
					if err != nil {
						logger.Warn("record run start failed", logging.Error(err))
						store = nil
					} else {
						runCtx = services.WithJobID(runCtx, run.ID)
					}
				}
			}

			supervisor := encoding.NewSupervisor(ctx.launcher, cfg.FFmpegBinary(), mapper, logger)
			fmt.Fprintf(out, "Transcoding %s -> %s\n", job.Source.Path, job.OutputPath)
			events, err := supervisor.Start(runCtx, job)
			if err != nil {
				finishRun(runCtx, store, run, runOutcome{state: history.StateFailed, message: err.Error()}, logger)
				return err
			}

			sigCtx, stopSignals := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stopSignals()

			progress := newProgressPrinter(out, isTerminal(out))
			result := consumeEvents(sigCtx, events, supervisor.Stop, func(status media.TranscodeStatus) {
				if progress.update(status) && store != nil {
					if err := store.Progress(runCtx, run.ID, status.Percent); err != nil {
						logger.Debug("record progress failed", logging.Error(err))
					}
				}
			})
			progress.finish()
			finishRun(runCtx, store, run, result, logger)

			switch result.state {
			case history.StateCompleted:
				fmt.Fprintf(out, "Transcode complete: %s\n", job.OutputPath)
				return nil
			case history.StateStopped:
				fmt.Fprintln(out, "Transcode stopped")
				return context.Canceled
			default:
				return result.err
			}
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing output file")
	return cmd
}

// consumeEvents drains supervisor events until the channel closes. When ctx
// ends first the run is stopped and reported as stopped.
func consumeEvents(ctx context.Context, events <-chan encoding.Event, stop func() error, onStatus func(media.TranscodeStatus)) runOutcome {
	done := ctx.Done()
	result := runOutcome{state: history.StateStopped}
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return result
			}
			switch event.Type {
			case encoding.EventStatus:
				if onStatus != nil {
					onStatus(event.Status)
				}
			case encoding.EventCompleted:
				result = runOutcome{state: history.StateCompleted}
			case encoding.EventFailed:
				err := event.Err
				if err == nil {
					err = errors.New(event.Message)
				}
				result = runOutcome{state: history.StateFailed, message: event.Message, err: err}
			}
		case <-done:
			done = nil
			if err := stop(); err != nil && !errors.Is(err, services.ErrInvalidOperation) {
				result.err = err
			}
		}
	}
}

func finishRun(ctx context.Context, store *history.Store, run *history.Run, result runOutcome, logger *slog.Logger) {
	if store == nil || run == nil {
		return
	}
	if err := store.Finish(ctx, run.ID, result.state, result.message); err != nil {
		logger.Warn("record run finish failed", logging.Error(err))
	}
}

func videoFormatOf(job *media.TranscodeJob) string {
	if video, ok := job.PrimaryVideoOutput(); ok {
		return video.Format.String()
	}
	return ""
}

// progressPrinter renders transcode status. Terminals get a single line
// rewritten in place; other writers get one line per 10% step.
type progressPrinter struct {
	out     io.Writer
	inPlace bool
	sampler *logging.ProgressSampler
	wrote   bool
}

func newProgressPrinter(out io.Writer, inPlace bool) *progressPrinter {
	return &progressPrinter{out: out, inPlace: inPlace, sampler: logging.NewProgressSampler(10)}
}

// update renders status and reports whether it crossed a sampling step.
func (p *progressPrinter) update(status media.TranscodeStatus) bool {
	step := p.sampler.ShouldLog("transcode", status.Percent)
	line := encoding.ProgressMessage(status)
	if p.inPlace {
		fmt.Fprintf(p.out, "\r\x1b[K%s", line)
		p.wrote = true
		return step
	}
	if step {
		fmt.Fprintln(p.out, line)
	}
	return step
}

func (p *progressPrinter) finish() {
	if p.inPlace && p.wrote {
		fmt.Fprintln(p.out)
	}
}
