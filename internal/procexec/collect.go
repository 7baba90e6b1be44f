package procexec

import (
	"context"
	"fmt"
	"strings"

	"framesmith/internal/services"
)

// Output is everything a process printed plus how it ended.
type Output struct {
	Stdout []string
	Stderr []string
	Exit   Exit
}

// StdoutText joins stdout lines with newlines.
func (o Output) StdoutText() string {
	return strings.Join(o.Stdout, "\n")
}

// StderrText joins stderr lines with newlines.
func (o Output) StderrText() string {
	return strings.Join(o.Stderr, "\n")
}

// LastStderr returns the final non-empty stderr line.
func (o Output) LastStderr() string {
	for i := len(o.Stderr) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(o.Stderr[i]); line != "" {
			return line
		}
	}
	return ""
}

// Collect drains proc and waits for it. When ctx ends first the process is
// killed and the partial output is returned with the context error.
func Collect(ctx context.Context, proc Process) (Output, error) {
	var out Output
	lines := proc.Lines()
	done := ctx.Done()
	for lines != nil {
		select {
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if line.Source == Stderr {
				out.Stderr = append(out.Stderr, line.Text)
			} else {
				out.Stdout = append(out.Stdout, line.Text)
			}
		case <-done:
			_ = proc.Kill()
			done = nil
		}
	}
	exit, err := proc.Wait(context.WithoutCancel(ctx))
	out.Exit = exit
	if err != nil {
		return out, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		out.Exit.Killed = true
		return out, contextError("collect", ctxErr)
	}
	return out, nil
}

// Run starts binary, collects its output, and bounds it by ctx.
func Run(ctx context.Context, launcher Launcher, binary, args string) (Output, error) {
	proc, err := launcher.Start(ctx, binary, args)
	if err != nil {
		return Output{}, err
	}
	out, err := Collect(ctx, proc)
	if err != nil {
		return out, err
	}
	if !out.Exit.Success() {
		return out, services.Wrap(services.ErrProcessFailure, "procexec", binary,
			fmt.Sprintf("exit code %d: %s", out.Exit.Code, out.LastStderr()), nil)
	}
	return out, nil
}
