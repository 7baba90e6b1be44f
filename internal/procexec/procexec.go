package procexec

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"framesmith/internal/cmdargs"
	"framesmith/internal/services"
)

// Source identifies the stream a line was read from.
type Source int

const (
	Stdout Source = iota
	Stderr
)

func (s Source) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Line is one line of process output.
type Line struct {
	Source Source
	Text   string
}

// Exit describes how a process ended. Code is -1 when the process was killed
// or its status could not be read.
type Exit struct {
	Code   int
	Killed bool
}

// Success reports a clean zero exit.
func (e Exit) Success() bool {
	return e.Code == 0 && !e.Killed
}

// Process is a running external command.
type Process interface {
	Lines() <-chan Line
	// Wait blocks until the process exits. When ctx ends first the process is
	// killed and the returned error carries services.ErrTimeout (deadline) or
	// context.Canceled.
	Wait(ctx context.Context) (Exit, error)
	Kill() error
}

// Launcher starts external commands.
type Launcher interface {
	Start(ctx context.Context, binary string, args string) (Process, error)
}

// NewLauncher returns a Launcher backed by os/exec.
func NewLauncher() Launcher {
	return execLauncher{}
}

type execLauncher struct{}

func (execLauncher) Start(ctx context.Context, binary string, args string) (Process, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, services.Invalid("procexec", "start", "binary is empty")
	}
	argv, err := cmdargs.Split(args)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidRequest, "procexec", "start", "malformed argument string", err)
	}
	cmd := exec.CommandContext(ctx, binary, argv...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrProcessFailure, "procexec", "start", binary, err)
	}
	p := &execProcess{
		cmd:     cmd,
		lines:   make(chan Line, 256),
		exited:  make(chan struct{}),
		abandon: make(chan struct{}),
	}
	go p.pump(stdout, stderr)
	return p, nil
}

type execProcess struct {
	cmd       *exec.Cmd
	lines     chan Line
	exited    chan struct{}
	abandon   chan struct{}
	abandonMu sync.Once
	killed    bool
	mu        sync.Mutex
	exit      Exit
}

func (p *execProcess) Lines() <-chan Line {
	return p.lines
}

func (p *execProcess) pump(stdout, stderr io.Reader) {
	var wg sync.WaitGroup
	scan := func(r io.Reader, source Source) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		scanner.Split(ScanLines)
		for scanner.Scan() {
			text := scanner.Text()
			if strings.TrimSpace(text) == "" {
				continue
			}
			select {
			case p.lines <- Line{Source: source, Text: text}:
			case <-p.abandon:
			}
		}
		// Keep the pipe drained so the child never blocks on a full buffer.
		_, _ = io.Copy(io.Discard, r)
	}
	wg.Add(2)
	go scan(stdout, Stdout)
	go scan(stderr, Stderr)
	wg.Wait()
	close(p.lines)

	err := p.cmd.Wait()
	p.mu.Lock()
	p.exit = exitFrom(p.cmd, err, p.killed)
	p.mu.Unlock()
	close(p.exited)
}

func (p *execProcess) Wait(ctx context.Context) (Exit, error) {
	select {
	case <-p.exited:
		return p.result(), nil
	case <-ctx.Done():
		_ = p.Kill()
		<-p.exited
		return p.result(), contextError("wait", ctx.Err())
	}
}

func (p *execProcess) Kill() error {
	p.abandonMu.Do(func() { close(p.abandon) })
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()
	if p.cmd.Process == nil {
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill process: %w", err)
	}
	return nil
}

func (p *execProcess) result() Exit {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exit
}

func exitFrom(cmd *exec.Cmd, err error, killed bool) Exit {
	if cmd.ProcessState == nil {
		return Exit{Code: -1, Killed: killed}
	}
	code := cmd.ProcessState.ExitCode()
	if err != nil && code == 0 {
		code = -1
	}
	return Exit{Code: code, Killed: killed}
}

func contextError(operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "procexec", operation, "process killed after timeout", err)
	}
	return fmt.Errorf("procexec %s: %w", operation, err)
}

// ScanLines is a bufio.SplitFunc that treats '\n', '\r', and "\r\n" as line
// terminators.
func ScanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\r' {
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
			} else if !atEOF {
				// Need one more byte to tell "\r" from "\r\n".
				return 0, nil, nil
			}
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
