package testsupport

import (
	"context"
	"sync"
	"time"

	"framesmith/internal/cmdargs"
	"framesmith/internal/procexec"
)

// Invocation records one Start call on a FakeLauncher.
type Invocation struct {
	Binary string
	Args   string
	Argv   []string
}

// Script describes how a fake process behaves.
type Script struct {
	Lines     []procexec.Line
	LineDelay time.Duration
	ExitCode  int
	// Delay holds the process open after its output before exiting.
	Delay time.Duration
	// Hang keeps the process alive until it is killed.
	Hang     bool
	StartErr error
}

// FakeLauncher records invocations and replays scripted processes.
type FakeLauncher struct {
	Handler func(inv Invocation) Script

	mu    sync.Mutex
	calls []Invocation
	procs []*FakeProcess
}

// Start implements procexec.Launcher.
func (f *FakeLauncher) Start(ctx context.Context, binary string, args string) (procexec.Process, error) {
	argv, _ := cmdargs.Split(args)
	inv := Invocation{Binary: binary, Args: args, Argv: argv}
	var script Script
	if f.Handler != nil {
		script = f.Handler(inv)
	}
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	f.mu.Unlock()
	if script.StartErr != nil {
		return nil, script.StartErr
	}
	proc := newFakeProcess(script)
	f.mu.Lock()
	f.procs = append(f.procs, proc)
	f.mu.Unlock()
	go proc.run()
	return proc, nil
}

// Calls returns a snapshot of recorded invocations.
func (f *FakeLauncher) Calls() []Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Invocation(nil), f.calls...)
}

// Processes returns the processes started so far.
func (f *FakeLauncher) Processes() []*FakeProcess {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeProcess(nil), f.procs...)
}

// FakeProcess is a scripted procexec.Process.
type FakeProcess struct {
	script   Script
	lines    chan procexec.Line
	exited   chan struct{}
	kill     chan struct{}
	killOnce sync.Once

	mu   sync.Mutex
	exit procexec.Exit
}

func newFakeProcess(script Script) *FakeProcess {
	return &FakeProcess{
		script: script,
		lines:  make(chan procexec.Line),
		exited: make(chan struct{}),
		kill:   make(chan struct{}),
	}
}

func (p *FakeProcess) run() {
	exit := procexec.Exit{Code: p.script.ExitCode}
	defer func() {
		close(p.lines)
		p.mu.Lock()
		p.exit = exit
		p.mu.Unlock()
		close(p.exited)
	}()
	killed := procexec.Exit{Code: -1, Killed: true}
	for _, line := range p.script.Lines {
		select {
		case p.lines <- line:
		case <-p.kill:
			exit = killed
			return
		}
		if p.script.LineDelay > 0 {
			select {
			case <-time.After(p.script.LineDelay):
			case <-p.kill:
				exit = killed
				return
			}
		}
	}
	switch {
	case p.script.Hang:
		<-p.kill
		exit = killed
	case p.script.Delay > 0:
		select {
		case <-time.After(p.script.Delay):
		case <-p.kill:
			exit = killed
		}
	}
}

// Lines implements procexec.Process.
func (p *FakeProcess) Lines() <-chan procexec.Line {
	return p.lines
}

// Wait implements procexec.Process.
func (p *FakeProcess) Wait(ctx context.Context) (procexec.Exit, error) {
	select {
	case <-p.exited:
	case <-ctx.Done():
		_ = p.Kill()
		<-p.exited
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.exit, ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exit, nil
}

// Kill implements procexec.Process.
func (p *FakeProcess) Kill() error {
	p.killOnce.Do(func() { close(p.kill) })
	return nil
}

// Killed reports whether Kill was called.
func (p *FakeProcess) Killed() bool {
	select {
	case <-p.kill:
		return true
	default:
		return false
	}
}

// Stderr builds stderr lines.
func Stderr(texts ...string) []procexec.Line {
	out := make([]procexec.Line, 0, len(texts))
	for _, t := range texts {
		out = append(out, procexec.Line{Source: procexec.Stderr, Text: t})
	}
	return out
}

// Stdout builds stdout lines.
func Stdout(texts ...string) []procexec.Line {
	out := make([]procexec.Line, 0, len(texts))
	for _, t := range texts {
		out = append(out, procexec.Line{Source: procexec.Stdout, Text: t})
	}
	return out
}
