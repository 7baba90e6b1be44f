package encoding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"framesmith/internal/logging"
	"framesmith/internal/media"
	"framesmith/internal/procexec"
	"framesmith/internal/services"
)

const statusBuffer = 16

// State is the lifecycle position of a Supervisor.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EventType distinguishes supervisor notifications.
type EventType int

const (
	EventStatus EventType = iota
	EventCompleted
	EventFailed
)

// Event is one supervisor notification. Status is set for EventStatus;
// Message and Err are set for EventFailed.
type Event struct {
	Type    EventType
	Status  media.TranscodeStatus
	Message string
	Err     error
}

// Supervisor runs one transcode at a time.
type Supervisor struct {
	launcher procexec.Launcher
	binary   string
	mapper   *Mapper
	logger   *slog.Logger

	mu    sync.Mutex
	state State
	run   *activeRun
}

type activeRun struct {
	proc     procexec.Process
	events   chan Event
	done     chan struct{}
	detached bool
}

// NewSupervisor constructs an idle supervisor.
func NewSupervisor(launcher procexec.Launcher, binary string, mapper *Mapper, logger *slog.Logger) *Supervisor {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Supervisor{
		launcher: launcher,
		binary:   binary,
		mapper:   mapper,
		logger:   logging.NewComponentLogger(logger, "supervisor"),
	}
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start compiles and launches job. Status events are dropped when the
// receiver falls behind; the terminal Completed or Failed event is always
// delivered, after which the channel is closed.
func (s *Supervisor) Start(ctx context.Context, job *media.TranscodeJob) (<-chan Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRunning {
		return nil, services.Wrap(services.ErrInvalidOperation, "supervisor", "start", "a transcode is already running", nil)
	}

	cmd, err := s.mapper.Map(job, MapOptions{})
	if err != nil {
		return nil, err
	}
	args, err := cmd.Arguments()
	if err != nil {
		return nil, err
	}
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("starting transcode",
		logging.String("input", job.Source.Path),
		logging.String("output", job.OutputPath),
		logging.String("command", s.binary+" "+args),
	)
	proc, err := s.launcher.Start(ctx, s.binary, args)
	if err != nil {
		s.state = StateFailed
		return nil, services.Wrap(services.ErrProcessFailure, "supervisor", "start", "launch ffmpeg", err)
	}

	run := &activeRun{
		proc:   proc,
		events: make(chan Event, statusBuffer),
		done:   make(chan struct{}),
	}
	s.run = run
	s.state = StateRunning
	go s.watch(logger, run, job.Source.Duration)
	return run.events, nil
}

// Stop kills the running transcode. The event channel is closed without a
// terminal event and the supervisor returns to idle.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	if s.state != StateRunning || s.run == nil {
		s.mu.Unlock()
		return services.Wrap(services.ErrInvalidOperation, "supervisor", "stop", "no transcode is running", nil)
	}
	run := s.run
	run.detached = true
	s.run = nil
	s.state = StateIdle
	err := run.proc.Kill()
	s.mu.Unlock()

	<-run.done
	s.logger.Info("transcode stopped")
	if err != nil {
		return services.Wrap(services.ErrProcessFailure, "supervisor", "stop", "kill ffmpeg", err)
	}
	return nil
}

func (s *Supervisor) watch(logger *slog.Logger, run *activeRun, duration time.Duration) {
	defer close(run.done)
	defer close(run.events)

	sampler := logging.NewProgressSampler(5)
	var lastError string
	for line := range run.proc.Lines() {
		if status, ok := ParseProgress(line.Text, duration); ok {
			if !s.publish(run, Event{Type: EventStatus, Status: status}) {
				continue
			}
			if sampler.ShouldLog("transcode", status.Percent) {
				logger.Info("transcode progress",
					logging.String("progress", ProgressMessage(status)),
					logging.Int64("frame", status.Frame),
				)
			}
			continue
		}
		if line.Source == procexec.Stderr {
			if text := strings.TrimSpace(line.Text); text != "" {
				lastError = text
			}
		}
	}

	exit, err := run.proc.Wait(context.Background())

	s.mu.Lock()
	if run.detached {
		s.mu.Unlock()
		return
	}
	s.run = nil
	var event Event
	if err == nil && exit.Success() {
		s.state = StateCompleted
		event = Event{Type: EventCompleted}
	} else {
		s.state = StateFailed
		if lastError == "" {
			lastError = fmt.Sprintf("ffmpeg exited with code %d", exit.Code)
		}
		event = Event{
			Type:    EventFailed,
			Message: lastError,
			Err: services.Wrap(services.ErrProcessFailure, "supervisor", "transcode",
				fmt.Sprintf("exit code %d: %s", exit.Code, lastError), err),
		}
	}
	s.mu.Unlock()

	if event.Type == EventCompleted {
		logger.Info("transcode completed")
	} else {
		logger.Error("transcode failed", logging.Int("exit_code", exit.Code), logging.String("message", lastError))
	}
	run.events <- event
}

// publish offers a status event without blocking. It reports false once the
// run has been detached by Stop.
func (s *Supervisor) publish(run *activeRun, event Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.detached {
		return false
	}
	select {
	case run.events <- event:
	default:
	}
	return true
}
