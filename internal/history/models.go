package history

import "time"

// State is the lifecycle state of a recorded run.
type State string

const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateStopped   State = "stopped"
)

// Terminal reports whether the state ends a run.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateStopped
}

// Run is one recorded transcode.
type Run struct {
	ID          int64
	SourcePath  string
	OutputPath  string
	Container   string
	VideoFormat string
	Arguments   string
	State       State
	Message     string
	Percent     float64
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// Elapsed returns the run duration, measured to now while still running.
func (r *Run) Elapsed(now time.Time) time.Duration {
	if r == nil || r.StartedAt.IsZero() {
		return 0
	}
	end := now
	if r.FinishedAt != nil {
		end = *r.FinishedAt
	}
	if end.Before(r.StartedAt) {
		return 0
	}
	return end.Sub(r.StartedAt)
}
