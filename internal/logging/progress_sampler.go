package logging

import (
	"math"
	"strings"
)

// ProgressSampler thins a stream of progress fractions down to one report per
// step, restarting whenever the stage changes.
type ProgressSampler struct {
	step  float64
	stage string
	last  int
}

// NewProgressSampler reports once per step percentage points (5 when step is
// not positive).
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 {
		step = 5
	}
	return &ProgressSampler{step: step, last: -1}
}

// ShouldLog reports whether fraction (0..1) enters a new step for stage.
// Negative fractions mean the total is unknown; they only report on a stage
// change. A nil sampler reports everything.
func (s *ProgressSampler) ShouldLog(stage string, fraction float64) bool {
	if s == nil {
		return true
	}
	report := false
	if stage = strings.TrimSpace(stage); stage != "" && stage != s.stage {
		s.stage = stage
		s.last = -1
		report = true
	}
	if fraction < 0 {
		return report
	}
	step := int(math.Floor(math.Min(fraction, 1) * 100 / s.step))
	if step > s.last {
		s.last = step
		report = true
	}
	return report
}
