package media

import "time"

// TranscodeStatus is progress derived from one encoder stats line. Percent is
// a fraction in [0,1]; EstimatedTotalSize is in bytes.
type TranscodeStatus struct {
	Frame              int64
	Elapsed            time.Duration
	FPS                float64
	Percent            float64
	EstimatedTotalSize int64
	Speed              float64
	ETA                time.Duration
}
