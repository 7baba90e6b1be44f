package analysis

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"framesmith/internal/cmdargs"
	"framesmith/internal/ffmpeg"
	"framesmith/internal/logging"
	"framesmith/internal/media"
	"framesmith/internal/procexec"
	"framesmith/internal/services"
)

// DefaultInterlaceFrames is how many frames idet samples when unset.
const DefaultInterlaceFrames = 100

var idetPattern = regexp.MustCompile(`TFF:\s*(\d+)\s*BFF:\s*(\d+)\s*Progressive:\s*(\d+)\s*Undetermined:\s*(\d+)`)

// FieldTally is one idet frame classification summary.
type FieldTally struct {
	TopFieldFirst    int
	BottomFieldFirst int
	Progressive      int
	Undetermined     int
}

// Interlaced reports whether field-ordered frames outnumber the rest.
func (t FieldTally) Interlaced() bool {
	return t.TopFieldFirst+t.BottomFieldFirst > t.Progressive+t.Undetermined
}

// InterlaceDetector classifies a source as interlaced or progressive with idet.
type InterlaceDetector struct {
	launcher procexec.Launcher
	binary   string
	frames   int
	logger   *slog.Logger
}

// NewInterlaceDetector constructs a detector sampling frames frames.
func NewInterlaceDetector(launcher procexec.Launcher, binary string, frames int, logger *slog.Logger) *InterlaceDetector {
	if binary == "" {
		binary = "ffmpeg"
	}
	if frames <= 0 {
		frames = DefaultInterlaceFrames
	}
	return &InterlaceDetector{
		launcher: launcher,
		binary:   binary,
		frames:   frames,
		logger:   logging.NewComponentLogger(logger, "interlace"),
	}
}

// Detect samples frames from the midpoint of the source. The outcome value is
// meaningful only when OK is set.
func (d *InterlaceDetector) Detect(ctx context.Context, info *media.MediaInfo, timeout time.Duration) (services.Outcome[bool], error) {
	if err := validateSource("interlace", info); err != nil {
		return services.Outcome[bool]{}, err
	}
	logger := logging.WithContext(ctx, d.logger)

	job := ffmpeg.AnalysisJob(info.Path, info.Duration/2, d.frames, cmdargs.NewFilter("idet"))
	args, err := job.Arguments()
	if err != nil {
		return services.Missing[bool](services.CauseProcessFailure, err), nil
	}

	out, err := runBounded(ctx, d.launcher, d.binary, args, timeout)
	if err != nil {
		logger.Warn("interlace detection failed", logging.String("path", info.Path), logging.Error(err))
		return services.Missing[bool](services.CauseOf(err), err), nil
	}
	tally, ok := ParseFieldTally(out.StderrText())
	if !ok {
		logger.Debug("no idet summary reported", logging.String("path", info.Path))
		return services.Missing[bool](services.CauseNotFound, nil), nil
	}
	interlaced := tally.Interlaced()
	logger.Info("interlace detection complete",
		logging.Bool("interlaced", interlaced),
		logging.Int("tff", tally.TopFieldFirst),
		logging.Int("bff", tally.BottomFieldFirst),
		logging.Int("progressive", tally.Progressive),
		logging.Int("undetermined", tally.Undetermined),
	)
	return services.Found(interlaced), nil
}

// ParseFieldTally returns the last idet tally in text. idet prints a
// single-frame block followed by a multi-frame block, so the last one wins.
func ParseFieldTally(text string) (FieldTally, bool) {
	matches := idetPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return FieldTally{}, false
	}
	last := matches[len(matches)-1]
	values := make([]int, 4)
	for i := range values {
		n, err := strconv.Atoi(last[i+1])
		if err != nil {
			return FieldTally{}, false
		}
		values[i] = n
	}
	return FieldTally{
		TopFieldFirst:    values[0],
		BottomFieldFirst: values[1],
		Progressive:      values[2],
		Undetermined:     values[3],
	}, true
}
