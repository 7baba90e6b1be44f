package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
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

const cropSampleFrames = 2

var cropPattern = regexp.MustCompile(`crop=(\d+):(\d+):(\d+):(\d+)`)

// CropDetector finds letterbox and pillarbox borders with cropdetect.
type CropDetector struct {
	launcher procexec.Launcher
	binary   string
	maxSeek  time.Duration
	logger   *slog.Logger
}

// NewCropDetector constructs a detector. maxSeek caps how far into the
// source the sample is taken; zero disables the cap.
func NewCropDetector(launcher procexec.Launcher, binary string, maxSeek time.Duration, logger *slog.Logger) *CropDetector {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &CropDetector{
		launcher: launcher,
		binary:   binary,
		maxSeek:  maxSeek,
		logger:   logging.NewComponentLogger(logger, "crop"),
	}
}

// Detect samples frames near the middle of the source and returns the last
// crop geometry cropdetect reported.
func (d *CropDetector) Detect(ctx context.Context, info *media.MediaInfo, timeout time.Duration) (services.Outcome[media.CropParameters], error) {
	if err := validateSource("crop", info); err != nil {
		return services.Outcome[media.CropParameters]{}, err
	}
	logger := logging.WithContext(ctx, d.logger)

	seek := info.Duration / 2
	if d.maxSeek > 0 && seek > d.maxSeek {
		seek = d.maxSeek
	}
	job := ffmpeg.AnalysisJob(info.Path, seek, cropSampleFrames, cmdargs.NewFilter("cropdetect"))
	args, err := job.Arguments()
	if err != nil {
		return services.Missing[media.CropParameters](services.CauseProcessFailure, err), nil
	}

	out, err := runBounded(ctx, d.launcher, d.binary, args, timeout)
	if err != nil {
		logger.Warn("crop detection failed", logging.String("path", info.Path), logging.Error(err))
		return services.Missing[media.CropParameters](services.CauseOf(err), err), nil
	}
	crop, ok := ParseCrop(out.StderrText())
	if !ok {
		logger.Debug("no crop reported", logging.String("path", info.Path))
		return services.Missing[media.CropParameters](services.CauseNotFound, nil), nil
	}
	logger.Info("crop detected",
		logging.String("crop", crop.String()),
		logging.Duration("seek", seek),
	)
	return services.Found(crop), nil
}

// ParseCrop returns the last crop=W:H:X:Y found in text.
func ParseCrop(text string) (media.CropParameters, bool) {
	matches := cropPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return media.CropParameters{}, false
	}
	last := matches[len(matches)-1]
	values := make([]int, 4)
	for i := range values {
		n, err := strconv.Atoi(last[i+1])
		if err != nil {
			return media.CropParameters{}, false
		}
		values[i] = n
	}
	crop := media.CropParameters{Width: values[0], Height: values[1], X: values[2], Y: values[3]}
	if crop.Width == 0 || crop.Height == 0 {
		return media.CropParameters{}, false
	}
	return crop, true
}

// AspectRatioLabel names the closest standard aspect ratio for a crop within
// 2%, or formats the numeric ratio like "1.78:1".
func AspectRatioLabel(crop media.CropParameters) string {
	if crop.Height <= 0 {
		return ""
	}
	ratio := float64(crop.Width) / float64(crop.Height)
	standards := []struct {
		name  string
		value float64
	}{
		{"4:3", 4.0 / 3.0},
		{"16:9", 16.0 / 9.0},
		{"1.85:1", 1.85},
		{"2.00:1", 2.00},
		{"2.20:1", 2.20},
		{"2.35:1", 2.35},
		{"2.39:1", 2.39},
		{"2.40:1", 2.40},
	}
	bestName := ""
	bestDist := math.MaxFloat64
	for _, s := range standards {
		if dist := math.Abs(ratio - s.value); dist < bestDist {
			bestDist = dist
			bestName = s.name
		}
	}
	if bestDist/ratio <= 0.02 {
		return bestName
	}
	return fmt.Sprintf("%.2f:1", ratio)
}

func validateSource(component string, info *media.MediaInfo) error {
	switch {
	case info == nil:
		return services.Invalid(component, "detect", "media info is nil")
	case info.Path == "":
		return services.Invalid(component, "detect", "empty file name")
	case info.Duration <= 0:
		return services.Invalid(component, "detect", "duration must be positive")
	}
	return nil
}
