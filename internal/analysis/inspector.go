package analysis

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"framesmith/internal/ffmpeg"
	"framesmith/internal/logging"
	"framesmith/internal/media"
	"framesmith/internal/media/ffprobe"
	"framesmith/internal/procexec"
	"framesmith/internal/services"
)

// Inspector reads container and stream details with ffprobe.
type Inspector struct {
	launcher procexec.Launcher
	binary   string
	logger   *slog.Logger
}

// NewInspector constructs an inspector that launches binary through launcher.
func NewInspector(launcher procexec.Launcher, binary string, logger *slog.Logger) *Inspector {
	if binary == "" {
		binary = "ffprobe"
	}
	return &Inspector{
		launcher: launcher,
		binary:   binary,
		logger:   logging.NewComponentLogger(logger, "inspector"),
	}
}

// Inspect probes path. The stream pass always runs; the frame pass runs only
// for a high dynamic range primary video stream and fills in mastering
// display and light level metadata. Each pass is bounded by timeout when it
// is positive.
func (i *Inspector) Inspect(ctx context.Context, path string, timeout time.Duration) (services.Outcome[*media.MediaInfo], error) {
	if strings.TrimSpace(path) == "" {
		return services.Outcome[*media.MediaInfo]{}, services.Invalid("inspector", "inspect", "empty file name")
	}
	logger := logging.WithContext(ctx, i.logger)

	out, err := i.run(ctx, ffmpeg.StreamProbe(path), timeout)
	if err != nil {
		logger.Warn("stream probe failed", logging.String("path", path), logging.Error(err))
		return services.Missing[*media.MediaInfo](services.CauseOf(err), err), nil
	}
	result, err := ffprobe.Parse([]byte(out.StdoutText()))
	if err != nil {
		logger.Warn("stream probe output unparsable", logging.String("path", path), logging.Error(err))
		return services.Missing[*media.MediaInfo](services.CauseUnparsable, err), nil
	}
	info := result.MediaInfo(path)

	video, ok := info.PrimaryVideo()
	if !ok || video.DynamicRange != media.DynamicRangeHigh {
		logger.Debug("probe complete",
			logging.String("path", path),
			logging.Int("streams", len(info.Streams)),
			logging.Duration("duration", info.Duration),
		)
		return services.Found(info), nil
	}

	frameOut, err := i.run(ctx, ffmpeg.FrameProbe(path, video.Index), timeout)
	if err != nil {
		logger.Warn("frame probe failed; hdr metadata unavailable",
			logging.String("path", path),
			logging.Int("stream", video.Index),
			logging.Error(err),
		)
		return services.Found(info), nil
	}
	frames, err := ffprobe.ParseFrames([]byte(frameOut.StdoutText()))
	if err != nil {
		logger.Warn("frame probe output unparsable", logging.String("path", path), logging.Error(err))
		return services.Found(info), nil
	}
	ffprobe.ApplySideData(video, frames)
	logger.Debug("probe complete",
		logging.String("path", path),
		logging.Int("streams", len(info.Streams)),
		logging.Bool("hdr_metadata", video.HasHDRMetadata()),
	)
	return services.Found(info), nil
}

func (i *Inspector) run(ctx context.Context, job *ffmpeg.ProbeJob, timeout time.Duration) (procexec.Output, error) {
	args, err := job.Arguments()
	if err != nil {
		return procexec.Output{}, err
	}
	return runBounded(ctx, i.launcher, i.binary, args, timeout)
}

// runBounded runs one process under an optional deadline.
func runBounded(ctx context.Context, launcher procexec.Launcher, binary, args string, timeout time.Duration) (procexec.Output, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return procexec.Run(ctx, launcher, binary, args)
}
