package encoding

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"framesmith/internal/logging"
	"framesmith/internal/media"
	"framesmith/internal/procexec"
	"framesmith/internal/services"
	"framesmith/internal/textutil"
)

// Preview is one extracted still image.
type Preview struct {
	Timestamp time.Duration
	Path      string
}

// PreviewGenerator renders still frames of a job's video output, with the
// job's crop, scale, subtitle, and tone-map filters applied.
type PreviewGenerator struct {
	launcher  procexec.Launcher
	binary    string
	mapper    *Mapper
	dir       string
	extension string
	logger    *slog.Logger
}

// NewPreviewGenerator constructs a generator writing images of the given
// extension into dir, or the system temp directory when dir is empty.
func NewPreviewGenerator(launcher procexec.Launcher, binary string, mapper *Mapper, dir, extension string, logger *slog.Logger) *PreviewGenerator {
	if binary == "" {
		binary = "ffmpeg"
	}
	extension = strings.TrimPrefix(strings.TrimSpace(extension), ".")
	if extension == "" {
		extension = "png"
	}
	return &PreviewGenerator{
		launcher:  launcher,
		binary:    binary,
		mapper:    mapper,
		dir:       dir,
		extension: extension,
		logger:    logging.NewComponentLogger(logger, "preview"),
	}
}

// PreviewTimestamps spaces count samples evenly inside duration, excluding
// both ends: duration/(count+1) × i for i in 1..count.
func PreviewTimestamps(duration time.Duration, count int) []time.Duration {
	if count <= 0 || duration <= 0 {
		return nil
	}
	out := make([]time.Duration, count)
	for i := 1; i <= count; i++ {
		out[i-1] = time.Duration(int64(duration) * int64(i) / int64(count+1))
	}
	return out
}

// Generate extracts count stills concurrently, each bounded by timeout.
// Extractions that fail, or exit cleanly without producing an image, are
// left out; the rest are returned in timestamp order. A zero count yields no
// previews. Errors are returned only for invalid input.
func (g *PreviewGenerator) Generate(ctx context.Context, job *media.TranscodeJob, duration time.Duration, count int, timeout time.Duration) ([]Preview, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, services.Invalid("preview", "generate", "duration must be positive")
	}
	if count < 0 {
		return nil, services.Invalid("preview", "generate", "count must not be negative")
	}
	dir := g.dir
	if dir == "" {
		dir = os.TempDir()
	}
	logger := logging.WithContext(ctx, g.logger)

	type request struct {
		preview Preview
		args    string
	}
	base := filepath.Base(job.Source.Path)
	prefix := textutil.SanitizeToken(strings.TrimSuffix(base, filepath.Ext(base)))
	timestamps := PreviewTimestamps(duration, count)
	requests := make([]request, 0, len(timestamps))
	for _, ts := range timestamps {
		path := filepath.Join(dir, fmt.Sprintf("%s-%s.%s", prefix, uuid.NewString(), g.extension))
		cmd, err := g.mapper.Map(job, MapOptions{
			OmitVideoCodec: true,
			VideoOnly:      true,
			Seek:           ts,
			FrameLimit:     1,
			SingleImage:    true,
			Format:         "image2",
			OutputPath:     path,
		})
		if err != nil {
			return nil, err
		}
		args, err := cmd.Arguments()
		if err != nil {
			return nil, err
		}
		requests = append(requests, request{preview: Preview{Timestamp: ts, Path: path}, args: args})
	}

	var (
		group   errgroup.Group
		mu      sync.Mutex
		results = make([]Preview, 0, len(requests))
	)
	for _, req := range requests {
		req := req
		// A failed still never cancels its siblings.
		group.Go(func() error {
			if err := g.extract(ctx, req.args, req.preview.Path, timeout); err != nil {
				logger.Warn("preview extraction failed",
					logging.Duration("timestamp", req.preview.Timestamp),
					logging.Error(err),
				)
				_ = os.Remove(req.preview.Path)
				return nil
			}
			mu.Lock()
			results = append(results, req.preview)
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Timestamp < results[j].Timestamp })
	logger.Info("previews generated",
		logging.Int("requested", len(requests)),
		logging.Int("succeeded", len(results)),
	)
	return results, nil
}

// extract runs one sample. A clean exit counts only when ffmpeg actually
// wrote a non-empty image to path.
func (g *PreviewGenerator) extract(ctx context.Context, args, path string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if _, err := procexec.Run(ctx, g.launcher, g.binary, args); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrProcessFailure, "preview", "extract", "ffmpeg exited cleanly without writing the image", err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrProcessFailure, "preview", "extract", "ffmpeg wrote an empty image", nil)
	}
	return nil
}
