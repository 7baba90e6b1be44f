package encoding

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"framesmith/internal/cmdargs"
	"framesmith/internal/ffmpeg"
	"framesmith/internal/media"
	"framesmith/internal/services"
)

const (
	defaultDenoise = "hqdn3d=4:3:6:4.5"

	subtitleLabel  = "sub"
	referenceLabel = "ref"
	videoOutLabel  = "vout"
)

// FilterSettings holds configured replacements for built-in filter stages.
type FilterSettings struct {
	// Denoise replaces the whole denoise stage.
	Denoise string
	// Tonemap replaces the tone-mapping operator inside the tone-map pipeline.
	Tonemap string
}

// MapOptions adjusts a mapped job for uses other than a full transcode.
type MapOptions struct {
	// OmitVideoCodec leaves the video encoder to ffmpeg's default for the
	// output format.
	OmitVideoCodec bool
	// VideoOnly drops every output stream except the primary video along with
	// job metadata.
	VideoOnly   bool
	Seek        time.Duration
	FrameLimit  int
	SingleImage bool
	// Format overrides the muxer chosen from the job container.
	Format string
	// OutputPath overrides the job output path.
	OutputPath string
}

// Mapper builds complete ffmpeg jobs, filter graph included.
type Mapper struct {
	assembler *ffmpeg.Assembler
	filters   FilterSettings
}

// NewMapper constructs a mapper.
func NewMapper(encoder ffmpeg.EncoderSettings, filters FilterSettings) *Mapper {
	return &Mapper{assembler: ffmpeg.NewAssembler(encoder), filters: filters}
}

// Map validates job and compiles it. The job must carry a video output backed
// by a source video stream.
func (m *Mapper) Map(job *media.TranscodeJob, opts MapOptions) (*ffmpeg.Job, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	out, ok := job.PrimaryVideoOutput()
	if !ok {
		return nil, services.Wrap(services.ErrUnsupportedOperation, "mapper", "map", "job has no video output", nil)
	}
	stream, _ := job.Source.Stream(out.SourceStreamIndex)
	source, ok := stream.(*media.VideoStreamInfo)
	if !ok {
		return nil, services.Wrap(services.ErrUnsupportedOperation, "mapper", "map",
			fmt.Sprintf("video output source %d is not a video stream", out.SourceStreamIndex), nil)
	}
	if out.Tonemap && out.DynamicRange == media.DynamicRangeHigh {
		return nil, services.Wrap(services.ErrUnsupportedOperation, "mapper", "map",
			"tone mapping produces standard dynamic range output", nil)
	}
	cmd, err := m.assembler.Assemble(job)
	if err != nil {
		return nil, err
	}

	filters := m.videoFilters(job, out, source)
	videoInput := cmdargs.SourceInput(out.SourceStreamIndex)
	if cmdargs.Labeled(filters) {
		filters[len(filters)-1].Outputs = []string{videoOutLabel}
		videoInput = "[" + videoOutLabel + "]"
	}

	streams := make([]cmdargs.MappedStream, 0, len(cmd.Streams))
	for i, mapped := range cmd.Streams {
		if job.Streams[i] == media.OutputStream(out) {
			mapped.Input = videoInput
			if opts.OmitVideoCodec {
				mapped.Codec = nil
			}
		} else if opts.VideoOnly {
			continue
		}
		streams = append(streams, mapped)
	}
	cmd.Streams = streams
	cmd.Filters = filters
	cmd.Seek = opts.Seek
	cmd.FrameLimit = opts.FrameLimit
	cmd.SingleImage = opts.SingleImage
	if opts.VideoOnly {
		cmd.Metadata = nil
	}
	if opts.Format != "" {
		cmd.Format = opts.Format
	}
	if opts.OutputPath != "" {
		cmd.OutputPath = opts.OutputPath
	}
	return cmd, nil
}

func (m *Mapper) videoFilters(job *media.TranscodeJob, out *media.VideoOutput, source *media.VideoStreamInfo) []cmdargs.Filter {
	var filters []cmdargs.Filter

	if job.Subtitle != nil {
		filters = append(filters,
			cmdargs.Filter{
				Name:    "scale2ref",
				Inputs:  []string{cmdargs.SourceInput(job.Subtitle.SourceStreamIndex), cmdargs.SourceInput(out.SourceStreamIndex)},
				Outputs: []string{subtitleLabel, referenceLabel},
			},
			cmdargs.Filter{
				Name:            "overlay",
				Inputs:          []string{referenceLabel, subtitleLabel},
				ChainToPrevious: true,
			},
		)
	}

	cropped := false
	if c := out.Crop; c != nil && !c.Empty() {
		width, height := storageSize(source)
		if c.Width < width || c.Height < height {
			filters = append(filters, cmdargs.NewFilter("crop",
				strconv.Itoa(c.Width), strconv.Itoa(c.Height), strconv.Itoa(c.X), strconv.Itoa(c.Y)))
			cropped = true
		}
	}

	scaled := false
	if out.Width > 0 || out.Height > 0 {
		width, height := out.Width, out.Height
		if width == 0 {
			width = source.PixelWidth
		}
		if height == 0 {
			height = source.PixelHeight
		}
		if width != source.PixelWidth || height != source.PixelHeight {
			filters = append(filters, cmdargs.NewFilter("scale", strconv.Itoa(width), strconv.Itoa(height)))
			scaled = true
		}
	}

	if cropped || scaled {
		filters = append(filters, cmdargs.NewFilter("setsar", "1:1"))
	}

	if out.Denoise {
		if custom := strings.TrimSpace(m.filters.Denoise); custom != "" {
			filters = append(filters, cmdargs.CustomFilter(custom))
		} else {
			filters = append(filters, cmdargs.CustomFilter(defaultDenoise))
		}
	}

	if out.Tonemap {
		filters = append(filters, m.tonemapFilters()...)
	}
	return filters
}

// tonemapFilters converts PQ/HLG input to BT.709 SDR through linear light.
func (m *Mapper) tonemapFilters() []cmdargs.Filter {
	operator := cmdargs.Filter{Name: "tonemap", Options: []cmdargs.FilterOption{
		{Name: "tonemap", Value: "hable"},
		{Name: "desat", Value: "0"},
	}}
	if custom := strings.TrimSpace(m.filters.Tonemap); custom != "" {
		operator = cmdargs.CustomFilter(custom)
	}
	return []cmdargs.Filter{
		{Name: "zscale", Options: []cmdargs.FilterOption{{Name: "t", Value: "linear"}, {Name: "npl", Value: "100"}}},
		cmdargs.NewFilter("format", "gbrpf32le"),
		{Name: "zscale", Options: []cmdargs.FilterOption{{Name: "p", Value: "bt709"}}},
		operator,
		{Name: "zscale", Options: []cmdargs.FilterOption{{Name: "t", Value: "bt709"}, {Name: "m", Value: "bt709"}, {Name: "r", Value: "tv"}}},
		cmdargs.NewFilter("format", "yuv420p"),
	}
}

func storageSize(v *media.VideoStreamInfo) (int, int) {
	width, height := v.StorageWidth, v.StorageHeight
	if width == 0 {
		width = v.PixelWidth
	}
	if height == 0 {
		height = v.PixelHeight
	}
	return width, height
}
