package ffmpeg

import (
	"fmt"

	"framesmith/internal/cmdargs"
	"framesmith/internal/media"
	"framesmith/internal/services"
)

// Assembler turns transcode jobs into ffmpeg invocations.
type Assembler struct {
	settings EncoderSettings
}

// NewAssembler constructs an assembler with the given encoder settings.
func NewAssembler(settings EncoderSettings) *Assembler {
	return &Assembler{settings: settings}
}

// Settings returns the encoder settings in use.
func (a *Assembler) Settings() EncoderSettings {
	return a.settings
}

// ContainerName maps a container onto the ffmpeg muxer name.
func ContainerName(c media.ContainerFormat) (string, error) {
	switch c {
	case media.ContainerMkv:
		return "matroska", nil
	case media.ContainerMp4:
		return "mp4", nil
	default:
		return "", services.Wrap(services.ErrUnsupportedValue, "assembler", "container", fmt.Sprintf("unsupported container %s", c), nil)
	}
}

// Assemble validates job and builds the invocation: universal flags, input,
// container format, one stream map per output stream, metadata, and output.
// Stream maps preserve the order of job.Streams.
func (a *Assembler) Assemble(job *media.TranscodeJob) (*Job, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	format, err := ContainerName(job.Container)
	if err != nil {
		return nil, err
	}
	streams := make([]cmdargs.MappedStream, 0, len(job.Streams))
	for _, out := range job.Streams {
		mapped, err := a.mapStream(job.Source, out)
		if err != nil {
			return nil, err
		}
		streams = append(streams, mapped)
	}
	return &Job{
		HideBanner: true,
		NoStdin:    true,
		Overwrite:  true,
		InputPath:  job.Source.Path,
		Format:     format,
		Streams:    streams,
		Metadata:   job.Metadata,
		OutputPath: job.OutputPath,
	}, nil
}

func (a *Assembler) mapStream(source *media.MediaInfo, out media.OutputStream) (cmdargs.MappedStream, error) {
	// Validate has already confirmed the source stream exists.
	src, _ := source.Stream(out.SourceIndex())
	switch o := out.(type) {
	case *media.VideoOutput:
		video, ok := src.(*media.VideoStreamInfo)
		if !ok {
			return cmdargs.MappedStream{}, mismatch(o.SourceStreamIndex, media.StreamVideo, src.Type())
		}
		codec, err := a.settings.VideoCodec(o, video)
		if err != nil {
			return cmdargs.MappedStream{}, err
		}
		return cmdargs.MappedStream{Input: cmdargs.SourceInput(o.SourceStreamIndex), Type: media.StreamVideo, Codec: codec}, nil
	case *media.AudioOutput:
		if src.Type() != media.StreamAudio {
			return cmdargs.MappedStream{}, mismatch(o.SourceStreamIndex, media.StreamAudio, src.Type())
		}
		return AudioCodec(o)
	case *media.PassthroughOutput:
		return cmdargs.MappedStream{
			Input: cmdargs.SourceInput(o.SourceStreamIndex),
			Type:  src.Type(),
			Codec: &cmdargs.Codec{Name: "copy"},
		}, nil
	default:
		return cmdargs.MappedStream{}, services.Wrap(services.ErrUnsupportedValue, "assembler", "map stream", fmt.Sprintf("unsupported output stream %T", out), nil)
	}
}

func mismatch(index int, want, got media.StreamType) error {
	return services.Invalid("assembler", "map stream",
		fmt.Sprintf("stream %d is %s, output expects %s", index, got, want))
}
