package encoding

import (
	"fmt"
	"path/filepath"
	"strings"

	"framesmith/internal/media"
	"framesmith/internal/media/audio"
	"framesmith/internal/services"
	"framesmith/internal/textutil"
)

// PlanOptions describes the output a caller wants from a probed source.
// Zero values fall back to defaults: Matroska, HEVC, the primary audio track
// re-encoded to Opus, and the source resolution.
type PlanOptions struct {
	OutputPath    string
	Container     media.ContainerFormat
	VideoFormat   media.VideoFormat
	Quality       int
	AudioFormat   media.AudioFormat
	AudioBitrate  int
	AudioChannels int
	// AudioCopy passes the selected audio track through untouched.
	AudioCopy     bool
	AudioLanguage string
	Width         int
	Height        int
	Crop          *media.CropParameters
	Denoise       bool
	Tonemap       bool
	// BurnSubtitle is the source index of a picture subtitle to overlay, or
	// a negative value for none.
	BurnSubtitle int
	Title        string
}

// Plan builds a transcode job for info. The primary video stream is always
// encoded and a single primary audio track is kept. An HDR source is encoded
// as HDR when the target format supports it and is tone-mapped otherwise.
func Plan(info *media.MediaInfo, opts PlanOptions) (*media.TranscodeJob, error) {
	if info == nil {
		return nil, services.Invalid("plan", "build job", "media info is nil")
	}
	video, ok := info.PrimaryVideo()
	if !ok {
		return nil, services.Wrap(services.ErrUnsupportedOperation, "plan", "build job", "source has no video stream", nil)
	}

	container := opts.Container
	if container == media.ContainerUnknown {
		container = media.ContainerMkv
	}
	format := opts.VideoFormat
	if format == media.VideoUnknown {
		format = media.VideoHevc
	}

	out := &media.VideoOutput{
		SourceStreamIndex: video.Index,
		Format:            format,
		Quality:           opts.Quality,
		Width:             opts.Width,
		Height:            opts.Height,
		Crop:              opts.Crop,
		Denoise:           opts.Denoise,
		Tonemap:           opts.Tonemap,
	}
	if video.DynamicRange == media.DynamicRangeHigh && !opts.Tonemap {
		if format.SupportsHDR() {
			out.DynamicRange = media.DynamicRangeHigh
			out.CopyHDRMetadata = video.HasHDRMetadata()
		} else {
			out.Tonemap = true
		}
	}
	if out.Crop != nil && out.Crop.Empty() {
		out.Crop = nil
	}

	job := &media.TranscodeJob{
		Source:    info,
		Container: container,
		Streams:   []media.OutputStream{out},
	}

	selection := audio.Select(info.AudioStreams(), opts.AudioLanguage)
	if selection.Primary != nil {
		if opts.AudioCopy {
			job.Streams = append(job.Streams, &media.PassthroughOutput{SourceStreamIndex: selection.Index()})
		} else {
			audioFormat := opts.AudioFormat
			if audioFormat == media.AudioUnknown {
				audioFormat = media.AudioOpus
			}
			job.Streams = append(job.Streams, &media.AudioOutput{
				SourceStreamIndex: selection.Index(),
				Format:            audioFormat,
				Bitrate:           opts.AudioBitrate,
				Channels:          opts.AudioChannels,
			})
		}
	}

	if opts.BurnSubtitle >= 0 {
		stream, ok := info.Stream(opts.BurnSubtitle)
		if !ok || stream.Type() != media.StreamSubtitle {
			return nil, services.Invalid("plan", "build job", fmt.Sprintf("stream %d is not a subtitle stream", opts.BurnSubtitle))
		}
		if sub, _ := stream.(*media.SubtitleStreamInfo); sub == nil || !sub.Bitmap() {
			return nil, services.Wrap(services.ErrUnsupportedOperation, "plan", "build job",
				fmt.Sprintf("subtitle stream %d is text based and cannot be overlaid", opts.BurnSubtitle), nil)
		}
		job.Subtitle = &media.SubtitleSelection{SourceStreamIndex: opts.BurnSubtitle}
	}

	if title := strings.TrimSpace(opts.Title); title != "" {
		job.Metadata = map[string]string{"title": title}
	}

	job.OutputPath = opts.OutputPath
	if strings.TrimSpace(job.OutputPath) == "" {
		job.OutputPath = DefaultOutputPath(info.Path, format, container)
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return job, nil
}

// DefaultOutputPath places the output next to source, tagged with the video
// format: /media/Movie.mkv becomes /media/Movie.hevc.mkv.
func DefaultOutputPath(source string, format media.VideoFormat, container media.ContainerFormat) string {
	dir := filepath.Dir(source)
	base := filepath.Base(source)
	stem := textutil.SanitizeFileName(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "output"
	}
	return filepath.Join(dir, stem+"."+format.String()+"."+container.String())
}
