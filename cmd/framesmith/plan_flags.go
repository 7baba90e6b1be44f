package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"framesmith/internal/analysis"
	"framesmith/internal/config"
	"framesmith/internal/encoding"
	"framesmith/internal/media"
	"framesmith/internal/media/audio"
)

// planFlags are the job shaping flags shared by args, transcode, and preview.
type planFlags struct {
	output        string
	container     string
	videoFormat   string
	quality       int
	audioFormat   string
	audioBitrate  int
	audioChannels int
	audioCopy     bool
	audioLanguage string
	width         int
	height        int
	crop          string
	autoCrop      bool
	denoise       bool
	tonemap       bool
	burnSubtitle  int
	title         string
}

func (f *planFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", "", "Output file (default: next to the source, tagged with the video format)")
	flags.StringVar(&f.container, "container", "", "Output container: mkv or mp4 (default: from the output extension, else mkv)")
	flags.StringVar(&f.videoFormat, "format", "", "Video format: h264 or hevc (default from config)")
	flags.IntVarP(&f.quality, "quality", "q", -1, "Constant rate factor, 0-51 (default from config)")
	flags.StringVar(&f.audioFormat, "audio-format", "", "Audio format: aac, ac3, opus, flac (default from config)")
	flags.IntVar(&f.audioBitrate, "audio-bitrate", -1, "Audio bitrate in kbit/s (default from config)")
	flags.IntVar(&f.audioChannels, "audio-channels", 0, "Downmix audio to this many channels")
	flags.BoolVar(&f.audioCopy, "audio-copy", false, "Copy the selected audio track without re-encoding")
	flags.StringVar(&f.audioLanguage, "audio-lang", "", "Preferred audio language (default: English)")
	flags.IntVar(&f.width, "width", 0, "Scale to this width (0 keeps the source width)")
	flags.IntVar(&f.height, "height", 0, "Scale to this height (0 keeps the source height)")
	flags.StringVar(&f.crop, "crop", "", "Crop rectangle as W:H:X:Y")
	flags.BoolVar(&f.autoCrop, "auto-crop", false, "Detect and remove letterbox borders")
	flags.BoolVar(&f.denoise, "denoise", false, "Apply the denoise filter")
	flags.BoolVar(&f.tonemap, "tonemap", false, "Tone-map HDR video to SDR")
	flags.IntVar(&f.burnSubtitle, "burn-subtitle", -1, "Overlay the picture subtitle stream with this source index")
	flags.StringVar(&f.title, "title", "", "Title metadata for the output")
}

// options resolves flags against config defaults.
func (f *planFlags) options(cfg *config.Config) (encoding.PlanOptions, error) {
	opts := encoding.PlanOptions{
		OutputPath:    strings.TrimSpace(f.output),
		Quality:       cfg.Encoding.Quality,
		AudioBitrate:  cfg.Encoding.AudioBitrate,
		AudioChannels: f.audioChannels,
		AudioCopy:     f.audioCopy,
		AudioLanguage: f.audioLanguage,
		Width:         f.width,
		Height:        f.height,
		Denoise:       f.denoise,
		Tonemap:       f.tonemap,
		BurnSubtitle:  f.burnSubtitle,
		Title:         f.title,
	}
	if f.quality >= 0 {
		if f.quality > 51 {
			return opts, fmt.Errorf("quality must be between 0 and 51, got %d", f.quality)
		}
		opts.Quality = f.quality
	}
	if f.audioBitrate >= 0 {
		opts.AudioBitrate = f.audioBitrate
	}
	if f.width < 0 || f.height < 0 || f.audioChannels < 0 {
		return opts, fmt.Errorf("width, height, and audio channels must not be negative")
	}

	videoName := firstNonEmpty(f.videoFormat, cfg.Encoding.VideoFormat)
	format, ok := media.ParseVideoFormat(videoName)
	if !ok {
		return opts, fmt.Errorf("unsupported video format %q", videoName)
	}
	opts.VideoFormat = format

	audioName := firstNonEmpty(f.audioFormat, cfg.Encoding.AudioFormat)
	audioFormat, ok := media.ParseAudioFormat(audioName)
	if !ok {
		return opts, fmt.Errorf("unsupported audio format %q", audioName)
	}
	opts.AudioFormat = audioFormat

	containerName := strings.TrimSpace(f.container)
	if containerName == "" && opts.OutputPath != "" {
		if c, ok := media.ParseContainer(extension(opts.OutputPath)); ok {
			opts.Container = c
		}
	} else if containerName != "" {
		c, ok := media.ParseContainer(containerName)
		if !ok {
			return opts, fmt.Errorf("unsupported container %q", containerName)
		}
		opts.Container = c
	}

	if strings.TrimSpace(f.crop) != "" {
		if f.autoCrop {
			return opts, fmt.Errorf("--crop and --auto-crop are mutually exclusive")
		}
		crop, ok := analysis.ParseCrop("crop=" + strings.TrimSpace(f.crop))
		if !ok {
			return opts, fmt.Errorf("invalid crop %q (want W:H:X:Y)", f.crop)
		}
		opts.Crop = &crop
	}
	return opts, nil
}

// buildJob probes source and plans a job from the flags, running crop
// detection first when requested. Progress notes go to notes.
func (c *commandContext) buildJob(ctx context.Context, source string, flags *planFlags, notes io.Writer) (*media.TranscodeJob, error) {
	cfg := c.configValue()
	opts, err := flags.options(cfg)
	if err != nil {
		return nil, err
	}
	info, err := c.probe(ctx, source)
	if err != nil {
		return nil, err
	}
	if flags.autoCrop {
		outcome, err := c.cropDetector().Detect(ctx, info, cfg.CropTimeout())
		if err != nil {
			return nil, err
		}
		if outcome.OK {
			crop := outcome.Value
			opts.Crop = &crop
			fmt.Fprintf(notes, "Detected crop %s (%s)\n", crop.String(), analysis.AspectRatioLabel(crop))
		} else {
			fmt.Fprintf(notes, "No crop detected (%s)\n", outcome.Cause)
		}
	}
	if sel := audio.Select(info.AudioStreams(), opts.AudioLanguage); sel.Primary != nil {
		fmt.Fprintf(notes, "Audio: %s\n", sel.Label())
	}
	return encoding.Plan(info, opts)
}

// probe inspects source and converts a missing outcome into an error.
func (c *commandContext) probe(ctx context.Context, source string) (*media.MediaInfo, error) {
	path, err := config.ExpandPath(source)
	if err != nil {
		return nil, err
	}
	outcome, err := c.inspector().Inspect(ctx, path, c.configValue().ProbeTimeout())
	if err != nil {
		return nil, err
	}
	if !outcome.OK {
		if outcome.Err != nil {
			return nil, fmt.Errorf("probe %s (%s): %w", path, outcome.Cause, outcome.Err)
		}
		return nil, fmt.Errorf("probe %s: %s", path, outcome.Cause)
	}
	return outcome.Value, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func extension(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}
