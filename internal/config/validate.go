package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	h264Presets  = []string{"ultrafast", "superfast", "veryfast", "faster", "fast", "medium", "slow", "slower", "veryslow", "placebo"}
	videoFormats = []string{"h264", "avc", "x264", "hevc", "h265", "x265"}
	audioFormats = []string{"aac", "ac3", "opus", "flac"}
	imageTypes   = []string{"png", "jpg", "jpeg", "webp"}
	logLevels    = []string{"debug", "info", "warn", "error"}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validatePreview(); err != nil {
		return err
	}
	if !contains(logLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of %s", strings.Join(logLevels, ", "))
	}
	return nil
}

func (c *Config) validateEncoding() error {
	// x264 and x265 share preset names.
	for key, preset := range map[string]string{
		"encoding.h264_preset": c.Encoding.H264Preset,
		"encoding.hevc_preset": c.Encoding.HevcPreset,
	} {
		if preset != "" && !contains(h264Presets, preset) {
			return fmt.Errorf("%s: unknown preset %q", key, preset)
		}
	}
	if !contains(videoFormats, c.Encoding.VideoFormat) {
		return fmt.Errorf("encoding.video_format: unsupported value %q", c.Encoding.VideoFormat)
	}
	if !contains(audioFormats, c.Encoding.AudioFormat) {
		return fmt.Errorf("encoding.audio_format: unsupported value %q", c.Encoding.AudioFormat)
	}
	if c.Encoding.Quality < 0 || c.Encoding.Quality > 51 {
		return errors.New("encoding.quality must be between 0 and 51")
	}
	if c.Encoding.AudioBitrate < 0 {
		return errors.New("encoding.audio_bitrate must not be negative")
	}
	if strings.ContainsAny(c.Encoding.DenoiseFilter, ";[]") {
		return errors.New("encoding.denoise_filter must be a single filter without labels")
	}
	if strings.ContainsAny(c.Encoding.TonemapFilter, ";[]") {
		return errors.New("encoding.tonemap_filter must be a single filter without labels")
	}
	return nil
}

func (c *Config) validateDetection() error {
	return ensurePositiveMap(map[string]int{
		"detection.probe_timeout":     c.Detection.ProbeTimeout,
		"detection.crop_timeout":      c.Detection.CropTimeout,
		"detection.interlace_timeout": c.Detection.InterlaceTimeout,
		"detection.max_seek":          c.Detection.MaxSeek,
		"detection.interlace_frames":  c.Detection.InterlaceFrames,
	})
}

func (c *Config) validatePreview() error {
	if c.Preview.Count < 0 {
		return errors.New("preview.count must not be negative")
	}
	if !contains(imageTypes, c.Preview.Extension) {
		return fmt.Errorf("preview.extension must be one of %s", strings.Join(imageTypes, ", "))
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
