package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeEncoding()
	c.normalizeDetection()
	c.normalizePreview()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.PreviewDir, err = expandPath(strings.TrimSpace(c.Paths.PreviewDir)); err != nil {
		return fmt.Errorf("paths.preview_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	if value, ok := os.LookupEnv("FRAMESMITH_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Tools.FFmpeg = value
	}
	if value, ok := os.LookupEnv("FRAMESMITH_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Tools.FFprobe = value
	}
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpeg
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobe
	}
}

func (c *Config) normalizeEncoding() {
	c.Encoding.H264Preset = strings.ToLower(strings.TrimSpace(c.Encoding.H264Preset))
	c.Encoding.HevcPreset = strings.ToLower(strings.TrimSpace(c.Encoding.HevcPreset))
	c.Encoding.VideoFormat = strings.ToLower(strings.TrimSpace(c.Encoding.VideoFormat))
	if c.Encoding.VideoFormat == "" {
		c.Encoding.VideoFormat = defaultVideoFormat
	}
	c.Encoding.AudioFormat = strings.ToLower(strings.TrimSpace(c.Encoding.AudioFormat))
	if c.Encoding.AudioFormat == "" {
		c.Encoding.AudioFormat = defaultAudioFormat
	}
	c.Encoding.DenoiseFilter = strings.TrimSpace(c.Encoding.DenoiseFilter)
	c.Encoding.TonemapFilter = strings.TrimSpace(c.Encoding.TonemapFilter)
}

func (c *Config) normalizeDetection() {
	if c.Detection.ProbeTimeout <= 0 {
		c.Detection.ProbeTimeout = defaultProbeTimeout
	}
	if c.Detection.CropTimeout <= 0 {
		c.Detection.CropTimeout = defaultCropTimeout
	}
	if c.Detection.InterlaceTimeout <= 0 {
		c.Detection.InterlaceTimeout = defaultInterlaceTimeout
	}
	if c.Detection.MaxSeek <= 0 {
		c.Detection.MaxSeek = defaultMaxSeek
	}
	if c.Detection.InterlaceFrames <= 0 {
		c.Detection.InterlaceFrames = defaultInterlaceFrames
	}
}

func (c *Config) normalizePreview() {
	c.Preview.Extension = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Preview.Extension), "."))
	if c.Preview.Extension == "" {
		c.Preview.Extension = defaultPreviewExtension
	}
	if c.Preview.TimeoutSeconds <= 0 {
		c.Preview.TimeoutSeconds = defaultPreviewTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
