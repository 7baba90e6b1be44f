package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir     string `toml:"log_dir"`
	StateDir   string `toml:"state_dir"`
	PreviewDir string `toml:"preview_dir"`
}

// Tools names the external binaries.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Encoding contains encoder defaults and filter overrides.
type Encoding struct {
	H264Preset   string `toml:"h264_preset"`
	HevcPreset   string `toml:"hevc_preset"`
	VideoFormat  string `toml:"video_format"`
	Quality      int    `toml:"quality"`
	AudioFormat  string `toml:"audio_format"`
	AudioBitrate int    `toml:"audio_bitrate"`
	// DenoiseFilter replaces the built-in denoise stage when set.
	DenoiseFilter string `toml:"denoise_filter"`
	// TonemapFilter replaces the tone-mapping operator stage when set.
	TonemapFilter string `toml:"tonemap_filter"`
}

// Detection contains probe and heuristic detector limits, in seconds.
type Detection struct {
	ProbeTimeout     int `toml:"probe_timeout"`
	CropTimeout      int `toml:"crop_timeout"`
	InterlaceTimeout int `toml:"interlace_timeout"`
	MaxSeek          int `toml:"max_seek"`
	InterlaceFrames  int `toml:"interlace_frames"`
}

// Preview contains preview still generation settings.
type Preview struct {
	Count          int    `toml:"count"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Extension      string `toml:"extension"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// History controls the run history database.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Config encapsulates all configuration values for framesmith.
//
// Configuration sections by subsystem:
//   - Paths: log, state (history database), and preview directories
//   - Tools: ffmpeg and ffprobe binaries
//   - Encoding: presets, default formats, filter overrides
//   - Detection: probe/detector timeouts and seek limits
//   - Preview: preview still count, timeout, and image type
//   - Logging: log format and level
//   - History: run history persistence
type Config struct {
	Paths     Paths     `toml:"paths"`
	Tools     Tools     `toml:"tools"`
	Encoding  Encoding  `toml:"encoding"`
	Detection Detection `toml:"detection"`
	Preview   Preview   `toml:"preview"`
	Logging   Logging   `toml:"logging"`
	History   History   `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("framesmith.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable.
func (c *Config) FFmpegBinary() string {
	if c == nil || strings.TrimSpace(c.Tools.FFmpeg) == "" {
		return defaultFFmpeg
	}
	return c.Tools.FFmpeg
}

// FFprobeBinary returns the ffprobe executable.
func (c *Config) FFprobeBinary() string {
	if c == nil || strings.TrimSpace(c.Tools.FFprobe) == "" {
		return defaultFFprobe
	}
	return c.Tools.FFprobe
}

// HistoryPath returns the run history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// ProbeTimeout bounds each ffprobe pass.
func (c *Config) ProbeTimeout() time.Duration {
	return seconds(c.Detection.ProbeTimeout)
}

// CropTimeout bounds crop detection.
func (c *Config) CropTimeout() time.Duration {
	return seconds(c.Detection.CropTimeout)
}

// InterlaceTimeout bounds interlace detection.
func (c *Config) InterlaceTimeout() time.Duration {
	return seconds(c.Detection.InterlaceTimeout)
}

// MaxSeek caps how far into the source detectors seek.
func (c *Config) MaxSeek() time.Duration {
	return seconds(c.Detection.MaxSeek)
}

// PreviewTimeout bounds each preview extraction.
func (c *Config) PreviewTimeout() time.Duration {
	return seconds(c.Preview.TimeoutSeconds)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
