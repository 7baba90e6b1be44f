package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"framesmith/internal/analysis"
	"framesmith/internal/config"
	"framesmith/internal/encoding"
	"framesmith/internal/ffmpeg"
	"framesmith/internal/logging"
	"framesmith/internal/procexec"
)

type commandContext struct {
	configFlag *string
	launcher   procexec.Launcher

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, launcher procexec.Launcher) *commandContext {
	if launcher == nil {
		launcher = procexec.NewLauncher()
	}
	return &commandContext{
		configFlag: configFlag,
		launcher:   launcher,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		c.configPath, c.configExists = resolved, exists
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// loggerValue returns the config-driven logger, falling back to a no-op
// logger when the log file cannot be opened.
func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) inspector() *analysis.Inspector {
	return analysis.NewInspector(c.launcher, c.configValue().FFprobeBinary(), c.loggerValue())
}

func (c *commandContext) cropDetector() *analysis.CropDetector {
	cfg := c.configValue()
	return analysis.NewCropDetector(c.launcher, cfg.FFmpegBinary(), cfg.MaxSeek(), c.loggerValue())
}

func (c *commandContext) interlaceDetector() *analysis.InterlaceDetector {
	cfg := c.configValue()
	return analysis.NewInterlaceDetector(c.launcher, cfg.FFmpegBinary(), cfg.Detection.InterlaceFrames, c.loggerValue())
}

func (c *commandContext) mapper() *encoding.Mapper {
	cfg := c.configValue()
	return encoding.NewMapper(
		ffmpeg.EncoderSettings{H264Preset: cfg.Encoding.H264Preset, HevcPreset: cfg.Encoding.HevcPreset},
		encoding.FilterSettings{Denoise: cfg.Encoding.DenoiseFilter, Tonemap: cfg.Encoding.TonemapFilter},
	)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
