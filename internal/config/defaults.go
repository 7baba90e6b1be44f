package config

const (
	defaultConfigPath       = "~/.config/framesmith/config.toml"
	defaultLogDir           = "~/.local/share/framesmith/logs"
	defaultStateDir         = "~/.local/share/framesmith"
	defaultFFmpeg           = "ffmpeg"
	defaultFFprobe          = "ffprobe"
	defaultH264Preset       = "medium"
	defaultHevcPreset       = "slow"
	defaultVideoFormat      = "hevc"
	defaultQuality          = 22
	defaultAudioFormat      = "opus"
	defaultAudioBitrate     = 192
	defaultProbeTimeout     = 30
	defaultCropTimeout      = 60
	defaultInterlaceTimeout = 120
	defaultMaxSeek          = 300
	defaultInterlaceFrames  = 100
	defaultPreviewCount     = 4
	defaultPreviewTimeout   = 30
	defaultPreviewExtension = "png"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults. PreviewDir is
// empty, meaning the system temp directory.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpeg,
			FFprobe: defaultFFprobe,
		},
		Encoding: Encoding{
			H264Preset:   defaultH264Preset,
			HevcPreset:   defaultHevcPreset,
			VideoFormat:  defaultVideoFormat,
			Quality:      defaultQuality,
			AudioFormat:  defaultAudioFormat,
			AudioBitrate: defaultAudioBitrate,
		},
		Detection: Detection{
			ProbeTimeout:     defaultProbeTimeout,
			CropTimeout:      defaultCropTimeout,
			InterlaceTimeout: defaultInterlaceTimeout,
			MaxSeek:          defaultMaxSeek,
			InterlaceFrames:  defaultInterlaceFrames,
		},
		Preview: Preview{
			Count:          defaultPreviewCount,
			TimeoutSeconds: defaultPreviewTimeout,
			Extension:      defaultPreviewExtension,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
		},
	}
}
