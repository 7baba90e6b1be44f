package media

import "fmt"

// ContainerFormat selects the output muxer.
type ContainerFormat int

const (
	ContainerUnknown ContainerFormat = iota
	ContainerMkv
	ContainerMp4
)

func (c ContainerFormat) String() string {
	switch c {
	case ContainerMkv:
		return "mkv"
	case ContainerMp4:
		return "mp4"
	default:
		return fmt.Sprintf("container(%d)", int(c))
	}
}

// ParseContainer maps a file extension or short name onto a ContainerFormat.
func ParseContainer(value string) (ContainerFormat, bool) {
	switch normalizeToken(value) {
	case "mkv", "matroska", "webm":
		return ContainerMkv, true
	case "mp4", "m4v", "mov":
		return ContainerMp4, true
	default:
		return ContainerUnknown, false
	}
}

// VideoFormat is the requested video coding format.
type VideoFormat int

const (
	VideoUnknown VideoFormat = iota
	VideoH264
	VideoHevc
)

func (v VideoFormat) String() string {
	switch v {
	case VideoH264:
		return "h264"
	case VideoHevc:
		return "hevc"
	default:
		return fmt.Sprintf("video(%d)", int(v))
	}
}

// SupportsHDR reports whether the format can carry high dynamic range output.
func (v VideoFormat) SupportsHDR() bool {
	return v == VideoHevc
}

// ParseVideoFormat accepts common aliases (x264, h265, ...).
func ParseVideoFormat(value string) (VideoFormat, bool) {
	switch normalizeToken(value) {
	case "h264", "avc", "x264":
		return VideoH264, true
	case "hevc", "h265", "x265":
		return VideoHevc, true
	default:
		return VideoUnknown, false
	}
}

// AudioFormat is the requested audio coding format.
type AudioFormat int

const (
	AudioUnknown AudioFormat = iota
	AudioAac
	AudioAc3
	AudioOpus
	AudioFlac
)

func (a AudioFormat) String() string {
	switch a {
	case AudioAac:
		return "aac"
	case AudioAc3:
		return "ac3"
	case AudioOpus:
		return "opus"
	case AudioFlac:
		return "flac"
	default:
		return fmt.Sprintf("audio(%d)", int(a))
	}
}

// ParseAudioFormat maps a short name onto an AudioFormat.
func ParseAudioFormat(value string) (AudioFormat, bool) {
	switch normalizeToken(value) {
	case "aac":
		return AudioAac, true
	case "ac3", "ac-3":
		return AudioAc3, true
	case "opus":
		return AudioOpus, true
	case "flac":
		return AudioFlac, true
	default:
		return AudioUnknown, false
	}
}

// DynamicRange distinguishes standard and high dynamic range video.
type DynamicRange int

const (
	DynamicRangeStandard DynamicRange = iota
	DynamicRangeHigh
)

func (d DynamicRange) String() string {
	if d == DynamicRangeHigh {
		return "hdr"
	}
	return "sdr"
}

// StreamType is the coarse kind of a source stream.
type StreamType int

const (
	StreamVideo StreamType = iota
	StreamAudio
	StreamSubtitle
	StreamOther
)

func (s StreamType) String() string {
	switch s {
	case StreamVideo:
		return "video"
	case StreamAudio:
		return "audio"
	case StreamSubtitle:
		return "subtitle"
	default:
		return "other"
	}
}
