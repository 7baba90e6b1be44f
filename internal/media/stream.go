package media

import (
	"strings"
	"time"
)

// StreamBase carries the fields common to every probed stream.
type StreamBase struct {
	Index     int
	CodecName string
	Language  string
}

// StreamInfo is one probed source stream.
type StreamInfo interface {
	Base() StreamBase
	Type() StreamType
	streamInfo()
}

// MasteringDisplay holds SMPTE ST 2086 metadata as reported by ffprobe:
// rational strings such as "34000/50000".
type MasteringDisplay struct {
	RedX, RedY     string
	GreenX, GreenY string
	BlueX, BlueY   string
	WhitePointX    string
	WhitePointY    string
	MinLuminance   string
	MaxLuminance   string
}

// LightLevel holds content light level metadata in cd/m².
type LightLevel struct {
	MaxContent int
	MaxAverage int
}

// VideoStreamInfo describes a video stream. Pixel dimensions are display
// dimensions with the sample aspect ratio applied; storage dimensions are the
// coded frame size.
type VideoStreamInfo struct {
	StreamBase
	PixelWidth       int
	PixelHeight      int
	StorageWidth     int
	StorageHeight    int
	DynamicRange     DynamicRange
	BitDepth         int
	ColorTransfer    string
	ColorPrimaries   string
	ColorSpace       string
	PixelFormat      string
	FrameRate        float64
	MasteringDisplay *MasteringDisplay
	LightLevel       *LightLevel
}

func (v *VideoStreamInfo) Base() StreamBase { return v.StreamBase }
func (v *VideoStreamInfo) Type() StreamType { return StreamVideo }
func (v *VideoStreamInfo) streamInfo()      {}

// HasHDRMetadata reports whether both static HDR metadata blocks are present.
func (v *VideoStreamInfo) HasHDRMetadata() bool {
	return v != nil && v.MasteringDisplay != nil && v.LightLevel != nil
}

// AudioStreamInfo describes an audio stream.
type AudioStreamInfo struct {
	StreamBase
	Channels      int
	ChannelLayout string
	Format        string
	Profile       string
	Default       bool
	Title         string
}

func (a *AudioStreamInfo) Base() StreamBase { return a.StreamBase }
func (a *AudioStreamInfo) Type() StreamType { return StreamAudio }
func (a *AudioStreamInfo) streamInfo()      {}

// SubtitleStreamInfo describes a subtitle stream.
type SubtitleStreamInfo struct {
	StreamBase
	Forced bool
}

func (s *SubtitleStreamInfo) Base() StreamBase { return s.StreamBase }
func (s *SubtitleStreamInfo) Type() StreamType { return StreamSubtitle }
func (s *SubtitleStreamInfo) streamInfo()      {}

// Bitmap reports whether the subtitle codec is picture based and can be
// overlaid onto video frames.
func (s *SubtitleStreamInfo) Bitmap() bool {
	switch strings.ToLower(s.CodecName) {
	case "hdmv_pgs_subtitle", "dvd_subtitle", "dvb_subtitle", "xsub":
		return true
	default:
		return false
	}
}

// OtherStreamInfo describes data, attachment, and unknown streams.
type OtherStreamInfo struct {
	StreamBase
	CodecType string
}

func (o *OtherStreamInfo) Base() StreamBase { return o.StreamBase }
func (o *OtherStreamInfo) Type() StreamType { return StreamOther }
func (o *OtherStreamInfo) streamInfo()      {}

// MediaInfo is the probed description of a source file.
type MediaInfo struct {
	Path      string
	Container string
	Duration  time.Duration
	SizeBytes int64
	Streams   []StreamInfo
}

// Stream returns the stream with the given source index.
func (m *MediaInfo) Stream(index int) (StreamInfo, bool) {
	if m == nil {
		return nil, false
	}
	for _, s := range m.Streams {
		if !absentStream(s) && s.Base().Index == index {
			return s, true
		}
	}
	return nil, false
}

// PrimaryVideo returns the first video stream.
func (m *MediaInfo) PrimaryVideo() (*VideoStreamInfo, bool) {
	if m == nil {
		return nil, false
	}
	for _, s := range m.Streams {
		if v, ok := s.(*VideoStreamInfo); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// AudioStreams returns the audio streams in source order.
func (m *MediaInfo) AudioStreams() []*AudioStreamInfo {
	if m == nil {
		return nil
	}
	var out []*AudioStreamInfo
	for _, s := range m.Streams {
		if a, ok := s.(*AudioStreamInfo); ok && a != nil {
			out = append(out, a)
		}
	}
	return out
}

// CountByType returns how many streams of the given type exist.
func (m *MediaInfo) CountByType(kind StreamType) int {
	if m == nil {
		return 0
	}
	n := 0
	for _, s := range m.Streams {
		if !absentStream(s) && s.Type() == kind {
			n++
		}
	}
	return n
}

// absentStream reports a nil entry, including a typed nil pointer.
func absentStream(s StreamInfo) bool {
	switch v := s.(type) {
	case nil:
		return true
	case *VideoStreamInfo:
		return v == nil
	case *AudioStreamInfo:
		return v == nil
	case *SubtitleStreamInfo:
		return v == nil
	case *OtherStreamInfo:
		return v == nil
	}
	return false
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), "."))
}
