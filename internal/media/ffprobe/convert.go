package ffprobe

import (
	"math"
	"strconv"
	"strings"

	"framesmith/internal/language"
	"framesmith/internal/media"
)

const (
	sideDataMastering  = "Mastering display metadata"
	sideDataLightLevel = "Content light level metadata"
)

// MediaInfo converts a stream inspection into the media model. Streams are
// classified by codec_type; unknown types become OtherStreamInfo.
func (r Result) MediaInfo(path string) *media.MediaInfo {
	info := &media.MediaInfo{
		Path:      path,
		Container: r.Format.FormatName,
		SizeBytes: r.Format.size(),
		Duration:  r.Format.duration(),
	}
	for _, s := range r.Streams {
		info.Streams = append(info.Streams, s.streamInfo())
	}
	return info
}

func (s Stream) base() media.StreamBase {
	return media.StreamBase{Index: s.Index, CodecName: s.CodecName, Language: language.ExtractFromTags(s.Tags)}
}

func (s Stream) streamInfo() media.StreamInfo {
	switch strings.ToLower(s.CodecType) {
	case "video":
		return s.videoInfo()
	case "audio":
		return &media.AudioStreamInfo{
			StreamBase:    s.base(),
			Channels:      s.Channels,
			ChannelLayout: s.ChannelLayout,
			Format:        s.SampleFormat,
			Profile:       s.Profile,
			Default:       s.Disposition["default"] == 1,
			Title:         tag(s.Tags, "title"),
		}
	case "subtitle":
		return &media.SubtitleStreamInfo{StreamBase: s.base(), Forced: s.Disposition["forced"] == 1}
	default:
		return &media.OtherStreamInfo{StreamBase: s.base(), CodecType: s.CodecType}
	}
}

func (s Stream) videoInfo() *media.VideoStreamInfo {
	v := &media.VideoStreamInfo{
		StreamBase:     s.base(),
		StorageWidth:   s.Width,
		StorageHeight:  s.Height,
		PixelWidth:     s.Width,
		PixelHeight:    s.Height,
		ColorTransfer:  s.ColorTransfer,
		ColorPrimaries: s.ColorPrimaries,
		ColorSpace:     s.ColorSpace,
		PixelFormat:    s.PixelFormat,
		BitDepth:       bitDepth(s),
		FrameRate:      rational(s.AvgFrameRate),
	}
	if v.FrameRate == 0 {
		v.FrameRate = rational(s.FrameRate)
	}
	if sar := rational(s.SampleAspectRatio); sar > 0 && sar != 1 {
		v.PixelWidth = evenRound(float64(s.Width) * sar)
	}
	if IsHDRTransfer(s.ColorTransfer) {
		v.DynamicRange = media.DynamicRangeHigh
	}
	return v
}

// ApplySideData copies HDR mastering and light-level metadata from the first
// frame carrying them onto v.
func ApplySideData(v *media.VideoStreamInfo, frames FrameResult) {
	if v == nil {
		return
	}
	for _, frame := range frames.Frames {
		for _, sd := range frame.SideDataList {
			switch sd.SideDataType {
			case sideDataMastering:
				if v.MasteringDisplay == nil && sd.RedX != "" {
					v.MasteringDisplay = &media.MasteringDisplay{
						RedX: sd.RedX, RedY: sd.RedY,
						GreenX: sd.GreenX, GreenY: sd.GreenY,
						BlueX: sd.BlueX, BlueY: sd.BlueY,
						WhitePointX: sd.WhitePointX, WhitePointY: sd.WhitePointY,
						MinLuminance: sd.MinLuminance, MaxLuminance: sd.MaxLuminance,
					}
				}
			case sideDataLightLevel:
				if v.LightLevel == nil {
					v.LightLevel = &media.LightLevel{MaxContent: sd.MaxContent, MaxAverage: sd.MaxAverage}
				}
			}
		}
	}
}

// IsHDRTransfer reports whether a transfer characteristic is PQ or HLG.
func IsHDRTransfer(transfer string) bool {
	switch strings.ToLower(strings.TrimSpace(transfer)) {
	case "smpte2084", "arib-std-b67":
		return true
	default:
		return false
	}
}

func bitDepth(s Stream) int {
	if n, err := strconv.Atoi(strings.TrimSpace(s.BitsPerRawSample)); err == nil && n > 0 {
		return n
	}
	pix := strings.ToLower(s.PixelFormat)
	switch {
	case strings.Contains(pix, "12le"), strings.Contains(pix, "12be"):
		return 12
	case strings.Contains(pix, "10le"), strings.Contains(pix, "10be"), strings.HasPrefix(pix, "p010"):
		return 10
	case pix == "":
		return 0
	default:
		return 8
	}
}

func rational(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" || value == "0/0" || value == "N/A" {
		return 0
	}
	sep := "/"
	if strings.Contains(value, ":") {
		sep = ":"
	}
	num, den, found := strings.Cut(value, sep)
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func evenRound(v float64) int {
	n := int(math.Round(v))
	if n%2 != 0 {
		n++
	}
	return n
}

func tag(tags map[string]string, key string) string {
	if len(tags) == 0 {
		return ""
	}
	if v, ok := tags[key]; ok {
		return strings.TrimSpace(v)
	}
	if v, ok := tags[strings.ToUpper(key)]; ok {
		return strings.TrimSpace(v)
	}
	return ""
}
