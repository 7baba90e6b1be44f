package ffmpeg

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"framesmith/internal/cmdargs"
	"framesmith/internal/media"
	"framesmith/internal/services"
)

const (
	hdrPixelFormat    = "yuv420p10le"
	hdrColorPrimaries = "bt2020"
	hdrTransfer       = "smpte2084"
	hdrColorSpace     = "bt2020nc"

	// x265 expects chromaticity in 0.00002 units and luminance in 0.0001 cd/m².
	chromaticityScale = 50000
	luminanceScale    = 10000
)

// EncoderSettings holds the encoder presets applied to every video codec.
type EncoderSettings struct {
	H264Preset string
	HevcPreset string
}

// DefaultEncoderSettings mirrors the encoder defaults.
func DefaultEncoderSettings() EncoderSettings {
	return EncoderSettings{H264Preset: "medium", HevcPreset: "slow"}
}

// VideoCodec selects the encoder and options for a video output.
func (s EncoderSettings) VideoCodec(out *media.VideoOutput, source *media.VideoStreamInfo) (*cmdargs.Codec, error) {
	var codec *cmdargs.Codec
	switch out.Format {
	case media.VideoH264:
		codec = &cmdargs.Codec{Name: "libx264"}
		if s.H264Preset != "" {
			codec = codec.With("preset", s.H264Preset)
		}
	case media.VideoHevc:
		codec = &cmdargs.Codec{Name: "libx265"}
		if s.HevcPreset != "" {
			codec = codec.With("preset", s.HevcPreset)
		}
	default:
		return nil, services.Wrap(services.ErrUnsupportedValue, "codec", "video", fmt.Sprintf("unsupported video format %s", out.Format), nil)
	}
	if out.Quality > 0 {
		codec = codec.With("crf", strconv.Itoa(out.Quality))
	}
	if out.DynamicRange != media.DynamicRangeHigh {
		return codec, nil
	}
	if !out.Format.SupportsHDR() {
		return nil, services.Wrap(services.ErrUnsupportedOperation, "codec", "video",
			fmt.Sprintf("%s cannot carry high dynamic range output", out.Format), nil)
	}
	codec = codec.
		With("pix_fmt", hdrPixelFormat).
		With("color_primaries", hdrColorPrimaries).
		With("color_trc", hdrTransfer).
		With("colorspace", hdrColorSpace)
	params := []string{"hdr-opt=1", "repeat-headers=1"}
	if out.CopyHDRMetadata && source.HasHDRMetadata() {
		display, err := MasterDisplayParam(*source.MasteringDisplay)
		if err != nil {
			return nil, err
		}
		params = append(params, "master-display="+display, "max-cll="+MaxCLLParam(*source.LightLevel))
	}
	return codec.With("x265-params", strings.Join(params, ":")), nil
}

// AudioCodec selects the encoder and options for an audio output.
func AudioCodec(out *media.AudioOutput) (cmdargs.MappedStream, error) {
	stream := cmdargs.MappedStream{Input: cmdargs.SourceInput(out.SourceStreamIndex), Type: media.StreamAudio}
	var name string
	switch out.Format {
	case media.AudioAac:
		name = "aac"
	case media.AudioAc3:
		name = "ac3"
	case media.AudioOpus:
		name = "libopus"
	case media.AudioFlac:
		name = "flac"
	default:
		return stream, services.Wrap(services.ErrUnsupportedValue, "codec", "audio", fmt.Sprintf("unsupported audio format %s", out.Format), nil)
	}
	stream.Codec = &cmdargs.Codec{Name: name}
	if out.Bitrate > 0 {
		stream.Bitrate = strconv.Itoa(out.Bitrate) + "k"
	}
	stream.Channels = out.Channels
	return stream, nil
}

// MasterDisplayParam renders mastering display metadata in the x265 layout
// G(x,y)B(x,y)R(x,y)WP(x,y)L(max,min).
func MasterDisplayParam(md media.MasteringDisplay) (string, error) {
	values := []struct {
		raw   string
		scale float64
	}{
		{md.GreenX, chromaticityScale}, {md.GreenY, chromaticityScale},
		{md.BlueX, chromaticityScale}, {md.BlueY, chromaticityScale},
		{md.RedX, chromaticityScale}, {md.RedY, chromaticityScale},
		{md.WhitePointX, chromaticityScale}, {md.WhitePointY, chromaticityScale},
		{md.MaxLuminance, luminanceScale}, {md.MinLuminance, luminanceScale},
	}
	scaled := make([]any, 0, len(values))
	for _, v := range values {
		parsed, err := ParseRational(v.raw)
		if err != nil {
			return "", services.Wrap(services.ErrUnsupportedValue, "codec", "master-display", "malformed mastering display metadata", err)
		}
		scaled = append(scaled, int64(math.Round(parsed*v.scale)))
	}
	return fmt.Sprintf("G(%d,%d)B(%d,%d)R(%d,%d)WP(%d,%d)L(%d,%d)", scaled...), nil
}

// MaxCLLParam renders content light level metadata as "MaxCLL,MaxFALL".
func MaxCLLParam(ll media.LightLevel) string {
	return fmt.Sprintf("%d,%d", ll.MaxContent, ll.MaxAverage)
}

// ParseRational parses "num/den" or a plain decimal.
func ParseRational(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty value")
	}
	num, den, found := strings.Cut(value, "/")
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", value, err)
	}
	if !found {
		return n, nil
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", value, err)
	}
	if d == 0 {
		return 0, fmt.Errorf("parse %q: zero denominator", value)
	}
	return n / d, nil
}
