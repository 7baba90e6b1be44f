package ffprobe

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Result is the decoded output of a stream inspection
// (-show_streams -show_format).
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream holds the per-stream fields the media model is built from.
type Stream struct {
	Index             int               `json:"index"`
	CodecName         string            `json:"codec_name"`
	CodecType         string            `json:"codec_type"`
	Profile           string            `json:"profile"`
	Width             int               `json:"width"`
	Height            int               `json:"height"`
	SampleAspectRatio string            `json:"sample_aspect_ratio"`
	PixelFormat       string            `json:"pix_fmt"`
	BitsPerRawSample  string            `json:"bits_per_raw_sample"`
	ColorTransfer     string            `json:"color_transfer"`
	ColorPrimaries    string            `json:"color_primaries"`
	ColorSpace        string            `json:"color_space"`
	FrameRate         string            `json:"r_frame_rate"`
	AvgFrameRate      string            `json:"avg_frame_rate"`
	SampleFormat      string            `json:"sample_fmt"`
	Channels          int               `json:"channels"`
	ChannelLayout     string            `json:"channel_layout"`
	Tags              map[string]string `json:"tags"`
	Disposition       map[string]int    `json:"disposition"`
}

// Format holds the container fields. ffprobe reports numbers as strings.
type Format struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

// FrameResult is the output of a frame-level inspection.
type FrameResult struct {
	Frames []Frame `json:"frames"`
}

// Frame is one decoded frame with its side data.
type Frame struct {
	MediaType    string     `json:"media_type"`
	StreamIndex  int        `json:"stream_index"`
	PixelFormat  string     `json:"pix_fmt"`
	SideDataList []SideData `json:"side_data_list"`
}

// SideData is one per-frame side data block. Only the HDR fields are decoded.
type SideData struct {
	SideDataType string `json:"side_data_type"`
	RedX         string `json:"red_x"`
	RedY         string `json:"red_y"`
	GreenX       string `json:"green_x"`
	GreenY       string `json:"green_y"`
	BlueX        string `json:"blue_x"`
	BlueY        string `json:"blue_y"`
	WhitePointX  string `json:"white_point_x"`
	WhitePointY  string `json:"white_point_y"`
	MinLuminance string `json:"min_luminance"`
	MaxLuminance string `json:"max_luminance"`
	MaxContent   int    `json:"max_content"`
	MaxAverage   int    `json:"max_average"`
}

// Parse decodes a stream inspection payload.
func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// ParseFrames decodes a frame inspection payload.
func ParseFrames(data []byte) (FrameResult, error) {
	var result FrameResult
	if err := json.Unmarshal(data, &result); err != nil {
		return FrameResult{}, fmt.Errorf("ffprobe frame parse: %w", err)
	}
	return result, nil
}

// duration is the container duration, zero when missing or malformed.
func (f Format) duration() time.Duration {
	secs, ok := positive(f.Duration)
	if !ok {
		return 0
	}
	return time.Duration(math.Round(secs * float64(time.Second)))
}

// size is the container size in bytes, zero when missing or malformed.
func (f Format) size() int64 {
	bytes, ok := positive(f.Size)
	if !ok {
		return 0
	}
	return int64(bytes)
}

func positive(value string) (float64, bool) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
