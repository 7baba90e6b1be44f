package ffmpeg

import (
	"strconv"

	"framesmith/internal/cmdargs"
)

// ProbeJob is one ffprobe invocation emitting JSON.
type ProbeJob struct {
	LogLevel      string
	ShowFormat    bool
	ShowStreams   bool
	ShowFrames    bool
	SelectStreams string
	ReadIntervals string
	InputPath     string
}

// Fields implements cmdargs.Schema.
func (p *ProbeJob) Fields() []cmdargs.Field {
	return []cmdargs.Field{
		{Name: "-v", Order: 1, Kind: cmdargs.KindScalar, Value: optional(p.LogLevel)},
		{Name: "-print_format", Order: 2, Kind: cmdargs.KindScalar, Value: "json"},
		{Name: "-show_format", Order: 3, Kind: cmdargs.KindFlag, Value: p.ShowFormat},
		{Name: "-show_streams", Order: 4, Kind: cmdargs.KindFlag, Value: p.ShowStreams},
		{Name: "-show_frames", Order: 5, Kind: cmdargs.KindFlag, Value: p.ShowFrames},
		{Name: "-select_streams", Order: 6, Kind: cmdargs.KindScalar, Value: optional(p.SelectStreams)},
		{Name: "-read_intervals", Order: 7, Kind: cmdargs.KindScalar, Value: optional(p.ReadIntervals)},
		{Name: "-i", Order: 8, Kind: cmdargs.KindPath, Value: p.InputPath},
	}
}

// Arguments renders the full argument string.
func (p *ProbeJob) Arguments() (string, error) {
	return cmdargs.Render(p)
}

// StreamProbe lists container format and streams.
func StreamProbe(path string) *ProbeJob {
	return &ProbeJob{LogLevel: "quiet", ShowFormat: true, ShowStreams: true, InputPath: path}
}

// FrameProbe reads the first frame of one stream to collect per-frame side
// data such as HDR mastering metadata.
func FrameProbe(path string, streamIndex int) *ProbeJob {
	return &ProbeJob{
		LogLevel:      "quiet",
		ShowFrames:    true,
		SelectStreams: strconv.Itoa(streamIndex),
		ReadIntervals: "%+#1",
		InputPath:     path,
	}
}
