package ffmpeg

import (
	"time"

	"framesmith/internal/cmdargs"
)

// Argument ordering. Input options precede -i; everything after it applies to
// the output, which always comes last.
const (
	orderHideBanner = iota + 1
	orderNoStdin
	orderOverwrite
	orderLogLevel
	orderSeek
	orderInput
	orderFormat
	orderStreams
	orderFilters
	orderFrameLimit
	orderSingleImage
	orderMetadata
	orderOutput
)

// NullOutput discards encoded output; used by analysis passes.
const NullOutput = "-"

// Job is one ffmpeg invocation reading a single input file.
type Job struct {
	HideBanner  bool
	NoStdin     bool
	Overwrite   bool
	LogLevel    string
	Seek        time.Duration
	InputPath   string
	Format      string
	Streams     []cmdargs.MappedStream
	Filters     []cmdargs.Filter
	FrameLimit  int
	SingleImage bool
	Metadata    map[string]string
	OutputPath  string
}

// Fields implements cmdargs.Schema.
func (j *Job) Fields() []cmdargs.Field {
	fields := []cmdargs.Field{
		{Name: "-hide_banner", Order: orderHideBanner, Kind: cmdargs.KindFlag, Value: j.HideBanner},
		{Name: "-nostdin", Order: orderNoStdin, Kind: cmdargs.KindFlag, Value: j.NoStdin},
		{Name: "-y", Order: orderOverwrite, Kind: cmdargs.KindFlag, Value: j.Overwrite},
		{Name: "-v", Order: orderLogLevel, Kind: cmdargs.KindScalar, Value: optional(j.LogLevel)},
		{Name: "-i", Order: orderInput, Kind: cmdargs.KindPath, Value: j.InputPath},
		{Name: "-f", Order: orderFormat, Kind: cmdargs.KindScalar, Value: optional(j.Format)},
		{Order: orderStreams, Kind: cmdargs.KindStreams, Value: j.Streams},
		{Name: "-vf", Order: orderFilters, Kind: cmdargs.KindFilters, Value: j.Filters},
		{Name: "-update", Order: orderSingleImage, Kind: cmdargs.KindBinary, Value: j.SingleImage, Ignore: !j.SingleImage},
		{Name: "-metadata", Order: orderMetadata, Kind: cmdargs.KindMetadata, Value: j.Metadata},
		{Order: orderOutput, Kind: cmdargs.KindPath, Value: j.OutputPath},
	}
	if j.Seek > 0 {
		fields = append(fields, cmdargs.Field{Name: "-ss", Order: orderSeek, Kind: cmdargs.KindDuration, Value: j.Seek})
	}
	if j.FrameLimit > 0 {
		fields = append(fields, cmdargs.Field{Name: "-frames:v", Order: orderFrameLimit, Kind: cmdargs.KindScalar, Value: j.FrameLimit})
	}
	return fields
}

// Arguments renders the full argument string.
func (j *Job) Arguments() (string, error) {
	return cmdargs.Render(j)
}

// Clone returns a copy that can be modified without touching j.
func (j *Job) Clone() *Job {
	out := *j
	out.Streams = append([]cmdargs.MappedStream(nil), j.Streams...)
	out.Filters = append([]cmdargs.Filter(nil), j.Filters...)
	if j.Metadata != nil {
		out.Metadata = make(map[string]string, len(j.Metadata))
		for k, v := range j.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// AnalysisJob builds a decode-only pass over a few frames of input that sends
// output to the null muxer.
func AnalysisJob(input string, seek time.Duration, frames int, filters ...cmdargs.Filter) *Job {
	return &Job{
		HideBanner: true,
		NoStdin:    true,
		Seek:       seek,
		InputPath:  input,
		Filters:    filters,
		FrameLimit: frames,
		Format:     "null",
		OutputPath: NullOutput,
	}
}

func optional(value string) any {
	if value == "" {
		return nil
	}
	return value
}
