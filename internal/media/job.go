package media

import (
	"fmt"
	"strings"

	"framesmith/internal/services"
)

// CropParameters is a crop rectangle in storage pixel units.
type CropParameters struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the rectangle has no area.
func (c CropParameters) Empty() bool {
	return c.Width <= 0 || c.Height <= 0
}

func (c CropParameters) String() string {
	return fmt.Sprintf("%d:%d:%d:%d", c.Width, c.Height, c.X, c.Y)
}

// OutputStream describes one stream of the output file.
type OutputStream interface {
	SourceIndex() int
	outputStream()
}

// VideoOutput re-encodes a source video stream. Width and Height of zero keep
// the source pixel size; a nil Crop keeps the full frame.
type VideoOutput struct {
	SourceStreamIndex int
	Format            VideoFormat
	Quality           int
	DynamicRange      DynamicRange
	CopyHDRMetadata   bool
	Width             int
	Height            int
	Crop              *CropParameters
	Denoise           bool
	Tonemap           bool
}

func (v *VideoOutput) SourceIndex() int { return v.SourceStreamIndex }
func (v *VideoOutput) outputStream()    {}

// AudioOutput re-encodes a source audio stream. Bitrate is in kbit/s; zero
// values leave the encoder defaults in place.
type AudioOutput struct {
	SourceStreamIndex int
	Format            AudioFormat
	Bitrate           int
	Channels          int
}

func (a *AudioOutput) SourceIndex() int { return a.SourceStreamIndex }
func (a *AudioOutput) outputStream()    {}

// PassthroughOutput copies a source stream without re-encoding.
type PassthroughOutput struct {
	SourceStreamIndex int
}

func (p *PassthroughOutput) SourceIndex() int { return p.SourceStreamIndex }
func (p *PassthroughOutput) outputStream()    {}

// SubtitleSelection burns a picture-based subtitle stream into the video.
type SubtitleSelection struct {
	SourceStreamIndex int
}

// TranscodeJob is a request to convert one source into one output. Jobs are
// treated as immutable once handed to the compiler or supervisor.
type TranscodeJob struct {
	Source     *MediaInfo
	OutputPath string
	Container  ContainerFormat
	Streams    []OutputStream
	Subtitle   *SubtitleSelection
	Metadata   map[string]string
}

// Validate checks the structural preconditions shared by every consumer of a
// job. Failures carry services.ErrInvalidRequest.
func (j *TranscodeJob) Validate() error {
	const component = "job"
	if j == nil {
		return services.Invalid(component, "validate", "job is nil")
	}
	if j.Source == nil {
		return services.Invalid(component, "validate", "source media info is nil")
	}
	if strings.TrimSpace(j.Source.Path) == "" {
		return services.Invalid(component, "validate", "source path is empty")
	}
	if len(j.Source.Streams) == 0 {
		return services.Invalid(component, "validate", "source has no streams")
	}
	for i, s := range j.Source.Streams {
		if absentStream(s) {
			return services.Invalid(component, "validate", fmt.Sprintf("source stream entry %d is nil", i))
		}
	}
	if strings.TrimSpace(j.OutputPath) == "" {
		return services.Invalid(component, "validate", "output path is empty")
	}
	if len(j.Streams) == 0 {
		return services.Invalid(component, "validate", "job has no output streams")
	}
	for _, out := range j.Streams {
		if absentOutput(out) {
			return services.Invalid(component, "validate", "output stream is nil")
		}
		if _, ok := j.Source.Stream(out.SourceIndex()); !ok {
			return services.Invalid(component, "validate", fmt.Sprintf("missing source stream %d", out.SourceIndex()))
		}
	}
	if j.Subtitle != nil {
		stream, ok := j.Source.Stream(j.Subtitle.SourceStreamIndex)
		if !ok {
			return services.Invalid(component, "validate", fmt.Sprintf("missing subtitle stream %d", j.Subtitle.SourceStreamIndex))
		}
		if stream.Type() != StreamSubtitle {
			return services.Invalid(component, "validate", fmt.Sprintf("stream %d is not a subtitle stream", j.Subtitle.SourceStreamIndex))
		}
	}
	return nil
}

// absentOutput reports a nil entry, including a typed nil pointer.
func absentOutput(out OutputStream) bool {
	switch o := out.(type) {
	case nil:
		return true
	case *VideoOutput:
		return o == nil
	case *AudioOutput:
		return o == nil
	case *PassthroughOutput:
		return o == nil
	}
	return false
}

// PrimaryVideoOutput returns the first video output of the job.
func (j *TranscodeJob) PrimaryVideoOutput() (*VideoOutput, bool) {
	if j == nil {
		return nil, false
	}
	for _, out := range j.Streams {
		if v, ok := out.(*VideoOutput); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}
