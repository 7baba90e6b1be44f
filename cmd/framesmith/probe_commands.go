package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"framesmith/internal/analysis"
	"framesmith/internal/language"
	"framesmith/internal/media"
)

type streamView struct {
	Index    int    `json:"index"`
	Type     string `json:"type"`
	Codec    string `json:"codec"`
	Language string `json:"language,omitempty"`
	LangCode string `json:"language_code,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

type probeView struct {
	Path      string       `json:"path"`
	Container string       `json:"container"`
	Duration  float64      `json:"duration_seconds"`
	SizeBytes int64        `json:"size_bytes"`
	HDR       bool         `json:"hdr"`
	Streams   []streamView `json:"streams"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "probe <file>",
		Short: "Show container and stream details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := ctx.probe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			view := buildProbeView(info)
			if asJSON {
				return writeJSON(cmd, view)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:      %s\n", view.Path)
			fmt.Fprintf(out, "Container: %s\n", view.Container)
			fmt.Fprintf(out, "Duration:  %s\n", info.Duration.Round(time.Millisecond))
			fmt.Fprintf(out, "HDR:       %s\n", yesNo(view.HDR))
			rows := make([][]string, 0, len(view.Streams))
			for _, s := range view.Streams {
				rows = append(rows, []string{strconv.Itoa(s.Index), s.Type, s.Codec, s.Language, s.Detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Type", "Codec", "Language", "Detail"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func buildProbeView(info *media.MediaInfo) probeView {
	view := probeView{
		Path:      info.Path,
		Container: info.Container,
		Duration:  info.Duration.Seconds(),
		SizeBytes: info.SizeBytes,
	}
	if video, ok := info.PrimaryVideo(); ok {
		view.HDR = video.DynamicRange == media.DynamicRangeHigh
	}
	for _, stream := range info.Streams {
		base := stream.Base()
		sv := streamView{Index: base.Index, Type: stream.Type().String(), Codec: base.CodecName}
		if base.Language != "" {
			sv.Language = language.DisplayName(base.Language)
			sv.LangCode = language.ToISO3(base.Language)
		}
		sv.Detail = streamDetail(stream)
		view.Streams = append(view.Streams, sv)
	}
	return view
}

func streamDetail(stream media.StreamInfo) string {
	switch s := stream.(type) {
	case *media.VideoStreamInfo:
		parts := []string{fmt.Sprintf("%dx%d", s.PixelWidth, s.PixelHeight)}
		if s.StorageWidth != s.PixelWidth || s.StorageHeight != s.PixelHeight {
			parts = append(parts, fmt.Sprintf("stored %dx%d", s.StorageWidth, s.StorageHeight))
		}
		if s.FrameRate > 0 {
			parts = append(parts, fmt.Sprintf("%.3f fps", s.FrameRate))
		}
		parts = append(parts, s.DynamicRange.String())
		if s.HasHDRMetadata() {
			parts = append(parts, fmt.Sprintf("MaxCLL %d", s.LightLevel.MaxContent))
		}
		return strings.Join(parts, ", ")
	case *media.AudioStreamInfo:
		parts := []string{}
		if s.Channels > 0 {
			parts = append(parts, strconv.Itoa(s.Channels)+"ch")
		}
		if s.ChannelLayout != "" {
			parts = append(parts, s.ChannelLayout)
		}
		if s.Title != "" {
			parts = append(parts, s.Title)
		}
		if s.Default {
			parts = append(parts, "default")
		}
		return strings.Join(parts, ", ")
	case *media.SubtitleStreamInfo:
		parts := []string{}
		if s.Bitmap() {
			parts = append(parts, "picture")
		} else {
			parts = append(parts, "text")
		}
		if s.Forced {
			parts = append(parts, "forced")
		}
		return strings.Join(parts, ", ")
	case *media.OtherStreamInfo:
		return s.CodecType
	default:
		return ""
	}
}

func newCropCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "crop <file>",
		Short: "Detect letterbox and pillarbox borders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := ctx.probe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			outcome, err := ctx.cropDetector().Detect(cmd.Context(), info, ctx.configValue().CropTimeout())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !outcome.OK {
				fmt.Fprintf(out, "No crop detected (%s)\n", outcome.Cause)
				return nil
			}
			crop := outcome.Value
			fmt.Fprintf(out, "crop=%s (%s)\n", crop.String(), analysis.AspectRatioLabel(crop))
			return nil
		},
	}
}

func newInterlaceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "interlace <file>",
		Short: "Detect interlaced video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := ctx.probe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			outcome, err := ctx.interlaceDetector().Detect(cmd.Context(), info, ctx.configValue().InterlaceTimeout())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !outcome.OK {
				fmt.Fprintf(out, "Interlacing undetermined (%s)\n", outcome.Cause)
				return nil
			}
			fmt.Fprintf(out, "Interlaced: %s\n", yesNo(outcome.Value))
			return nil
		},
	}
}
