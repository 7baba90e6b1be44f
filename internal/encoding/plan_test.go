package encoding

import (
	"errors"
	"testing"

	"framesmith/internal/media"
	"framesmith/internal/services"
)

func hdrInfo() *media.MediaInfo {
	info := sourceInfo()
	video := info.Streams[0].(*media.VideoStreamInfo)
	video.DynamicRange = media.DynamicRangeHigh
	video.MasteringDisplay = &media.MasteringDisplay{
		RedX: "34000/50000", RedY: "16000/50000",
		GreenX: "13250/50000", GreenY: "34500/50000",
		BlueX: "7500/50000", BlueY: "3000/50000",
		WhitePointX: "15635/50000", WhitePointY: "16450/50000",
		MinLuminance: "50/10000", MaxLuminance: "10000000/10000",
	}
	video.LightLevel = &media.LightLevel{MaxContent: 1000, MaxAverage: 400}
	return info
}

func TestPlanDefaults(t *testing.T) {
	job, err := Plan(sourceInfo(), PlanOptions{BurnSubtitle: -1, Quality: 22})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if job.OutputPath != "/media/movie.hevc.mkv" {
		t.Fatalf("unexpected output path %q", job.OutputPath)
	}
	if job.Container != media.ContainerMkv {
		t.Fatalf("expected mkv container, got %v", job.Container)
	}
	video, ok := job.PrimaryVideoOutput()
	if !ok || video.Format != media.VideoHevc || video.Quality != 22 {
		t.Fatalf("unexpected video output %+v", video)
	}
	if len(job.Streams) != 2 {
		t.Fatalf("expected video and audio outputs, got %d", len(job.Streams))
	}
	audioOut, ok := job.Streams[1].(*media.AudioOutput)
	if !ok || audioOut.SourceStreamIndex != 1 || audioOut.Format != media.AudioOpus {
		t.Fatalf("unexpected audio output %#v", job.Streams[1])
	}
	if job.Subtitle != nil || job.Metadata != nil {
		t.Fatalf("expected no subtitle or metadata, got %+v %+v", job.Subtitle, job.Metadata)
	}
	if _, err := testMapper().Map(job, MapOptions{}); err != nil {
		t.Fatalf("planned job does not map: %v", err)
	}
}

func TestPlanHDRHandling(t *testing.T) {
	cases := []struct {
		name        string
		opts        PlanOptions
		wantRange   media.DynamicRange
		wantCopy    bool
		wantTonemap bool
	}{
		{name: "hevc keeps hdr", opts: PlanOptions{VideoFormat: media.VideoHevc}, wantRange: media.DynamicRangeHigh, wantCopy: true},
		{name: "h264 tonemaps", opts: PlanOptions{VideoFormat: media.VideoH264}, wantRange: media.DynamicRangeStandard, wantTonemap: true},
		{name: "explicit tonemap", opts: PlanOptions{VideoFormat: media.VideoHevc, Tonemap: true}, wantRange: media.DynamicRangeStandard, wantTonemap: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.opts.BurnSubtitle = -1
			job, err := Plan(hdrInfo(), tc.opts)
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			video, _ := job.PrimaryVideoOutput()
			if video.DynamicRange != tc.wantRange || video.CopyHDRMetadata != tc.wantCopy || video.Tonemap != tc.wantTonemap {
				t.Fatalf("unexpected video output %+v", video)
			}
			if _, err := testMapper().Map(job, MapOptions{}); err != nil {
				t.Fatalf("planned job does not map: %v", err)
			}
		})
	}
}

func TestPlanAudioCopyAndMetadata(t *testing.T) {
	job, err := Plan(sourceInfo(), PlanOptions{
		BurnSubtitle: -1,
		AudioCopy:    true,
		Title:        " Movie ",
		OutputPath:   "/out/custom.mp4",
		Container:    media.ContainerMp4,
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if _, ok := job.Streams[1].(*media.PassthroughOutput); !ok {
		t.Fatalf("expected passthrough audio, got %#v", job.Streams[1])
	}
	if job.Metadata["title"] != "Movie" {
		t.Fatalf("unexpected metadata %+v", job.Metadata)
	}
	if job.OutputPath != "/out/custom.mp4" {
		t.Fatalf("unexpected output path %q", job.OutputPath)
	}
}

func TestPlanSubtitleBurn(t *testing.T) {
	job, err := Plan(sourceInfo(), PlanOptions{BurnSubtitle: 2})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if job.Subtitle == nil || job.Subtitle.SourceStreamIndex != 2 {
		t.Fatalf("expected subtitle selection, got %+v", job.Subtitle)
	}

	if _, err := Plan(sourceInfo(), PlanOptions{BurnSubtitle: 1}); !errors.Is(err, services.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for audio index, got %v", err)
	}

	info := sourceInfo()
	info.Streams[2] = &media.SubtitleStreamInfo{StreamBase: media.StreamBase{Index: 2, CodecName: "subrip"}}
	if _, err := Plan(info, PlanOptions{BurnSubtitle: 2}); !errors.Is(err, services.ErrUnsupportedOperation) {
		t.Fatalf("expected unsupported operation for text subtitle, got %v", err)
	}
}

func TestPlanDropsEmptyCrop(t *testing.T) {
	job, err := Plan(sourceInfo(), PlanOptions{BurnSubtitle: -1, Crop: &media.CropParameters{}})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	video, _ := job.PrimaryVideoOutput()
	if video.Crop != nil {
		t.Fatalf("expected empty crop dropped, got %+v", video.Crop)
	}
}

func TestPlanRequiresVideo(t *testing.T) {
	info := &media.MediaInfo{
		Path:    "/media/audio.flac",
		Streams: []media.StreamInfo{&media.AudioStreamInfo{StreamBase: media.StreamBase{Index: 0, CodecName: "flac"}}},
	}
	if _, err := Plan(info, PlanOptions{BurnSubtitle: -1}); !errors.Is(err, services.ErrUnsupportedOperation) {
		t.Fatalf("expected unsupported operation, got %v", err)
	}
	if _, err := Plan(nil, PlanOptions{}); !errors.Is(err, services.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for nil info, got %v", err)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	got := DefaultOutputPath("/media/What: A Film?.mkv", media.VideoH264, media.ContainerMp4)
	if got != "/media/What- A Film.h264.mp4" {
		t.Fatalf("unexpected path %q", got)
	}
}
