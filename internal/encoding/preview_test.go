package encoding

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"framesmith/internal/media"
	"framesmith/internal/services"
	"framesmith/internal/testsupport"
)

// writeStill creates the image the invocation targets, as ffmpeg would.
func writeStill(inv testsupport.Invocation) {
	_ = os.WriteFile(inv.Argv[len(inv.Argv)-1], []byte("png"), 0o644)
}

func TestPreviewTimestamps(t *testing.T) {
	got := PreviewTimestamps(time.Hour, 3)
	want := []time.Duration{15 * time.Minute, 30 * time.Minute, 45 * time.Minute}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if PreviewTimestamps(time.Hour, 0) != nil || PreviewTimestamps(0, 3) != nil {
		t.Fatal("expected no timestamps for empty input")
	}
}

func TestGenerateOrdersByTimestampAndRunsConcurrently(t *testing.T) {
	dir := t.TempDir()
	launcher := &testsupport.FakeLauncher{Handler: func(inv testsupport.Invocation) testsupport.Script {
		writeStill(inv)
		seek, _ := valueAfter(inv.Argv, "-ss")
		// Earlier samples finish last.
		switch seek {
		case "15:00":
			return testsupport.Script{Delay: 60 * time.Millisecond}
		case "30:00":
			return testsupport.Script{Delay: 30 * time.Millisecond}
		default:
			return testsupport.Script{}
		}
	}}
	gen := NewPreviewGenerator(launcher, "ffmpeg", testMapper(), dir, ".jpg", nil)

	previews, err := gen.Generate(context.Background(), transcodeJob(), time.Hour, 3, time.Second)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(previews) != 3 {
		t.Fatalf("expected 3 previews, got %+v", previews)
	}
	for i, want := range []time.Duration{15 * time.Minute, 30 * time.Minute, 45 * time.Minute} {
		if previews[i].Timestamp != want {
			t.Fatalf("preview %d: expected %v, got %v", i, want, previews[i].Timestamp)
		}
		if filepath.Dir(previews[i].Path) != dir || !strings.HasSuffix(previews[i].Path, ".jpg") {
			t.Fatalf("unexpected preview path %q", previews[i].Path)
		}
	}
	if previews[0].Path == previews[1].Path {
		t.Fatal("expected unique preview paths")
	}

	calls := launcher.Calls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 launches, got %d", len(calls))
	}
	for _, call := range calls {
		if f, _ := valueAfter(call.Argv, "-f"); f != "image2" {
			t.Fatalf("expected image2 muxer in %q", call.Argv)
		}
		if n, _ := valueAfter(call.Argv, "-frames:v"); n != "1" {
			t.Fatalf("expected single frame in %q", call.Argv)
		}
		if slices.Contains(call.Argv, "-c:v:0") || slices.Contains(call.Argv, "0:1") {
			t.Fatalf("expected video-only mapping without encoder, got %q", call.Argv)
		}
	}
}

func TestGenerateOmitsFailures(t *testing.T) {
	launcher := &testsupport.FakeLauncher{Handler: func(inv testsupport.Invocation) testsupport.Script {
		seek, _ := valueAfter(inv.Argv, "-ss")
		switch seek {
		case "30:00":
			writeStill(inv)
			return testsupport.Script{ExitCode: 1, Lines: testsupport.Stderr("Invalid data found")}
		case "45:00":
			return testsupport.Script{Hang: true}
		default:
			writeStill(inv)
			return testsupport.Script{}
		}
	}}
	dir := t.TempDir()
	gen := NewPreviewGenerator(launcher, "ffmpeg", testMapper(), dir, "png", nil)

	previews, err := gen.Generate(context.Background(), transcodeJob(), time.Hour, 3, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(previews) != 1 || previews[0].Timestamp != 15*time.Minute {
		t.Fatalf("expected only the first preview, got %+v", previews)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || filepath.Join(dir, entries[0].Name()) != previews[0].Path {
		t.Fatalf("expected failed stills to be removed, found %v", entries)
	}
	for _, proc := range launcher.Processes() {
		if proc.Killed() {
			return
		}
	}
	t.Fatal("expected hung extraction to be killed")
}

func TestGenerateRequiresWrittenImage(t *testing.T) {
	launcher := &testsupport.FakeLauncher{Handler: func(inv testsupport.Invocation) testsupport.Script {
		seek, _ := valueAfter(inv.Argv, "-ss")
		switch seek {
		case "15:00":
			writeStill(inv)
		case "30:00":
			_ = os.WriteFile(inv.Argv[len(inv.Argv)-1], nil, 0o644)
		}
		// Every sample exits cleanly; 45:00 writes nothing.
		return testsupport.Script{}
	}}
	gen := NewPreviewGenerator(launcher, "ffmpeg", testMapper(), t.TempDir(), "png", nil)

	previews, err := gen.Generate(context.Background(), transcodeJob(), time.Hour, 3, time.Second)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(previews) != 1 || previews[0].Timestamp != 15*time.Minute {
		t.Fatalf("expected only the written still, got %+v", previews)
	}
	if _, err := os.Stat(previews[0].Path); err != nil {
		t.Fatalf("returned still is missing: %v", err)
	}
}

func TestGenerateValidatesInput(t *testing.T) {
	gen := NewPreviewGenerator(&testsupport.FakeLauncher{}, "ffmpeg", testMapper(), "", "", nil)
	if _, err := gen.Generate(context.Background(), nil, time.Hour, 3, time.Second); !errors.Is(err, services.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for nil job, got %v", err)
	}
	if _, err := gen.Generate(context.Background(), transcodeJob(), 0, 3, time.Second); !errors.Is(err, services.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for zero duration, got %v", err)
	}
	if _, err := gen.Generate(context.Background(), transcodeJob(), time.Hour, -1, time.Second); !errors.Is(err, services.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for negative count, got %v", err)
	}
	job := transcodeJob()
	job.Source = nil
	if _, err := gen.Generate(context.Background(), job, time.Hour, 2, time.Second); !errors.Is(err, services.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for invalid job, got %v", err)
	}
	noVideo := transcodeJob()
	noVideo.Streams = []media.OutputStream{&media.PassthroughOutput{SourceStreamIndex: 1}}
	if _, err := gen.Generate(context.Background(), noVideo, time.Hour, 2, time.Second); !errors.Is(err, services.ErrUnsupportedOperation) {
		t.Fatalf("expected unsupported operation without video, got %v", err)
	}
}

func TestGenerateZeroCount(t *testing.T) {
	launcher := &testsupport.FakeLauncher{}
	gen := NewPreviewGenerator(launcher, "ffmpeg", testMapper(), "", "", nil)
	previews, err := gen.Generate(context.Background(), transcodeJob(), time.Hour, 0, time.Second)
	if err != nil || len(previews) != 0 {
		t.Fatalf("expected empty result, got %+v err=%v", previews, err)
	}
	if len(launcher.Calls()) != 0 {
		t.Fatal("expected no launches")
	}
}
