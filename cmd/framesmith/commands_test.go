package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"framesmith/internal/encoding"
	"framesmith/internal/history"
	"framesmith/internal/media"
	"framesmith/internal/services"
	"framesmith/internal/testsupport"
)

func TestProbeCommandPrintsStreams(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "probe", env.sourcePath)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	requireContains(t, out, "Container: matroska,webm")
	requireContains(t, out, "Duration:  10m0s")
	requireContains(t, out, "truehd")
	requireContains(t, out, "English")
	requireContains(t, out, "French")
	requireContains(t, out, "picture")
}

func TestProbeCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "probe", "--json", env.sourcePath)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	var view probeView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if view.Duration != 600 || len(view.Streams) != 4 || view.HDR {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.Streams[0].Detail != "1920x1080, 23.976 fps, sdr" {
		t.Fatalf("unexpected video detail %q", view.Streams[0].Detail)
	}
	if got := view.Streams[2]; got.Language != "French" || got.LangCode != "fra" {
		t.Fatalf("unexpected audio language %+v", got)
	}
}

func TestCropCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "crop", env.sourcePath)
	if err != nil {
		t.Fatalf("crop: %v", err)
	}
	requireContains(t, out, "crop=1920:800:0:140 (2.40:1)")
}

func TestInterlaceCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "interlace", env.sourcePath)
	if err != nil {
		t.Fatalf("interlace: %v", err)
	}
	requireContains(t, out, "Interlaced: no")
}

func TestArgsCommandPrintsCompiledCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "args", env.sourcePath, "--format", "h264", "--quality", "20", "--title", "Movie")
	if err != nil {
		t.Fatalf("args: %v", err)
	}
	requireContains(t, out, env.ffmpeg+" -hide_banner")
	requireContains(t, out, "-c:v:0 libx264")
	requireContains(t, out, "-crf:v:0 20")
	requireContains(t, out, "-map 0:1")
	requireContains(t, out, `title="Movie"`)
	requireContains(t, out, filepath.Join(env.baseDir, "media", "movie.h264.mkv"))
	if len(env.launcher.Calls()) != 1 {
		t.Fatalf("expected a single probe launch, got %d", len(env.launcher.Calls()))
	}
}

func TestArgsCommandAutoCrop(t *testing.T) {
	env := setupCLITestEnv(t)

	out, stderr, err := env.run(t, "args", env.sourcePath, "--auto-crop")
	if err != nil {
		t.Fatalf("args: %v", err)
	}
	requireContains(t, stderr, "Detected crop 1920:800:0:140")
	requireContains(t, stderr, "Audio: English | truehd | 8ch | Atmos")
	requireContains(t, out, "crop=1920:800:0:140")
}

func TestArgsCommandRejectsBadFlags(t *testing.T) {
	env := setupCLITestEnv(t)

	cases := [][]string{
		{"--format", "vp9"},
		{"--quality", "60"},
		{"--crop", "bogus"},
		{"--crop", "1920:800:0:140", "--auto-crop"},
		{"--container", "avi"},
	}
	for _, flags := range cases {
		args := append([]string{"args", env.sourcePath}, flags...)
		if _, _, err := env.run(t, args...); err == nil {
			t.Fatalf("expected error for %v", flags)
		}
	}
}

func TestTranscodeCommandRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "transcode", env.sourcePath)
	if err != nil {
		t.Fatalf("transcode: %v", err)
	}
	requireContains(t, out, "Transcode complete")
	requireContains(t, out, "50.0%")

	output := filepath.Join(env.baseDir, "media", "movie.hevc.mkv")
	if _, err := os.Stat(output + ".lock"); !os.IsNotExist(err) {
		t.Fatalf("expected output lock to be released, stat err=%v", err)
	}

	out, _, err = env.run(t, "history", "--json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []history.Run
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].State != history.StateCompleted || runs[0].OutputPath != output {
		t.Fatalf("unexpected history %+v", runs)
	}
	if !strings.Contains(runs[0].Arguments, "libx265") {
		t.Fatalf("expected recorded arguments, got %q", runs[0].Arguments)
	}
}

func TestTranscodeCommandFailure(t *testing.T) {
	env := setupCLITestEnv(t)
	env.transcode = testsupport.Script{ExitCode: 1, Lines: testsupport.Stderr("Conversion failed!")}

	_, _, err := env.run(t, "transcode", env.sourcePath)
	if !errors.Is(err, services.ErrProcessFailure) {
		t.Fatalf("expected process failure, got %v", err)
	}

	out, _, err := env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "failed")
	requireContains(t, out, "Conversion failed!")
}

func TestTranscodeCommandRefusesExistingOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	output := filepath.Join(env.baseDir, "media", "movie.hevc.mkv")
	testsupport.WriteFile(t, output, 10)

	if _, _, err := env.run(t, "transcode", env.sourcePath); err == nil {
		t.Fatal("expected existing output to be refused")
	}
	if _, _, err := env.run(t, "transcode", env.sourcePath, "--overwrite"); err != nil {
		t.Fatalf("transcode with overwrite: %v", err)
	}
}

func TestPreviewCommandMovesStills(t *testing.T) {
	env := setupCLITestEnv(t)
	dest := filepath.Join(env.baseDir, "stills")

	out, _, err := env.run(t, "preview", env.sourcePath, "--count", "3", "--out", dest)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	requireContains(t, out, "02:30")
	requireContains(t, out, "05:00")
	requireContains(t, out, "07:30")
	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 stills, got %d", len(entries))
	}
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "movie-") || !strings.HasSuffix(entry.Name(), ".png") {
			t.Fatalf("unexpected still name %q", entry.Name())
		}
	}
}

func TestHistoryClear(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := env.run(t, "transcode", env.sourcePath); err != nil {
		t.Fatalf("transcode: %v", err)
	}

	out, _, err := env.run(t, "history", "clear")
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "Removed 1 run(s)")

	out, _, err = env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")
}

func TestConfigInitValidateShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = env.run(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := env.run(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse an existing file")
	}

	out, _, err = env.run(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[tools]")
	requireContains(t, out, env.ffprobe)
}

func TestDepsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "deps")
	if err != nil {
		t.Fatalf("deps: %v\n%s", err, out)
	}
	requireContains(t, out, "FFmpeg:")
	requireContains(t, out, "[OK] ffmpeg version 7.1")
	requireContains(t, out, "Preview directory:")
}

func TestConsumeEventsStopsOnCancel(t *testing.T) {
	events := make(chan encoding.Event, 2)
	events <- encoding.Event{Type: encoding.EventStatus, Status: media.TranscodeStatus{Percent: 0.1}}

	ctx, cancel := context.WithCancel(context.Background())
	stopped := false
	var seen int
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	result := consumeEvents(ctx, events, func() error {
		stopped = true
		close(events)
		return nil
	}, func(media.TranscodeStatus) { seen++ })

	if !stopped || result.state != history.StateStopped {
		t.Fatalf("expected stopped result, got %+v stopped=%v", result, stopped)
	}
	if seen != 1 {
		t.Fatalf("expected one status, got %d", seen)
	}
}

func TestConsumeEventsReportsFailure(t *testing.T) {
	events := make(chan encoding.Event, 2)
	events <- encoding.Event{Type: encoding.EventFailed, Message: "boom"}
	close(events)

	result := consumeEvents(context.Background(), events, func() error { return nil }, nil)
	if result.state != history.StateFailed || result.message != "boom" || result.err == nil {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestProgressPrinterSamplesPlainOutput(t *testing.T) {
	var buf strings.Builder
	p := newProgressPrinter(&buf, false)
	for _, pct := range []float64{0.01, 0.02, 0.11, 0.12, 0.5} {
		p.update(media.TranscodeStatus{Percent: pct})
	}
	p.finish()
	if lines := strings.Count(buf.String(), "\n"); lines != 3 {
		t.Fatalf("expected 3 sampled lines, got %d:\n%s", lines, buf.String())
	}
}

func TestRenderCheckLine(t *testing.T) {
	if got := renderCheckLine("FFmpeg", true, "ffmpeg version 7.1", false); got != "  FFmpeg:              [OK] ffmpeg version 7.1" {
		t.Fatalf("unexpected line %q", got)
	}
	got := renderCheckLine("Log directory", false, "", true)
	if !strings.HasPrefix(got, ansiRed) || !strings.HasSuffix(got, ansiReset) || !strings.Contains(got, "[FAIL]") {
		t.Fatalf("unexpected colored line %q", got)
	}
}
