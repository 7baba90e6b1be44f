package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"framesmith/internal/testsupport"
)

const sourceStreams = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080,
     "pix_fmt": "yuv420p", "r_frame_rate": "24000/1001"},
    {"index": 1, "codec_name": "truehd", "codec_type": "audio", "channels": 8,
     "tags": {"language": "eng", "title": "Atmos"}, "disposition": {"default": 1}},
    {"index": 2, "codec_name": "ac3", "codec_type": "audio", "channels": 2, "tags": {"language": "fre"}},
    {"index": 3, "codec_name": "hdmv_pgs_subtitle", "codec_type": "subtitle", "tags": {"language": "eng"}}
  ],
  "format": {"format_name": "matroska,webm", "duration": "600.000000", "size": "1048576"}
}`

type cliTestEnv struct {
	baseDir    string
	configPath string
	sourcePath string
	ffmpeg     string
	ffprobe    string
	launcher   *testsupport.FakeLauncher
	// transcode scripts the ffmpeg transcode invocation.
	transcode testsupport.Script
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("FRAMESMITH_FFMPEG", "")
	t.Setenv("FRAMESMITH_FFPROBE", "")

	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		sourcePath: filepath.Join(base, "media", "movie.mkv"),
		ffmpeg:     filepath.Join(binDir, "ffmpeg"),
		ffprobe:    filepath.Join(binDir, "ffprobe"),
	}
	for _, stub := range []string{env.ffmpeg, env.ffprobe} {
		if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			t.Fatalf("write stub: %v", err)
		}
	}
	testsupport.WriteFile(t, env.sourcePath, 1024)

	content := fmt.Sprintf(`[paths]
log_dir = %q
state_dir = %q
preview_dir = %q

[tools]
ffmpeg = %q
ffprobe = %q

[logging]
level = "error"
`,
		filepath.Join(base, "logs"),
		filepath.Join(base, "state"),
		filepath.Join(base, "previews"),
		env.ffmpeg,
		env.ffprobe,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(base, "previews"), 0o755); err != nil {
		t.Fatalf("mkdir previews: %v", err)
	}

	env.transcode = testsupport.Script{Lines: testsupport.Stderr(
		"frame=  100 fps=50.0 q=28.0 size=    1024kB time=00:05:00.00 bitrate=1000.0kbits/s speed=2.00x",
		"frame=  200 fps=50.0 q=28.0 size=    2048kB time=00:10:00.00 bitrate=1000.0kbits/s speed=2.00x",
	)}
	env.launcher = &testsupport.FakeLauncher{Handler: env.handle}
	return env
}

func (e *cliTestEnv) handle(inv testsupport.Invocation) testsupport.Script {
	switch {
	case slices.Contains(inv.Argv, "-version"):
		return testsupport.Script{Lines: testsupport.Stdout("ffmpeg version 7.1 Copyright (c) the FFmpeg developers")}
	case inv.Binary == e.ffprobe:
		return testsupport.Script{Lines: testsupport.Stdout(strings.Split(sourceStreams, "\n")...)}
	case strings.Contains(inv.Args, "cropdetect"):
		return testsupport.Script{Lines: testsupport.Stderr(
			"[Parsed_cropdetect_0 @ 0x1] x1:0 x2:1919 y1:140 y2:939 w:1920 h:800 x:0 y:140 pts:1 t:0.04 crop=1920:800:0:140",
		)}
	case strings.Contains(inv.Args, "idet"):
		return testsupport.Script{Lines: testsupport.Stderr(
			"[Parsed_idet_0 @ 0x1] Single frame detection: TFF: 0 BFF: 0 Progressive: 90 Undetermined: 10",
			"[Parsed_idet_0 @ 0x1] Multi frame detection: TFF: 0 BFF: 0 Progressive: 98 Undetermined: 2",
		)}
	case slices.Contains(inv.Argv, "image2"):
		target := inv.Argv[len(inv.Argv)-1]
		if err := os.WriteFile(target, []byte("png"), 0o644); err != nil {
			return testsupport.Script{ExitCode: 1, Lines: testsupport.Stderr(err.Error())}
		}
		return testsupport.Script{}
	default:
		return e.transcode
	}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommandWithLauncher(e.launcher)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
