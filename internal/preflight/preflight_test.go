package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"framesmith/internal/deps"
	"framesmith/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckOutputTarget(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "movie.mkv")

	cases := []struct {
		name   string
		output string
		pass   bool
	}{
		{name: "writable", output: filepath.Join(dir, "movie.hevc.mkv"), pass: true},
		{name: "empty", output: "", pass: false},
		{name: "same as source", output: source, pass: false},
		{name: "missing parent", output: filepath.Join(dir, "nope", "out.mkv"), pass: false},
		{name: "directory", output: dir, pass: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := CheckOutputTarget(source, tc.output)
			if result.Passed != tc.pass {
				t.Fatalf("expected pass=%v, got %+v", tc.pass, result)
			}
			if result.Detail == "" {
				t.Fatal("expected non-empty detail")
			}
		})
	}
}

func TestDepsResults(t *testing.T) {
	results := DepsResults([]deps.Status{
		{Tool: deps.Tool{Name: "FFmpeg"}, Path: "/usr/bin/ffmpeg", Available: true, Version: "ffmpeg version 7.1"},
		{Tool: deps.Tool{Name: "FFprobe", Binary: "ffprobe"}, Detail: "binary \"ffprobe\" not found"},
		{Tool: deps.Tool{Name: "Unprobed"}, Path: "/usr/bin/unprobed", Available: true},
	})
	if !results[0].Passed || results[0].Detail != "ffmpeg version 7.1" {
		t.Fatalf("unexpected ffmpeg result: %+v", results[0])
	}
	if results[1].Passed || !strings.Contains(results[1].Detail, "not found") {
		t.Fatalf("unexpected ffprobe result: %+v", results[1])
	}
	if !results[2].Passed || results[2].Detail != "/usr/bin/unprobed" {
		t.Fatalf("expected resolved path as detail: %+v", results[2])
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil, nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_StubbedConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	cfg.Paths.PreviewDir = ""

	results := RunAll(context.Background(), cfg, nil)
	// ffmpeg + ffprobe + log + state directory checks
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d: %+v", len(results), results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_ReportsMissingPreviewDir(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries(), testsupport.WithHistoryDisabled())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), cfg, nil)
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Preview directory" {
		t.Fatalf("expected only the preview directory to fail, got %+v", failed)
	}
}
