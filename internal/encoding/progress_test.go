package encoding

import (
	"math"
	"testing"
	"time"
)

func TestParseProgressDerivesEstimates(t *testing.T) {
	duration := time.Hour + 23*time.Minute + 43*time.Second + 480*time.Millisecond
	line := "frame= 1439 fps=3.3 q=28.0 size=  460800kB time=01:02:47.61 bitrate=1002.3kbits/s dup=0 drop=2 speed=0.139x"

	status, ok := ParseProgress(line, duration)
	if !ok {
		t.Fatal("expected progress line to match")
	}
	if status.Frame != 1439 || status.FPS != 3.3 || status.Speed != 0.139 {
		t.Fatalf("unexpected counters %+v", status)
	}
	wantElapsed := time.Hour + 2*time.Minute + 47*time.Second + 610*time.Millisecond
	if status.Elapsed != wantElapsed {
		t.Fatalf("expected elapsed %v, got %v", wantElapsed, status.Elapsed)
	}
	if math.Abs(status.Percent-0.75) > 0.001 {
		t.Fatalf("expected percent ~0.75, got %v", status.Percent)
	}
	wantSize := float64(460800*1024) * duration.Seconds() / wantElapsed.Seconds()
	if math.Abs(float64(status.EstimatedTotalSize)-wantSize) > 1 {
		t.Fatalf("expected size ~%v, got %d", wantSize, status.EstimatedTotalSize)
	}
	wantETA := (duration - wantElapsed).Seconds() / 0.139
	if math.Abs(status.ETA.Seconds()-wantETA) > 0.01 {
		t.Fatalf("expected eta ~%vs, got %v", wantETA, status.ETA)
	}
}

func TestParseProgressVariants(t *testing.T) {
	lines := []string{
		"frame=  120 fps= 24 q=-1.0 Lsize=    2048kB time=00:00:05.00 bitrate=3355.4kbits/s speed=1.01x",
		"frame=10 fps=0.0 q=0.0 size=0 time=00:00:00.41 bitrate=0.0 dup=0 drop=0 speed=0.8x",
		"frame=   1 fps=0.0 q=0.0 size=N/A time=00:00:00.04 bitrate=N/A speed=N/A",
		"frame=  50 fps= 50 q=23.0 size=     256KiB time=00:00:02.00 bitrate=1048.6kbits/s speed=2x elapsed=0:00:01.00",
	}
	for _, line := range lines {
		if _, ok := ParseProgress(line, time.Minute); !ok {
			t.Fatalf("expected match for %q", line)
		}
	}
}

func TestParseProgressIgnoresOtherLines(t *testing.T) {
	for _, line := range []string{
		"Input #0, matroska,webm, from 'movie.mkv':",
		"Stream mapping:",
		"[libx265 @ 0x1] frame I: 10",
		"",
	} {
		if _, ok := ParseProgress(line, time.Minute); ok {
			t.Fatalf("expected no match for %q", line)
		}
	}
}

func TestParseProgressUnknownDuration(t *testing.T) {
	status, ok := ParseProgress("frame=1 fps=1 q=1 size=10kB time=00:00:10.00 bitrate=1 speed=1x", 0)
	if !ok {
		t.Fatal("expected match")
	}
	if status.Percent != 0 || status.EstimatedTotalSize != 0 || status.ETA != 0 {
		t.Fatalf("expected no estimates without duration, got %+v", status)
	}
}

func TestProgressMessage(t *testing.T) {
	status, _ := ParseProgress("frame=1 fps=1 q=1 size=10kB time=00:00:30.00 bitrate=1 speed=2x", time.Minute)
	if got := ProgressMessage(status); got != "50.0% (ETA 15s, @ 2.0x)" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestFormatETA(t *testing.T) {
	tests := map[time.Duration]string{
		0:                            "",
		42 * time.Second:             "42s",
		90 * time.Second:             "1m30s",
		2*time.Hour + 5*time.Second:  "2h0m5s",
		3*time.Hour + 15*time.Minute: "3h15m",
		1500 * time.Millisecond:      "2s",
		time.Hour + time.Minute + 400*time.Millisecond: "1h1m",
	}
	for in, want := range tests {
		if got := formatETA(in); got != want {
			t.Fatalf("formatETA(%v) = %q, want %q", in, got, want)
		}
	}
}
