package encoding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"framesmith/internal/media"
)

// progressPattern matches ffmpeg's periodic stats line, e.g.
// "frame= 1439 fps=3.3 q=28.0 size= 460800kB time=01:02:47.61 bitrate=1002.3kbits/s dup=0 drop=2 speed=0.139x".
var progressPattern = regexp.MustCompile(
	`frame=\s*(\d+)\s+fps=\s*([\d.]+)\s+q=\s*(-?[\d.]+)\s+L?size=\s*(N/A|\d+)\s*(?:[kK]i?B)?\s+` +
		`time=\s*(N/A|-?\d+:\d{2}:\d{2}(?:\.\d+)?)\s+bitrate=\s*(\S+)` +
		`(?:\s+dup=\s*(\d+))?(?:\s+drop=\s*(\d+))?\s+speed=\s*(N/A|[\d.]+)x?`)

// ParseProgress turns a stats line into a status, extrapolating against the
// source duration. ok is false when the line is not a stats line.
func ParseProgress(line string, duration time.Duration) (media.TranscodeStatus, bool) {
	m := progressPattern.FindStringSubmatch(line)
	if m == nil {
		return media.TranscodeStatus{}, false
	}
	frame, _ := strconv.ParseInt(m[1], 10, 64)
	fps, _ := strconv.ParseFloat(m[2], 64)
	sizeKB, _ := strconv.ParseInt(m[4], 10, 64)
	elapsed := parseClock(m[5])
	speed, _ := strconv.ParseFloat(m[9], 64)

	status := media.TranscodeStatus{
		Frame:   frame,
		Elapsed: elapsed,
		FPS:     fps,
		Speed:   speed,
	}
	if duration > 0 && elapsed > 0 {
		status.Percent = min(elapsed.Seconds()/duration.Seconds(), 1)
		status.EstimatedTotalSize = int64(float64(sizeKB*1024) * duration.Seconds() / elapsed.Seconds())
	}
	if remaining := duration - elapsed; speed > 0 && remaining > 0 {
		status.ETA = time.Duration(float64(remaining) / speed)
	}
	return status, true
}

// parseClock reads HH:MM:SS[.fraction]. Negative or unknown values yield zero.
func parseClock(value string) time.Duration {
	if value == "N/A" || strings.HasPrefix(value, "-") {
		return 0
	}
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second)+0.5)
}

// ProgressMessage renders a status for humans, e.g. "75.0% (ETA 2m39s, @ 0.1x)".
func ProgressMessage(status media.TranscodeStatus) string {
	base := fmt.Sprintf("%.1f%%", status.Percent*100)
	extras := make([]string, 0, 2)
	if formatted := formatETA(status.ETA); formatted != "" {
		extras = append(extras, "ETA "+formatted)
	}
	if status.Speed > 0 {
		extras = append(extras, fmt.Sprintf("@ %.1fx", status.Speed))
	}
	if len(extras) == 0 {
		return base
	}
	return fmt.Sprintf("%s (%s)", base, strings.Join(extras, ", "))
}

func formatETA(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Second)
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || (hours == 0 && minutes == 0) {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, "")
}
