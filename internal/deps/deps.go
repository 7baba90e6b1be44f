package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"framesmith/internal/procexec"
)

const versionTimeout = 10 * time.Second

// Tool is an external binary framesmith launches.
type Tool struct {
	Name    string
	Binary  string
	Purpose string
}

// Status reports whether a tool can be launched.
type Status struct {
	Tool
	// Path is the resolved executable when Available.
	Path      string
	Available bool
	Detail    string
	// Version is the first line of the tool's -version banner, when probed.
	Version string
}

// MediaTools describes the configured ffmpeg and ffprobe binaries.
func MediaTools(ffmpegBinary, ffprobeBinary string) []Tool {
	return []Tool{
		{Name: "FFmpeg", Binary: ffmpegBinary, Purpose: "Encodes, detects crop and interlacing, and renders previews"},
		{Name: "FFprobe", Binary: ffprobeBinary, Purpose: "Inspects source streams and HDR metadata"},
	}
}

// Lookup resolves each tool on PATH (or as given when it is a path).
func Lookup(tools []Tool) []Status {
	statuses := make([]Status, 0, len(tools))
	for _, tool := range tools {
		tool.Binary = strings.TrimSpace(tool.Binary)
		status := Status{Tool: tool}
		switch path, err := exec.LookPath(tool.Binary); {
		case tool.Binary == "":
			status.Detail = "binary not configured"
		case err != nil:
			status.Detail = fmt.Sprintf("binary %q not found", tool.Binary)
		default:
			status.Path = path
			status.Available = true
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// ProbeVersions runs "<binary> -version" for each available status and records
// the banner. A tool that fails to report a version is marked unavailable.
// The input slice is not modified.
func ProbeVersions(ctx context.Context, launcher procexec.Launcher, statuses []Status) []Status {
	out := append([]Status(nil), statuses...)
	for i := range out {
		if !out[i].Available {
			continue
		}
		runCtx, cancel := context.WithTimeout(ctx, versionTimeout)
		result, err := procexec.Run(runCtx, launcher, out[i].Path, "-version")
		cancel()
		if err != nil {
			out[i].Available = false
			out[i].Detail = "version check failed: " + err.Error()
			continue
		}
		for _, line := range result.Stdout {
			if line = strings.TrimSpace(line); line != "" {
				out[i].Version = line
				break
			}
		}
	}
	return out
}
