package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"framesmith/internal/config"
	"framesmith/internal/deps"
	"framesmith/internal/procexec"
)

// CheckDirectoryAccess verifies that a directory exists and is readable and writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutputTarget verifies that output can be written and does not
// overwrite the source it is encoded from.
func CheckOutputTarget(source, output string) Result {
	const name = "Output"
	if output == "" {
		return Result{Name: name, Detail: "output path is empty"}
	}
	absOut, err := filepath.Abs(output)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", output, err)}
	}
	if source != "" {
		if absSrc, err := filepath.Abs(source); err == nil && absSrc == absOut {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: output is the source file)", output)}
		}
	}
	if info, err := os.Stat(absOut); err == nil && info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", output)}
	}
	dir := CheckDirectoryAccess(name, filepath.Dir(absOut))
	if !dir.Passed {
		return dir
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (writable)", output)}
}

// CheckSystemDeps evaluates the ffmpeg and ffprobe binaries named by the
// config and probes their versions.
func CheckSystemDeps(ctx context.Context, cfg *config.Config, launcher procexec.Launcher) []deps.Status {
	statuses := deps.Lookup(deps.MediaTools(cfg.FFmpegBinary(), cfg.FFprobeBinary()))
	if launcher == nil {
		return statuses
	}
	return deps.ProbeVersions(ctx, launcher, statuses)
}

// DepsResults converts dependency statuses into preflight results.
func DepsResults(statuses []deps.Status) []Result {
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		detail := status.Detail
		if status.Available {
			detail = firstNonEmpty(status.Version, status.Path)
		}
		results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: detail})
	}
	return results
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
