package preflight

import (
	"context"

	"framesmith/internal/config"
	"framesmith/internal/procexec"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config, launcher procexec.Launcher) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, DepsResults(CheckSystemDeps(ctx, cfg, launcher))...)
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	if cfg.History.Enabled {
		results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	}
	if cfg.Paths.PreviewDir != "" {
		results = append(results, CheckDirectoryAccess("Preview directory", cfg.Paths.PreviewDir))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
