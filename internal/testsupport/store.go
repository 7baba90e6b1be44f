package testsupport

import (
	"context"
	"testing"

	"framesmith/internal/config"
	"framesmith/internal/history"
)

// MustOpenHistory opens a history.Store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// BeginRun records a running transcode for tests using the provided store.
func BeginRun(t testing.TB, store *history.Store, source, output string) *history.Run {
	t.Helper()

	run, err := store.Begin(context.Background(), history.Run{SourcePath: source, OutputPath: output})
	if err != nil {
		t.Fatalf("store.Begin: %v", err)
	}
	return run
}
