package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"framesmith/internal/testsupport"
)

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	testsupport.WriteFile(t, src, 100*1024)

	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatal(err)
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		t.Fatal(err)
	}
	dstInfo, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if srcInfo.Size() != dstInfo.Size() {
		t.Fatalf("size mismatch: src=%d dst=%d", srcInfo.Size(), dstInfo.Size())
	}
}

func TestCopyFileVerifiedMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFileVerified(filepath.Join(dir, "nope"), filepath.Join(dir, "dst"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestMoveInto(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "frame.png")
	if err := os.WriteFile(src, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	dest := filepath.Join(base, "nested", "previews")

	got, err := MoveInto(src, dest)
	if err != nil {
		t.Fatalf("MoveInto: %v", err)
	}
	if got != filepath.Join(dest, "frame.png") {
		t.Fatalf("unexpected destination %q", got)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source removed, stat err=%v", err)
	}
	data, err := os.ReadFile(got)
	if err != nil || string(data) != "png" {
		t.Fatalf("unexpected moved content %q err=%v", data, err)
	}
}

func TestLockOutputExclusive(t *testing.T) {
	output := filepath.Join(t.TempDir(), "movie.mkv")

	first, err := LockOutput(output)
	if err != nil {
		t.Fatalf("LockOutput: %v", err)
	}
	if first.Path() != output+".lock" {
		t.Fatalf("unexpected lock path %q", first.Path())
	}

	if _, err := LockOutput(output); !errors.Is(err, ErrOutputLocked) {
		t.Fatalf("expected ErrOutputLocked, got %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(output + ".lock"); !os.IsNotExist(err) {
		t.Fatalf("expected lock file removed, stat err=%v", err)
	}

	second, err := LockOutput(output)
	if err != nil {
		t.Fatalf("relock after release: %v", err)
	}
	_ = second.Release()
}
