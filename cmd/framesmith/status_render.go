package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"

	checkLabelWidth = 20
)

// renderCheckLine formats one preflight result, e.g.
//
//	FFmpeg:              [OK] ffmpeg version 7.1
func renderCheckLine(label string, passed bool, detail string, colorize bool) string {
	status, color := "OK", ansiGreen
	if !passed {
		status, color = "FAIL", ansiRed
	}
	line := fmt.Sprintf("  %-*s [%s]", checkLabelWidth, label+":", status)
	if detail != "" {
		line += " " + detail
	}
	if colorize {
		return color + line + ansiReset
	}
	return line
}

// isTerminal reports whether writer is an interactive terminal. Colors and
// in-place progress lines are only written to terminals.
func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
