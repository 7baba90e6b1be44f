// Package procexec launches external tools and streams their output.
//
// A Launcher starts a binary with a shell-quoted argument string (as produced
// by cmdargs) and returns a Process whose stdout and stderr lines arrive on a
// single channel. Lines are split on both '\n' and '\r' so carriage-return
// progress updates surface individually.
//
// Callers must drain Lines (or use Collect) before relying on Wait; a process
// blocked on a full pipe never exits. Kill abandons undelivered output.
package procexec
