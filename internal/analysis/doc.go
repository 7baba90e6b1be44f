// Package analysis runs the best-effort inspection passes that precede a
// transcode: the two-pass ffprobe inspector and the ffmpeg crop and
// interlace detectors.
//
// Every entry point validates its inputs and returns ErrInvalidRequest for
// caller mistakes. Everything else (launch failures, non-zero exits,
// timeouts, output that does not parse) is reported through a
// services.Outcome with OK=false and a Cause, never as an error.
package analysis
