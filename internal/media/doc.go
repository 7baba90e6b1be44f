// Package media holds the transcode job and probe result data model shared by
// the command compiler, the analysis probes, and the supervisor.
//
// Key types:
//   - TranscodeJob: an immutable request to convert one source into one output
//   - MediaInfo: probed source facts with typed per-stream details
//   - CropParameters: crop rectangle in storage pixel units
//   - TranscodeStatus: progress derived from encoder stats lines
//
// Output and source streams are closed sets: OutputStream is implemented only
// by VideoOutput, AudioOutput, and PassthroughOutput; StreamInfo only by the
// four *StreamInfo types in this package.
package media
