// Package ffprobe provides a typed model of ffprobe JSON output and converts
// it into the media package's MediaInfo.
//
// Key types:
//   - Result: parsed stream inspection containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties
//   - Format: container-level metadata (name, duration, size)
//   - FrameResult: frame inspection carrying HDR side data
//
// Primary entry points:
//   - Parse / ParseFrames: decode ffprobe JSON payloads
//   - Result.MediaInfo: classify streams into typed media.StreamInfo values
//   - ApplySideData: attach mastering display and light level metadata
//
// Running ffprobe lives in the analysis package.
package ffprobe
