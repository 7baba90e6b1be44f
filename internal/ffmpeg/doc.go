// Package ffmpeg models ffmpeg and ffprobe invocations and assembles them from
// transcode jobs.
//
// Key types:
//   - Job: one ffmpeg invocation (flags, input, stream maps, filter graph,
//     output) serialized through cmdargs
//   - ProbeJob: one ffprobe invocation (stream pass or frame side-data pass)
//   - Assembler: validates a media.TranscodeJob and produces the Job with
//     container, stream maps, and codec selection
//
// Codec selection lives here so every path that emits encoder options uses the
// same HDR colorimetry and mastering-display layout.
package ffmpeg
