// Package encoding compiles transcode jobs into ffmpeg invocations and runs
// them.
//
// Mapper extends the command assembler with the video filter graph
// (subtitle burn-in, crop, scale, denoise, tone mapping). Supervisor runs a
// single transcode at a time and reports progress and completion on a
// channel. PreviewGenerator extracts evenly spaced still images in parallel.
package encoding
