// Package audio picks the primary audio track carried into a transcode.
//
// The selection filters to tracks in the preferred language (falling back to
// the first available track if none match), then ranks candidates by:
//  1. Channel count (8ch > 6ch > 4ch > 2ch)
//  2. Lossless codecs over lossy (TrueHD, DTS-HD MA, FLAC, PCM)
//  3. The default disposition flag
//
// Primary entry point:
//   - Select: analyzes probed audio streams and returns the layout to keep
package audio
