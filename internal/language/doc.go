// Package language provides language code normalization and display names
// for stream language tags reported by ffprobe.
package language
