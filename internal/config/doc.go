// Package config loads, normalizes, and validates framesmith configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides for the
// ffmpeg and ffprobe binaries. Durations are stored as whole seconds and
// exposed as time.Duration accessors.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
