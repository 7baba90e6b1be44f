// Package logging builds the slog loggers framesmith components share.
//
// Two formats exist: a console format that puts the component, history run
// and stage in a readable line header, and JSON for machine consumption.
// WithContext copies run identifiers from a context onto a logger, and
// ProgressSampler keeps transcode progress from flooding the log.
package logging
