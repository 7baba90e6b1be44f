// Package services defines shared utilities consumed by the command compiler,
// the analysis probes, and the transcode supervisor.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures with errors.Is (invalid request, unsupported value, process
//     failure, ...).
//   - Outcome, the result type of best-effort probes that distinguishes "no
//     answer" (with a cause) from a caller mistake.
package services
