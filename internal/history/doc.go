// Package history records transcode runs in a SQLite database.
//
// Each supervised transcode inserts a row when it starts and finalizes it
// with the terminal state. The CLI lists recent runs and can clear them.
//
// The schema version lives in PRAGMA user_version; a mismatch is
// reported as ErrSchemaMismatch and the database must be cleared manually.
package history
