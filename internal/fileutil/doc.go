// Package fileutil holds small filesystem helpers: verified copies, moving
// generated files into place, and advisory locks on transcode outputs.
package fileutil
