// Package preflight provides readiness checks for the binaries and
// filesystem paths that framesmith depends on.
//
// These checks run in two contexts:
//   - The transcode and preview commands call CheckOutputTarget before
//     launching ffmpeg so a doomed run fails before any encoding starts.
//   - The CLI "framesmith deps" command calls RunAll to display the state
//     of every tool and directory.
package preflight
