// Package main hosts the framesmith CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into probes,
// detector runs, dry-run argument compilation, supervised transcodes,
// preview extraction, and run history queries. It centralizes configuration
// resolution, process launching, and structured logging setup so subcommands
// can focus on presentation instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
