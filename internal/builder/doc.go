// Package builder runs a pack build: scan the sources, flatten every relevant
// file into the destination resource, extend fxmanifest.lua and refresh the
// server.cfg helper files.
//
// A build runs on exactly one worker goroutine started by Builder.Start. The
// worker never writes to the terminal; it reports through Job.Events, which
// the caller drains on its own goroutine, and finishes with an Outcome.
//
// Two guards keep builds from overlapping: an in-process flag on the Builder
// and an flock-based lock file in the destination that also covers other
// fivepack processes. Cancellation is cooperative and checked only between
// files, so a file is never left half-copied by a stop request.
//
// Failures come in three severities (see internal/services): validation
// errors stop Start before any work, per-file failures are counted and
// skipped, and anything else aborts the remaining steps while leaving the
// files already placed where they are.
package builder
