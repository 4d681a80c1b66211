// Package logging assembles structured slog loggers and formatting helpers used
// across fivepack.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so build code can automatically
// tag log lines with run IDs, stages, and resource names. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// The per-resource builder.log is not produced here; it is a domain artefact
// written by the runlog package.
package logging
