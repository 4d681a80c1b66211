// Package main hosts the fivepack CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into builder jobs,
// dry-run previews, manifest inspection, preflight checks and settings
// maintenance. Configuration and logger construction are resolved once per
// invocation by commandContext so subcommands only deal with presentation.
//
// Keep this package thin: packing rules belong in the internal packages and
// are surfaced here through commands and flags.
package main
