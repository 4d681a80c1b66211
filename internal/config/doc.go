// Package config loads, normalizes, and validates fivepack settings.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads and writes TOML files, and honours environment fallbacks
// such as FIVEPACK_DESTINATION. The Config type centralizes the incidental
// settings the CLI remembers between sessions: the last destination resource,
// its ensure name, the preferred build mode, and the external viewer path.
//
// Build code never reads Config directly; the CLI turns it into an explicit
// builder.Request so the classify/copy/merge logic stays testable in
// isolation.
package config
