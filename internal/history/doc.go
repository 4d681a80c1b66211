// Package history persists one row per finished build in SQLite.
//
// The store backs "fivepack history" and is strictly an audit trail: a build
// never reads it back, and failing to record a build only produces a warning.
// Writes retry briefly on SQLITE_BUSY so that two terminals building different
// resources do not trip over each other.
package history
