// Package textutil provides small string helpers shared by the copier, the
// manifest merger, and the ensure-list writer.
//
// The primary use cases are:
//   - Deriving the collision prefix from a source folder name
//   - Normalizing manifest paths to forward slashes
//   - Comparing directive lines case-insensitively
package textutil
