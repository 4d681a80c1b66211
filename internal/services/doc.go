// Package services defines shared utilities consumed by the build stages and
// the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and resource names so
//     log lines emitted deep inside the copier or manifest merger carry the
//     same subject as the CLI that started the build.
//   - Structured error markers plus the Wrap helper that translate failures
//     into the three severities the builder reports: validation failures
//     that block a run, per-item failures that are counted, and fatal
//     failures that abort the remaining work.
//
// Use these helpers when wiring new build logic so error classification and
// log shape stay uniform across packages.
package services
