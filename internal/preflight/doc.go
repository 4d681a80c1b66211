// Package preflight provides readiness checks for the paths a build depends
// on.
//
// These checks run in two contexts:
//   - The build command calls RunAll before starting a job and refuses to
//     start when a required check fails.
//   - The CLI "fivepack status" command renders every result, including the
//     optional ones, as a health overview.
//
// Directory checks use access(2) on unix so that permission problems are
// reported before any file is touched.
package preflight
