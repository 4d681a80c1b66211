package preflight

import (
	"strings"

	"fivepack/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Optional results never block a build.
	Optional bool
}

// RunAll executes the checks for the given config and build sources.
func RunAll(cfg *config.Config, sources []string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckResourceName(cfg.Resource.Name))
	results = append(results, CheckDestination(cfg.Paths.Destination))

	for _, src := range sources {
		results = append(results, CheckSource(src))
	}

	if cfg.History.Enabled {
		history := CheckParentWritable("History store", cfg.Paths.HistoryDB)
		history.Optional = true
		results = append(results, history)
	}

	results = append(results, CheckViewer(cfg.Paths.ViewerPath))
	return results
}

// Blocking returns the failed results that must stop a build.
func Blocking(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			out = append(out, r)
		}
	}
	return out
}

// CheckResourceName validates the ensure name.
func CheckResourceName(name string) Result {
	const label = "Resource name"
	if err := config.ValidateResourceName(name); err != nil {
		return Result{Name: label, Detail: err.Error()}
	}
	return Result{Name: label, Passed: true, Detail: strings.TrimSpace(name)}
}
