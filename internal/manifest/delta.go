package manifest

import (
	"path"
	"path/filepath"
	"sort"

	"fivepack/internal/assets"
)

// Entry is a data file placed in the resource during this build.
type Entry struct {
	// RelPath is relative to the resource root, slash separated.
	RelPath string
	Type    assets.DataType
}

// Classify detects the data type of each relative path by reading the placed
// file under root. Only existing .meta files are sniffed.
func Classify(root string, relPaths []string, maxBytes int) []Entry {
	entries := make([]Entry, 0, len(relPaths))
	for _, rel := range relPaths {
		entry := Entry{RelPath: rel}
		if assets.Classifiable(path.Ext(rel)) {
			entry.Type = assets.DetectDataType(filepath.Join(root, filepath.FromSlash(rel)), maxBytes)
		}
		entries = append(entries, entry)
	}
	return entries
}

// Delta is what a build would add to a manifest.
type Delta struct {
	Files        []string
	DataFiles    []Mapping
	Unclassified []string
}

// Empty reports whether the delta adds nothing.
func (d Delta) Empty() bool {
	return len(d.Files) == 0 && len(d.DataFiles) == 0 && len(d.Unclassified) == 0
}

// ComputeDelta subtracts existing declarations from the candidates implied by
// entries. Results are sorted and de-duplicated.
func ComputeDelta(existing Declarations, entries []Entry) Delta {
	files := make(map[string]struct{})
	mappings := make(map[Mapping]struct{})
	unknown := make(map[string]struct{})

	for _, e := range entries {
		if !existing.HasFile(e.RelPath) {
			files[e.RelPath] = struct{}{}
		}
		if e.Type == assets.DataTypeUnknown {
			if !existing.HasFile(e.RelPath) {
				unknown[e.RelPath] = struct{}{}
			}
			continue
		}
		m := Mapping{Type: string(e.Type), Path: e.RelPath}
		if !existing.HasDataFile(m) {
			mappings[m] = struct{}{}
		}
	}

	delta := Delta{
		Files:        sortedSet(files),
		Unclassified: sortedSet(unknown),
		DataFiles:    make([]Mapping, 0, len(mappings)),
	}
	for m := range mappings {
		delta.DataFiles = append(delta.DataFiles, m)
	}
	sortMappings(delta.DataFiles)
	return delta
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
