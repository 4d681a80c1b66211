package manifest

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"fivepack/internal/assets"
	"fivepack/internal/textutil"
)

// FileName is the manifest file inside a resource root.
const FileName = "fxmanifest.lua"

var (
	quotedPattern   = regexp.MustCompile(`['"]([^'"]+)['"]`)
	dataFilePattern = regexp.MustCompile(`data_file\s+['"]([^'"]+)['"]\s+['"]([^'"]+)['"]`)
)

// Mapping is one data_file declaration.
type Mapping struct {
	Type string
	Path string
}

// Declarations is what an existing manifest already declares.
type Declarations struct {
	Files     map[string]struct{}
	DataFiles map[Mapping]struct{}
}

// Parse extracts the declared paths and data_file mappings from text.
func Parse(text string) Declarations {
	decl := Declarations{
		Files:     make(map[string]struct{}),
		DataFiles: make(map[Mapping]struct{}),
	}
	for _, m := range quotedPattern.FindAllStringSubmatch(text, -1) {
		if p := textutil.SlashPath(m[1]); p != "" {
			decl.Files[p] = struct{}{}
		}
	}
	for _, m := range dataFilePattern.FindAllStringSubmatch(text, -1) {
		typ := strings.TrimSpace(m[1])
		p := textutil.SlashPath(m[2])
		if typ != "" && p != "" {
			decl.DataFiles[Mapping{Type: typ, Path: p}] = struct{}{}
		}
	}
	return decl
}

// HasFile reports whether path is already declared.
func (d Declarations) HasFile(path string) bool {
	_, ok := d.Files[path]
	return ok
}

// HasDataFile reports whether m is already declared.
func (d Declarations) HasDataFile(m Mapping) bool {
	_, ok := d.DataFiles[m]
	return ok
}

// SortedFiles returns the declared paths in lexical order.
func (d Declarations) SortedFiles() []string {
	out := make([]string, 0, len(d.Files))
	for p := range d.Files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// SortedDataFiles returns the declared mappings ordered by type, then path.
func (d Declarations) SortedDataFiles() []Mapping {
	out := make([]Mapping, 0, len(d.DataFiles))
	for m := range d.DataFiles {
		out = append(out, m)
	}
	sortMappings(out)
	return out
}

// Read parses the manifest at path. A missing file yields empty
// declarations and exists=false.
func Read(path string) (Declarations, bool, error) {
	text, exists, err := readText(path)
	if err != nil {
		return Declarations{}, false, err
	}
	return Parse(text), exists, nil
}

func readText(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read manifest: %w", err)
	}
	return assets.DecodeLoose(data), true, nil
}

func sortMappings(ms []Mapping) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].Type != ms[j].Type {
			return ms[i].Type < ms[j].Type
		}
		return ms[i].Path < ms[j].Path
	})
}
