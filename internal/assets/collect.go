package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// File is a relevant file discovered under a source folder.
type File struct {
	// Path is the absolute origin path.
	Path string
	// RelPath is Path relative to SourceRoot, used for stable ordering.
	RelPath string
	// Name is the base name, the only part that survives flattening.
	Name string
	// Ext is the lower-cased extension including the dot.
	Ext  string
	Kind Kind
	// SourceRoot is the source folder the file was found under.
	SourceRoot string
	Size       int64
}

// Collect walks root recursively and returns every relevant file, sorted by
// relative path. Unreadable subdirectories are skipped silently; only a
// missing or unreadable root is an error.
func Collect(root string) ([]File, error) {
	root = filepath.Clean(root)
	files := make([]File, 0, 64)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		name := d.Name()
		ext := strings.ToLower(filepath.Ext(name))
		kind, ok := ClassifyExt(ext)
		if !ok {
			return nil
		}

		var size int64
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = name
		}

		files = append(files, File{
			Path:       path,
			RelPath:    rel,
			Name:       name,
			Ext:        ext,
			Kind:       kind,
			SourceRoot: root,
			Size:       size,
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("source %s does not exist: %w", root, err)
		}
		return nil, fmt.Errorf("scan source %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
