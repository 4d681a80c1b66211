package packer

import (
	"fmt"
	"os"
	"path/filepath"

	"fivepack/internal/assets"
	"fivepack/internal/manifest"
)

const (
	StreamDirName    = "stream"
	DataDirName      = "data"
	ManifestFileName = manifest.FileName
	RunLogFileName   = "builder.log"
	EnsureFileName   = "_ADD_TO_SERVER_CFG.txt"
	MasterEnsureName = "_ALL_ENSURES.txt"
	LockFileName     = ".fivepack.lock"
)

// Layout locates the fixed parts of a destination resource folder.
type Layout struct {
	Root string
}

// NewLayout returns the layout rooted at the absolute form of root.
func NewLayout(root string) (Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, fmt.Errorf("resolve destination %q: %w", root, err)
	}
	return Layout{Root: abs}, nil
}

func (l Layout) StreamDir() string    { return filepath.Join(l.Root, StreamDirName) }
func (l Layout) DataDir() string      { return filepath.Join(l.Root, DataDirName) }
func (l Layout) ManifestPath() string { return filepath.Join(l.Root, ManifestFileName) }
func (l Layout) RunLogPath() string   { return filepath.Join(l.Root, RunLogFileName) }
func (l Layout) EnsurePath() string   { return filepath.Join(l.Root, EnsureFileName) }
func (l Layout) LockPath() string     { return filepath.Join(l.Root, LockFileName) }

// DirFor returns the bucket folder for kind.
func (l Layout) DirFor(kind assets.Kind) string {
	if kind == assets.KindStream {
		return l.StreamDir()
	}
	return l.DataDir()
}

// Rel returns path relative to the resource root with forward slashes, the
// form used in fxmanifest.lua and the run log.
func (l Layout) Rel(path string) string {
	rel, err := filepath.Rel(l.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Prepare creates the resource root and both buckets. With wipe set, existing
// stream/ and data/ folders are deleted first; nothing else in the root is
// touched.
func (l Layout) Prepare(wipe bool) error {
	if err := os.MkdirAll(l.Root, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	for _, dir := range []string{l.StreamDir(), l.DataDir()} {
		if wipe {
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("clear %s: %w", filepath.Base(dir), err)
			}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Base(dir), err)
		}
	}
	return nil
}
