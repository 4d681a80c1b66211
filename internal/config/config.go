package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and tool locations.
type Paths struct {
	Destination string `toml:"destination"`
	ViewerPath  string `toml:"viewer_path"`
	LogDir      string `toml:"log_dir"`
	HistoryDB   string `toml:"history_db"`
}

// Resource describes the destination resource as the server sees it.
type Resource struct {
	Name string `toml:"name"`
}

// Build contains defaults applied to every build unless overridden by flags.
type Build struct {
	Mode             string `toml:"mode"`
	Move             bool   `toml:"move"`
	ClassifyMaxBytes int    `toml:"classify_max_bytes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// History controls the build history store.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Config encapsulates all configuration values for fivepack.
//
// Configuration sections:
//   - Paths: destination resource, viewer executable, log and history locations
//   - Resource: ensure name of the destination resource
//   - Build: default mode, copy vs move, classification read limit
//   - Logging: log format and level
//   - History: build history store toggle
type Config struct {
	Paths    Paths    `toml:"paths"`
	Resource Resource `toml:"resource"`
	Build    Build    `toml:"build"`
	Logging  Logging  `toml:"logging"`
	History  History  `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Save validates the config and writes it to path, replacing any previous
// file. The write goes through a temporary file in the same directory so a
// crash never leaves a truncated settings file behind.
func (c *Config) Save(path string) error {
	if err := c.normalize(); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// Keys lists the settings accepted by Set, in display order.
func Keys() []string {
	return []string{
		"paths.destination",
		"paths.viewer_path",
		"paths.log_dir",
		"paths.history_db",
		"resource.name",
		"build.mode",
		"build.move",
		"build.classify_max_bytes",
		"logging.format",
		"logging.level",
		"history.enabled",
	}
}

// Set assigns a single dotted key and re-validates the config. The config is
// left unchanged when the new value is rejected.
func (c *Config) Set(key, value string) error {
	next := *c
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "paths.destination":
		next.Paths.Destination = value
	case "paths.viewer_path":
		next.Paths.ViewerPath = value
	case "paths.log_dir":
		next.Paths.LogDir = value
	case "paths.history_db":
		next.Paths.HistoryDB = value
	case "resource.name":
		next.Resource.Name = value
	case "build.mode":
		next.Build.Mode = value
	case "build.move":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("build.move: %w", err)
		}
		next.Build.Move = b
	case "build.classify_max_bytes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("build.classify_max_bytes: %w", err)
		}
		next.Build.ClassifyMaxBytes = n
	case "logging.format":
		next.Logging.Format = value
	case "logging.level":
		next.Logging.Level = value
	case "history.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("history.enabled: %w", err)
		}
		next.History.Enabled = b
	default:
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := next.normalize(); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Get returns the display value for a dotted key.
func (c *Config) Get(key string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "paths.destination":
		return c.Paths.Destination, nil
	case "paths.viewer_path":
		return c.Paths.ViewerPath, nil
	case "paths.log_dir":
		return c.Paths.LogDir, nil
	case "paths.history_db":
		return c.Paths.HistoryDB, nil
	case "resource.name":
		return c.Resource.Name, nil
	case "build.mode":
		return c.Build.Mode, nil
	case "build.move":
		return strconv.FormatBool(c.Build.Move), nil
	case "build.classify_max_bytes":
		return strconv.Itoa(c.Build.ClassifyMaxBytes), nil
	case "logging.format":
		return c.Logging.Format, nil
	case "logging.level":
		return c.Logging.Level, nil
	case "history.enabled":
		return strconv.FormatBool(c.History.Enabled), nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// EnsureDirectories creates the directories fivepack writes its own state to.
// The destination resource is not created here; the builder owns it.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	if c.History.Enabled && strings.TrimSpace(c.Paths.HistoryDB) != "" {
		dir := filepath.Dir(c.Paths.HistoryDB)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
