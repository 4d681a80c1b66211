package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeResource()
	c.normalizeBuild()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	c.Paths.Destination = strings.TrimSpace(c.Paths.Destination)
	if c.Paths.Destination == "" {
		if value, ok := os.LookupEnv("FIVEPACK_DESTINATION"); ok {
			c.Paths.Destination = strings.TrimSpace(value)
		}
	}
	if c.Paths.Destination, err = expandPath(c.Paths.Destination); err != nil {
		return fmt.Errorf("paths.destination: %w", err)
	}
	c.Paths.ViewerPath = strings.TrimSpace(c.Paths.ViewerPath)
	if c.Paths.ViewerPath, err = expandPath(c.Paths.ViewerPath); err != nil {
		return fmt.Errorf("paths.viewer_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeResource() {
	c.Resource.Name = strings.TrimSpace(c.Resource.Name)
	if c.Resource.Name == "" {
		if value, ok := os.LookupEnv("FIVEPACK_RESOURCE"); ok {
			c.Resource.Name = strings.TrimSpace(value)
		}
	}
	if c.Resource.Name == "" {
		c.Resource.Name = defaultResourceName
	}
}

func (c *Config) normalizeBuild() {
	c.Build.Mode = strings.ToLower(strings.TrimSpace(c.Build.Mode))
	if c.Build.Mode == "" {
		c.Build.Mode = defaultBuildMode
	}
	if c.Build.ClassifyMaxBytes <= 0 {
		c.Build.ClassifyMaxBytes = defaultClassifyMaxBytes
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
