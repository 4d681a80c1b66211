package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateResource(); err != nil {
		return err
	}
	if err := c.validateBuild(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateResource() error {
	if err := ValidateResourceName(c.Resource.Name); err != nil {
		return fmt.Errorf("resource.name: %w", err)
	}
	return nil
}

func (c *Config) validateBuild() error {
	if err := ValidateMode(c.Build.Mode); err != nil {
		return fmt.Errorf("build.mode: %w", err)
	}
	if c.Build.ClassifyMaxBytes <= 0 {
		return errors.New("build.classify_max_bytes must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q (use debug, info, warn, or error)", c.Logging.Level)
	}
}

// ValidateResourceName reports whether name can be used in an ensure
// directive: non-empty and free of whitespace.
func ValidateResourceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("resource name is required (e.g. my_pack)")
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("resource name %q must not contain spaces (e.g. my_pack)", name)
	}
	return nil
}

// ValidateMode reports whether mode is a known build mode.
func ValidateMode(mode string) error {
	switch mode {
	case ModeMerge, ModeReplace:
		return nil
	default:
		return fmt.Errorf("unsupported mode %q (use %s or %s)", mode, ModeMerge, ModeReplace)
	}
}
