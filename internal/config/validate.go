package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateArchives(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.SourceDir == "" {
		return errors.New("paths.source_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if c.Paths.OutputDir != "" && filepath.Clean(c.Paths.OutputDir) == filepath.Clean(c.Paths.SourceDir) {
		return errors.New("paths.output_dir must differ from paths.source_dir")
	}
	return nil
}

func (c *Config) validateArchives() error {
	if _, err := filepath.Match(c.Archives.Pattern, ""); err != nil {
		return fmt.Errorf("archives.pattern %q: %w", c.Archives.Pattern, err)
	}
	return nil
}

func (c *Config) validateOutput() error {
	dir := c.Output.FailedDir
	if dir == "." || dir == ".." || strings.ContainsAny(dir, `/\`) {
		return fmt.Errorf("output.failed_dir must be a plain directory name, got %q", dir)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
