package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"takeoutfix/internal/config"
	"takeoutfix/internal/ledger"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// applyPathOverrides replaces the configured source and output directories
// with the positional source argument and --output flag when given.
func applyPathOverrides(cfg *config.Config, args []string, output string) error {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		source, err := config.ExpandPath(strings.TrimSpace(args[0]))
		if err != nil {
			return fmt.Errorf("resolve source: %w", err)
		}
		cfg.Paths.SourceDir = source
	}
	if strings.TrimSpace(output) != "" {
		dir, err := config.ExpandPath(strings.TrimSpace(output))
		if err != nil {
			return fmt.Errorf("resolve output: %w", err)
		}
		cfg.Paths.OutputDir = dir
	}
	return cfg.Validate()
}

func (c *commandContext) withLedger(fn func(*config.Config, *ledger.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := ledger.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
