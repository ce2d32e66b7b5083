package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"lyricindex/internal/config"
	"lyricindex/internal/logging"
	"lyricindex/internal/reconcile"
	"lyricindex/internal/songindex"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
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
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// logger builds the command logger on the command's stderr.
func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg, cmd.ErrOrStderr())
}

// loadCatalog builds the reconciliation catalog from the configured ground
// truth and rules.
func (c *commandContext) loadCatalog() (*reconcile.Catalog, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	rules, err := reconcile.LoadRules(cfg.Paths.RulesPath)
	if err != nil {
		return nil, err
	}
	tracks, err := songindex.ReadGroundTruth(cfg.Paths.GroundTruthPath)
	if err != nil {
		return nil, err
	}
	builder := reconcile.NewBuilder(rules)
	builder.Add(tracks...)
	catalog, err := builder.Build()
	if errors.Is(err, reconcile.ErrDanglingAlias) {
		rules := "the built-in rules"
		if cfg.Paths.RulesPath != "" {
			rules = cfg.Paths.RulesPath
		}
		return nil, fmt.Errorf("build catalog: %w (aliases come from %s; set paths.rules_path to a rules file matching %s)",
			err, rules, cfg.Paths.GroundTruthPath)
	}
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	return catalog, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// pathOr returns the trimmed flag value, expanded, or fallback when the flag
// is empty.
func pathOr(flag, fallback string) (string, error) {
	flag = strings.TrimSpace(flag)
	if flag == "" {
		return fallback, nil
	}
	expanded, err := config.ExpandPath(flag)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", flag, err)
	}
	return expanded, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
