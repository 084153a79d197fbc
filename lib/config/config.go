// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for Monforge commands.
//
// Configuration is loaded from a single file specified by:
//   - MONFORGE_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures deterministic,
// auditable configuration with no hidden overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/monforge/monforge/lib/snapshot"
)

// Config is the master configuration for Monforge.
type Config struct {
	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Snapshots configures image backups taken before a run writes back.
	Snapshots SnapshotsConfig `yaml:"snapshots"`

	// Verbosity maps decision path prefixes to trace levels. Keys are
	// slash-separated path prefixes; the empty key sets the default.
	// Levels: 0 silent, 1 warnings, 2 decisions, 3 candidates.
	Verbosity map[string]int `yaml:"verbosity"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Root is the base directory for Monforge data.
	Root string `yaml:"root"`

	// NameTables is the directory containing name table files
	// (species.txt, moves.txt, types.txt). Extractors that enrich
	// records with names read from here.
	NameTables string `yaml:"name_tables"`

	// Presets is the directory containing preset definition files.
	Presets string `yaml:"presets"`

	// Reports is where run reports are written.
	Reports string `yaml:"reports"`
}

// SnapshotsConfig configures image backups.
type SnapshotsConfig struct {
	// Dir is where snapshots are stored.
	Dir string `yaml:"dir"`

	// Compression selects the snapshot payload compression.
	// Values: "none", "lz4", "zstd". Default: zstd.
	Compression string `yaml:"compression"`

	// Disabled skips the pre-run snapshot entirely.
	Disabled bool `yaml:"disabled"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// They exist primarily to ensure all fields have sensible zero-values,
// not as a fallback - the config file is required for real runs.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "monforge")

	return &Config{
		Paths: PathsConfig{
			Root:       defaultRoot,
			NameTables: filepath.Join(defaultRoot, "name-tables"),
			Presets:    filepath.Join(defaultRoot, "presets"),
			Reports:    filepath.Join(defaultRoot, "reports"),
		},
		Snapshots: SnapshotsConfig{
			Dir:         filepath.Join(defaultRoot, "snapshots"),
			Compression: "zstd",
		},
		Verbosity: map[string]int{"": 1},
	}
}

// Load loads configuration from the MONFORGE_CONFIG environment variable.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks - if MONFORGE_CONFIG is not set, this fails.
func Load() (*Config, error) {
	configPath := os.Getenv("MONFORGE_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("MONFORGE_CONFIG environment variable not set; " +
			"set it to the path of your monforge.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables do
// not override config values. The only expansion performed is ${HOME} and
// similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()

	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"MONFORGE_ROOT": c.Paths.Root,
		"HOME":          os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["MONFORGE_ROOT"] = c.Paths.Root // Update for dependent paths.

	c.Paths.NameTables = expandVars(c.Paths.NameTables, vars)
	c.Paths.Presets = expandVars(c.Paths.Presets, vars)
	c.Paths.Reports = expandVars(c.Paths.Reports, vars)
	c.Snapshots.Dir = expandVars(c.Snapshots.Dir, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Paths.Root == "" {
		errs = append(errs, fmt.Errorf("paths.root is required"))
	}

	if _, err := snapshot.ParseCompressionTag(c.Snapshots.Compression); err != nil {
		errs = append(errs, fmt.Errorf("snapshots.compression: %w", err))
	}

	for prefix, level := range c.Verbosity {
		if level < 0 || level > 3 {
			errs = append(errs, fmt.Errorf("verbosity[%q] must be 0..3, got %d", prefix, level))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// CompressionTag returns the configured snapshot compression tag.
// Call Validate first; an unknown value falls back to Zstd here.
func (c *Config) CompressionTag() snapshot.CompressionTag {
	tag, err := snapshot.ParseCompressionTag(c.Snapshots.Compression)
	if err != nil {
		return snapshot.CompressionZstd
	}
	return tag
}

// EnsurePaths creates all configured directories if they don't exist.
func (c *Config) EnsurePaths() error {
	paths := []string{
		c.Paths.Root,
		c.Paths.NameTables,
		c.Paths.Presets,
		c.Paths.Reports,
		c.Snapshots.Dir,
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}
