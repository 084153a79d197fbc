// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/monforge/monforge/lib/config"
	"github.com/monforge/monforge/lib/pipeline"
	"github.com/monforge/monforge/lib/presetdef"
)

// loadConfig resolves the run configuration: an explicit --config
// path wins, then the MONFORGE_CONFIG environment variable, then the
// built-in defaults. The defaults are enough for runs that need no
// name tables or snapshots.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case path != "":
		cfg, err = config.LoadFile(path)
	case os.Getenv("MONFORGE_CONFIG") != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadPreset resolves a preset reference: an existing file path is
// read directly, anything else is looked up as a named preset in the
// configured preset directory.
func loadPreset(cfg *config.Config, ref string) (*presetdef.Preset, error) {
	path := ref
	if _, err := os.Stat(path); err != nil {
		path = filepath.Join(cfg.Paths.Presets, ref+".jsonc")
	}
	preset, err := presetdef.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if issues := presetdef.Validate(preset); len(issues) > 0 {
		return nil, fmt.Errorf("invalid preset %s:\n  %s", path, strings.Join(issues, "\n  "))
	}
	return preset, nil
}

// applyVerbosity installs the configured trace levels, then the
// command-line overrides on top. An override is either a bare level
// ("-v 2") or a path-scoped one ("-v encounters/area-3=3").
func applyVerbosity(v *pipeline.Verbosity, configured map[string]int, overrides []string) error {
	for prefix, level := range configured {
		if prefix == "" {
			v.SetDefault(level)
			continue
		}
		v.Set(strings.Split(prefix, "/"), level)
	}
	for _, override := range overrides {
		prefix, levelText, scoped := strings.Cut(override, "=")
		if !scoped {
			levelText = override
			prefix = ""
		}
		level, err := strconv.Atoi(levelText)
		if err != nil || level < 0 || level > 3 {
			return fmt.Errorf("verbosity %q: level must be 0..3", override)
		}
		if prefix == "" {
			v.SetDefault(level)
			continue
		}
		v.Set(strings.Split(prefix, "/"), level)
	}
	return nil
}
