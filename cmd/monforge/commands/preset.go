// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/monforge/monforge/cmd/monforge/cli"
	"github.com/monforge/monforge/lib/presetdef"
)

// PresetCommand returns the "monforge preset" command group.
func PresetCommand() *cli.Command {
	return &cli.Command{
		Name:    "preset",
		Summary: "Inspect and validate randomization presets",
		Subcommands: []*cli.Command{
			presetCheckCommand(),
			presetListCommand(),
		},
	}
}

func presetCheckCommand() *cli.Command {
	return &cli.Command{
		Name:    "check",
		Summary: "Validate one or more preset files",
		Description: `Validate one or more preset files.

Each file is parsed and validated; every issue is printed. Exits 1
when any file has issues, so the command works as a pre-commit check
for a preset directory.`,
		Usage: "monforge preset check <file> [<file> ...]",
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("expected at least one preset file")
			}
			bad := 0
			for _, path := range args {
				preset, err := presetdef.ReadFile(path)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
					bad++
					continue
				}
				issues := presetdef.Validate(preset)
				for _, issue := range issues {
					fmt.Fprintf(os.Stderr, "%s: %s\n", path, issue)
				}
				if len(issues) > 0 {
					bad++
				}
			}
			if bad > 0 {
				return &cli.ExitError{Code: 1}
			}
			fmt.Printf("OK: %d preset(s) valid\n", len(args))
			return nil
		},
	}
}

func presetListCommand() *cli.Command {
	var configPath string
	return &cli.Command{
		Name:    "list",
		Summary: "List presets in the configured preset directory",
		Usage:   "monforge preset list [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "Path to the configuration file")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			entries, err := os.ReadDir(cfg.Paths.Presets)
			if err != nil {
				return fmt.Errorf("reading preset directory: %w", err)
			}

			type row struct {
				name, steps, description string
			}
			var rows []row
			for _, entry := range entries {
				if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonc") {
					continue
				}
				path := filepath.Join(cfg.Paths.Presets, entry.Name())
				preset, err := presetdef.ReadFile(path)
				if err != nil {
					rows = append(rows, row{presetdef.NameFromPath(path), "-", fmt.Sprintf("(unreadable: %v)", err)})
					continue
				}
				kinds := make([]string, len(preset.Steps))
				for i, step := range preset.Steps {
					kinds[i] = step.Kind
				}
				rows = append(rows, row{preset.Name, strings.Join(kinds, ","), preset.Description})
			}
			sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSTEPS\tDESCRIPTION")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.name, r.steps, r.description)
			}
			return w.Flush()
		},
	}
}
