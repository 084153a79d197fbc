// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/monforge/monforge/cmd/monforge/cli"
	"github.com/monforge/monforge/lib/pipeline"
	"github.com/monforge/monforge/lib/presetdef"
	"github.com/monforge/monforge/lib/randomize"
	"github.com/monforge/monforge/lib/report"
	"github.com/monforge/monforge/lib/rom"
	"github.com/monforge/monforge/lib/snapshot"
)

// RandomizeCommand returns the "monforge randomize" command.
func RandomizeCommand() *cli.Command {
	var (
		configPath string
		presetRef  string
		seed       int64
		outPath    string
		reportPath string
		verbosity  []string
		dryRun     bool
		noSnapshot bool
		debug      bool
		flagSet    *pflag.FlagSet
	)

	return &cli.Command{
		Name:    "randomize",
		Summary: "Run a randomization preset against an image",
		Description: `Run a randomization preset against an image.

The run is fully determined by the preset and the seed: the same
image, preset, and seed always produce the same output. Before any
write, a compressed snapshot of the input image is stored so the run
can be undone. A CBOR report recording the seed, steps, and
before/after hashes is written next to the output.`,
		Usage: "monforge randomize <image> --preset <name-or-path> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("randomize", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "config file (overrides MONFORGE_CONFIG)")
			flags.StringVar(&presetRef, "preset", "", "preset name or path (required)")
			flags.Int64Var(&seed, "seed", 0, "random seed (default: preset seed, else time-derived)")
			flags.StringVar(&outPath, "out", "", "output image path (default <image>.random.nds)")
			flags.StringVar(&reportPath, "report", "", "report path (default in the configured reports dir)")
			flags.StringArrayVarP(&verbosity, "verbosity", "v", nil, "trace level, optionally path-scoped (e.g. 2 or encounters/area-3=3)")
			flags.BoolVar(&dryRun, "dry-run", false, "run the pipeline but write nothing")
			flags.BoolVar(&noSnapshot, "no-snapshot", false, "skip the pre-run snapshot")
			flags.BoolVar(&debug, "debug", false, "log at debug level")
			flagSet = flags
			return flags
		},
		Examples: []cli.Example{
			{
				Description: "Reproducible run with a pinned seed",
				Command:     "monforge randomize game.nds --preset balanced --seed 12345",
			},
			{
				Description: "See every decision while tuning a preset",
				Command:     "monforge randomize game.nds --preset balanced -v 2 --dry-run",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one image path, got %d arguments", len(args))
			}
			if presetRef == "" {
				return fmt.Errorf("--preset is required")
			}
			seedPinned := flagSet != nil && flagSet.Changed("seed")
			return runRandomize(args[0], configPath, presetRef, seed, seedPinned, outPath, reportPath, verbosity, dryRun, noSnapshot, debug)
		},
	}
}

func runRandomize(imagePath, configPath, presetRef string, seed int64, seedPinned bool, outPath, reportPath string, verbosity []string, dryRun, noSnapshot, debug bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	preset, err := loadPreset(cfg, presetRef)
	if err != nil {
		return err
	}
	steps, err := randomize.Steps(preset)
	if err != nil {
		return err
	}

	seed = resolveSeed(seed, seedPinned, preset)

	logger := cli.NewCommandLogger(debug).With("command", "randomize", "preset", preset.Name, "seed", seed)

	original, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	img, err := rom.LoadBytes(original)
	if err != nil {
		return fmt.Errorf("loading %s: %w", imagePath, err)
	}
	beforeHash := snapshot.HashImage(original)
	logger.Info("image loaded",
		"title", img.Title(),
		"code", img.GameCode(),
		"files", img.FileCount(),
		"hash", beforeHash.Short())

	if !noSnapshot && !cfg.Snapshots.Disabled && !dryRun {
		if err := os.MkdirAll(cfg.Snapshots.Dir, 0755); err != nil {
			return fmt.Errorf("creating snapshot dir: %w", err)
		}
		snapPath := filepath.Join(cfg.Snapshots.Dir,
			fmt.Sprintf("%s-%s.mfsnap", sanitize(img.GameCode()), beforeHash.Short()))
		info, err := snapshot.Write(snapPath, original, cfg.CompressionTag())
		if err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
		logger.Info("snapshot written", "path", snapPath, "compression", info.Compression.String())
	}

	ctx := pipeline.NewContext(&rom.Archive{Image: img}, seed, logger)
	if err := applyVerbosity(ctx.Verbosity, cfg.Verbosity, verbosity); err != nil {
		return err
	}
	if _, err := os.Stat(cfg.Paths.NameTables); err == nil {
		ctx.DataDir = cfg.Paths.NameTables
	}

	var progress pipeline.Progress
	if cli.IsTerminal() {
		progress = func(index, total int, name string) {
			fmt.Printf("[%d/%d] %s\n", index+1, total, name)
		}
	}
	if err := ctx.Run(steps, progress); err != nil {
		return err
	}
	if err := ctx.WriteBack(); err != nil {
		return err
	}

	if dryRun {
		logger.Info("dry run complete", "components", ctx.Constructed(), "containers", len(img.Replaced()))
		return nil
	}

	output, err := img.Bytes()
	if err != nil {
		return fmt.Errorf("rebuilding image: %w", err)
	}
	if outPath == "" {
		outPath = strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".random.nds"
	}
	if err := os.WriteFile(outPath, output, 0644); err != nil {
		return fmt.Errorf("writing output image: %w", err)
	}
	afterHash := snapshot.HashImage(output)
	logger.Info("output written", "path", outPath, "hash", afterHash.Short())

	run := buildReport(preset, seed, steps, img, original, beforeHash, afterHash)
	if reportPath == "" {
		if err := os.MkdirAll(cfg.Paths.Reports, 0755); err != nil {
			return fmt.Errorf("creating reports dir: %w", err)
		}
		reportPath = filepath.Join(cfg.Paths.Reports,
			fmt.Sprintf("%s-%d.report.cbor", sanitize(img.GameCode()), seed))
	}
	if err := run.WriteFile(reportPath); err != nil {
		return err
	}
	logger.Info("report written", "path", reportPath)
	return nil
}

// resolveSeed picks the run seed: an explicitly passed --seed (any
// value, including 0) wins, then the preset's pinned seed, then the
// clock. The winner is logged and recorded in the report either way.
func resolveSeed(seed int64, seedPinned bool, preset *presetdef.Preset) int64 {
	if seedPinned {
		return seed
	}
	if preset.Seed != nil {
		return *preset.Seed
	}
	return time.Now().UnixNano()
}

// buildReport assembles the run report, hashing each replaced
// container before and after. The original image bytes are re-parsed
// so the "before" hashes come from untouched data.
func buildReport(preset *presetdef.Preset, seed int64, steps []pipeline.Step, img *rom.Image, original []byte, beforeHash, afterHash snapshot.Hash) *report.Report {
	run := &report.Report{
		Seed:   seed,
		Preset: preset.Name,
		Image: report.ImageIdentity{
			Title:    img.Title(),
			GameCode: img.GameCode(),
			Before:   beforeHash.String(),
			After:    afterHash.String(),
		},
	}
	for _, step := range steps {
		run.Steps = append(run.Steps, step.Name())
	}

	// A fresh parse of the original bytes; errors here cannot happen
	// for data that already loaded once, so they degrade to empty
	// before-hashes rather than failing the report.
	pristine, err := rom.LoadBytes(original)
	for _, id := range img.Replaced() {
		change := report.ContainerChange{}
		if path, ok := img.PathOf(id); ok {
			change.Path = path
		}
		if err == nil {
			if before, readErr := pristine.ReadFile(id); readErr == nil {
				change.Before = snapshot.HashContainer(before).String()
			}
		}
		if after, readErr := img.ReadFile(id); readErr == nil {
			change.After = snapshot.HashContainer(after).String()
		}
		run.Containers = append(run.Containers, change)
	}
	return run
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
