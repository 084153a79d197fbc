// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete monforge CLI command tree.
package commands

import (
	"fmt"

	"github.com/monforge/monforge/cmd/monforge/cli"
	"github.com/monforge/monforge/lib/version"
)

// Root builds and returns the complete monforge CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "monforge",
		Description: `Monforge: a content randomization toolkit for monster-collecting ROMs.

Decode game data tables from an image, rewrite them under seeded,
reproducible random decisions, and write the result back without
disturbing anything the run did not touch.`,
		Subcommands: []*cli.Command{
			RandomizeCommand(),
			DumpCommand(),
			VerifyCommand(),
			HashCommand(),
			PresetCommand(),
			SnapshotCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("monforge %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Randomize an image with a preset and a pinned seed",
				Command:     "monforge randomize game.nds --preset balanced --seed 12345",
			},
			{
				Description: "Check that every known table survives a decode/encode round trip",
				Command:     "monforge verify game.nds",
			},
			{
				Description: "List an image's files and identity",
				Command:     "monforge dump game.nds",
			},
			{
				Description: "Trace every encounter decision on one route",
				Command:     "monforge randomize game.nds --preset balanced -v encounters/area-3=3",
			},
		},
	}
}
