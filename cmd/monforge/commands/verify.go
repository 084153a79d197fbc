// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"fmt"
	"os"

	"github.com/monforge/monforge/cmd/monforge/cli"
	"github.com/monforge/monforge/lib/gamedata"
	"github.com/monforge/monforge/lib/narc"
	"github.com/monforge/monforge/lib/record"
	"github.com/monforge/monforge/lib/rom"
)

// VerifyCommand returns the "monforge verify" command.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:    "verify",
		Summary: "Check that every known table round-trips byte-identically",
		Description: `Check that every known table round-trips byte-identically.

Every buffer of every known container is decoded with its schema and
re-encoded; any byte difference means the layout no longer matches the
image and randomizing it would corrupt data. Exits 1 when any buffer
fails.`,
		Usage: "monforge verify <image>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one image path, got %d arguments", len(args))
			}
			return runVerify(args[0])
		},
	}
}

func runVerify(imagePath string) error {
	img, err := rom.Load(imagePath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", imagePath, err)
	}

	failures := 0
	failures += verifyTable(img, gamedata.SpeciesPath, gamedata.SpeciesSchema, false)
	failures += verifyTable(img, gamedata.MovesPath, gamedata.MoveSchema, false)
	failures += verifyTable(img, gamedata.EncountersPath, gamedata.EncounterSchema, true)
	failures += verifyRuns(img, gamedata.EvolutionsPath, gamedata.EvolutionSchema)
	failures += verifyTeams(img)

	if failures > 0 {
		fmt.Printf("FAIL: %d buffer(s) did not round-trip\n", failures)
		return &cli.ExitError{Code: 1}
	}
	fmt.Println("OK: all known tables round-trip byte-identically")
	return nil
}

func readBuffers(img *rom.Image, path string) ([][]byte, error) {
	id, err := img.Resolve(path)
	if err != nil {
		return nil, err
	}
	blob, err := img.ReadFile(id)
	if err != nil {
		return nil, err
	}
	return narc.Parse(blob)
}

// verifyTable round-trips every buffer of a fixed-size table and
// returns the failure count.
func verifyTable(img *rom.Image, path string, schema *record.Schema, sparse bool) int {
	buffers, err := readBuffers(img, path)
	if err != nil {
		printFailure(path, -1, err)
		return 1
	}
	failures := 0
	for i, buffer := range buffers {
		if len(buffer) == 0 && sparse {
			continue
		}
		if err := roundTrip(schema, buffer); err != nil {
			printFailure(path, i, err)
			failures++
		}
	}
	return failures
}

func roundTrip(schema *record.Schema, buffer []byte) error {
	decoded, err := schema.Decode(buffer)
	if err != nil {
		return err
	}
	encoded, err := schema.Encode(decoded)
	if err != nil {
		return err
	}
	if !bytes.Equal(encoded, buffer) {
		return fmt.Errorf("re-encoded bytes differ")
	}
	return nil
}

// verifyRuns round-trips every repeat-until-sentinel buffer.
func verifyRuns(img *rom.Image, path string, schema *record.RunSchema) int {
	buffers, err := readBuffers(img, path)
	if err != nil {
		printFailure(path, -1, err)
		return 1
	}
	failures := 0
	for i, buffer := range buffers {
		run, err := schema.Decode(buffer)
		if err != nil {
			printFailure(path, i, err)
			failures++
			continue
		}
		encoded, err := schema.Encode(run)
		if err == nil && !bytes.Equal(encoded, buffer) {
			err = fmt.Errorf("re-encoded bytes differ")
		}
		if err != nil {
			printFailure(path, i, err)
			failures++
		}
	}
	return failures
}

// verifyTeams round-trips the trainer metadata and, using the decoded
// metadata, each team buffer in its declared variant shape.
func verifyTeams(img *rom.Image) int {
	meta, err := readBuffers(img, gamedata.TrainersPath)
	if err != nil {
		printFailure(gamedata.TrainersPath, -1, err)
		return 1
	}
	teams, err := readBuffers(img, gamedata.TeamsPath)
	if err != nil {
		printFailure(gamedata.TeamsPath, -1, err)
		return 1
	}
	if len(meta) != len(teams) {
		printFailure(gamedata.TeamsPath, -1, fmt.Errorf("%d team buffers for %d trainers", len(teams), len(meta)))
		return 1
	}

	failures := 0
	for i, buffer := range meta {
		trainer, err := gamedata.TrainerSchema.Decode(buffer)
		if err != nil {
			printFailure(gamedata.TrainersPath, i, err)
			failures++
			continue
		}
		if err := roundTrip(gamedata.TrainerSchema, buffer); err != nil {
			printFailure(gamedata.TrainersPath, i, err)
			failures++
			continue
		}

		variant := gamedata.VariantFor(trainer.Flag("format", "has_moves"), trainer.Flag("format", "has_item"))
		size := int(trainer.Get("team_size"))
		schema := variant.Schema()
		if len(teams[i]) != size*schema.Size() {
			printFailure(gamedata.TeamsPath, i, fmt.Errorf("%d members of %s need %d bytes, buffer has %d",
				size, variant, size*schema.Size(), len(teams[i])))
			failures++
			continue
		}
		for m := 0; m < size; m++ {
			member := teams[i][m*schema.Size() : (m+1)*schema.Size()]
			if err := roundTrip(schema, member); err != nil {
				printFailure(gamedata.TeamsPath, i, fmt.Errorf("member %d: %w", m, err))
				failures++
			}
		}
	}
	return failures
}

func printFailure(path string, index int, err error) {
	if index < 0 {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return
	}
	fmt.Fprintf(os.Stderr, "%s[%d]: %v\n", path, index, err)
}
