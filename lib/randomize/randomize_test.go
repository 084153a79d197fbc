// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package randomize

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/monforge/monforge/lib/decide"
	"github.com/monforge/monforge/lib/gamedata"
	"github.com/monforge/monforge/lib/pipeline"
	"github.com/monforge/monforge/lib/presetdef"
	"github.com/monforge/monforge/lib/record"
)

type memArchive struct {
	paths      map[string]int
	containers map[int][][]byte
}

func newMemArchive() *memArchive {
	return &memArchive{
		paths:      make(map[string]int),
		containers: make(map[int][][]byte),
	}
}

func (a *memArchive) add(path string, buffers [][]byte) {
	id := len(a.paths)
	a.paths[path] = id
	a.containers[id] = buffers
}

func (a *memArchive) Resolve(path string) (int, error) {
	id, ok := a.paths[path]
	if !ok {
		return 0, fmt.Errorf("no container at %s", path)
	}
	return id, nil
}

func (a *memArchive) ReadContainer(id int) ([][]byte, error) {
	buffers, ok := a.containers[id]
	if !ok {
		return nil, fmt.Errorf("no container %d", id)
	}
	return buffers, nil
}

func (a *memArchive) WriteContainer(id int, buffers [][]byte) error {
	a.containers[id] = buffers
	return nil
}

func speciesEntry(t *testing.T, statEach int64) []byte {
	t.Helper()
	r := record.NewRecord(gamedata.SpeciesSchema)
	for _, name := range []string{"hp", "attack", "defense", "speed", "special_attack", "special_defense"} {
		r.Set(name, statEach)
	}
	r.Set("type_1", 10) // water
	r.Set("type_2", 10)
	buf, err := gamedata.SpeciesSchema.Encode(r)
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

// fixture builds an archive with three real species (stat totals 300,
// 312, and 900), one encounter area with the given slot species, and
// one trainer whose team holds the given member species.
func fixture(t *testing.T, slotSpecies []int64, teamSpecies []int64) *memArchive {
	t.Helper()
	archive := newMemArchive()

	archive.add(gamedata.SpeciesPath, [][]byte{
		speciesEntry(t, 0),
		speciesEntry(t, 50),
		speciesEntry(t, 52),
		speciesEntry(t, 150),
	})

	area := record.NewRecord(gamedata.EncounterSchema)
	area.Set("land_rate", 20)
	for i, species := range slotSpecies {
		area.Set(fmt.Sprintf("slot_%d_species", i), species)
		area.Set(fmt.Sprintf("slot_%d_level_min", i), 4)
		area.Set(fmt.Sprintf("slot_%d_level_max", i), 7)
	}
	areaBuf, err := gamedata.EncounterSchema.Encode(area)
	if err != nil {
		t.Fatal(err)
	}
	archive.add(gamedata.EncountersPath, [][]byte{areaBuf})

	meta := record.NewRecord(gamedata.TrainerSchema)
	meta.Set("team_size", int64(len(teamSpecies)))
	metaBuf, err := gamedata.TrainerSchema.Encode(meta)
	if err != nil {
		t.Fatal(err)
	}
	schema := gamedata.TeamBase.Schema()
	var team []byte
	for _, species := range teamSpecies {
		member := record.NewRecord(schema)
		member.Set("species", species)
		member.Set("level", 10)
		buf, err := schema.Encode(member)
		if err != nil {
			t.Fatal(err)
		}
		team = append(team, buf...)
	}
	archive.add(gamedata.TrainersPath, [][]byte{metaBuf})
	archive.add(gamedata.TeamsPath, [][]byte{team})

	return archive
}

func testContext(archive *memArchive, seed int64) *pipeline.Context {
	return pipeline.NewContext(archive, seed, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func slotSpecies(t *testing.T, ctx *pipeline.Context, slot int) int {
	t.Helper()
	encounters, err := pipeline.Get[gamedata.Encounters](ctx)
	if err != nil {
		t.Fatal(err)
	}
	slots, err := encounters.Slots(0)
	if err != nil {
		t.Fatal(err)
	}
	return slots[slot].Species()
}

// A tolerance bound must hold for every seed: the 900-total species
// may never replace a 300-total original.
func TestEncounterToleranceHoldsAcrossSeeds(t *testing.T) {
	for seed := int64(0); seed < 1000; seed++ {
		ctx := testContext(fixture(t, []int64{1}, nil), seed)
		step := &EncounterStep{BSTTolerancePercent: 5}
		if err := step.Apply(ctx); err != nil {
			t.Fatal(err)
		}
		got := slotSpecies(t, ctx, 0)
		if got != 1 && got != 2 {
			t.Fatalf("seed %d: picked species %d, outside tolerance", seed, got)
		}
	}
}

func TestEncounterSharedReplacement(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		ctx := testContext(fixture(t, []int64{1, 1, 1}, nil), seed)
		step := &EncounterStep{}
		if err := step.Apply(ctx); err != nil {
			t.Fatal(err)
		}
		first := slotSpecies(t, ctx, 0)
		for slot := 1; slot < 3; slot++ {
			if got := slotSpecies(t, ctx, slot); got != first {
				t.Fatalf("seed %d: slots with the same original diverged: %d vs %d", seed, first, got)
			}
		}
	}
}

func TestEncounterIndependentSlots(t *testing.T) {
	diverged := false
	for seed := int64(0); seed < 100 && !diverged; seed++ {
		ctx := testContext(fixture(t, []int64{1, 1, 1}, nil), seed)
		step := &EncounterStep{IndependentSlots: true}
		if err := step.Apply(ctx); err != nil {
			t.Fatal(err)
		}
		first := slotSpecies(t, ctx, 0)
		for slot := 1; slot < 3; slot++ {
			if slotSpecies(t, ctx, slot) != first {
				diverged = true
			}
		}
	}
	if !diverged {
		t.Error("independent slots never diverged across 100 seeds")
	}
}

// When filtering leaves nothing, the original survives and a warning
// is traced. This outcome is a property of the filter, not the seed.
func TestEncounterKeepsOriginalWhenFilteredEmpty(t *testing.T) {
	for seed := int64(0); seed < 100; seed++ {
		var log bytes.Buffer
		archive := fixture(t, []int64{3, 3}, nil)
		ctx := pipeline.NewContext(archive, seed, slog.New(slog.NewTextHandler(&log, nil)))
		ctx.Verbosity.SetDefault(decide.Warnings)

		// Both slots hold the 900-total species. Tolerance admits
		// only the original, and NoDuplicates removes it for the
		// second, independently rolled slot.
		step := &EncounterStep{
			BSTTolerancePercent: 5,
			IndependentSlots:    true,
			NoDuplicates:        true,
		}
		if err := step.Apply(ctx); err != nil {
			t.Fatal(err)
		}

		if got := slotSpecies(t, ctx, 1); got != 3 {
			t.Fatalf("seed %d: slot 1 = %d, want original 3", seed, got)
		}
		if !strings.Contains(log.String(), "keeping original") {
			t.Fatalf("seed %d: no fallback warning in log", seed)
		}
	}
}

func TestTrainerNoDuplicates(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		ctx := testContext(fixture(t, nil, []int64{1, 1, 1}), seed)
		step := &TrainerStep{NoDuplicates: true}
		if err := step.Apply(ctx); err != nil {
			t.Fatal(err)
		}

		trainers, err := pipeline.Get[gamedata.Trainers](ctx)
		if err != nil {
			t.Fatal(err)
		}
		team, err := trainers.Team(0)
		if err != nil {
			t.Fatal(err)
		}
		seen := make(map[int64]bool)
		for _, member := range team.Members {
			species := member.Get("species")
			if seen[species] {
				t.Fatalf("seed %d: duplicate species %d on team", seed, species)
			}
			seen[species] = true
		}
	}
}

func TestSameSeedSameOutcome(t *testing.T) {
	run := func(seed int64) []int {
		ctx := testContext(fixture(t, []int64{1, 2, 3}, nil), seed)
		step := &EncounterStep{IndependentSlots: true}
		if err := step.Apply(ctx); err != nil {
			t.Fatal(err)
		}
		out := make([]int, 3)
		for slot := range out {
			out[slot] = slotSpecies(t, ctx, slot)
		}
		return out
	}

	first := run(7)
	second := run(7)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed diverged: %v vs %v", first, second)
		}
	}
}

func TestStepsFromPreset(t *testing.T) {
	preset := &presetdef.Preset{
		Name: "mixed",
		Steps: []presetdef.StepSpec{
			{Kind: "encounters", BSTTolerancePercent: 10, KeepTypeTheme: true},
			{Kind: "trainers", NoDuplicates: true},
		},
	}

	steps, err := Steps(preset)
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 2 {
		t.Fatalf("len(steps) = %d", len(steps))
	}
	encounter, ok := steps[0].(*EncounterStep)
	if !ok || encounter.BSTTolerancePercent != 10 || !encounter.KeepTypeTheme {
		t.Errorf("step 0 = %#v", steps[0])
	}
	trainer, ok := steps[1].(*TrainerStep)
	if !ok || !trainer.NoDuplicates {
		t.Errorf("step 1 = %#v", steps[1])
	}

	if _, err := Steps(&presetdef.Preset{Name: "bad", Steps: []presetdef.StepSpec{{Kind: "starters"}}}); err == nil {
		t.Fatal("Steps accepted an unknown kind")
	}
}
