// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package randomize

import (
	"errors"
	"fmt"

	"github.com/monforge/monforge/lib/decide"
	"github.com/monforge/monforge/lib/extract"
	"github.com/monforge/monforge/lib/gamedata"
	"github.com/monforge/monforge/lib/pipeline"
)

// EncounterStep replaces the species of every occupied wild encounter
// slot.
//
// Replacement is keyed by the original species: every slot holding
// the same original gets the same replacement, which preserves the
// "this route has three kinds of wild life" texture of an area.
// IndependentSlots disables the keying and rolls every slot on its
// own.
type EncounterStep struct {
	// BSTTolerancePercent bounds picks to within this percentage of
	// the original's base stat total. Zero disables the bound.
	BSTTolerancePercent int

	// KeepTypeTheme prefers candidates sharing the original's primary
	// type, falling back to the unthemed pool when none qualify.
	KeepTypeTheme bool

	// IndependentSlots rolls each slot separately instead of once per
	// distinct original species.
	IndependentSlots bool

	// NoDuplicates excludes species already picked in the same area.
	NoDuplicates bool
}

// Name implements pipeline.Step.
func (s *EncounterStep) Name() string { return "encounters" }

// Apply implements pipeline.Step.
func (s *EncounterStep) Apply(ctx *pipeline.Context) error {
	species, err := pipeline.Get[gamedata.Species](ctx)
	if err != nil {
		return err
	}
	forms, err := pipeline.Get[gamedata.Forms](ctx)
	if err != nil {
		return err
	}
	encounters, err := pipeline.Get[gamedata.Encounters](ctx)
	if err != nil {
		return err
	}

	candidates := species.Candidates()
	for area := 0; area < encounters.Len(); area++ {
		slots, err := encounters.Slots(area)
		if errors.Is(err, extract.ErrNoEntry) {
			continue
		}
		if err != nil {
			return err
		}
		if err := s.applyArea(ctx, species, forms, candidates, area, slots); err != nil {
			return fmt.Errorf("area %d: %w", area, err)
		}
	}
	return nil
}

func (s *EncounterStep) applyArea(ctx *pipeline.Context, species *gamedata.Species, forms *gamedata.Forms, candidates []int, area int, slots []gamedata.Slot) error {
	areaPath := decide.Path{"encounters", fmt.Sprintf("area-%d", area)}
	replacements := make(map[int]int)
	used := make(map[int]bool)

	for i, slot := range slots {
		if slot.IsEmpty() {
			continue
		}

		// Slot species may be form-packed; all stat lookups go
		// through the flat index so a variant is judged by its own
		// stats, never its base form's.
		flat, err := forms.Index.Resolve(slot.Species())
		if err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}

		if !s.IndependentSlots {
			if pick, done := replacements[flat]; done {
				if pick != flat {
					slot.SetSpecies(pick)
				}
				continue
			}
		}

		pick := decide.Pick(ctx,
			areaPath.At(fmt.Sprintf("slot-%d", i)),
			flat, candidates,
			s.filter(species, flat, used))

		// A kept original stays in its wire form: writing the flat
		// index of a packed reference would swap the variant for a
		// bare entry.
		if pick != flat {
			slot.SetSpecies(pick)
		}
		replacements[flat] = pick
		used[pick] = true
	}
	return nil
}

func (s *EncounterStep) filter(species *gamedata.Species, original int, used map[int]bool) decide.Filter[int] {
	base := s.baseFilters(species, original, used)
	unthemed := allOrKeep(base)
	if !s.KeepTypeTheme {
		return unthemed
	}

	theme, err := species.PrimaryType(original)
	if err != nil {
		// Unknown type code on the original: theming has nothing to
		// match against, so only the unthemed tier applies.
		return unthemed
	}
	themed := decide.All(append([]decide.Filter[int]{
		decide.Where("same primary type", func(ctx *pipeline.Context, original, candidate int) bool {
			candidateType, err := species.PrimaryType(candidate)
			return err == nil && candidateType == theme
		}),
	}, base...)...)
	return decide.Tiered(themed, unthemed)
}

func (s *EncounterStep) baseFilters(species *gamedata.Species, original int, used map[int]bool) []decide.Filter[int] {
	var filters []decide.Filter[int]
	if s.BSTTolerancePercent > 0 {
		originalBST, err := species.BST(original)
		if err == nil {
			tolerance := originalBST * int64(s.BSTTolerancePercent) / 100
			filters = append(filters, decide.Range("stat total within tolerance",
				func(id int) int64 {
					bst, err := species.BST(id)
					if err != nil {
						return -1
					}
					return bst
				},
				originalBST-tolerance, originalBST+tolerance))
		}
	}
	if s.NoDuplicates {
		filters = append(filters, decide.NotIn("not already picked in this area", used))
	}
	return filters
}

func allOrKeep(filters []decide.Filter[int]) decide.Filter[int] {
	if len(filters) == 0 {
		return decide.Keep[int]()
	}
	return decide.All(filters...)
}
