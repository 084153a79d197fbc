// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package randomize

import (
	"fmt"

	"github.com/monforge/monforge/lib/decide"
	"github.com/monforge/monforge/lib/gamedata"
	"github.com/monforge/monforge/lib/pipeline"
)

// TrainerStep replaces the species of every trainer team member.
// Team buffers keep their trainer's declared member shape; only the
// species (and its form selector) change.
type TrainerStep struct {
	// BSTTolerancePercent bounds picks to within this percentage of
	// the original member's base stat total. Zero disables the bound.
	BSTTolerancePercent int

	// NoDuplicates excludes species already picked within the same
	// team.
	NoDuplicates bool
}

// Name implements pipeline.Step.
func (s *TrainerStep) Name() string { return "trainers" }

// Apply implements pipeline.Step.
func (s *TrainerStep) Apply(ctx *pipeline.Context) error {
	species, err := pipeline.Get[gamedata.Species](ctx)
	if err != nil {
		return err
	}
	trainers, err := pipeline.Get[gamedata.Trainers](ctx)
	if err != nil {
		return err
	}

	candidates := species.Candidates()
	for id := 0; id < trainers.Len(); id++ {
		team, err := trainers.Team(id)
		if err != nil {
			return err
		}
		if len(team.Members) == 0 {
			continue
		}
		if err := s.applyTeam(ctx, species, candidates, id, team); err != nil {
			return fmt.Errorf("trainer %d: %w", id, err)
		}
	}
	return nil
}

func (s *TrainerStep) applyTeam(ctx *pipeline.Context, species *gamedata.Species, candidates []int, id int, team *gamedata.Team) error {
	teamPath := decide.Path{"trainers", fmt.Sprintf("trainer-%d", id)}
	used := make(map[int]bool)

	for m, member := range team.Members {
		original := int(member.Get("species"))
		if original == 0 {
			continue
		}

		pick := decide.Pick(ctx,
			teamPath.At(fmt.Sprintf("member-%d", m)),
			original, candidates,
			s.filter(species, original, used))

		if pick != original {
			member.Set("species", int64(pick))
			// The form selector belongs to the old species; the
			// replacement starts in its base form.
			member.Set("form", 0)
		}
		used[pick] = true
	}
	return nil
}

func (s *TrainerStep) filter(species *gamedata.Species, original int, used map[int]bool) decide.Filter[int] {
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
		filters = append(filters, decide.NotIn("not already on this team", used))
	}
	return allOrKeep(filters)
}
