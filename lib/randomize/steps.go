// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package randomize

import (
	"fmt"

	"github.com/monforge/monforge/lib/pipeline"
	"github.com/monforge/monforge/lib/presetdef"
)

// Steps turns a validated preset into the ordered pipeline step list.
// Unknown kinds are an error here too: a preset that skipped
// validation must not silently run a subset of itself.
func Steps(preset *presetdef.Preset) ([]pipeline.Step, error) {
	steps := make([]pipeline.Step, 0, len(preset.Steps))
	for i, spec := range preset.Steps {
		switch spec.Kind {
		case "encounters":
			steps = append(steps, &EncounterStep{
				BSTTolerancePercent: spec.BSTTolerancePercent,
				KeepTypeTheme:       spec.KeepTypeTheme,
				IndependentSlots:    spec.IndependentSlots,
				NoDuplicates:        spec.NoDuplicates,
			})
		case "trainers":
			steps = append(steps, &TrainerStep{
				BSTTolerancePercent: spec.BSTTolerancePercent,
				NoDuplicates:        spec.NoDuplicates,
			})
		default:
			return nil, fmt.Errorf("steps[%d]: unknown kind %q", i, spec.Kind)
		}
	}
	return steps, nil
}
