// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package presetdef provides parsing and validation for Monforge preset
// definitions. A preset is an ordered list of randomization steps plus
// the policy knobs each step runs with, authored on disk as JSONC files
// (JSON extended with comments and trailing commas).
//
// The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes → Preset
//  2. Validate: structural checks (known kinds, ranges, at least one step)
//  3. The randomize package turns each StepSpec into a pipeline step
package presetdef

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// Preset is an ordered randomization plan.
type Preset struct {
	// Name identifies the preset in reports and logs.
	Name string `json:"name"`

	// Description is free-form documentation shown by list commands.
	Description string `json:"description,omitempty"`

	// Seed pins the run seed when set. A command-line seed overrides it.
	Seed *int64 `json:"seed,omitempty"`

	// Steps run in order. Order matters: later steps observe the
	// writes of earlier ones.
	Steps []StepSpec `json:"steps"`
}

// StepSpec configures a single randomization step.
type StepSpec struct {
	// Kind selects the step implementation. Known kinds:
	// "encounters", "trainers".
	Kind string `json:"kind"`

	// BSTTolerancePercent bounds replacement picks to within this
	// percentage of the original's base stat total. Zero means the
	// step's default (no stat constraint).
	BSTTolerancePercent int `json:"bst_tolerance_percent,omitempty"`

	// KeepTypeTheme prefers replacements sharing the original's
	// primary type, falling back to the full pool when no candidate
	// matches.
	KeepTypeTheme bool `json:"keep_type_theme,omitempty"`

	// IndependentSlots picks a fresh replacement per slot instead of
	// one replacement per distinct original species.
	IndependentSlots bool `json:"independent_slots,omitempty"`

	// NoDuplicates excludes species already picked within the same
	// group (an encounter area, a trainer's team).
	NoDuplicates bool `json:"no_duplicates,omitempty"`
}

// KnownKinds lists the step kinds Validate accepts, in display order.
var KnownKinds = []string{"encounters", "trainers"}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Preset.
func Parse(data []byte) (*Preset, error) {
	stripped := jsonc.ToJSON(data)

	var preset Preset
	if err := json.Unmarshal(stripped, &preset); err != nil {
		return nil, fmt.Errorf("parsing preset: %w", err)
	}

	return &preset, nil
}

// ReadFile reads a JSONC preset file from disk and parses it. Returns
// a descriptive error if the file cannot be read or the JSON is
// malformed.
func ReadFile(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	preset, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return preset, nil
}

// NameFromPath extracts a preset name from a file path by stripping
// the directory prefix and the file extension. For example,
// "presets/balanced-casual.jsonc" returns "balanced-casual".
func NameFromPath(path string) string {
	base := filepath.Base(path)
	extension := filepath.Ext(base)
	return strings.TrimSuffix(base, extension)
}

// Validate checks a Preset for structural issues. Returns a list of
// human-readable issue descriptions. An empty list means the preset is
// valid.
func Validate(preset *Preset) []string {
	var issues []string

	if preset.Name == "" {
		issues = append(issues, "preset has no name")
	}

	if len(preset.Steps) == 0 {
		issues = append(issues, "preset has no steps (at least one step is required)")
	}

	for index, step := range preset.Steps {
		prefix := fmt.Sprintf("steps[%d]", index)

		if step.Kind == "" {
			issues = append(issues, fmt.Sprintf("%s: kind is required", prefix))
			continue
		}
		if !knownKind(step.Kind) {
			issues = append(issues, fmt.Sprintf(
				"%s: unknown kind %q (known kinds: %s)",
				prefix, step.Kind, strings.Join(KnownKinds, ", "),
			))
		}

		if step.BSTTolerancePercent < 0 || step.BSTTolerancePercent > 100 {
			issues = append(issues, fmt.Sprintf(
				"%s: bst_tolerance_percent must be 0..100, got %d",
				prefix, step.BSTTolerancePercent,
			))
		}

		// Per-slot picking already implies fresh decisions; the two
		// modes are not meaningful together for trainer steps, where
		// every member is its own slot.
		if step.Kind == "trainers" && step.IndependentSlots {
			issues = append(issues, fmt.Sprintf(
				"%s: independent_slots is only valid on encounter steps", prefix,
			))
		}
	}

	return issues
}

func knownKind(kind string) bool {
	for _, known := range KnownKinds {
		if kind == known {
			return true
		}
	}
	return false
}
