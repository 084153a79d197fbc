// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package report defines the run report: a CBOR artifact written next
// to the output image recording what a randomization run did — seed,
// preset, step order, and before/after identities of the image and
// every container the run touched. Conceptually it is the durable
// half of the determinism contract: two runs whose reports record the
// same seed, steps, and input hash must produce the same output hash.
package report

import (
	"fmt"
	"os"

	"github.com/monforge/monforge/lib/codec"
)

// Report is one run's record.
type Report struct {
	// Seed is the random seed the run was started with.
	Seed int64 `cbor:"seed"`

	// Preset names the preset file the step list came from, or ""
	// for a flag-assembled pipeline.
	Preset string `cbor:"preset,omitempty"`

	// Steps is the executed step list, in order.
	Steps []string `cbor:"steps"`

	// Image identifies the input and output images.
	Image ImageIdentity `cbor:"image"`

	// Containers records every container the run replaced.
	Containers []ContainerChange `cbor:"containers"`
}

// ImageIdentity names an image and its before/after hashes.
type ImageIdentity struct {
	Title    string `cbor:"title"`
	GameCode string `cbor:"game_code"`
	Before   string `cbor:"before"`
	After    string `cbor:"after"`
}

// ContainerChange records one replaced container.
type ContainerChange struct {
	Path   string `cbor:"path"`
	Before string `cbor:"before"`
	After  string `cbor:"after"`
}

// WriteFile encodes the report deterministically and writes it.
func (r *Report) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if err := codec.NewEncoder(f).Encode(r); err != nil {
		f.Close()
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// ReadFile loads a report written by WriteFile.
func ReadFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	defer f.Close()
	var r Report
	if err := codec.NewDecoder(f).Decode(&r); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &r, nil
}
