// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package gamedata

import (
	"github.com/monforge/monforge/lib/extract"
	"github.com/monforge/monforge/lib/pipeline"
	"github.com/monforge/monforge/lib/record"
)

// EvolutionsPath is the container holding one evolution buffer per
// species id: a run of (method, param, target) entries terminated by
// method 0.
const EvolutionsPath = "/a/0/1/9"

// EvolutionSchema is the run layout for one species' evolutions.
var EvolutionSchema = &record.RunSchema{
	Elem: record.Must("evolution",
		record.Uint{Name: "method", Bytes: 2},
		record.Uint{Name: "param", Bytes: 2},
		record.Uint{Name: "target", Bytes: 2},
	),
	SentinelField: "method",
	Sentinel:      0,
}

// Evolutions is the evolution-run extractor. A species with no
// evolutions is an empty run, which is ordinary data.
type Evolutions struct {
	table extract.RunTable
}

// Build loads and decodes the evolution container.
func (e *Evolutions) Build(ctx *pipeline.Context) error {
	return e.table.Load(ctx, EvolutionsPath, EvolutionSchema)
}

// WriteBack re-encodes every run into the container. Trailers ride
// along verbatim, so untouched species round-trip byte-identically.
func (e *Evolutions) WriteBack(ctx *pipeline.Context) error {
	return e.table.Persist(ctx)
}

// Len returns the number of species ids with an evolution buffer.
func (e *Evolutions) Len() int { return e.table.Len() }

// Run returns the evolution run for a species id.
func (e *Evolutions) Run(id int) (*record.Run, error) {
	return e.table.Get(id)
}

// Targets returns the species each evolution of id leads to, in
// entry order.
func (e *Evolutions) Targets(id int) ([]int, error) {
	run, err := e.table.Get(id)
	if err != nil {
		return nil, err
	}
	targets := make([]int, len(run.Records))
	for i, entry := range run.Records {
		targets[i] = int(entry.Get("target"))
	}
	return targets, nil
}
