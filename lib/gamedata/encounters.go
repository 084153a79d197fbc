// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package gamedata

import (
	"fmt"

	"github.com/monforge/monforge/lib/extract"
	"github.com/monforge/monforge/lib/pipeline"
	"github.com/monforge/monforge/lib/record"
)

// EncountersPath is the container holding one wild-encounter record
// per area id. Areas without wild data have zero-length buffers.
const EncountersPath = "/a/1/2/6"

// EncounterSlots is the fixed slot count per area. The game rolls a
// slot index against hardcoded probability weights, so the count
// never varies; a vacant slot stores species 0.
const EncounterSlots = 12

// EncounterSchema is the per-area layout: three rate bytes, then the
// fixed slot array. Slot species fields may carry packed form
// references (see Forms).
var EncounterSchema = record.Must("encounter_area", encounterFields()...)

func encounterFields() []record.Field {
	fields := []record.Field{
		record.Uint{Name: "land_rate", Bytes: 1},
		record.Uint{Name: "surf_rate", Bytes: 1},
		record.Uint{Name: "fish_rate", Bytes: 1},
		record.Padding{Bytes: 1},
	}
	for slot := 0; slot < EncounterSlots; slot++ {
		fields = append(fields,
			record.Uint{Name: slotField(slot, "species"), Bytes: 2},
			record.Uint{Name: slotField(slot, "level_min"), Bytes: 1},
			record.Uint{Name: slotField(slot, "level_max"), Bytes: 1},
		)
	}
	return fields
}

func slotField(slot int, suffix string) string {
	return fmt.Sprintf("slot_%d_%s", slot, suffix)
}

// Slot is a typed view over one encounter slot's fields.
type Slot struct {
	rec  *record.Record
	slot int
}

// IsEmpty reports whether the slot is vacant. Vacancy is the
// explicit species-0 value, not a missing record: a record always
// carries all of its slots.
func (s Slot) IsEmpty() bool { return s.rec.Get(slotField(s.slot, "species")) == 0 }

// Species returns the slot's species reference, possibly form-packed.
func (s Slot) Species() int { return int(s.rec.Get(slotField(s.slot, "species"))) }

// SetSpecies replaces the slot's species reference.
func (s Slot) SetSpecies(species int) { s.rec.Set(slotField(s.slot, "species"), int64(species)) }

// LevelMin returns the slot's minimum encounter level.
func (s Slot) LevelMin() int { return int(s.rec.Get(slotField(s.slot, "level_min"))) }

// LevelMax returns the slot's maximum encounter level.
func (s Slot) LevelMax() int { return int(s.rec.Get(slotField(s.slot, "level_max"))) }

// Encounters is the wild-encounter extractor. The domain is sparse:
// Get on an area with no wild data reports extract.ErrNoEntry.
type Encounters struct {
	table extract.Table
}

// Build loads the encounter container, tolerating empty area buffers.
func (e *Encounters) Build(ctx *pipeline.Context) error {
	return e.table.Load(ctx, EncountersPath, EncounterSchema, extract.Options{SparseEmpty: true})
}

// WriteBack re-encodes every area record into the container.
func (e *Encounters) WriteBack(ctx *pipeline.Context) error {
	return e.table.Persist(ctx)
}

// Len returns the number of area ids.
func (e *Encounters) Len() int { return e.table.Len() }

// Area returns the record for an area id. Areas without wild data
// report extract.ErrNoEntry.
func (e *Encounters) Area(id int) (*record.Record, error) {
	return e.table.Get(id)
}

// Slots returns typed views over all slots of an area, vacant ones
// included.
func (e *Encounters) Slots(area int) ([]Slot, error) {
	rec, err := e.table.Get(area)
	if err != nil {
		return nil, err
	}
	slots := make([]Slot, EncounterSlots)
	for i := range slots {
		slots[i] = Slot{rec: rec, slot: i}
	}
	return slots, nil
}
