// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package gamedata

import (
	"path/filepath"

	"github.com/monforge/monforge/lib/extract"
	"github.com/monforge/monforge/lib/nametable"
	"github.com/monforge/monforge/lib/pipeline"
	"github.com/monforge/monforge/lib/record"
)

// MovesPath is the container holding one move entry per move id.
const MovesPath = "/a/0/2/1"

// MoveSchema is the per-move layout.
var MoveSchema = record.Must("move",
	record.Enum{Name: "type", Bytes: 1, Names: TypeNames},
	record.Uint{Name: "category", Bytes: 1},
	record.Uint{Name: "power", Bytes: 1},
	record.Uint{Name: "accuracy", Bytes: 1},
	record.Uint{Name: "pp", Bytes: 1},
	record.Int{Name: "priority", Bytes: 1},
	record.Uint{Name: "hit_min", Bytes: 1},
	record.Uint{Name: "hit_max", Bytes: 1},
	record.Uint{Name: "effect", Bytes: 2},
	record.Uint{Name: "effect_chance", Bytes: 1},
	record.Uint{Name: "target", Bytes: 1},
	record.Flags{Name: "flags", Bytes: 4, Bits: map[int]string{
		0:  "contact",
		1:  "charge",
		2:  "recharge",
		3:  "protect",
		4:  "reflectable",
		5:  "snatch",
		6:  "mirror",
		7:  "punch",
		8:  "sound",
		9:  "gravity",
		10: "defrost",
	}},
)

// Moves is the move-data extractor. Read-only: no step rewrites move
// entries, so it deliberately does not implement pipeline.Writer.
//
// Unlike species, move names are allowed to be sparse. Event-only
// and placeholder move ids routinely have no name line, and that is
// data, not an error.
type Moves struct {
	table extract.Table
	names *nametable.Table
}

// Build loads and decodes the move container, plus moves.txt when
// the run has a data directory.
func (m *Moves) Build(ctx *pipeline.Context) error {
	if err := m.table.Load(ctx, MovesPath, MoveSchema, extract.Options{}); err != nil {
		return err
	}
	if ctx.DataDir == "" {
		return nil
	}
	names, err := nametable.Load(filepath.Join(ctx.DataDir, "moves.txt"), ctx.Logger)
	if err != nil {
		return err
	}
	m.names = names
	return nil
}

// Len returns the number of move ids.
func (m *Moves) Len() int { return m.table.Len() }

// Record returns the move record for an id.
func (m *Moves) Record(id int) (*record.Record, error) {
	return m.table.Get(id)
}

// Name returns the display name for a move id, or "" when none is
// known.
func (m *Moves) Name(id int) string {
	if m.names == nil {
		return ""
	}
	name, _ := m.names.Name(id)
	return name
}
