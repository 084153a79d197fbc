// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package gamedata

import (
	"fmt"

	"github.com/monforge/monforge/lib/extract"
	"github.com/monforge/monforge/lib/pipeline"
	"github.com/monforge/monforge/lib/record"
)

// TrainersPath is the container holding one metadata record per
// trainer; TeamsPath holds the matching team buffer at the same
// index.
const (
	TrainersPath = "/a/0/9/1"
	TeamsPath    = "/a/0/9/2"
)

// TrainerSchema is the per-trainer metadata layout. The format flags
// select which team member shape the trainer's team buffer uses, so
// the metadata record must be decoded before its team buffer can be.
var TrainerSchema = record.Must("trainer",
	record.Flags{Name: "format", Bytes: 1, Bits: map[int]string{
		0: "has_moves",
		1: "has_item",
	}},
	record.Uint{Name: "class", Bytes: 1},
	record.Uint{Name: "battle_type", Bytes: 1},
	record.Uint{Name: "team_size", Bytes: 1},
	record.Array{Name: "items", Bytes: 2, Count: 4},
	record.Uint{Name: "ai", Bytes: 4},
	record.Uint{Name: "healer", Bytes: 1},
	record.Uint{Name: "cash", Bytes: 1},
	record.Uint{Name: "prize_item", Bytes: 2},
)

// TeamVariant selects one of the four team member shapes. The set is
// closed: the two format flags span it completely, and decode always
// lands on exactly one variant.
type TeamVariant uint8

const (
	// TeamBase members carry stats, level, species, and form only.
	TeamBase TeamVariant = iota
	// TeamItem members add a held item.
	TeamItem
	// TeamMoves members add an explicit four-move set.
	TeamMoves
	// TeamItemMoves members add both.
	TeamItemMoves
)

var teamBaseFields = []record.Field{
	record.Uint{Name: "difficulty", Bytes: 1},
	record.Uint{Name: "ability_slot", Bytes: 1},
	record.Uint{Name: "level", Bytes: 2},
	record.Uint{Name: "species", Bytes: 2},
	record.Uint{Name: "form", Bytes: 2},
}

var teamSchemas = [4]*record.Schema{
	TeamBase: record.Must("team_member", teamBaseFields...),
	TeamItem: record.Must("team_member_item", append(append([]record.Field{}, teamBaseFields...),
		record.Uint{Name: "held_item", Bytes: 2},
	)...),
	TeamMoves: record.Must("team_member_moves", append(append([]record.Field{}, teamBaseFields...),
		record.Array{Name: "moves", Bytes: 2, Count: 4},
	)...),
	TeamItemMoves: record.Must("team_member_item_moves", append(append([]record.Field{}, teamBaseFields...),
		record.Uint{Name: "held_item", Bytes: 2},
		record.Array{Name: "moves", Bytes: 2, Count: 4},
	)...),
}

// VariantFor maps the metadata format flags to a variant.
func VariantFor(hasMoves, hasItem bool) TeamVariant {
	switch {
	case hasMoves && hasItem:
		return TeamItemMoves
	case hasMoves:
		return TeamMoves
	case hasItem:
		return TeamItem
	default:
		return TeamBase
	}
}

// Schema returns the member layout for this variant.
func (v TeamVariant) Schema() *record.Schema { return teamSchemas[v] }

func (v TeamVariant) String() string { return teamSchemas[v].Name() }

// Team is one trainer's decoded roster.
type Team struct {
	Variant TeamVariant
	Members []*record.Record
}

// Trainers is the two-container trainer extractor. Decode is
// two-phase: the metadata record at index i determines the member
// shape and count, then the team buffer at the same index decodes
// with that shape. A zero-size team with an empty buffer is legal
// data (placeholder trainer ids ship that way).
type Trainers struct {
	meta  extract.Table
	raw   extract.Container
	teams []*Team
}

// Build loads both containers and decodes every team against its
// trainer's declared shape.
func (t *Trainers) Build(ctx *pipeline.Context) error {
	if err := t.meta.Load(ctx, TrainersPath, TrainerSchema, extract.Options{}); err != nil {
		return err
	}
	if err := t.raw.Load(ctx, TeamsPath); err != nil {
		return err
	}
	if len(t.raw.Buffers) != t.meta.Len() {
		return fmt.Errorf("%s has %d trainers but %s has %d team buffers",
			TrainersPath, t.meta.Len(), TeamsPath, len(t.raw.Buffers))
	}

	t.teams = make([]*Team, t.meta.Len())
	for i := 0; i < t.meta.Len(); i++ {
		meta, err := t.meta.Get(i)
		if err != nil {
			return err
		}
		team, err := decodeTeam(meta, t.raw.Buffers[i])
		if err != nil {
			return fmt.Errorf("%s[%d]: %w", TeamsPath, i, err)
		}
		t.teams[i] = team
	}
	return nil
}

func decodeTeam(meta *record.Record, buffer []byte) (*Team, error) {
	variant := VariantFor(meta.Flag("format", "has_moves"), meta.Flag("format", "has_item"))
	size := int(meta.Get("team_size"))
	schema := variant.Schema()

	if want := size * schema.Size(); len(buffer) != want {
		return nil, fmt.Errorf("%d members of %s need %d bytes, buffer has %d",
			size, variant, want, len(buffer))
	}

	team := &Team{Variant: variant}
	for m := 0; m < size; m++ {
		member, err := schema.Decode(buffer[m*schema.Size() : (m+1)*schema.Size()])
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", m, err)
		}
		team.Members = append(team.Members, member)
	}
	return team, nil
}

// WriteBack re-encodes the metadata and every team buffer, keeping
// each team in its trainer's declared shape. team_size is refreshed
// from the live member count so a step that grows or shrinks a
// roster cannot desynchronize the two containers.
func (t *Trainers) WriteBack(ctx *pipeline.Context) error {
	buffers := make([][]byte, len(t.teams))
	for i, team := range t.teams {
		meta, err := t.meta.Get(i)
		if err != nil {
			return err
		}
		meta.Set("team_size", int64(len(team.Members)))

		schema := team.Variant.Schema()
		buffer := make([]byte, 0, len(team.Members)*schema.Size())
		for m, member := range team.Members {
			b, err := schema.Encode(member)
			if err != nil {
				return fmt.Errorf("%s[%d] member %d: %w", TeamsPath, i, m, err)
			}
			buffer = append(buffer, b...)
		}
		buffers[i] = buffer
	}

	if err := t.meta.Persist(ctx); err != nil {
		return err
	}
	t.raw.Buffers = buffers
	return t.raw.Persist(ctx)
}

// Len returns the number of trainer ids.
func (t *Trainers) Len() int { return t.meta.Len() }

// Trainer returns the metadata record for a trainer id.
func (t *Trainers) Trainer(id int) (*record.Record, error) {
	return t.meta.Get(id)
}

// Team returns the decoded roster for a trainer id.
func (t *Trainers) Team(id int) (*Team, error) {
	if id < 0 || id >= len(t.teams) {
		return nil, &extract.RangeError{Table: TeamsPath, Index: id, Len: len(t.teams)}
	}
	return t.teams[id], nil
}
