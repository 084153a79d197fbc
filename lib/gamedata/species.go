// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package gamedata

import (
	"fmt"
	"path/filepath"

	"github.com/monforge/monforge/lib/extract"
	"github.com/monforge/monforge/lib/nametable"
	"github.com/monforge/monforge/lib/pipeline"
	"github.com/monforge/monforge/lib/record"
)

// SpeciesPath is the container holding one personal-data entry per
// species, indexed by species id. Entries past the canonical species
// count are alternate forms.
const SpeciesPath = "/a/0/1/6"

// SpeciesSchema is the per-species personal-data layout.
var SpeciesSchema = record.Must("species",
	record.Uint{Name: "hp", Bytes: 1},
	record.Uint{Name: "attack", Bytes: 1},
	record.Uint{Name: "defense", Bytes: 1},
	record.Uint{Name: "speed", Bytes: 1},
	record.Uint{Name: "special_attack", Bytes: 1},
	record.Uint{Name: "special_defense", Bytes: 1},
	record.Enum{Name: "type_1", Bytes: 1, Names: TypeNames},
	record.Enum{Name: "type_2", Bytes: 1, Names: TypeNames},
	record.Uint{Name: "catch_rate", Bytes: 1},
	record.Uint{Name: "evo_stage", Bytes: 1},
	record.Uint{Name: "ev_yield", Bytes: 2},
	record.Uint{Name: "item_1", Bytes: 2},
	record.Uint{Name: "item_2", Bytes: 2},
	record.Uint{Name: "gender_ratio", Bytes: 1},
	record.Uint{Name: "hatch_cycles", Bytes: 1},
	record.Uint{Name: "base_happiness", Bytes: 1},
	record.Enum{Name: "growth_rate", Bytes: 1, Names: GrowthRateNames},
	record.Uint{Name: "egg_group_1", Bytes: 1},
	record.Uint{Name: "egg_group_2", Bytes: 1},
	record.Uint{Name: "ability_1", Bytes: 1},
	record.Uint{Name: "ability_2", Bytes: 1},
	record.Uint{Name: "flee_rate", Bytes: 1},
	record.Uint{Name: "form_index", Bytes: 2},
	record.Uint{Name: "form_count", Bytes: 1},
	record.Padding{Bytes: 2},
	record.Uint{Name: "base_exp", Bytes: 2},
	record.Array{Name: "tm_flags", Bytes: 4, Count: 4},
	record.Computed{Name: "bst", Derive: func(r *record.Record) int64 {
		return r.Get("hp") + r.Get("attack") + r.Get("defense") +
			r.Get("speed") + r.Get("special_attack") + r.Get("special_defense")
	}},
)

// Species is the personal-data extractor. The species domain is
// dense: every canonical id must decode and must carry a display
// name, so a truncated container or a stale name table fails the
// build rather than producing nameless picks.
type Species struct {
	table extract.Table
	names *nametable.Table
}

// Build loads and decodes the personal-data container, then enriches
// from species.txt when the run has a data directory. Name coverage
// is checked eagerly: every canonical entry except the id-0
// placeholder needs a name. Form entries past the canonical count
// legitimately have none.
func (s *Species) Build(ctx *pipeline.Context) error {
	if err := s.table.Load(ctx, SpeciesPath, SpeciesSchema, extract.Options{}); err != nil {
		return err
	}
	if ctx.DataDir == "" {
		return nil
	}
	names, err := nametable.Load(filepath.Join(ctx.DataDir, "species.txt"), ctx.Logger)
	if err != nil {
		return err
	}
	canonical := min(names.Len(), s.table.Len())
	for id := 1; id < canonical; id++ {
		if _, ok := names.Name(id); !ok {
			return fmt.Errorf("species %d has no name in %s", id, filepath.Join(ctx.DataDir, "species.txt"))
		}
	}
	s.names = names
	return nil
}

// WriteBack re-encodes every species record into the container.
func (s *Species) WriteBack(ctx *pipeline.Context) error {
	return s.table.Persist(ctx)
}

// Len returns the number of entries, forms included.
func (s *Species) Len() int { return s.table.Len() }

// Canonical returns the number of canonical (base-form) species ids,
// including the id-0 placeholder. Without a name table every entry
// counts as canonical.
func (s *Species) Canonical() int {
	if s.names == nil {
		return s.table.Len()
	}
	return min(s.names.Len(), s.table.Len())
}

// Record returns the personal-data record for a flat index.
func (s *Species) Record(id int) (*record.Record, error) {
	return s.table.Get(id)
}

// Name returns the display name for a flat index, or "" when the
// table has none (form entries, or runs without a name table).
func (s *Species) Name(id int) string {
	if s.names == nil {
		return ""
	}
	name, _ := s.names.Name(id)
	return name
}

// BST returns the base stat total for a flat index.
func (s *Species) BST(id int) (int64, error) {
	r, err := s.table.Get(id)
	if err != nil {
		return 0, err
	}
	return r.Get("bst"), nil
}

// PrimaryType returns the display name of a species' first type.
func (s *Species) PrimaryType(id int) (string, error) {
	r, err := s.table.Get(id)
	if err != nil {
		return "", err
	}
	name, ok := r.EnumName("type_1")
	if !ok {
		return "", fmt.Errorf("species %d has unknown type code %d", id, r.Get("type_1"))
	}
	return name, nil
}

// Candidates returns every canonical species id eligible as a
// replacement pick: id 0 (the blank placeholder) and entries with a
// zero stat total are excluded, form entries are excluded because
// they are addressed through packed references, not directly.
func (s *Species) Candidates() []int {
	ids := make([]int, 0, s.Canonical())
	for id := 1; id < s.Canonical(); id++ {
		r := s.table.Records()[id]
		if r.Get("bst") == 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// FormShift is the bit position where packed species references keep
// the form number; the low bits keep the base species id.
const FormShift = 11

// Forms resolves packed species references. The mapping is
// data-driven: a species whose personal entry declares a nonzero
// form_index stores its alternate forms as form_count-1 extra
// entries starting at that flat index.
type Forms struct {
	Index *extract.FormIndex
}

// Build derives the form map from the species table.
func (f *Forms) Build(ctx *pipeline.Context) error {
	species, err := pipeline.Get[Species](ctx)
	if err != nil {
		return err
	}
	index := extract.NewFormIndex(FormShift)
	for id := 0; id < species.Canonical(); id++ {
		r, err := species.Record(id)
		if err != nil {
			return err
		}
		first := int(r.Get("form_index"))
		count := int(r.Get("form_count"))
		if first == 0 || count < 2 {
			continue
		}
		for form := 1; form < count; form++ {
			flat := first + form - 1
			if flat >= species.Len() {
				return fmt.Errorf("species %d form %d maps to flat index %d beyond table length %d", id, form, flat, species.Len())
			}
			index.Map(form, id, flat)
		}
	}
	f.Index = index
	return nil
}
