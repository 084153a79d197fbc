// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package record

import "fmt"

// Record is one decoded structured value. Fields are addressed by
// name; scalar values are held as int64 regardless of wire width.
// Records are mutable in place — every holder of the same Record sees
// every mutation — and are not safe for concurrent mutation (the
// pipeline is strictly sequential).
type Record struct {
	schema  *Schema
	values  map[string]int64
	arrays  map[string][]int64
	padding map[int][]byte
}

// newRecord allocates an empty record for the given schema. Decode
// fills it; NewRecord (below) zero-fills it for callers that build
// records from scratch.
func newRecord(s *Schema) *Record {
	return &Record{
		schema:  s,
		values:  make(map[string]int64),
		arrays:  make(map[string][]int64),
		padding: make(map[int][]byte),
	}
}

// NewRecord returns a record with every stored field zeroed. Useful
// for appending fresh entries to a table (e.g. a new evolution stage).
func NewRecord(s *Schema) *Record {
	r := newRecord(s)
	for i, f := range s.fields {
		switch f := f.(type) {
		case Uint, Int, Enum, Flags:
			r.values[f.fieldName()] = 0
		case Array:
			r.arrays[f.Name] = make([]int64, f.Count)
		case Padding:
			r.padding[i] = make([]byte, f.Bytes)
		}
	}
	return r
}

// Schema returns the schema this record was decoded with.
func (r *Record) Schema() *Schema { return r.schema }

// Get returns the named scalar field. Computed fields are derived on
// every call, so a mutation to an input field is always reflected.
// An unknown field name or a non-scalar field is a programming error
// and panics.
func (r *Record) Get(name string) int64 {
	f, ok := r.schema.byName[name]
	if !ok {
		panic(fmt.Sprintf("record: schema %s has no field %q", r.schema.name, name))
	}
	if c, ok := f.(Computed); ok {
		return c.Derive(r)
	}
	v, ok := r.values[name]
	if !ok {
		panic(fmt.Sprintf("record: schema %s: field %q is not a scalar", r.schema.name, name))
	}
	return v
}

// Set assigns the named scalar field. Setting a computed field is a
// programming error and panics: computed values exist only as
// derivations and are never stored or encoded.
func (r *Record) Set(name string, v int64) {
	f, ok := r.schema.byName[name]
	if !ok {
		panic(fmt.Sprintf("record: schema %s has no field %q", r.schema.name, name))
	}
	switch f.(type) {
	case Computed:
		panic(fmt.Sprintf("record: schema %s: field %q is computed and cannot be set", r.schema.name, name))
	case Array:
		panic(fmt.Sprintf("record: schema %s: field %q is an array; mutate the slice from Array()", r.schema.name, name))
	case Padding:
		panic(fmt.Sprintf("record: schema %s: field %q is padding", r.schema.name, name))
	}
	r.values[name] = v
}

// Array returns the live element slice of the named array field.
// Mutations to the returned slice are mutations of the record.
func (r *Record) Array(name string) []int64 {
	if _, ok := r.schema.byName[name].(Array); !ok {
		panic(fmt.Sprintf("record: schema %s: field %q is not an array", r.schema.name, name))
	}
	return r.arrays[name]
}

// EnumName resolves the named enum field's current code to its
// symbolic name. ok is false when the code has no table entry; the
// raw code stays available through Get and survives re-encoding.
func (r *Record) EnumName(name string) (symbol string, ok bool) {
	f, isEnum := r.schema.byName[name].(Enum)
	if !isEnum {
		panic(fmt.Sprintf("record: schema %s: field %q is not an enum", r.schema.name, name))
	}
	symbol, ok = f.Names[r.values[name]]
	return symbol, ok
}

// SetEnumName assigns the named enum field by symbolic name. Unknown
// symbols are an error: a caller naming a symbol that does not exist
// in the table has a stale table, which must not be papered over by
// writing an arbitrary code.
func (r *Record) SetEnumName(name, symbol string) error {
	f, isEnum := r.schema.byName[name].(Enum)
	if !isEnum {
		panic(fmt.Sprintf("record: schema %s: field %q is not an enum", r.schema.name, name))
	}
	for code, s := range f.Names {
		if s == symbol {
			r.values[name] = code
			return nil
		}
	}
	return fmt.Errorf("record: schema %s: enum %q has no symbol %q", r.schema.name, name, symbol)
}

// Flag reports whether the named declared bit is set in the named
// flags field.
func (r *Record) Flag(name, flag string) bool {
	bit, ok := r.flagBit(name, flag)
	if !ok {
		panic(fmt.Sprintf("record: schema %s: flags %q has no declared bit %q", r.schema.name, name, flag))
	}
	return r.values[name]&(1<<bit) != 0
}

// SetFlag sets or clears a declared bit in the named flags field.
// Undeclared bits are untouched.
func (r *Record) SetFlag(name, flag string, on bool) {
	bit, ok := r.flagBit(name, flag)
	if !ok {
		panic(fmt.Sprintf("record: schema %s: flags %q has no declared bit %q", r.schema.name, name, flag))
	}
	if on {
		r.values[name] |= 1 << bit
	} else {
		r.values[name] &^= 1 << bit
	}
}

func (r *Record) flagBit(name, flag string) (int, bool) {
	f, isFlags := r.schema.byName[name].(Flags)
	if !isFlags {
		panic(fmt.Sprintf("record: schema %s: field %q is not a flags field", r.schema.name, name))
	}
	for bit, s := range f.Bits {
		if s == flag {
			return bit, true
		}
	}
	return 0, false
}
