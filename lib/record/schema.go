// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package record

import "fmt"

// Field is one element of a record layout. Concrete field types are
// [Uint], [Int], [Enum], [Flags], [Array], [Padding], and [Computed].
type Field interface {
	// fieldName returns the field's name, or "" for anonymous
	// regions (padding).
	fieldName() string

	// width returns the number of bytes the field occupies in the
	// wire layout. Computed fields occupy zero bytes.
	width() int
}

// Uint is an unsigned little-endian integer of 1, 2, or 4 bytes.
type Uint struct {
	Name  string
	Bytes int
}

// Int is a signed (two's complement) little-endian integer of 1, 2,
// or 4 bytes.
type Int struct {
	Name  string
	Bytes int
}

// Enum is an unsigned integer carrying a symbolic name table. Codes
// without a table entry decode without error — the raw code is kept
// and [Record.EnumName] reports the name as unknown.
type Enum struct {
	Name  string
	Bytes int

	// Names maps wire codes to symbolic names. Multiple codes must
	// not share a name (SetEnumName needs an unambiguous reverse
	// mapping).
	Names map[int64]string
}

// Flags is an unsigned integer interpreted as a bitmask. Bits maps a
// bit position (0-based from the least significant bit) to a flag
// name. Undeclared bits are preserved across decode/encode so the
// round trip is lossless.
type Flags struct {
	Name  string
	Bytes int
	Bits  map[int]string
}

// Array is a fixed-count sequence of unsigned little-endian integers,
// each Bytes wide.
type Array struct {
	Name  string
	Bytes int
	Count int
}

// Padding is an anonymous byte region with no field semantics. The
// bytes are captured on decode and written back verbatim on encode;
// they are frequently not actually zero in shipped data.
type Padding struct {
	Bytes int
}

// Computed is a derived field: a pure function of the other fields of
// the same record. It occupies no bytes, is excluded from encode, and
// is re-evaluated on every read so mutations to its inputs are never
// observed stale.
type Computed struct {
	Name   string
	Derive func(*Record) int64
}

func (f Uint) fieldName() string     { return f.Name }
func (f Int) fieldName() string      { return f.Name }
func (f Enum) fieldName() string     { return f.Name }
func (f Flags) fieldName() string    { return f.Name }
func (f Array) fieldName() string    { return f.Name }
func (f Padding) fieldName() string  { return "" }
func (f Computed) fieldName() string { return f.Name }

func (f Uint) width() int     { return f.Bytes }
func (f Int) width() int      { return f.Bytes }
func (f Enum) width() int     { return f.Bytes }
func (f Flags) width() int    { return f.Bytes }
func (f Array) width() int    { return f.Bytes * f.Count }
func (f Padding) width() int  { return f.Bytes }
func (f Computed) width() int { return 0 }

// Schema is an ordered field layout for one record kind. Schemas are
// immutable after construction and safe to share.
type Schema struct {
	name   string
	fields []Field
	size   int
	byName map[string]Field
}

// New builds a Schema from the given fields, validating names and
// widths. The schema name appears in error messages and trace paths.
func New(name string, fields ...Field) (*Schema, error) {
	s := &Schema{
		name:   name,
		fields: fields,
		byName: make(map[string]Field, len(fields)),
	}
	for i, f := range fields {
		switch f := f.(type) {
		case Uint, Int, Enum, Flags:
			if w := f.width(); w != 1 && w != 2 && w != 4 {
				return nil, fmt.Errorf("schema %s: field %q: width %d (must be 1, 2, or 4 bytes)", name, f.fieldName(), w)
			}
		case Array:
			if f.Bytes != 1 && f.Bytes != 2 && f.Bytes != 4 {
				return nil, fmt.Errorf("schema %s: array %q: element width %d (must be 1, 2, or 4 bytes)", name, f.Name, f.Bytes)
			}
			if f.Count < 1 {
				return nil, fmt.Errorf("schema %s: array %q: count %d (must be at least 1)", name, f.Name, f.Count)
			}
		case Padding:
			if f.Bytes < 1 {
				return nil, fmt.Errorf("schema %s: padding at position %d: %d bytes (must be at least 1)", name, i, f.Bytes)
			}
		case Computed:
			if f.Derive == nil {
				return nil, fmt.Errorf("schema %s: computed field %q has no derive function", name, f.Name)
			}
		default:
			return nil, fmt.Errorf("schema %s: position %d: unsupported field type %T", name, i, f)
		}
		if n := f.fieldName(); n != "" {
			if _, dup := s.byName[n]; dup {
				return nil, fmt.Errorf("schema %s: duplicate field name %q", name, n)
			}
			s.byName[n] = f
		}
		s.size += f.width()
	}
	return s, nil
}

// Must builds a Schema and panics on a validation error. Schemas are
// package-level constants of the layout packages; a malformed one is
// a programming error, not a runtime condition.
func Must(name string, fields ...Field) *Schema {
	s, err := New(name, fields...)
	if err != nil {
		panic("record: " + err.Error())
	}
	return s
}

// Name returns the schema's name.
func (s *Schema) Name() string { return s.name }

// Size returns the fixed wire size of a record in bytes.
func (s *Schema) Size() int { return s.size }

// Field returns the descriptor for the named field.
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}
