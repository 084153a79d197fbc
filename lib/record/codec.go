// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package record

import "fmt"

// Decode parses buf into a Record. The buffer length must equal the
// schema's fixed size exactly: a short or long buffer means the buffer
// is not what the schema claims it is, and decoding it anyway would
// silently misalign every following field.
func (s *Schema) Decode(buf []byte) (*Record, error) {
	if len(buf) != s.size {
		return nil, fmt.Errorf("schema %s: buffer is %d bytes, record is %d", s.name, len(buf), s.size)
	}
	r := newRecord(s)
	offset := 0
	for i, f := range s.fields {
		switch f := f.(type) {
		case Uint:
			r.values[f.Name] = int64(readUint(buf[offset:], f.Bytes))
		case Int:
			r.values[f.Name] = signExtend(readUint(buf[offset:], f.Bytes), f.Bytes)
		case Enum:
			r.values[f.Name] = int64(readUint(buf[offset:], f.Bytes))
		case Flags:
			r.values[f.Name] = int64(readUint(buf[offset:], f.Bytes))
		case Array:
			elems := make([]int64, f.Count)
			for j := range elems {
				elems[j] = int64(readUint(buf[offset+j*f.Bytes:], f.Bytes))
			}
			r.arrays[f.Name] = elems
		case Padding:
			region := make([]byte, f.Bytes)
			copy(region, buf[offset:])
			r.padding[i] = region
		case Computed:
			// Occupies no bytes; derived on read.
		}
		offset += f.width()
	}
	return r, nil
}

// Encode serializes the record's stored fields back to bytes. For any
// buffer accepted by Decode, Encode(Decode(buf)) == buf: padding and
// undeclared enum codes and flag bits all survive the round trip.
// Values mutated out of their field's representable range are an
// error, never a silent truncation.
func (s *Schema) Encode(r *Record) ([]byte, error) {
	if r.schema != s {
		return nil, fmt.Errorf("schema %s: record was decoded with schema %s", s.name, r.schema.name)
	}
	buf := make([]byte, s.size)
	offset := 0
	for i, f := range s.fields {
		switch f := f.(type) {
		case Uint, Enum, Flags:
			name, wdth := f.fieldName(), f.width()
			v := r.values[name]
			if v < 0 || (wdth < 8 && v >= 1<<(8*wdth)) {
				return nil, fmt.Errorf("schema %s: field %q: value %d does not fit in %d unsigned bytes", s.name, name, v, wdth)
			}
			writeUint(buf[offset:], uint64(v), wdth)
		case Int:
			v := r.values[f.Name]
			limit := int64(1) << (8*f.Bytes - 1)
			if v < -limit || v >= limit {
				return nil, fmt.Errorf("schema %s: field %q: value %d does not fit in %d signed bytes", s.name, f.Name, v, f.Bytes)
			}
			writeUint(buf[offset:], uint64(v), f.Bytes)
		case Array:
			elems := r.arrays[f.Name]
			if len(elems) != f.Count {
				return nil, fmt.Errorf("schema %s: array %q: %d elements, layout holds %d", s.name, f.Name, len(elems), f.Count)
			}
			for j, v := range elems {
				if v < 0 || (f.Bytes < 8 && v >= 1<<(8*f.Bytes)) {
					return nil, fmt.Errorf("schema %s: array %q[%d]: value %d does not fit in %d bytes", s.name, f.Name, j, v, f.Bytes)
				}
				writeUint(buf[offset+j*f.Bytes:], uint64(v), f.Bytes)
			}
		case Padding:
			copy(buf[offset:offset+f.Bytes], r.padding[i])
		case Computed:
			// Never written back.
		}
		offset += f.width()
	}
	return buf, nil
}

// readUint reads a little-endian unsigned integer of the given width.
func readUint(b []byte, width int) uint64 {
	var v uint64
	for i := 0; i < width; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

// writeUint writes a little-endian unsigned integer of the given width.
func writeUint(b []byte, v uint64, width int) {
	for i := 0; i < width; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// signExtend interprets the low width bytes of v as a two's complement
// signed integer.
func signExtend(v uint64, width int) int64 {
	shift := 64 - 8*width
	return int64(v<<shift) >> shift
}

// RunSchema describes a repeat-until-sentinel layout: a fixed-size
// element repeated until the designated field of an element equals the
// sentinel value, or the buffer runs out of whole elements.
type RunSchema struct {
	// Elem is the fixed-size element layout.
	Elem *Schema

	// SentinelField names the element field whose value terminates
	// the run.
	SentinelField string

	// Sentinel is the terminating value.
	Sentinel int64
}

// Run is a decoded repeat-until-sentinel buffer: the live elements,
// plus the raw bytes from the sentinel element onward. The trailer is
// written back verbatim so re-encoding an unmodified run reproduces
// the original buffer exactly, including whatever garbage the game
// left after the terminator.
type Run struct {
	Records []*Record
	Trailer []byte
}

// Decode parses buf as a run of elements. The buffer length must be a
// whole number of elements unless a sentinel terminates the run first.
func (s *RunSchema) Decode(buf []byte) (*Run, error) {
	if _, ok := s.Elem.Field(s.SentinelField); !ok {
		return nil, fmt.Errorf("run schema %s: no sentinel field %q", s.Elem.name, s.SentinelField)
	}
	run := &Run{}
	size := s.Elem.size
	rest := buf
	for len(rest) >= size {
		r, err := s.Elem.Decode(rest[:size])
		if err != nil {
			return nil, err
		}
		if r.Get(s.SentinelField) == s.Sentinel {
			run.Trailer = append([]byte(nil), rest...)
			return run, nil
		}
		run.Records = append(run.Records, r)
		rest = rest[size:]
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("run schema %s: %d trailing bytes do not form a whole %d-byte element", s.Elem.name, len(rest), size)
	}
	return run, nil
}

// Encode serializes the run's elements followed by its trailer. A run
// built from scratch without a trailer simply ends at the last
// element; callers appending to a decoded run keep its terminator for
// free because the trailer still holds it.
func (s *RunSchema) Encode(run *Run) ([]byte, error) {
	buf := make([]byte, 0, len(run.Records)*s.Elem.size+len(run.Trailer))
	for i, r := range run.Records {
		if r.Get(s.SentinelField) == s.Sentinel {
			return nil, fmt.Errorf("run schema %s: element %d carries the sentinel value %d; a decoder would truncate the run there", s.Elem.name, i, s.Sentinel)
		}
		b, err := s.Elem.Encode(r)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		buf = append(buf, b...)
	}
	return append(buf, run.Trailer...), nil
}
