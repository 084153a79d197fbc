// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package extract

import "fmt"

// FormIndex resolves bit-packed form indices. Some cross-references
// store more than a base id: the high bits carry a form number
// (seasonal variants, regional forms) and the low bits the base
// species id. Form records live as extra entries past the canonical
// species count, so a packed reference must be translated to its flat
// storage index before it can address the record list.
//
// Resolution never truncates: a structurally form-encoded index with
// no registered mapping is an error, because dropping the form bits
// would silently swap a variant for its base form.
type FormIndex struct {
	shift uint
	flat  map[packedKey]int
}

type packedKey struct {
	form int
	base int
}

// UnmappedFormError reports a packed index whose (form, base) pair
// has no entry in the form map.
type UnmappedFormError struct {
	Index int
	Form  int
	Base  int
}

func (e *UnmappedFormError) Error() string {
	return fmt.Sprintf("packed index %#x (form %d, base %d) has no form mapping", e.Index, e.Form, e.Base)
}

// NewFormIndex creates a resolver for references whose form number
// starts at the given bit position.
func NewFormIndex(shift uint) *FormIndex {
	return &FormIndex{shift: shift, flat: make(map[packedKey]int)}
}

// Map registers the flat storage index for a (form, base) pair. Form
// zero never needs a mapping — unpacked indices pass through.
func (f *FormIndex) Map(form, base, flat int) {
	f.flat[packedKey{form: form, base: base}] = flat
}

// Pack combines a form number and base id into a packed reference.
func (f *FormIndex) Pack(form, base int) int {
	return form<<f.shift | base
}

// Resolve translates a reference to a flat storage index. Unpacked
// indices (form bits zero) pass through unchanged; packed indices
// resolve through the form map or fail with *UnmappedFormError.
func (f *FormIndex) Resolve(index int) (int, error) {
	form := index >> f.shift
	if form == 0 {
		return index, nil
	}
	base := index & (1<<f.shift - 1)
	flat, ok := f.flat[packedKey{form: form, base: base}]
	if !ok {
		return 0, &UnmappedFormError{Index: index, Form: form, Base: base}
	}
	return flat, nil
}
