// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package record provides the declarative binary record codec.
//
// Game data lives in fixed-layout little-endian records inside archive
// containers. A [Schema] describes one record kind as an ordered list
// of field descriptors; byte offsets are never written down — they are
// the cumulative widths of the preceding fields, so reordering fields
// changes the wire layout.
//
// Decoding a buffer with a schema produces a [Record] whose fields are
// addressable by name. Encoding is the exact byte-for-byte inverse for
// every stored field: enumeration codes with no symbolic name and flag
// bits with no declared meaning are preserved rather than rejected,
// because shipped game data routinely contains values newer than any
// table this tool was authored against.
//
// Computed fields are derivations over the stored fields of the same
// record (base stat totals and the like). They are evaluated on every
// read and never written back, so a mutation to an input field is
// visible on the next read without an explicit invalidation step.
//
// A few record kinds (evolution chains, some script-adjacent tables)
// are not fixed-length: they repeat a fixed-size element until a
// sentinel value appears. [RunSchema] handles those, preserving the
// sentinel and any trailing bytes so re-encoding is lossless.
package record
