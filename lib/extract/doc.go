// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package extract provides the base machinery for extractors: typed
// façades that own the decoded record list of one archive container.
//
// An extractor is a registry component. Its Build resolves a symbolic
// container path, reads every buffer, and decodes the lot up front —
// enrichment included — so by the time any step sees it, the whole
// table is in memory and addressable by domain id (record index).
// Writeback, where an extractor supports it at all, re-encodes the
// full list and replaces the container wholesale.
//
// Two access failures are deliberately distinct: an index outside the
// table is a *RangeError (the caller's arithmetic is wrong), while an
// index that is legal but holds no entry — an empty team buffer, a
// reserved id — is ErrNoEntry (a fact about the data). Collapsing the
// two hides bugs behind legitimate sparseness.
package extract
