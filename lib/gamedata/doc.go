// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package gamedata holds the concrete record layouts and extractors
// for the supported game: species stat entries, move data, trainer
// rosters with their team buffers, wild encounter areas, and
// evolution runs.
//
// Each extractor is a registry component (lib/pipeline.Builder): it
// loads and decodes its container on first demand, enriches records
// with display names where a name table is available, and, when it
// implements lib/pipeline.Writer, re-encodes its records during
// writeback. Layout knowledge lives here and nowhere else; steps see
// records and typed accessors, never raw bytes.
package gamedata
