// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package nametable loads the flat display-name tables that enrich
// decoded records: one newline-delimited text file per domain, where
// the line index is the domain id. Multiple ids may legitimately
// share a display name (regional form variants do), so the reverse
// lookup is list-valued.
package nametable

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Table is one loaded name table.
type Table struct {
	name   string
	byID   []string
	byName map[string][]int
	logger *slog.Logger
}

// Load reads a newline-delimited name file. Empty lines are kept as
// positions (they hold an id with no name); a trailing newline does
// not create a phantom entry.
func Load(path string, logger *slog.Logger) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading name table: %w", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return New(path, lines, logger), nil
}

// New builds a table from in-memory lines. The name appears in
// warnings about ambiguous lookups.
func New(name string, lines []string, logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Table{
		name:   name,
		byID:   lines,
		byName: make(map[string][]int),
		logger: logger,
	}
	for id, line := range lines {
		if line == "" {
			continue
		}
		t.byName[line] = append(t.byName[line], id)
	}
	return t
}

// Len returns the number of id positions in the table.
func (t *Table) Len() int { return len(t.byID) }

// Name returns the display name for an id. ok is false for ids
// beyond the table or ids whose line is empty — the explicit "no
// name" marker. Whether that is acceptable is the caller's contract:
// extractors over dense domains fail fast on a missing name, sparse
// domains carry the marker through.
func (t *Table) Name(id int) (string, bool) {
	if id < 0 || id >= len(t.byID) || t.byID[id] == "" {
		return "", false
	}
	return t.byID[id], true
}

// IDs returns every id carrying the given display name, in id order.
func (t *Table) IDs(name string) []int { return t.byName[name] }

// Unique resolves a display name to a single id. When the name is
// ambiguous the lowest id wins and a warning is logged — callers that
// can handle multiplicity should use IDs instead.
func (t *Table) Unique(name string) (int, bool) {
	ids := t.byName[name]
	if len(ids) == 0 {
		return 0, false
	}
	if len(ids) > 1 {
		t.logger.Warn("ambiguous name in unique lookup",
			"table", t.name,
			"name", name,
			"ids", ids)
	}
	return ids[0], true
}
