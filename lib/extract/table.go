// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"errors"
	"fmt"

	"github.com/monforge/monforge/lib/pipeline"
	"github.com/monforge/monforge/lib/record"
)

// ErrNoEntry reports an index that is within the table but holds no
// entry. Legitimate for sparse domains (empty team buffers, reserved
// ids); callers over dense domains should treat it as data corruption.
var ErrNoEntry = errors.New("no entry at this index")

// RangeError reports an index outside the table entirely.
type RangeError struct {
	Table string
	Index int
	Len   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0, %d)", e.Table, e.Index, e.Len)
}

// Container holds one archive container's raw buffers and remembers
// the path they were read from, so writeback lands in the same place.
type Container struct {
	Path    string
	id      int
	Buffers [][]byte
}

// Load resolves the path and reads the container. A path the archive
// cannot resolve is fatal: no extractor may operate on a partially
// loaded archive.
func (c *Container) Load(ctx *pipeline.Context, path string) error {
	id, err := ctx.Archive.Resolve(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	buffers, err := ctx.Archive.ReadContainer(id)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	c.Path = path
	c.id = id
	c.Buffers = buffers
	return nil
}

// Persist writes the current buffers back to the container the data
// was read from. All-or-nothing per container.
func (c *Container) Persist(ctx *pipeline.Context) error {
	if err := ctx.Archive.WriteContainer(c.id, c.Buffers); err != nil {
		return fmt.Errorf("writing %s: %w", c.Path, err)
	}
	return nil
}

// Options configures how a Table maps buffers to records.
type Options struct {
	// SparseEmpty permits zero-length buffers, which decode to an
	// absent entry (Get returns ErrNoEntry) instead of a length
	// mismatch. Dense tables leave this false so a truncated
	// container fails loudly.
	SparseEmpty bool
}

// Table is the common 1:1 extractor shape: every buffer in the
// container decodes to exactly one record with one schema, and the
// buffer position is the domain id.
type Table struct {
	container Container
	schema    *record.Schema
	records   []*record.Record
	options   Options
}

// Load reads and decodes the whole container. Called from a concrete
// extractor's Build, before any enrichment.
func (t *Table) Load(ctx *pipeline.Context, path string, schema *record.Schema, options Options) error {
	if err := t.container.Load(ctx, path); err != nil {
		return err
	}
	t.schema = schema
	t.options = options
	t.records = make([]*record.Record, len(t.container.Buffers))
	for i, buffer := range t.container.Buffers {
		if len(buffer) == 0 && options.SparseEmpty {
			continue
		}
		r, err := schema.Decode(buffer)
		if err != nil {
			return fmt.Errorf("%s[%d]: %w", path, i, err)
		}
		t.records[i] = r
	}
	return nil
}

// Path returns the container path this table was loaded from.
func (t *Table) Path() string { return t.container.Path }

// Schema returns the record schema.
func (t *Table) Schema() *record.Schema { return t.schema }

// Len returns the number of index positions.
func (t *Table) Len() int { return len(t.records) }

// Get returns the record at index. An index outside the table is a
// *RangeError; an index that exists but holds no entry (sparse
// tables only) is ErrNoEntry.
func (t *Table) Get(index int) (*record.Record, error) {
	if index < 0 || index >= len(t.records) {
		return nil, &RangeError{Table: t.container.Path, Index: index, Len: len(t.records)}
	}
	if t.records[index] == nil {
		return nil, fmt.Errorf("%s[%d]: %w", t.container.Path, index, ErrNoEntry)
	}
	return t.records[index], nil
}

// Records returns the live record list. Absent entries of sparse
// tables are nil.
func (t *Table) Records() []*record.Record { return t.records }

// Persist re-encodes every record and writes the container back.
// Concrete extractors that support writeback call this from their
// WriteBack method; read-only extractors simply never do.
func (t *Table) Persist(ctx *pipeline.Context) error {
	buffers := make([][]byte, len(t.records))
	for i, r := range t.records {
		if r == nil {
			buffers[i] = []byte{}
			continue
		}
		b, err := t.schema.Encode(r)
		if err != nil {
			return fmt.Errorf("%s[%d]: %w", t.container.Path, i, err)
		}
		buffers[i] = b
	}
	t.container.Buffers = buffers
	return t.container.Persist(ctx)
}

// RunTable is the extractor shape for repeat-until-sentinel record
// kinds: every buffer decodes to a variable-length run of elements.
type RunTable struct {
	container Container
	schema    *record.RunSchema
	runs      []*record.Run
}

// Load reads and decodes the whole container as runs.
func (t *RunTable) Load(ctx *pipeline.Context, path string, schema *record.RunSchema) error {
	if err := t.container.Load(ctx, path); err != nil {
		return err
	}
	t.schema = schema
	t.runs = make([]*record.Run, len(t.container.Buffers))
	for i, buffer := range t.container.Buffers {
		run, err := schema.Decode(buffer)
		if err != nil {
			return fmt.Errorf("%s[%d]: %w", path, i, err)
		}
		t.runs[i] = run
	}
	return nil
}

// Path returns the container path this table was loaded from.
func (t *RunTable) Path() string { return t.container.Path }

// Len returns the number of index positions.
func (t *RunTable) Len() int { return len(t.runs) }

// Get returns the run at index. Runs are never absent — an id with no
// elements is an empty run, which is data, not an error.
func (t *RunTable) Get(index int) (*record.Run, error) {
	if index < 0 || index >= len(t.runs) {
		return nil, &RangeError{Table: t.container.Path, Index: index, Len: len(t.runs)}
	}
	return t.runs[index], nil
}

// Runs returns the live run list.
func (t *RunTable) Runs() []*record.Run { return t.runs }

// Persist re-encodes every run and writes the container back.
func (t *RunTable) Persist(ctx *pipeline.Context) error {
	buffers := make([][]byte, len(t.runs))
	for i, run := range t.runs {
		b, err := t.schema.Encode(run)
		if err != nil {
			return fmt.Errorf("%s[%d]: %w", t.container.Path, i, err)
		}
		buffers[i] = b
	}
	t.container.Buffers = buffers
	return t.container.Persist(ctx)
}
