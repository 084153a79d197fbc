// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/monforge/monforge/lib/pipeline"
	"github.com/monforge/monforge/lib/record"
)

// memArchive is an in-memory Archive: container ids are assigned in
// path sort-independent insertion order by the test.
type memArchive struct {
	paths   map[string]int
	storage map[int][][]byte
	writes  int
}

func newMemArchive() *memArchive {
	return &memArchive{paths: make(map[string]int), storage: make(map[int][][]byte)}
}

func (a *memArchive) add(path string, buffers [][]byte) {
	id := len(a.paths)
	a.paths[path] = id
	a.storage[id] = buffers
}

func (a *memArchive) Resolve(path string) (int, error) {
	id, ok := a.paths[path]
	if !ok {
		return 0, fmt.Errorf("no container at %q", path)
	}
	return id, nil
}

func (a *memArchive) ReadContainer(id int) ([][]byte, error) {
	buffers, ok := a.storage[id]
	if !ok {
		return nil, fmt.Errorf("no container %d", id)
	}
	// Hand out copies so extractor mutation can't alias storage.
	out := make([][]byte, len(buffers))
	for i, b := range buffers {
		out[i] = append([]byte(nil), b...)
	}
	return out, nil
}

func (a *memArchive) WriteContainer(id int, buffers [][]byte) error {
	if _, ok := a.storage[id]; !ok {
		return fmt.Errorf("no container %d", id)
	}
	a.storage[id] = buffers
	a.writes++
	return nil
}

func testContext(archive pipeline.Archive) *pipeline.Context {
	return pipeline.NewContext(archive, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var pairSchema = record.Must("pair",
	record.Uint{Name: "a", Bytes: 1},
	record.Uint{Name: "b", Bytes: 1},
)

func TestTableLoadAndGet(t *testing.T) {
	archive := newMemArchive()
	archive.add("/a/0/0/1", [][]byte{{1, 2}, {3, 4}, {5, 6}})
	ctx := testContext(archive)

	var table Table
	if err := table.Load(ctx, "/a/0/0/1", pairSchema, Options{}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("Len = %d, want 3", table.Len())
	}
	r, err := table.Get(1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got := r.Get("b"); got != 4 {
		t.Errorf("record 1 field b = %d, want 4", got)
	}

	_, err = table.Get(3)
	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) {
		t.Errorf("Get(3) = %v, want RangeError", err)
	}
	if _, err := table.Get(-1); !errors.As(err, &rangeErr) {
		t.Errorf("Get(-1) = %v, want RangeError", err)
	}
}

func TestTableLoadMissingPathIsFatal(t *testing.T) {
	ctx := testContext(newMemArchive())
	var table Table
	if err := table.Load(ctx, "/a/9/9/9", pairSchema, Options{}); err == nil {
		t.Error("Load succeeded for an unresolvable path")
	}
}

func TestTableLoadRejectsMalformedBuffer(t *testing.T) {
	archive := newMemArchive()
	archive.add("/a/0/0/1", [][]byte{{1, 2}, {3}})
	ctx := testContext(archive)
	var table Table
	if err := table.Load(ctx, "/a/0/0/1", pairSchema, Options{}); err == nil {
		t.Error("Load accepted a buffer shorter than the schema")
	}
}

func TestSparseTable(t *testing.T) {
	archive := newMemArchive()
	archive.add("/a/0/5/6", [][]byte{{1, 2}, {}, {5, 6}})
	ctx := testContext(archive)

	var dense Table
	if err := dense.Load(ctx, "/a/0/5/6", pairSchema, Options{}); err == nil {
		t.Error("dense Load accepted an empty buffer")
	}

	var sparse Table
	if err := sparse.Load(ctx, "/a/0/5/6", pairSchema, Options{SparseEmpty: true}); err != nil {
		t.Fatalf("sparse Load failed: %v", err)
	}
	_, err := sparse.Get(1)
	if !errors.Is(err, ErrNoEntry) {
		t.Errorf("Get(1) = %v, want ErrNoEntry", err)
	}
	var rangeErr *RangeError
	if errors.As(err, &rangeErr) {
		t.Error("absent entry misreported as out of range")
	}
}

func TestTablePersistRoundTrip(t *testing.T) {
	original := [][]byte{{1, 2}, {}, {250, 251}}
	archive := newMemArchive()
	archive.add("/a/0/5/6", original)
	ctx := testContext(archive)

	var table Table
	if err := table.Load(ctx, "/a/0/5/6", pairSchema, Options{SparseEmpty: true}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	// No mutation: writeback must be byte-identical.
	if err := table.Persist(ctx); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}
	for i, want := range original {
		if got := archive.storage[0][i]; !bytes.Equal(got, want) {
			t.Errorf("buffer %d = %x, want %x", i, got, want)
		}
	}

	// Mutate and persist again: only the touched field changes.
	r, err := table.Get(2)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	r.Set("a", 9)
	if err := table.Persist(ctx); err != nil {
		t.Fatalf("second Persist failed: %v", err)
	}
	if got := archive.storage[0][2]; !bytes.Equal(got, []byte{9, 251}) {
		t.Errorf("buffer 2 = %x, want 09fb", got)
	}
	if archive.writes != 2 {
		t.Errorf("writes = %d, want 2 (all-or-nothing per container)", archive.writes)
	}
}

func TestRunTable(t *testing.T) {
	elem := record.Must("evo",
		record.Uint{Name: "method", Bytes: 2},
		record.Uint{Name: "target", Bytes: 2},
	)
	schema := &record.RunSchema{Elem: elem, SentinelField: "method", Sentinel: 0}

	archive := newMemArchive()
	archive.add("/a/0/3/4", [][]byte{
		{4, 0, 2, 0, 0, 0, 0, 0}, // one evolution, then sentinel
		{},                       // no evolutions at all
	})
	ctx := testContext(archive)

	var table RunTable
	if err := table.Load(ctx, "/a/0/3/4", schema); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	run, err := table.Get(0)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(run.Records) != 1 || run.Records[0].Get("target") != 2 {
		t.Fatalf("run 0 decoded wrong: %+v", run.Records)
	}
	empty, err := table.Get(1)
	if err != nil {
		t.Fatalf("Get(1) failed: %v", err)
	}
	if len(empty.Records) != 0 {
		t.Errorf("empty buffer decoded %d records", len(empty.Records))
	}
	var rangeErr *RangeError
	if _, err := table.Get(2); !errors.As(err, &rangeErr) {
		t.Errorf("Get(2) = %v, want RangeError", err)
	}

	run.Records[0].Set("target", 7)
	if err := table.Persist(ctx); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}
	if got := archive.storage[0][0]; !bytes.Equal(got, []byte{4, 0, 7, 0, 0, 0, 0, 0}) {
		t.Errorf("persisted run = %x", got)
	}
}

func TestFormIndex(t *testing.T) {
	forms := NewFormIndex(11)
	forms.Map(1, 550, 650) // second form of species 550 stored at flat 650

	packed := forms.Pack(1, 550)
	if packed != 1<<11|550 {
		t.Fatalf("Pack = %#x", packed)
	}
	flat, err := forms.Resolve(packed)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if flat != 650 {
		t.Errorf("Resolve = %d, want 650", flat)
	}

	// Unpacked indices pass through untouched.
	flat, err = forms.Resolve(550)
	if err != nil || flat != 550 {
		t.Errorf("Resolve(550) = %d, %v; want 550 pass-through", flat, err)
	}

	// Structurally packed but unmapped: never truncate to the base.
	_, err = forms.Resolve(forms.Pack(2, 550))
	var unmapped *UnmappedFormError
	if !errors.As(err, &unmapped) {
		t.Fatalf("Resolve of unmapped form = %v, want UnmappedFormError", err)
	}
	if unmapped.Form != 2 || unmapped.Base != 550 {
		t.Errorf("error fields form %d base %d, want 2 and 550", unmapped.Form, unmapped.Base)
	}
}
