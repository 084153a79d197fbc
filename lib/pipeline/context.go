// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"log/slog"
	"math/rand"
	"reflect"
	"strings"
)

// Archive is the byte-buffer boundary to the ROM image. The core
// never looks below it: a container is an ordered list of opaque
// buffers, resolved from a symbolic path. lib/rom implements it over
// an NDS image; tests implement it over a map.
type Archive interface {
	// Resolve maps a symbolic container path (e.g. "/a/0/1/6") to a
	// container id. Unknown paths are an error — no extractor may
	// operate on a partially loaded archive.
	Resolve(path string) (int, error)

	// ReadContainer returns the container's buffers in order.
	ReadContainer(id int) ([][]byte, error)

	// WriteContainer replaces the container's buffers wholesale.
	// Partial-container writes do not exist.
	WriteContainer(id int, buffers [][]byte) error
}

// Builder is the construction hook every registry-managed component
// implements on its pointer type. Build runs exactly once per
// Context, receives the Context as its only argument, and may call
// [Get] for anything it depends on.
type Builder interface {
	Build(ctx *Context) error
}

// Writer is implemented by components that can persist their decoded
// state back into the archive. [Context.WriteBack] invokes it on
// every constructed component that has it; read-only components
// simply don't implement it.
type Writer interface {
	WriteBack(ctx *Context) error
}

// Context is the shared state of one randomization run: the archive,
// the seeded random source, logging, trace verbosity, and the
// component registry.
//
// Context is single-threaded by design. The pipeline has no
// concurrent mutators, so the registry needs no locking, and the
// explicit *rand.Rand keeps "same seed, same steps, same output" a
// testable property instead of a hope about global state.
type Context struct {
	// Archive is the byte-buffer source and sink for this run.
	Archive Archive

	// RNG is the run's only source of randomness, seeded once at
	// startup.
	RNG *rand.Rand

	// Logger receives structured run logs (step boundaries,
	// writeback, warnings).
	Logger *slog.Logger

	// Verbosity gates decision tracing per path prefix.
	Verbosity *Verbosity

	// DataDir is the directory holding the flat external data the
	// extractors enrich from (name tables). Empty means the run has
	// no external data and any extractor requiring it fails loudly.
	DataDir string

	instances map[reflect.Type]any
	order     []reflect.Type
	building  map[reflect.Type]bool
	stack     []reflect.Type
}

// NewContext creates a Context over the given archive with a
// deterministic random source. A nil logger discards nothing — it
// defaults to slog.Default().
func NewContext(archive Archive, seed int64, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		Archive:   archive,
		RNG:       rand.New(rand.NewSource(seed)),
		Logger:    logger,
		Verbosity: NewVerbosity(0),
		instances: make(map[reflect.Type]any),
		building:  make(map[reflect.Type]bool),
	}
}

// CycleError reports a circular component dependency: Build of some
// type asked, directly or through intermediaries, for the type whose
// construction is already in progress.
type CycleError struct {
	// Type is the component whose construction re-entered.
	Type reflect.Type

	// Chain is the in-progress construction stack, outermost first,
	// ending with the re-entered type.
	Chain []reflect.Type
}

func (e *CycleError) Error() string {
	names := make([]string, 0, len(e.Chain)+1)
	for _, t := range e.Chain {
		names = append(names, t.String())
	}
	names = append(names, e.Type.String())
	return fmt.Sprintf("circular component dependency: %s", strings.Join(names, " -> "))
}

// Get returns the Context's singleton instance of T, constructing it
// (and, recursively, its dependencies) on first demand. Two calls
// with the same type always return the same pointer.
//
// A Build error propagates unwrapped in the chain: a missing
// container aborts the whole construction, never yields a partially
// built component. A construction cycle returns a *CycleError.
func Get[T any, P interface {
	*T
	Builder
}](ctx *Context) (*T, error) {
	key := reflect.TypeOf((*T)(nil))
	if inst, ok := ctx.instances[key]; ok {
		return inst.(*T), nil
	}
	if ctx.building[key] {
		return nil, &CycleError{Type: key, Chain: append([]reflect.Type(nil), ctx.stack...)}
	}

	ctx.building[key] = true
	ctx.stack = append(ctx.stack, key)
	instance := new(T)
	err := P(instance).Build(ctx)
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	delete(ctx.building, key)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", key, err)
	}

	ctx.instances[key] = instance
	ctx.order = append(ctx.order, key)
	return instance, nil
}

// MustGet is Get for call sites where a construction failure is a
// programming error (fixtures, enrichment of already-validated data).
func MustGet[T any, P interface {
	*T
	Builder
}](ctx *Context) *T {
	instance, err := Get[T, P](ctx)
	if err != nil {
		panic("pipeline: " + err.Error())
	}
	return instance
}

// WriteBack asks every constructed component that supports
// persistence to re-encode and write its records, in construction
// order. Components never demanded during the run were never read
// and are not written: laziness is part of the correctness contract,
// since a container irrelevant to this run may not even be
// well-formed.
func (ctx *Context) WriteBack() error {
	for _, key := range ctx.order {
		writer, ok := ctx.instances[key].(Writer)
		if !ok {
			continue
		}
		ctx.Logger.Info("writing back", "component", key.String())
		if err := writer.WriteBack(ctx); err != nil {
			return fmt.Errorf("writing back %s: %w", key, err)
		}
	}
	return nil
}

// Constructed reports how many components this context has built.
// Used by the CLI summary and by tests asserting laziness.
func (ctx *Context) Constructed() int { return len(ctx.order) }
