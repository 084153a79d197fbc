// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package decide

import (
	"strings"

	"github.com/monforge/monforge/lib/pipeline"
)

// Path identifies what is being decided, purely for tracing and
// verbosity lookup. It never influences the decision itself.
type Path []string

// String renders the path with "/" separators, the form users write
// in verbosity overrides.
func (p Path) String() string { return strings.Join(p, "/") }

// At appends segments, for building slot-level paths from an area-
// level prefix without aliasing the prefix's backing array.
func (p Path) At(segments ...string) Path {
	out := make(Path, 0, len(p)+len(segments))
	out = append(out, p...)
	return append(out, segments...)
}

// Trace levels for the verbosity lookup. Warnings about kept
// originals appear at Warnings and above; per-decision summaries at
// Decisions; full candidate lists at Candidates.
const (
	Silent     = 0
	Warnings   = 1
	Decisions  = 2
	Candidates = 3
)

// Pick narrows candidates through the filter and selects one survivor
// uniformly at random from the context's seeded source.
//
// An empty narrowed list is not an error: the original value is
// returned unchanged and a warning is logged when the path's
// verbosity permits. This holds regardless of seed — fallback is a
// filtering outcome, not a random one.
func Pick[T any](ctx *pipeline.Context, path Path, original T, candidates []T, filter Filter[T]) T {
	level := ctx.Verbosity.Level(path)

	narrowed := filter.FilterAll(ctx, original, candidates)
	if level >= Candidates {
		ctx.Logger.Info("decision candidates",
			"path", path.String(),
			"before", candidates,
			"after", narrowed)
	}

	if len(narrowed) == 0 {
		if level >= Warnings {
			ctx.Logger.Warn("no candidates survived filtering; keeping original",
				"path", path.String(),
				"original", original,
				"filter", filter.Describe(),
				"candidates", len(candidates))
		}
		return original
	}

	chosen := narrowed[ctx.RNG.Intn(len(narrowed))]
	if level >= Decisions {
		ctx.Logger.Info("decision",
			"path", path.String(),
			"original", original,
			"chosen", chosen,
			"narrowed", len(narrowed),
			"of", len(candidates))
	}
	return chosen
}
