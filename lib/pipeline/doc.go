// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline provides the randomization context: a lazy,
// cycle-detecting singleton registry that wires extractors and steps
// together, and the sequential executor that runs a pipeline and
// persists the result.
//
// A [Context] owns at most one instance of each component type.
// [Get] returns the existing instance or constructs one on the spot,
// recursively constructing whatever the component's Build method asks
// for. Construction order is therefore demand-driven: a pipeline that
// never touches the move table never reads its container, and a
// malformed container only matters to runs that need it.
//
// Every consumer of a component sees the same instance, so a step
// that mutates a decoded record collection is mutating it for every
// later step. That sharing is the point: steps communicate through
// the record graph, not through return values.
//
// The executor runs steps strictly in the order given, one at a time.
// A step failure halts the run; nothing is written back unless the
// caller explicitly asks after a fully successful run.
package pipeline
