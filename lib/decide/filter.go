// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package decide

import (
	"fmt"
	"strings"

	"github.com/monforge/monforge/lib/pipeline"
)

// Filter narrows a candidate list for [Pick]. FilterAll must be a
// pure function of its arguments: same inputs, same survivors, no
// memory of prior decisions.
type Filter[T any] interface {
	// FilterAll returns the candidates that survive, preserving
	// input order.
	FilterAll(ctx *pipeline.Context, original T, candidates []T) []T

	// Describe returns a short human-readable description used in
	// empty-narrowing warnings.
	Describe() string
}

type predicate[T any] struct {
	desc string
	keep func(ctx *pipeline.Context, original, candidate T) bool
}

// Where keeps candidates for which the predicate holds. This is the
// base case every concrete rule (stat-total tolerance, type
// membership, banlists) is built from.
func Where[T any](desc string, keep func(ctx *pipeline.Context, original, candidate T) bool) Filter[T] {
	return predicate[T]{desc: desc, keep: keep}
}

func (f predicate[T]) FilterAll(ctx *pipeline.Context, original T, candidates []T) []T {
	var survivors []T
	for _, candidate := range candidates {
		if f.keep(ctx, original, candidate) {
			survivors = append(survivors, candidate)
		}
	}
	return survivors
}

func (f predicate[T]) Describe() string { return f.desc }

type allOf[T any] struct {
	filters []Filter[T]
}

// All narrows sequentially through each filter in order,
// short-circuiting once the list is empty. With pure predicates the
// final membership is order-independent; the order only shapes
// diagnostics.
func All[T any](filters ...Filter[T]) Filter[T] {
	return allOf[T]{filters: filters}
}

func (f allOf[T]) FilterAll(ctx *pipeline.Context, original T, candidates []T) []T {
	survivors := candidates
	for _, sub := range f.filters {
		if len(survivors) == 0 {
			return nil
		}
		survivors = sub.FilterAll(ctx, original, survivors)
	}
	return survivors
}

func (f allOf[T]) Describe() string {
	parts := make([]string, len(f.filters))
	for i, sub := range f.filters {
		parts[i] = sub.Describe()
	}
	return "all(" + strings.Join(parts, ", ") + ")"
}

type tiered[T any] struct {
	filters []Filter[T]
}

// Tiered tries each filter against the full original candidate list
// in order and uses the first non-empty result. It encodes "prefer
// strict constraint X, relax to Y if X is unsatisfiable" without the
// caller writing control flow.
func Tiered[T any](filters ...Filter[T]) Filter[T] {
	return tiered[T]{filters: filters}
}

func (f tiered[T]) FilterAll(ctx *pipeline.Context, original T, candidates []T) []T {
	for _, sub := range f.filters {
		if survivors := sub.FilterAll(ctx, original, candidates); len(survivors) > 0 {
			return survivors
		}
	}
	return nil
}

func (f tiered[T]) Describe() string {
	parts := make([]string, len(f.filters))
	for i, sub := range f.filters {
		parts[i] = sub.Describe()
	}
	return "tiered(" + strings.Join(parts, " | ") + ")"
}

type keep[T any] struct{}

// Keep passes every candidate through. Used where a step wants Pick's
// tracing and fallback behavior with no actual narrowing.
func Keep[T any]() Filter[T] { return keep[T]{} }

func (keep[T]) FilterAll(ctx *pipeline.Context, original T, candidates []T) []T {
	return candidates
}

func (keep[T]) Describe() string { return "keep all" }

// NotIn rejects candidates present in the excluded set. The set is
// consulted live, so a step can grow it between decisions to encode
// "don't reuse a choice already made elsewhere" — the bookkeeping
// stays with the step, per the purity contract.
func NotIn[T comparable](desc string, excluded map[T]bool) Filter[T] {
	return Where(desc, func(_ *pipeline.Context, _, candidate T) bool {
		return !excluded[candidate]
	})
}

// Range keeps candidates whose attribute falls within [low, high],
// inclusive on both ends.
func Range[T any](desc string, attr func(T) int64, low, high int64) Filter[T] {
	return Where(fmt.Sprintf("%s in [%d, %d]", desc, low, high), func(_ *pipeline.Context, _ T, candidate T) bool {
		v := attr(candidate)
		return v >= low && v <= high
	})
}

// MemberOf keeps candidates whose attribute is in the allowed set.
func MemberOf[T any, A comparable](desc string, attr func(T) A, allowed map[A]bool) Filter[T] {
	return Where(desc, func(_ *pipeline.Context, _ T, candidate T) bool {
		return allowed[attr(candidate)]
	})
}
