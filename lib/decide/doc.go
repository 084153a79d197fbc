// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package decide provides the selection primitive every randomization
// step uses instead of raw random choice, plus the filter combinators
// that narrow what it may choose from.
//
// A decision names a path (purely for tracing — "encounters/route_1/
// slot_3"), an original value, a candidate list, and a filter. The
// filter narrows the candidates; one survivor is picked uniformly at
// random from the context's seeded source. When nothing survives, the
// original value is kept and a warning is traced: losing one slot to
// an unsatisfiable constraint is an acceptable outcome, aborting a
// long run over it is not.
//
// Filters are pure predicates over (context, original, candidate).
// They carry no history — a constraint like "don't reuse a choice
// made elsewhere" belongs to the calling step's own bookkeeping,
// typically a live exclusion set passed to [NotIn].
package decide
