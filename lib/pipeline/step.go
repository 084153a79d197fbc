// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import "fmt"

// Step is one ordered unit of mutation in a randomization pipeline.
// A step holds its own configuration but no cross-run state; it runs
// exactly once, pulls whatever extractors it needs from the context,
// and mutates their records in place.
type Step interface {
	// Name identifies the step in logs and progress output.
	Name() string

	// Apply performs the step's mutation. An error halts the
	// remaining pipeline.
	Apply(ctx *Context) error
}

// Progress receives per-step completion during Run. index is the
// zero-based position of the step that just finished.
type Progress func(index, total int, name string)

// Run executes steps strictly sequentially in the order given. Each
// step is logged before it runs; progress (if non-nil) is reported
// after it completes. The first failure stops the run — there is no
// per-step recovery, because a half-applied pipeline must never be
// written back.
func (ctx *Context) Run(steps []Step, progress Progress) error {
	total := len(steps)
	for i, step := range steps {
		ctx.Logger.Info("running step", "step", step.Name(), "position", fmt.Sprintf("%d/%d", i+1, total))
		if err := step.Apply(ctx); err != nil {
			return fmt.Errorf("step %s: %w", step.Name(), err)
		}
		if progress != nil {
			progress(i, total, step.Name())
		}
	}
	return nil
}
