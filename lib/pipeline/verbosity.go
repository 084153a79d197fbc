// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import "strings"

// Verbosity resolves a trace level for a decision path by
// longest-matching-prefix over lowercased path segments. It lets a
// user turn on detailed tracing for one subsystem ("gyms", or
// "encounters/route_1") without drowning the run in output from
// everything else.
type Verbosity struct {
	root         verbosityNode
	defaultLevel int
}

type verbosityNode struct {
	level    *int
	children map[string]*verbosityNode
}

// NewVerbosity creates a Verbosity whose unmatched paths resolve to
// defaultLevel.
func NewVerbosity(defaultLevel int) *Verbosity {
	return &Verbosity{defaultLevel: defaultLevel}
}

// SetDefault replaces the level used where no prefix override exists.
func (v *Verbosity) SetDefault(level int) { v.defaultLevel = level }

// Set assigns a level to a path prefix. Segments are matched
// case-insensitively. An empty prefix is equivalent to SetDefault.
func (v *Verbosity) Set(prefix []string, level int) {
	if len(prefix) == 0 {
		v.defaultLevel = level
		return
	}
	node := &v.root
	for _, segment := range prefix {
		key := strings.ToLower(segment)
		if node.children == nil {
			node.children = make(map[string]*verbosityNode)
		}
		child, ok := node.children[key]
		if !ok {
			child = &verbosityNode{}
			node.children[key] = child
		}
		node = child
	}
	node.level = &level
}

// Level resolves the trace level for a path: the level attached to
// the longest configured prefix of the path, or the default when no
// prefix matches.
func (v *Verbosity) Level(path []string) int {
	level := v.defaultLevel
	node := &v.root
	for _, segment := range path {
		child, ok := node.children[strings.ToLower(segment)]
		if !ok {
			break
		}
		if child.level != nil {
			level = *child.level
		}
		node = child
	}
	return level
}
