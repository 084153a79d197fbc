// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package randomize holds the pipeline steps that actually rewrite
// game data: wild encounter tables and trainer rosters. Steps carry
// their policy knobs as plain struct fields, pull the extractors they
// need from the run context, and route every replacement decision
// through lib/decide so filtering, fallback, and tracing behave
// identically everywhere.
package randomize
