// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

package gamedata

// TypeNames maps the game's internal type codes to display names.
// The codes are fixed by the game binary, not by any external table,
// so they live here as a constant rather than in a name table file.
var TypeNames = map[int64]string{
	0:  "normal",
	1:  "fighting",
	2:  "flying",
	3:  "poison",
	4:  "ground",
	5:  "rock",
	6:  "bug",
	7:  "ghost",
	8:  "steel",
	9:  "fire",
	10: "water",
	11: "grass",
	12: "electric",
	13: "psychic",
	14: "ice",
	15: "dragon",
	16: "dark",
}

// GrowthRateNames maps experience growth curve codes to names.
var GrowthRateNames = map[int64]string{
	0: "medium-fast",
	1: "erratic",
	2: "fluctuating",
	3: "medium-slow",
	4: "fast",
	5: "slow",
}
