package transform

import "math"

// Level derives a pokemon's level from its CP multiplier.
func Level(cpMultiplier float64) int {
	var level float64
	if cpMultiplier < 0.734 {
		level = 58.35178527*cpMultiplier*cpMultiplier - 2.838007664*cpMultiplier + 0.8539209906
	} else {
		level = 171.0112688*cpMultiplier - 95.20425243
	}
	return int(math.Round(level))
}
