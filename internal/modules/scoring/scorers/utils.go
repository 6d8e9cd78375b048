package scorers

import "math"

// round3 rounds to 3 decimal places
func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

// safeRatio divides a by b, returning fallback when b is zero. The scoring
// models treat an uncomputable ratio as "no change" rather than a failure.
func safeRatio(a, b, fallback float64) float64 {
	if b == 0 {
		return fallback
	}
	return a / b
}
