// Package progress holds the numeric leaves of the metrics engine:
// percentage sanitizing, progress-bar banding and challenge extraction.
package progress

import "math"

// Rounding constants.
const (
	hundredths = 100
	// noiseScale absorbs binary representation error (42.345 is stored as
	// 42.34499...) before rounding to hundredths.
	noiseScale = 1e6
	// Beyond this magnitude float64 has no hundredths left to round and the
	// scaled intermediate could overflow.
	largeMagnitude = 1e12
)

// Round2 rounds x half away from zero to 2 decimal places.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) >= largeMagnitude {
		return x
	}
	scaled := math.Round(x*hundredths*noiseScale) / noiseScale
	return math.Round(scaled) / hundredths
}

// Valid reports whether x is a usable percentage: finite and non-negative.
func Valid(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && x >= 0
}

// Sanitize maps non-finite or negative input to 0 and rounds everything else
// to 2 decimals. There is no upper clamp: values above 100 are
// over-achievement.
func Sanitize(x float64) float64 {
	if !Valid(x) {
		return 0
	}
	return Round2(x)
}
