package spectral

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MeanAbsoluteDelta is the L1 spectral flux between two equal-length frames,
// divided by the frame length. Returns 0 on empty or mismatched input.
func MeanAbsoluteDelta(current, previous []float64) float64 {
	if len(current) == 0 || len(current) != len(previous) {
		return 0
	}

	sum := 0.0
	for i, v := range current {
		sum += math.Abs(v - previous[i])
	}
	return sum / float64(len(current))
}

// NormalizeDistribution rescales values in place so they sum to 1.
// When the sum is at or below epsilon the values are zeroed instead.
func NormalizeDistribution(values []float64, epsilon float64) {
	total := floats.Sum(values)
	if total <= epsilon {
		clear(values)
		return
	}
	floats.Scale(1/total, values)
}
