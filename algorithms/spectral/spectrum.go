package spectral

import "gonum.org/v1/gonum/floats"

// Decimate reduces a magnitude spectrum to len(dst) points spanning 0..nyquist.
// Each point averages its share of source bins; when the source is shorter
// than dst the nearest bin is repeated. Allocation-free.
func Decimate(dst, magnitudes []float64) {
	m := len(dst)
	n := len(magnitudes)
	if m == 0 {
		return
	}
	if n == 0 {
		clear(dst)
		return
	}

	for p := range m {
		lo := p * n / m
		hi := (p + 1) * n / m
		if hi <= lo {
			hi = lo + 1
		}
		dst[p] = floats.Sum(magnitudes[lo:hi]) / float64(hi-lo)
	}
}

// RangeSum sums values[from..to] inclusive, clamping the range to the slice.
// Returns 0 for an empty range.
func RangeSum(values []float64, from, to int) float64 {
	from = max(from, 0)
	to = min(to, len(values)-1)
	if to < from {
		return 0
	}
	return floats.Sum(values[from : to+1])
}
