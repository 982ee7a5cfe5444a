package spectral

// Rolloff returns the frequency below which threshold (typically 0.85) of the
// spectrum's energy lies. Points are evenly spaced from 0 to maxFreq.
func Rolloff(spectrum []float64, maxFreq, threshold float64) float64 {
	n := len(spectrum)
	if n < 2 {
		return 0
	}

	totalEnergy := 0.0
	for _, m := range spectrum {
		totalEnergy += m * m
	}
	if totalEnergy == 0 {
		return 0
	}

	step := maxFreq / float64(n-1)
	target := threshold * totalEnergy
	cumulative := 0.0
	for i, m := range spectrum {
		cumulative += m * m
		if cumulative >= target {
			return float64(i) * step
		}
	}
	return maxFreq
}
