package spectral

// Centroid returns the magnitude-weighted mean frequency of a spectrum whose
// points are evenly spaced from 0 to maxFreq. Silent spectra return 0.
func Centroid(spectrum []float64, maxFreq float64) float64 {
	n := len(spectrum)
	if n < 2 {
		return 0
	}

	step := maxFreq / float64(n-1)
	numerator := 0.0
	denominator := 0.0
	for i, m := range spectrum {
		numerator += float64(i) * step * m
		denominator += m
	}

	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
