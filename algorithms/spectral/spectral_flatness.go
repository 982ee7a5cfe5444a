package spectral

import (
	"math"
)

// Flatness computes spectral flatness (Wiener entropy) of a magnitude spectrum
// as geometricMean(m+eps) / arithmeticMean(m+eps). Near 1 for noise, near 0
// for tonal content. Returns 0 when the raw arithmetic mean is below eps so
// silence doesn't read as white noise.
func Flatness(magnitudes []float64, epsilon float64) float64 {
	if len(magnitudes) == 0 {
		return 0
	}

	logSum := 0.0
	linSum := 0.0
	rawSum := 0.0
	for _, m := range magnitudes {
		rawSum += m
		m += epsilon
		logSum += math.Log(m)
		linSum += m
	}

	n := float64(len(magnitudes))
	if rawSum/n <= epsilon {
		return 0
	}

	geometricMean := math.Exp(logSum / n)
	arithmeticMean := linSum / n

	return math.Min(1, geometricMean/arithmeticMean)
}

// FlatnessInDB converts flatness to decibels, floored at -100 dB
func FlatnessInDB(flatness, epsilon float64) float64 {
	if flatness <= epsilon {
		return -100.0
	}
	return 10.0 * math.Log10(flatness)
}
