package spectral

import "math"

// FrequencyToBin maps a frequency to the nearest FFT bin.
// The frequency is clamped to [0, nyquist] first.
func FrequencyToBin(freqHz float64, fftSize int, sampleRate float64) int {
	if sampleRate <= 0 || fftSize <= 0 {
		return 0
	}
	nyquist := sampleRate / 2
	clamped := math.Max(0, math.Min(nyquist, freqHz))
	return int(math.Round(clamped * float64(fftSize) / sampleRate))
}

// BinToFrequency returns the centre frequency of bin
func BinToFrequency(bin, fftSize int, sampleRate float64) float64 {
	if fftSize <= 0 {
		return 0
	}
	return float64(bin) * sampleRate / float64(fftSize)
}

// floorBin is the truncating variant used for band boundaries
func floorBin(freqHz float64, fftSize int, sampleRate float64) int {
	nyquist := sampleRate / 2
	clamped := math.Max(0, math.Min(nyquist, freqHz))
	return int(math.Floor(clamped * float64(fftSize) / sampleRate))
}
