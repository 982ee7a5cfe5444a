package spectral

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// BandRange is an inclusive FFT bin range [Start, End]
type BandRange struct {
	Start int `json:"start_bin"`
	End   int `json:"end_bin"`
}

// Width returns the number of bins in the range
func (r BandRange) Width() int {
	return r.End - r.Start + 1
}

// BandMap partitions 1..nyquist into log-spaced perceptual bands.
// Ranges are only meaningful after Build; Ready guards against early reads.
type BandMap struct {
	numBands   int
	fftSize    int
	minFreq    float64
	maxFreq    float64
	sampleRate float64
	ranges     []BandRange
	ready      bool
}

// NewBandMap creates an unbuilt band map
func NewBandMap(numBands, fftSize int, minFreq, maxFreq float64) *BandMap {
	return &BandMap{
		numBands: numBands,
		fftSize:  fftSize,
		minFreq:  minFreq,
		maxFreq:  maxFreq,
		ranges:   make([]BandRange, numBands),
	}
}

// Build recomputes the ranges for sampleRate. Call again on every rate change.
func (b *BandMap) Build(sampleRate float64) {
	b.ready = false
	if sampleRate <= 0 || b.numBands <= 0 {
		return
	}

	nyquistBin := b.fftSize / 2
	fMax := math.Min(b.maxFreq, sampleRate/2)
	fMin := b.minFreq
	if fMin >= fMax {
		// absurdly low sample rates: keep three decades below the top
		fMin = fMax / 1000
	}

	clampBin := func(bin int) int {
		return max(1, min(nyquistBin, bin))
	}

	ratio := fMax / fMin
	for i := range b.numBands {
		t0 := float64(i) / float64(b.numBands)
		t1 := float64(i+1) / float64(b.numBands)

		f0 := fMin * math.Pow(ratio, t0)
		f1 := fMin * math.Pow(ratio, t1)

		start := clampBin(floorBin(f0, b.fftSize, sampleRate))
		end := clampBin(floorBin(f1, b.fftSize, sampleRate))
		if end <= start {
			end = min(start+1, nyquistBin)
		}
		b.ranges[i] = BandRange{Start: start, End: end}
	}

	// top band absorbs everything up to nyquist so the map covers 1..nyquist
	b.ranges[b.numBands-1].End = nyquistBin

	b.sampleRate = sampleRate
	b.ready = true
}

// Ready reports whether Build has run for the current sample rate
func (b *BandMap) Ready() bool {
	return b.ready
}

// Ranges returns the band ranges, or nil before Build
func (b *BandMap) Ranges() []BandRange {
	if !b.ready {
		return nil
	}
	return b.ranges
}

// NumBands returns the configured band count
func (b *BandMap) NumBands() int {
	return b.numBands
}

// SampleRate returns the rate the map was last built for
func (b *BandMap) SampleRate() float64 {
	return b.sampleRate
}

// MeanMagnitudes writes each band's mean magnitude into dst (len NumBands).
// Leaves dst zeroed when the map isn't ready.
func (b *BandMap) MeanMagnitudes(dst, magnitudes []float64) {
	if !b.ready {
		clear(dst)
		return
	}
	for i, r := range b.ranges {
		end := min(r.End, len(magnitudes)-1)
		if end < r.Start {
			dst[i] = 0
			continue
		}
		dst[i] = stat.Mean(magnitudes[r.Start:end+1], nil)
	}
}
