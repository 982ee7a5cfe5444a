package windowing

import (
	"fmt"

	"github.com/mjibson/go-dsp/window"
)

// Hann holds a precomputed Hann table so frame analysis only multiplies
type Hann struct {
	size         int
	coefficients []float64
}

// NewHann creates a Hann window of the given size (symmetric, go-dsp convention)
func NewHann(size int) *Hann {
	h := &Hann{size: size}
	switch {
	case size <= 0:
		h.coefficients = []float64{}
	case size == 1:
		h.coefficients = []float64{1}
	default:
		h.coefficients = window.Hann(size)
	}
	return h
}

// ApplyTo writes src*window into dst without allocating.
// Both slices must be exactly the window size.
func (h *Hann) ApplyTo(dst, src []float64) error {
	if len(dst) != h.size || len(src) != h.size {
		return fmt.Errorf("window size %d doesn't match dst %d / src %d", h.size, len(dst), len(src))
	}

	for i, c := range h.coefficients {
		dst[i] = src[i] * c
	}
	return nil
}

// ApplyInPlace applies the window to a signal in-place
func (h *Hann) ApplyInPlace(signal []float64) error {
	if len(signal) != h.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	for i, c := range h.coefficients {
		signal[i] *= c
	}
	return nil
}

// Coefficients returns a copy of the window table
func (h *Hann) Coefficients() []float64 {
	coeffs := make([]float64, len(h.coefficients))
	copy(coeffs, h.coefficients)
	return coeffs
}

// Size returns the window size
func (h *Hann) Size() int {
	return h.size
}
