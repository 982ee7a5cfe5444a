package spectral

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FFT is a forward real FFT of fixed size with a reusable output buffer.
// Forward never allocates, so it is safe on the audio callback path.
type FFT struct {
	size   int
	plan   *fourier.FFT
	coeffs []complex128
}

// NewFFT creates a real FFT of the given size
func NewFFT(size int) *FFT {
	return &FFT{
		size:   size,
		plan:   fourier.NewFFT(size),
		coeffs: make([]complex128, size/2+1),
	}
}

// Forward transforms frame (len == Size) and returns the bins 0..Size/2.
// The returned slice is owned by the FFT and overwritten by the next call.
func (f *FFT) Forward(frame []float64) []complex128 {
	return f.plan.Coefficients(f.coeffs, frame)
}

// Size returns the transform length
func (f *FFT) Size() int {
	return f.size
}

// Bins returns the number of non-negative frequency bins (Size/2 + 1)
func (f *FFT) Bins() int {
	return len(f.coeffs)
}

// NyquistBin returns the index of the bin at half the sample rate
func (f *FFT) NyquistBin() int {
	return f.size / 2
}

// Magnitudes writes |coeffs[i]| into dst, which must be at least len(coeffs) long
func Magnitudes(dst []float64, coeffs []complex128) {
	for i, c := range coeffs {
		dst[i] = cmplx.Abs(c)
	}
}
