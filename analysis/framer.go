package analysis

import (
	"github.com/RyanBlaney/timbre-match/algorithms/common"
	"github.com/RyanBlaney/timbre-match/algorithms/spectral"
	"github.com/RyanBlaney/timbre-match/algorithms/windowing"
)

// Framer is the streaming STFT: a sliding FIFO that windows and transforms a
// frame every hop. All buffers are sized at construction; Push never allocates.
type Framer struct {
	fifo   *common.SlidingFIFO
	window *windowing.Hann
	fft    *spectral.FFT
	work   []float64
	frames int
}

// NewFramer creates a streaming framer. frameSize must be a power of two.
func NewFramer(frameSize, hopSize int) *Framer {
	return &Framer{
		fifo:   common.NewSlidingFIFO(frameSize, hopSize),
		window: windowing.NewHann(frameSize),
		fft:    spectral.NewFFT(frameSize),
		work:   make([]float64, frameSize),
	}
}

// Push appends one sample. When a frame completes it returns the spectrum
// (bins 0..frameSize/2, owned by the framer) and true, then slides by the hop.
func (f *Framer) Push(sample float64) ([]complex128, bool) {
	if !f.fifo.Push(sample) {
		return nil, false
	}

	// sizes always match, ApplyTo cannot fail here
	_ = f.window.ApplyTo(f.work, f.fifo.Frame())
	coeffs := f.fft.Forward(f.work)
	f.fifo.Advance()
	f.frames++
	return coeffs, true
}

// Reset drops buffered samples
func (f *Framer) Reset() {
	f.fifo.Reset()
	f.frames = 0
}

// FrameSize returns the analysis frame length
func (f *Framer) FrameSize() int {
	return f.fifo.WindowSize()
}

// HopSize returns the hop between frames
func (f *Framer) HopSize() int {
	return f.fifo.HopSize()
}

// Frames returns how many frames have completed since the last Reset
func (f *Framer) Frames() int {
	return f.frames
}

// BufferFramer transforms whole frames of a finished buffer (the capture
// path). It shares the window/FFT code with Framer but not its FIFO.
type BufferFramer struct {
	frameSize int
	hopSize   int
	window    *windowing.Hann
	fft       *spectral.FFT
	work      []float64
}

// NewBufferFramer creates a framer for offline iteration
func NewBufferFramer(frameSize, hopSize int) *BufferFramer {
	return &BufferFramer{
		frameSize: frameSize,
		hopSize:   max(1, hopSize),
		window:    windowing.NewHann(frameSize),
		fft:       spectral.NewFFT(frameSize),
		work:      make([]float64, frameSize),
	}
}

// NumFrames returns how many full frames fit in n samples
func (b *BufferFramer) NumFrames(n int) int {
	if n < b.frameSize {
		return 0
	}
	return (n-b.frameSize)/b.hopSize + 1
}

// Transform windows and transforms frame i of samples. The returned
// spectrum is owned by the BufferFramer.
func (b *BufferFramer) Transform(samples []float64, i int) []complex128 {
	start := i * b.hopSize
	_ = b.window.ApplyTo(b.work, samples[start:start+b.frameSize])
	return b.fft.Forward(b.work)
}

// FrameSize returns the analysis frame length
func (b *BufferFramer) FrameSize() int {
	return b.frameSize
}
