package common

// SlidingFIFO is the fixed-size overlap buffer behind the STFT framer.
// Push is O(1); Advance is O(windowSize). Nothing allocates after construction.
type SlidingFIFO struct {
	buffer     []float64
	windowSize int
	hopSize    int
	writePos   int
}

// NewSlidingFIFO creates a FIFO holding windowSize samples that slides by hopSize
func NewSlidingFIFO(windowSize, hopSize int) *SlidingFIFO {
	hopSize = max(1, min(hopSize, windowSize))
	return &SlidingFIFO{
		buffer:     make([]float64, windowSize),
		windowSize: windowSize,
		hopSize:    hopSize,
	}
}

// Push appends a sample and reports whether a full frame is now available.
// Callers must Advance before pushing again once Push returns true.
func (f *SlidingFIFO) Push(sample float64) bool {
	f.buffer[f.writePos] = sample
	f.writePos++
	return f.writePos >= f.windowSize
}

// Frame returns the buffered window. Valid until the next Push or Advance.
func (f *SlidingFIFO) Frame() []float64 {
	return f.buffer
}

// Advance shifts the buffer left by the hop, freeing the tail for new samples
func (f *SlidingFIFO) Advance() {
	if f.hopSize >= f.windowSize {
		f.writePos = 0
		return
	}
	remain := f.windowSize - f.hopSize
	copy(f.buffer, f.buffer[f.hopSize:])
	f.writePos = remain
}

// Reset clears the FIFO
func (f *SlidingFIFO) Reset() {
	f.writePos = 0
	clear(f.buffer)
}

// Buffered returns the number of samples currently held
func (f *SlidingFIFO) Buffered() int {
	return f.writePos
}

// WindowSize returns the window size
func (f *SlidingFIFO) WindowSize() int {
	return f.windowSize
}

// HopSize returns the hop size
func (f *SlidingFIFO) HopSize() int {
	return f.hopSize
}
