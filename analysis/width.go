package analysis

import "math"

// width = (1 - correlation)*widthSlope + widthFloor, so L==R reads 0.25,
// uncorrelated reads 0.5 (same as mono) and L==-R reads 0.75
const (
	widthSlope   = 0.25
	widthFloor   = 0.25
	neutralWidth = 0.5
)

// WidthMeter accumulates L/R correlation sums between reads
type WidthMeter struct {
	sumLR   float64
	sumL2   float64
	sumR2   float64
	samples int
	epsilon float64
}

// NewWidthMeter creates an empty meter
func NewWidthMeter(epsilon float64) *WidthMeter {
	return &WidthMeter{epsilon: epsilon}
}

// Add accumulates one stereo sample pair
func (w *WidthMeter) Add(l, r float64) {
	w.sumLR += l * r
	w.sumL2 += l * l
	w.sumR2 += r * r
	w.samples++
}

// Correlation returns sum(L*R) / (sqrt(sum(L^2)*sum(R^2)) + eps), and false
// when no stereo samples were seen or both channels are silent.
func (w *WidthMeter) Correlation() (float64, bool) {
	if w.samples == 0 {
		return 0, false
	}
	norm := math.Sqrt(w.sumL2 * w.sumR2)
	if norm <= w.epsilon {
		return 0, false
	}
	return w.sumLR / (norm + w.epsilon), true
}

// Width maps the correlation to [0.25, 0.75]; mono or silent input reads 0.5
func (w *WidthMeter) Width() float64 {
	corr, ok := w.Correlation()
	if !ok {
		return neutralWidth
	}
	return clamp01((1-corr)*widthSlope + widthFloor)
}

// Samples returns the number of stereo pairs accumulated
func (w *WidthMeter) Samples() int {
	return w.samples
}

// Reset clears the sums
func (w *WidthMeter) Reset() {
	w.sumLR, w.sumL2, w.sumR2 = 0, 0, 0
	w.samples = 0
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
