package analysis

import (
	"github.com/RyanBlaney/timbre-match/algorithms/common"
	"github.com/RyanBlaney/timbre-match/algorithms/spectral"
)

// MotionTracker remembers the previous frame's band distribution to measure
// frame-to-frame spectral change, and keeps smoothed per-band envelopes.
type MotionTracker struct {
	previous    []float64
	hasPrevious bool
	envelopes   *common.EnvelopeFollower
}

// NewMotionTracker creates a tracker for numBands bands
func NewMotionTracker(numBands int, attack, release float64) *MotionTracker {
	return &MotionTracker{
		previous:  make([]float64, numBands),
		envelopes: common.NewEnvelopeFollower(numBands, attack, release),
	}
}

// Update consumes the current normalised band energies. It returns the mean
// absolute delta against the previous frame and false on the first frame of
// a session.
func (m *MotionTracker) Update(bands []float64) (float64, bool) {
	delta, ok := 0.0, m.hasPrevious
	if ok {
		delta = spectral.MeanAbsoluteDelta(bands, m.previous)
	}

	copy(m.previous, bands)
	m.hasPrevious = true
	m.envelopes.Update(bands)
	return delta, ok
}

// Envelopes returns the smoothed band envelopes (owned by the tracker)
func (m *MotionTracker) Envelopes() []float64 {
	return m.envelopes.Values()
}

// HasPrevious reports whether a frame has been seen this session
func (m *MotionTracker) HasPrevious() bool {
	return m.hasPrevious
}

// Reset starts a new session
func (m *MotionTracker) Reset() {
	clear(m.previous)
	m.hasPrevious = false
	m.envelopes.Reset()
}
