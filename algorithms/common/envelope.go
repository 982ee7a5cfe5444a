package common

// EnvelopeFollower is a per-channel one-pole attack/release smoother.
// Coefficients are applied once per Update call, so they are per-frame
// when driven by the STFT.
type EnvelopeFollower struct {
	attack  float64
	release float64
	values  []float64
}

// NewEnvelopeFollower creates a follower for n channels
func NewEnvelopeFollower(n int, attack, release float64) *EnvelopeFollower {
	return &EnvelopeFollower{
		attack:  attack,
		release: release,
		values:  make([]float64, n),
	}
}

// Update moves each envelope toward the matching input value
func (e *EnvelopeFollower) Update(input []float64) {
	for i := range e.values {
		if i >= len(input) {
			break
		}
		coeff := e.release
		if input[i] > e.values[i] {
			coeff = e.attack
		}
		e.values[i] += coeff * (input[i] - e.values[i])
	}
}

// Values returns the current envelopes. The slice is owned by the follower.
func (e *EnvelopeFollower) Values() []float64 {
	return e.values
}

// Reset zeroes every envelope
func (e *EnvelopeFollower) Reset() {
	clear(e.values)
}
