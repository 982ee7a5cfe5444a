package common

import (
	"math"
	"testing"
)

func TestSlidingFIFOFrameCount(t *testing.T) {
	const window, hop = 16, 4
	fifo := NewSlidingFIFO(window, hop)

	frames := 0
	total := 100
	for i := range total {
		if fifo.Push(float64(i)) {
			frames++
			fifo.Advance()
		}
	}

	// first frame after `window` samples, then one every `hop`
	want := (total-window)/hop + 1
	if frames != want {
		t.Errorf("frames = %d, want %d", frames, want)
	}
}

func TestSlidingFIFOOverlap(t *testing.T) {
	fifo := NewSlidingFIFO(4, 2)
	for i := range 4 {
		fifo.Push(float64(i))
	}
	fifo.Advance()
	if fifo.Buffered() != 2 {
		t.Fatalf("buffered = %d, want 2", fifo.Buffered())
	}

	fifo.Push(4)
	if !fifo.Push(5) {
		t.Fatal("expected frame after refilling the hop")
	}
	want := []float64{2, 3, 4, 5}
	for i, v := range fifo.Frame() {
		if v != want[i] {
			t.Errorf("frame[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestSlidingFIFONoOverlap(t *testing.T) {
	fifo := NewSlidingFIFO(4, 10) // hop clamps to window
	if fifo.HopSize() != 4 {
		t.Fatalf("hop = %d, want 4", fifo.HopSize())
	}
	for i := range 4 {
		fifo.Push(float64(i))
	}
	fifo.Advance()
	if fifo.Buffered() != 0 {
		t.Errorf("buffered = %d, want 0", fifo.Buffered())
	}

	fifo.Push(1)
	fifo.Reset()
	if fifo.Buffered() != 0 || fifo.Frame()[0] != 0 {
		t.Error("Reset should clear the FIFO")
	}
}

func TestEnvelopeFollower(t *testing.T) {
	env := NewEnvelopeFollower(2, 0.5, 0.25)

	env.Update([]float64{1, 0})
	if got := env.Values(); got[0] != 0.5 || got[1] != 0 {
		t.Fatalf("after attack: %v", got)
	}

	env.Update([]float64{0, 0})
	if got := env.Values()[0]; math.Abs(got-0.375) > 1e-12 {
		t.Errorf("after release: %v, want 0.375", got)
	}

	// short input leaves the remaining channels alone
	env.Update([]float64{1})
	if env.Values()[1] != 0 {
		t.Error("channel without input changed")
	}

	env.Reset()
	if env.Values()[0] != 0 {
		t.Error("Reset should zero envelopes")
	}
}
