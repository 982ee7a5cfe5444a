package capture

import (
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/timbre-match/config"
	"github.com/RyanBlaney/timbre-match/timbre"
)

func newPrepared(t *testing.T, rate float64) *Controller {
	t.Helper()
	c := NewController(config.DefaultEngineConfig())
	c.Prepare(rate)
	return c
}

func tone(n int, freq, rate float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/rate))
	}
	return out
}

// feed pushes samples through Process in blocks of size block
func feed(c *Controller, left, right []float32, block int) {
	for start := 0; start < len(left); start += block {
		end := min(start+block, len(left))
		var r []float32
		if right != nil {
			r = right[start:end]
		}
		c.Process(left[start:end], r)
	}
}

func TestCaptureLengthAndCompletion(t *testing.T) {
	c := newPrepared(t, 48000)
	if _, err := c.Begin(2.0); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, total := c.Progress(); total != 96000 {
		t.Fatalf("capture length = %d, want 96000", total)
	}

	signal := tone(96000, 200, 48000)
	feed(c, signal[:95999], nil, 512)
	if c.HasTarget() {
		t.Fatal("target ready one sample early")
	}
	if written, _ := c.Progress(); written != 95999 {
		t.Errorf("written = %d, want 95999", written)
	}

	c.Process(signal[95999:], nil)
	if !c.HasTarget() {
		t.Fatal("target not ready after exactly 96000 samples")
	}

	target := c.Target()
	if target.Length != 96000 {
		t.Errorf("target length = %d", target.Length)
	}
	if got := target.Profile[timbre.Width]; got != 0.5 {
		t.Errorf("mono capture width = %v, want 0.5", got)
	}
	if target.Profile[timbre.Body] < 0.9 {
		t.Errorf("200 Hz capture body = %v, want near 1", target.Profile[timbre.Body])
	}
	if len(target.Spectrum) != 512 {
		t.Errorf("spectrum length = %d, want 512", len(target.Spectrum))
	}

	// stays ready through more audio until the next request
	feed(c, signal, nil, 1024)
	if !c.HasTarget() {
		t.Error("target lost without a new request")
	}
	if got := c.Status().Text(); got != "Target Captured" {
		t.Errorf("status = %q", got)
	}

	if _, err := c.Begin(1.0); err != nil {
		t.Fatal(err)
	}
	if c.HasTarget() {
		t.Error("target still ready after a new request")
	}
	if !c.TargetProfile().IsZero() {
		t.Error("TargetProfile should be zero while capturing")
	}
}

func TestRestartDiscardsPartialCapture(t *testing.T) {
	c := newPrepared(t, 48000)
	signal := tone(96000, 440, 48000)

	first, _ := c.Begin(2.0)
	feed(c, signal[:50000], nil, 500)

	second, _ := c.Begin(2.0)
	if second != first+1 {
		t.Errorf("generation = %d, want %d", second, first+1)
	}
	feed(c, signal[:46000], nil, 500)
	if c.HasTarget() {
		t.Fatal("abandoned capture's samples counted toward the new one")
	}
	if written, _ := c.Progress(); written != 46000 {
		t.Errorf("written = %d, want 46000", written)
	}

	feed(c, signal[:50000], nil, 500)
	if !c.HasTarget() {
		t.Fatal("restarted capture never completed")
	}
	if got := c.Target().Generation; got != second {
		t.Errorf("target generation = %d, want %d", got, second)
	}
}

func TestPrepareAbandonsCapture(t *testing.T) {
	tests := []struct {
		name    string
		adopted bool
	}{
		{"queued request", false},
		{"running capture", true},
	}
	for _, tt := range tests {
		c := newPrepared(t, 48000)
		gen, err := c.Begin(1.0)
		if err != nil {
			t.Fatal(err)
		}
		if tt.adopted {
			c.Process(tone(1000, 440, 48000), nil)
		}

		c.Prepare(96000)
		c.Process(tone(10, 440, 96000), nil)

		if state, g := c.State(); state != Idle || g != gen {
			t.Errorf("%s: state = %s gen %d after Prepare, want idle gen %d", tt.name, state, g, gen)
		}
		if written, total := c.Progress(); written != 0 || total != 0 {
			t.Errorf("%s: progress = %d/%d after Prepare, want 0/0", tt.name, written, total)
		}

		// a fresh request is sized for the new rate
		if _, err := c.Begin(1.0); err != nil {
			t.Fatal(err)
		}
		if _, total := c.Progress(); total != 96000 {
			t.Errorf("%s: capture length = %d, want 96000", tt.name, total)
		}
		feed(c, tone(96000, 440, 96000), nil, 1024)
		if !c.HasTarget() {
			t.Errorf("%s: capture at the new rate never completed", tt.name)
		}
	}
}

func TestTargetIsACopy(t *testing.T) {
	c := newPrepared(t, 48000)
	if _, err := c.Begin(0.25); err != nil {
		t.Fatal(err)
	}
	feed(c, tone(12000, 300, 48000), nil, 256)

	first := c.Target()
	if first == nil {
		t.Fatal("capture incomplete")
	}
	want := first.Spectrum[3]
	first.Spectrum[3] = -1
	first.Profile[timbre.Body] = -1

	again := c.Target()
	if again.Spectrum[3] != want {
		t.Errorf("spectrum[3] = %v after caller write, want %v", again.Spectrum[3], want)
	}
	if again.Profile[timbre.Body] == -1 {
		t.Error("caller write reached the published profile")
	}
}

func TestBeginRejectsBadDurations(t *testing.T) {
	c := NewController(nil)
	if _, err := c.Begin(1); !errors.Is(err, ErrNotPrepared) {
		t.Errorf("unprepared Begin: got %v, want ErrNotPrepared", err)
	}

	c.Prepare(48000)
	for _, seconds := range []float64{0, -1, math.NaN(), math.Inf(1), 1e-9} {
		if _, err := c.Begin(seconds); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("Begin(%v): got %v, want ErrInvalidDuration", seconds, err)
		}
	}
	if state, _ := c.State(); state != Idle {
		t.Errorf("state = %s after rejected requests, want idle", state)
	}
}

func TestStalledCaptureStaysCapturing(t *testing.T) {
	c := newPrepared(t, 48000)
	if _, err := c.Begin(2.0); err != nil {
		t.Fatal(err)
	}
	// no audio arrives
	if state, _ := c.State(); state != Capturing {
		t.Errorf("state = %s, want capturing", state)
	}
	if got := c.Status().Text(); got != "Capturing target... 2.0s" {
		t.Errorf("status = %q", got)
	}

	feed(c, tone(48000, 440, 48000), nil, 480)
	if got := c.Status().Text(); got != "Capturing: 50%" {
		t.Errorf("status = %q, want Capturing: 50%%", got)
	}
	if c.HasTarget() {
		t.Error("half-full capture reported ready")
	}
}

func TestStereoCaptureWidth(t *testing.T) {
	tests := []struct {
		name  string
		sign  float32
		right bool
		want  float64
	}{
		{"identical channels", 1, true, 0.25},
		{"inverted channels", -1, true, 0.75},
		{"mono", 1, false, 0.5},
	}
	for _, tt := range tests {
		c := newPrepared(t, 48000)
		left := tone(12000, 300, 48000)
		var right []float32
		if tt.right {
			right = make([]float32, len(left))
			for i, v := range left {
				right[i] = tt.sign * v
			}
		}
		if _, err := c.Begin(0.25); err != nil {
			t.Fatal(err)
		}
		feed(c, left, right, 256)
		if !c.HasTarget() {
			t.Fatalf("%s: capture incomplete", tt.name)
		}
		if got := c.TargetProfile()[timbre.Width]; math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("%s: width = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestShortCaptureYieldsZeroProfile(t *testing.T) {
	c := newPrepared(t, 48000)
	// 1000 samples is shorter than one 4096-sample analysis frame
	if _, err := c.Begin(1000.0 / 48000); err != nil {
		t.Fatal(err)
	}
	feed(c, tone(1000, 440, 48000), nil, 100)
	if !c.HasTarget() {
		t.Fatal("capture incomplete")
	}
	if p := c.TargetProfile(); !p.IsZero() {
		t.Errorf("profile = %v, want all zero", p)
	}
}

func TestStateWordRoundTrip(t *testing.T) {
	for _, gen := range []uint64{0, 1, 7, 1 << 40} {
		for _, s := range []State{Idle, Capturing, Ready} {
			g, st := unpack(pack(gen, s))
			if g != gen || st != s {
				t.Errorf("pack(%d, %s) unpacked to (%d, %s)", gen, s, g, st)
			}
		}
	}
}

func TestProcessDoesNotAllocate(t *testing.T) {
	c := newPrepared(t, 48000)
	if _, err := c.Begin(60); err != nil {
		t.Fatal(err)
	}
	left := tone(256, 440, 48000)
	right := tone(256, 440, 48000)
	c.Process(left, right) // adopt the request

	allocs := testing.AllocsPerRun(100, func() {
		c.Process(left, right)
	})
	if allocs != 0 {
		t.Errorf("Process allocated %v times per block", allocs)
	}
}
