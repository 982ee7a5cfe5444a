package capture

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync/atomic"

	"github.com/RyanBlaney/timbre-match/analysis"
	"github.com/RyanBlaney/timbre-match/config"
	"github.com/RyanBlaney/timbre-match/timbre"
)

var (
	ErrInvalidDuration = errors.New("capture duration must be positive")
	ErrNotPrepared     = errors.New("capture controller not prepared")
)

// Target is an immutable captured reference. It is allocated by Begin and
// filled by the audio thread exactly once before publication.
type Target struct {
	Generation uint64
	Seconds    float64
	Length     int
	Frames     int
	Profile    timbre.Profile
	Spectrum   []float64
}

type request struct {
	generation uint64
	seconds    float64
	buffer     []float64
	target     *Target
	written    atomic.Int64
}

// Controller records a fixed-length mono buffer from the audio thread and
// turns it into a target profile. Commands (Begin, reads) may run on any
// goroutine; Process must only be called from the audio thread.
type Controller struct {
	word       atomic.Uint64
	pending    atomic.Pointer[request]
	latest     atomic.Pointer[request]
	published  atomic.Pointer[Target]
	sampleRate atomic.Uint64

	spectrumBins int

	// audio thread only
	active    *request
	width     *analysis.WidthMeter
	extractor *analysis.Extractor
	framer    *analysis.BufferFramer
}

// NewController builds a controller with its own capture-size extractor
func NewController(cfg *config.EngineConfig) *Controller {
	if cfg == nil {
		cfg = config.DefaultEngineConfig()
	}
	return &Controller{
		spectrumBins: cfg.SpectrumBins,
		width:        analysis.NewWidthMeter(cfg.Epsilon),
		extractor:    analysis.NewExtractor(cfg, cfg.CaptureFrameSize),
		framer:       analysis.NewBufferFramer(cfg.CaptureFrameSize, cfg.CaptureHopSize),
	}
}

// Prepare sets the sample rate. It must not run concurrently with Process.
func (c *Controller) Prepare(sampleRate float64) {
	c.sampleRate.Store(math.Float64bits(sampleRate))
	c.extractor.Prepare(sampleRate)
	c.width.Reset()

	// a running or still-queued capture was sized for the old rate
	c.pending.Store(nil)
	c.active = nil
	c.abandon()
}

// abandon drops a running capture back to idle, keeping its generation
func (c *Controller) abandon() {
	for {
		old := c.word.Load()
		gen, state := unpack(old)
		if state != Capturing {
			return
		}
		if c.word.CompareAndSwap(old, pack(gen, Idle)) {
			return
		}
	}
}

// Begin starts a new capture of seconds length, discarding any capture in
// progress. The target is not ready from the moment Begin returns.
func (c *Controller) Begin(seconds float64) (uint64, error) {
	if !(seconds > 0) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDuration, seconds)
	}
	rate := math.Float64frombits(c.sampleRate.Load())
	if rate <= 0 {
		return 0, ErrNotPrepared
	}
	length := int(math.Round(seconds * rate))
	if length <= 0 {
		return 0, fmt.Errorf("%w: %v s at %v Hz is zero samples", ErrInvalidDuration, seconds, rate)
	}

	req := &request{
		seconds: seconds,
		buffer:  make([]float64, length),
		target: &Target{
			Seconds:  seconds,
			Length:   length,
			Spectrum: make([]float64, c.spectrumBins),
		},
	}

	for {
		old := c.word.Load()
		gen, _ := unpack(old)
		req.generation = gen + 1
		if c.word.CompareAndSwap(old, pack(req.generation, Capturing)) {
			break
		}
	}
	req.target.Generation = req.generation

	c.latest.Store(req)
	c.pending.Store(req)
	return req.generation, nil
}

// Process feeds one block. right is nil for mono input. Never allocates.
func (c *Controller) Process(left, right []float32) {
	if next := c.pending.Swap(nil); next != nil {
		c.active = next
		c.width.Reset()
	}
	req := c.active
	if req == nil {
		return
	}

	pos := int(req.written.Load())
	n := min(len(left), len(req.buffer)-pos)
	for i := range n {
		l := float64(left[i])
		req.buffer[pos+i] = l
		if right != nil && i < len(right) {
			c.width.Add(l, float64(right[i]))
		}
	}
	pos += n
	req.written.Store(int64(pos))

	if pos < len(req.buffer) {
		return
	}
	c.active = nil
	c.finish(req)
}

func (c *Controller) finish(req *request) {
	width := c.width.Width()
	t := req.target
	t.Profile, t.Frames = c.extractor.ExtractBuffer(c.framer, req.buffer, width)
	c.extractor.AverageSpectrum(t.Spectrum)

	c.published.Store(t)
	// fails when a newer request superseded this one; its result is dropped
	c.word.CompareAndSwap(pack(req.generation, Capturing), pack(req.generation, Ready))
}

// HasTarget is true only once the latest requested capture has completed
func (c *Controller) HasTarget() bool {
	return c.ready() != nil
}

// Target returns a copy of the current generation's snapshot, or nil when
// none is ready. The published snapshot itself is never handed out.
func (c *Controller) Target() *Target {
	t := c.ready()
	if t == nil {
		return nil
	}
	out := *t
	out.Spectrum = slices.Clone(t.Spectrum)
	return &out
}

func (c *Controller) ready() *Target {
	gen, state := unpack(c.word.Load())
	if state != Ready {
		return nil
	}
	t := c.published.Load()
	if t == nil || t.Generation != gen {
		return nil
	}
	return t
}

// TargetProfile returns the ready target profile, or zeros
func (c *Controller) TargetProfile() timbre.Profile {
	if t := c.ready(); t != nil {
		return t.Profile
	}
	return timbre.Profile{}
}

// State returns the current phase and generation
func (c *Controller) State() (State, uint64) {
	gen, state := unpack(c.word.Load())
	return state, gen
}

// Status snapshots state and progress
func (c *Controller) Status() Status {
	gen, state := unpack(c.word.Load())
	s := Status{State: state, Generation: gen}
	if req := c.latest.Load(); req != nil && req.generation == gen && state != Idle {
		s.Written = int(req.written.Load())
		s.Total = len(req.buffer)
		s.Seconds = req.seconds
	}
	return s
}

// Progress returns samples written and total for the current capture
func (c *Controller) Progress() (written, total int) {
	s := c.Status()
	return s.Written, s.Total
}
