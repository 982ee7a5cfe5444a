// Package engine wires the live analyser, the capture controller and the
// comparer behind a lock-free surface. Process runs on the audio thread;
// every other method is safe from any goroutine.
package engine

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/RyanBlaney/timbre-match/algorithms/spectral"
	"github.com/RyanBlaney/timbre-match/analysis"
	"github.com/RyanBlaney/timbre-match/capture"
	"github.com/RyanBlaney/timbre-match/compare"
	"github.com/RyanBlaney/timbre-match/config"
	"github.com/RyanBlaney/timbre-match/logging"
	"github.com/RyanBlaney/timbre-match/timbre"
)

var (
	ErrNotPrepared       = errors.New("engine not prepared")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrInvalidChannels   = errors.New("channel count must be at least 1")
)

// Engine is one analysis instance
type Engine struct {
	cfg    *config.EngineConfig
	logger logging.Logger

	prepared   atomic.Bool
	sampleRate atomic.Uint64
	channels   atomic.Int32

	// audio thread only
	framer          *analysis.Framer
	live            *analysis.Extractor
	width           *analysis.WidthMeter
	spectrumScratch []float64

	capture *capture.Controller

	// published
	current   [timbre.NumDimensions]atomic.Uint64
	spectrum  []atomic.Uint64
	envelopes []atomic.Uint64
	result    atomic.Pointer[compare.Result]
}

// New creates an engine. Every buffer is allocated here; Prepare only
// rebuilds rate-dependent tables.
func New(cfg *config.EngineConfig) *Engine {
	if cfg == nil {
		cfg = config.DefaultEngineConfig()
	}

	e := &Engine{
		cfg: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "engine",
		}),
		framer:          analysis.NewFramer(cfg.FrameSize, cfg.HopSize),
		live:            analysis.NewExtractor(cfg, cfg.FrameSize),
		width:           analysis.NewWidthMeter(cfg.Epsilon),
		spectrumScratch: make([]float64, cfg.SpectrumBins),
		capture:         capture.NewController(cfg),
		spectrum:        make([]atomic.Uint64, cfg.SpectrumBins),
		envelopes:       make([]atomic.Uint64, cfg.NumBands),
	}
	e.result.Store(compare.NoTarget())
	return e
}

// Prepare configures the engine for a stream. It must not run concurrently
// with Process; hosts call it before starting audio or after stopping it.
func (e *Engine) Prepare(sampleRate float64, channels int) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	if channels < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}

	e.prepared.Store(false)

	e.sampleRate.Store(math.Float64bits(sampleRate))
	e.channels.Store(int32(channels))
	e.framer.Reset()
	e.live.Prepare(sampleRate)
	e.width.Reset()
	e.capture.Prepare(sampleRate)

	for i := range e.current {
		e.current[i].Store(0)
	}
	clearAtomics(e.spectrum)
	clearAtomics(e.envelopes)

	e.prepared.Store(true)

	e.logger.Info("Engine prepared", logging.Fields{
		"sample_rate": sampleRate,
		"channels":    channels,
		"frame_size":  e.cfg.FrameSize,
		"hop_size":    e.cfg.HopSize,
		"bands":       len(e.live.Bands().Ranges()),
	})
	return nil
}

// Process consumes one block of planar input, channel 0 first. It never
// blocks, allocates or logs. Before Prepare it does nothing.
func (e *Engine) Process(block [][]float32) {
	if !e.prepared.Load() || len(block) == 0 {
		return
	}

	left := block[0]
	var right []float32
	if len(block) > 1 {
		right = block[1]
	}

	e.capture.Process(left, right)

	for i, s := range left {
		if right != nil && i < len(right) {
			e.width.Add(float64(s), float64(right[i]))
		}

		coeffs, ok := e.framer.Push(float64(s))
		if !ok {
			continue
		}

		p := e.live.Profile(e.live.AnalyzeFrame(coeffs), e.width.Width())
		e.width.Reset()
		e.publish(p)
	}
}

func (e *Engine) publish(p timbre.Profile) {
	for i, v := range p {
		e.current[i].Store(math.Float64bits(v))
	}

	spectral.Decimate(e.spectrumScratch, e.live.Magnitudes())
	storeAtomics(e.spectrum, e.spectrumScratch)
	storeAtomics(e.envelopes, e.live.Envelopes())
}

// BeginCapture starts or restarts a capture of the given length
func (e *Engine) BeginCapture(seconds float64) error {
	if !e.prepared.Load() {
		return ErrNotPrepared
	}
	gen, err := e.capture.Begin(seconds)
	if err != nil {
		e.logger.Warn("Capture request rejected", logging.Fields{
			"seconds": seconds,
			"error":   err.Error(),
		})
		return err
	}

	e.logger.Info("Capture started", logging.Fields{
		"seconds":    seconds,
		"generation": gen,
	})
	return nil
}

// HasTarget reports whether the latest requested capture has completed
func (e *Engine) HasTarget() bool {
	return e.capture.HasTarget()
}

// IsTargetReady is an alias of HasTarget
func (e *Engine) IsTargetReady() bool {
	return e.HasTarget()
}

// CurrentProfile reads the live profile. Dimensions are loaded one at a
// time, so a read racing a frame may mix two frames.
func (e *Engine) CurrentProfile() timbre.Profile {
	var p timbre.Profile
	for i := range e.current {
		p[i] = math.Float64frombits(e.current[i].Load())
	}
	return p
}

// TargetProfile returns the captured profile, or zeros when none is ready
func (e *Engine) TargetProfile() timbre.Profile {
	return e.capture.TargetProfile()
}

// CaptureStatus exposes the structured capture status
func (e *Engine) CaptureStatus() capture.Status {
	return e.capture.Status()
}

// StatusText renders the capture status for display
func (e *Engine) StatusText() string {
	return e.capture.Status().Text()
}

// PerformCompare diffs the ready target against the current profile and
// publishes the result. It reads only published values.
func (e *Engine) PerformCompare() *compare.Result {
	var r *compare.Result
	if t := e.capture.Target(); t != nil {
		r = compare.Compare(t.Profile, e.CurrentProfile(), e.cfg.SuggestionThreshold)
	} else {
		r = compare.NoTarget()
	}
	e.result.Store(r)
	return r
}

// LastResult returns the most recent comparison
func (e *Engine) LastResult() *compare.Result {
	return e.result.Load()
}

// Diff returns target[i]-current[i] from the last comparison; 0 out of range
func (e *Engine) Diff(i int) float64 {
	return e.result.Load().DiffAt(i)
}

// DiffArray returns the whole diff vector of the last comparison
func (e *Engine) DiffArray() [timbre.NumDimensions]float64 {
	return e.result.Load().Diff
}

// TopSuggestion is the most divergent dimension of the last comparison
func (e *Engine) TopSuggestion() timbre.Dimension {
	return e.result.Load().Top
}

// SecondSuggestion is the runner-up of the last comparison
func (e *Engine) SecondSuggestion() timbre.Dimension {
	return e.result.Load().Second
}

// CompareText is the rendered suggestion list of the last comparison
func (e *Engine) CompareText() string {
	return e.result.Load().Text
}

// SpectrumSnapshot copies the live magnitude spectrum (0..nyquist)
func (e *Engine) SpectrumSnapshot() []float64 {
	return loadAtomics(e.spectrum)
}

// TargetSpectrumSnapshot copies the captured average spectrum, or zeros
func (e *Engine) TargetSpectrumSnapshot() []float64 {
	out := make([]float64, e.cfg.SpectrumBins)
	if t := e.capture.Target(); t != nil {
		copy(out, t.Spectrum)
	}
	return out
}

// BandEnvelopes copies the smoothed per-band envelopes
func (e *Engine) BandEnvelopes() []float64 {
	return loadAtomics(e.envelopes)
}

// SampleRate returns the prepared sample rate, or 0
func (e *Engine) SampleRate() float64 {
	return math.Float64frombits(e.sampleRate.Load())
}

// Channels returns the prepared channel count, or 0
func (e *Engine) Channels() int {
	return int(e.channels.Load())
}

// Config returns the engine's configuration
func (e *Engine) Config() *config.EngineConfig {
	return e.cfg
}

func storeAtomics(dst []atomic.Uint64, src []float64) {
	for i := range min(len(dst), len(src)) {
		dst[i].Store(math.Float64bits(src[i]))
	}
}

func loadAtomics(src []atomic.Uint64) []float64 {
	out := make([]float64, len(src))
	for i := range src {
		out[i] = math.Float64frombits(src[i].Load())
	}
	return out
}

func clearAtomics(values []atomic.Uint64) {
	for i := range values {
		values[i].Store(0)
	}
}
