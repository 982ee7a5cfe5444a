package analysis

import (
	"github.com/RyanBlaney/timbre-match/algorithms/spectral"
	"github.com/RyanBlaney/timbre-match/config"
	"github.com/RyanBlaney/timbre-match/timbre"
	"gonum.org/v1/gonum/floats"
)

// Ratios are the unscaled per-frame measurements. Averaging happens on these
// before the scale table is applied.
type Ratios struct {
	Brightness float64
	Body       float64
	Bite       float64
	Air        float64
	Flatness   float64
	Motion     float64
	HasMotion  bool
	Silent     bool
}

// binEdges are the FFT bins bounding the energy-ratio dimensions
type binEdges struct {
	brightFrom int
	bodyFrom   int
	bodyTo     int
	biteFrom   int
	biteTo     int
	airFrom    int
}

// Extractor turns frequency-domain frames into timbre profiles. One instance
// serves one frame size; the live and capture paths each own one, built from
// the same code so Current and Target stay comparable.
type Extractor struct {
	cfg        *config.EngineConfig
	frameSize  int
	nyquistBin int
	sampleRate float64
	edges      binEdges

	bands  *spectral.BandMap
	motion *MotionTracker

	magnitudes []float64 // bins 0..nyquist of the last frame
	power      []float64
	bandValues []float64

	// averaged mode
	sum          Ratios
	frames       int
	motionFrames int
	spectrumSum  []float64
}

// NewExtractor allocates every buffer for frameSize. Prepare must run before use.
func NewExtractor(cfg *config.EngineConfig, frameSize int) *Extractor {
	if cfg == nil {
		cfg = config.DefaultEngineConfig()
	}
	bins := frameSize/2 + 1
	return &Extractor{
		cfg:         cfg,
		frameSize:   frameSize,
		nyquistBin:  frameSize / 2,
		bands:       spectral.NewBandMap(cfg.NumBands, frameSize, cfg.MinBandFreq, cfg.MaxBandFreq),
		motion:      NewMotionTracker(cfg.NumBands, cfg.EnvelopeAttack, cfg.EnvelopeRelease),
		magnitudes:  make([]float64, bins),
		power:       make([]float64, bins),
		bandValues:  make([]float64, cfg.NumBands),
		spectrumSum: make([]float64, bins),
	}
}

// Prepare rebuilds the band map and bin edges for sampleRate and resets state
func (x *Extractor) Prepare(sampleRate float64) {
	x.sampleRate = sampleRate
	x.bands.Build(sampleRate)

	bin := func(hz float64) int {
		return spectral.FrequencyToBin(hz, x.frameSize, sampleRate)
	}
	b := x.cfg.Bands
	x.edges = binEdges{
		brightFrom: bin(b.BrightnessFrom),
		bodyFrom:   bin(b.BodyFrom),
		bodyTo:     bin(b.BodyTo),
		biteFrom:   bin(b.BiteFrom),
		biteTo:     bin(b.BiteTo),
		airFrom:    bin(b.AirFrom),
	}

	x.ResetSession()
	clear(x.magnitudes)
}

// Ready reports whether Prepare has built the band map
func (x *Extractor) Ready() bool {
	return x.bands.Ready()
}

// ResetSession forgets the previous frame so the next motion reads 0
func (x *Extractor) ResetSession() {
	x.motion.Reset()
	x.resetAverage()
}

// AnalyzeFrame measures one spectrum (bins 0..nyquist) and advances the
// motion tracker. Never allocates.
func (x *Extractor) AnalyzeFrame(coeffs []complex128) Ratios {
	var r Ratios
	if !x.bands.Ready() || len(coeffs) < x.nyquistBin+1 {
		return r
	}

	spectral.Magnitudes(x.magnitudes, coeffs[:x.nyquistBin+1])
	x.magnitudes[0] = 0 // DC is excluded from every measure
	for i, m := range x.magnitudes {
		x.power[i] = m * m
	}

	eps := x.cfg.Epsilon
	active := x.power[1:]
	total := floats.Sum(active)

	x.bands.MeanMagnitudes(x.bandValues, x.magnitudes)
	spectral.NormalizeDistribution(x.bandValues, eps)
	r.Motion, r.HasMotion = x.motion.Update(x.bandValues)

	if total <= eps {
		r.Silent = true
		return r
	}

	e := x.edges
	r.Brightness = spectral.RangeSum(x.power, max(e.brightFrom, 1), x.nyquistBin) / total
	r.Body = spectral.RangeSum(x.power, max(e.bodyFrom, 1), e.bodyTo) / total
	r.Bite = spectral.RangeSum(x.power, max(e.biteFrom, 1), e.biteTo) / total
	r.Air = spectral.RangeSum(x.power, max(e.airFrom, 1), x.nyquistBin) / total
	r.Flatness = spectral.Flatness(x.magnitudes[1:], eps)
	return r
}

// Profile applies the scale table to one frame's ratios
func (x *Extractor) Profile(r Ratios, width float64) timbre.Profile {
	return x.scale(r, width)
}

func (x *Extractor) scale(r Ratios, width float64) timbre.Profile {
	s := x.cfg.Scales
	var p timbre.Profile
	p[timbre.Brightness] = timbre.Clamp01(r.Brightness * s.Brightness)
	p[timbre.Body] = timbre.Clamp01(r.Body * s.Body)
	p[timbre.Bite] = timbre.Clamp01(r.Bite * s.Bite)
	p[timbre.Air] = timbre.Clamp01(r.Air * s.Air)
	p[timbre.Noise] = timbre.Clamp01(r.Flatness * s.Noise)
	if r.HasMotion {
		p[timbre.Motion] = timbre.Clamp01(r.Motion * s.Motion)
	}
	p[timbre.Width] = timbre.Clamp01(width)
	p[timbre.Space] = timbre.Clamp01(p[timbre.Air]*0.5 + (1-p[timbre.Motion])*0.3 + x.cfg.SpaceOffset)
	return p
}

// Accumulate adds one frame's ratios and magnitudes to the running average
func (x *Extractor) Accumulate(r Ratios) {
	x.sum.Brightness += r.Brightness
	x.sum.Body += r.Body
	x.sum.Bite += r.Bite
	x.sum.Air += r.Air
	x.sum.Flatness += r.Flatness
	if r.HasMotion {
		x.sum.Motion += r.Motion
		x.motionFrames++
	}
	floats.Add(x.spectrumSum, x.magnitudes)
	x.frames++
}

// Average returns the scaled profile of everything accumulated. With no
// frames the profile is all zero.
func (x *Extractor) Average(width float64) (timbre.Profile, int) {
	if x.frames == 0 {
		return timbre.Profile{}, 0
	}

	n := float64(x.frames)
	avg := Ratios{
		Brightness: x.sum.Brightness / n,
		Body:       x.sum.Body / n,
		Bite:       x.sum.Bite / n,
		Air:        x.sum.Air / n,
		Flatness:   x.sum.Flatness / n,
	}
	if x.motionFrames > 0 {
		avg.Motion = x.sum.Motion / float64(x.motionFrames)
		avg.HasMotion = true
	}
	return x.scale(avg, width), x.frames
}

// AverageSpectrum writes the mean magnitude spectrum, decimated to len(dst)
func (x *Extractor) AverageSpectrum(dst []float64) {
	if x.frames == 0 {
		clear(dst)
		return
	}
	// scale the accumulator in place; it is reset before the next capture anyway
	floats.Scale(1/float64(x.frames), x.spectrumSum)
	spectral.Decimate(dst, x.spectrumSum)
	floats.Scale(float64(x.frames), x.spectrumSum)
}

func (x *Extractor) resetAverage() {
	x.sum = Ratios{}
	x.frames = 0
	x.motionFrames = 0
	clear(x.spectrumSum)
}

// ExtractBuffer runs the averaged extractor over every full frame of samples.
// width comes from the caller since the buffer is mono.
func (x *Extractor) ExtractBuffer(bf *BufferFramer, samples []float64, width float64) (timbre.Profile, int) {
	x.ResetSession()
	for i := range bf.NumFrames(len(samples)) {
		x.Accumulate(x.AnalyzeFrame(bf.Transform(samples, i)))
	}
	return x.Average(width)
}

// Magnitudes returns the last analysed frame's magnitude spectrum
func (x *Extractor) Magnitudes() []float64 {
	return x.magnitudes
}

// Envelopes returns the smoothed band envelopes
func (x *Extractor) Envelopes() []float64 {
	return x.motion.Envelopes()
}

// Bands exposes the band map
func (x *Extractor) Bands() *spectral.BandMap {
	return x.bands
}

// FrameSize returns the analysis frame length
func (x *Extractor) FrameSize() int {
	return x.frameSize
}
