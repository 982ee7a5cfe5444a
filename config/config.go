package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/bits"
	"os"
)

// ErrInvalidConfig is wrapped by every Validate failure
var ErrInvalidConfig = errors.New("invalid engine config")

// FeatureScales holds the multiplicative constants that map raw ratios onto [0,1].
// They are tuned on typical musical material, not derived.
type FeatureScales struct {
	Brightness float64 `json:"brightness"`
	Body       float64 `json:"body"`
	Bite       float64 `json:"bite"`
	Air        float64 `json:"air"`
	Noise      float64 `json:"noise"`
	Motion     float64 `json:"motion"`
}

// FeatureBands holds the frequency edges (Hz) of the energy-ratio dimensions
type FeatureBands struct {
	BrightnessFrom float64 `json:"brightness_from"`
	BodyFrom       float64 `json:"body_from"`
	BodyTo         float64 `json:"body_to"`
	BiteFrom       float64 `json:"bite_from"`
	BiteTo         float64 `json:"bite_to"`
	AirFrom        float64 `json:"air_from"`
}

// EngineConfig configures analysis, capture and comparison
type EngineConfig struct {
	// Live (hop-driven) analysis
	FrameSize int `json:"frame_size"` // power of two
	HopSize   int `json:"hop_size"`

	// Captured-target analysis
	CaptureFrameSize int `json:"capture_frame_size"` // power of two
	CaptureHopSize   int `json:"capture_hop_size"`

	// Band mapping for motion and envelopes
	NumBands    int     `json:"num_bands"`
	MinBandFreq float64 `json:"min_band_freq"`
	MaxBandFreq float64 `json:"max_band_freq"`

	Epsilon     float64       `json:"epsilon"`
	Scales      FeatureScales `json:"scales"`
	Bands       FeatureBands  `json:"bands"`
	SpaceOffset float64       `json:"space_offset"`

	// Band envelope follower coefficients, per frame, in (0,1]
	EnvelopeAttack  float64 `json:"envelope_attack"`
	EnvelopeRelease float64 `json:"envelope_release"`

	SpectrumBins int `json:"spectrum_bins"`

	// A dimension is only suggested when |diff| exceeds this
	SuggestionThreshold float64 `json:"suggestion_threshold"`

	DefaultCaptureSeconds float64 `json:"default_capture_seconds"`
}

// DefaultEngineConfig returns the tuned defaults
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		FrameSize:        2048,
		HopSize:          512,
		CaptureFrameSize: 4096,
		CaptureHopSize:   2048,
		NumBands:         8,
		MinBandFreq:      20.0,
		MaxBandFreq:      20000.0,
		Epsilon:          1e-10,
		Scales: FeatureScales{
			Brightness: 3.0,
			Body:       5.0,
			Bite:       4.0,
			Air:        8.0,
			Noise:      2.0,
			Motion:     4.0,
		},
		Bands: FeatureBands{
			BrightnessFrom: 4000.0,
			BodyFrom:       100.0,
			BodyTo:         500.0,
			BiteFrom:       1000.0,
			BiteTo:         4000.0,
			AirFrom:        8000.0,
		},
		SpaceOffset:           0.1,
		EnvelopeAttack:        0.5,
		EnvelopeRelease:       0.1,
		SpectrumBins:          512,
		SuggestionThreshold:   0.0,
		DefaultCaptureSeconds: 2.0,
	}
}

// LoadFile reads a JSON config from path, layered over the defaults
func LoadFile(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := DefaultEngineConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural constraints the engine relies on
func (c *EngineConfig) Validate() error {
	if !isPowerOfTwo(c.FrameSize) || c.FrameSize < 64 {
		return fmt.Errorf("%w: frame_size must be a power of two >= 64, got %d", ErrInvalidConfig, c.FrameSize)
	}
	if c.HopSize <= 0 || c.HopSize > c.FrameSize {
		return fmt.Errorf("%w: hop_size must be in [1, frame_size], got %d", ErrInvalidConfig, c.HopSize)
	}
	if !isPowerOfTwo(c.CaptureFrameSize) || c.CaptureFrameSize < 64 {
		return fmt.Errorf("%w: capture_frame_size must be a power of two >= 64, got %d", ErrInvalidConfig, c.CaptureFrameSize)
	}
	if c.CaptureHopSize <= 0 || c.CaptureHopSize > c.CaptureFrameSize {
		return fmt.Errorf("%w: capture_hop_size must be in [1, capture_frame_size], got %d", ErrInvalidConfig, c.CaptureHopSize)
	}
	if c.NumBands <= 0 {
		return fmt.Errorf("%w: num_bands must be positive, got %d", ErrInvalidConfig, c.NumBands)
	}
	if c.MinBandFreq <= 0 || c.MaxBandFreq <= c.MinBandFreq {
		return fmt.Errorf("%w: band range [%g, %g] Hz is empty", ErrInvalidConfig, c.MinBandFreq, c.MaxBandFreq)
	}
	if c.Epsilon <= 0 {
		return fmt.Errorf("%w: epsilon must be positive", ErrInvalidConfig)
	}
	if c.EnvelopeAttack <= 0 || c.EnvelopeAttack > 1 || c.EnvelopeRelease <= 0 || c.EnvelopeRelease > 1 {
		return fmt.Errorf("%w: envelope coefficients must be in (0,1]", ErrInvalidConfig)
	}
	if c.SpectrumBins <= 0 {
		return fmt.Errorf("%w: spectrum_bins must be positive, got %d", ErrInvalidConfig, c.SpectrumBins)
	}
	if c.SuggestionThreshold < 0 {
		return fmt.Errorf("%w: suggestion_threshold must not be negative", ErrInvalidConfig)
	}
	if c.DefaultCaptureSeconds <= 0 {
		return fmt.Errorf("%w: default_capture_seconds must be positive", ErrInvalidConfig)
	}
	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}
