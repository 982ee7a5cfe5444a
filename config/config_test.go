package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultEngineConfigIsValid(t *testing.T) {
	cfg := DefaultEngineConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.HopSize != cfg.FrameSize/4 {
		t.Errorf("live hop = %d, want frame/4 = %d", cfg.HopSize, cfg.FrameSize/4)
	}
	if cfg.CaptureHopSize != cfg.CaptureFrameSize/2 {
		t.Errorf("capture hop = %d, want frame/2 = %d", cfg.CaptureHopSize, cfg.CaptureFrameSize/2)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EngineConfig)
	}{
		{"non power of two frame", func(c *EngineConfig) { c.FrameSize = 1000 }},
		{"hop larger than frame", func(c *EngineConfig) { c.HopSize = c.FrameSize + 1 }},
		{"zero capture hop", func(c *EngineConfig) { c.CaptureHopSize = 0 }},
		{"no bands", func(c *EngineConfig) { c.NumBands = 0 }},
		{"inverted band range", func(c *EngineConfig) { c.MinBandFreq, c.MaxBandFreq = 100, 50 }},
		{"zero epsilon", func(c *EngineConfig) { c.Epsilon = 0 }},
		{"envelope above one", func(c *EngineConfig) { c.EnvelopeAttack = 1.5 }},
		{"negative threshold", func(c *EngineConfig) { c.SuggestionThreshold = -0.1 }},
		{"zero capture seconds", func(c *EngineConfig) { c.DefaultCaptureSeconds = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEngineConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.json")
	body := `{"frame_size": 1024, "hop_size": 256, "scales": {"brightness": 2.5}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.FrameSize != 1024 || cfg.HopSize != 256 {
		t.Errorf("frame/hop = %d/%d, want 1024/256", cfg.FrameSize, cfg.HopSize)
	}
	if cfg.Scales.Brightness != 2.5 {
		t.Errorf("brightness scale = %v, want 2.5", cfg.Scales.Brightness)
	}
	// untouched nested fields keep their defaults
	if cfg.Scales.Air != 8.0 {
		t.Errorf("air scale = %v, want default 8", cfg.Scales.Air)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"frame_size": 1000}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("LoadFile(bad) = %v, want ErrInvalidConfig", err)
	}
}
