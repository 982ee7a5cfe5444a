package windowing

import (
	"math"
	"testing"
)

func TestHannShape(t *testing.T) {
	h := NewHann(1025)
	c := h.Coefficients()
	if len(c) != 1025 {
		t.Fatalf("len = %d, want 1025", len(c))
	}

	if math.Abs(c[0]) > 1e-12 || math.Abs(c[1024]) > 1e-12 {
		t.Errorf("endpoints = %v, %v, want 0", c[0], c[1024])
	}
	if math.Abs(c[512]-1) > 1e-12 {
		t.Errorf("centre = %v, want 1", c[512])
	}
	for i := range 512 {
		if math.Abs(c[i]-c[1024-i]) > 1e-12 {
			t.Fatalf("not symmetric at %d: %v vs %v", i, c[i], c[1024-i])
		}
	}
}

func TestHannApplyTo(t *testing.T) {
	h := NewHann(8)
	src := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	dst := make([]float64, 8)

	if err := h.ApplyTo(dst, src); err != nil {
		t.Fatal(err)
	}

	coeffs := h.Coefficients()
	for i := range src {
		if dst[i] != src[i]*coeffs[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], src[i]*coeffs[i])
		}
	}
	// src must be untouched
	if src[3] != 4 {
		t.Errorf("src modified: %v", src)
	}

	if err := h.ApplyTo(dst[:4], src); err == nil {
		t.Error("expected size mismatch error")
	}
}

func TestHannApplyInPlace(t *testing.T) {
	h := NewHann(4)
	sig := []float64{1, 1, 1, 1}
	if err := h.ApplyInPlace(sig); err != nil {
		t.Fatal(err)
	}
	for i, c := range h.Coefficients() {
		if sig[i] != c {
			t.Errorf("sig[%d] = %v, want %v", i, sig[i], c)
		}
	}
	if err := h.ApplyInPlace(make([]float64, 3)); err == nil {
		t.Error("expected size mismatch error")
	}
}

func TestHannDegenerateSizes(t *testing.T) {
	if NewHann(0).Size() != 0 {
		t.Error("size 0 window should be empty")
	}
	if c := NewHann(1).Coefficients(); len(c) != 1 || c[0] != 1 {
		t.Errorf("size 1 window = %v, want [1]", c)
	}
}
