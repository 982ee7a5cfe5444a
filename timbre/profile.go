package timbre

import (
	"fmt"
	"math"
	"strings"
)

// Dimension indexes one perceptual axis of a Profile
type Dimension int

const (
	Brightness Dimension = iota
	Body
	Bite
	Air
	Noise
	Width
	Motion
	Space
)

// NumDimensions is the length of every profile and diff vector
const NumDimensions = 8

// None marks the absence of a suggestion
const None Dimension = -1

var dimensionNames = [NumDimensions]string{
	"brightness", "body", "bite", "air", "noise", "width", "motion", "space",
}

var dimensionLabels = [NumDimensions]string{
	"Bright", "Body", "Bite", "Air", "Noise", "Width", "Motion", "Space",
}

// Valid reports whether d indexes a profile entry
func (d Dimension) Valid() bool {
	return d >= 0 && d < NumDimensions
}

func (d Dimension) String() string {
	if !d.Valid() {
		return "none"
	}
	return dimensionNames[d]
}

// Label returns the short name used in suggestion text
func (d Dimension) Label() string {
	if !d.Valid() {
		return "None"
	}
	return dimensionLabels[d]
}

// ParseDimension accepts either the lowercase name or the label, case-insensitive
func ParseDimension(name string) (Dimension, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i := range NumDimensions {
		if name == dimensionNames[i] || name == strings.ToLower(dimensionLabels[i]) {
			return Dimension(i), nil
		}
	}
	return None, fmt.Errorf("unknown timbre dimension %q", name)
}

// Dimensions lists every dimension in index order
func Dimensions() []Dimension {
	dims := make([]Dimension, NumDimensions)
	for i := range dims {
		dims[i] = Dimension(i)
	}
	return dims
}

// Profile is the 8-dimensional timbre vector. Every entry is in [0,1].
type Profile [NumDimensions]float64

// Get returns the value for d, or 0 when d is out of range
func (p Profile) Get(d Dimension) float64 {
	if !d.Valid() {
		return 0
	}
	return p[d]
}

// Clamped returns a copy with every entry clamped to [0,1]
func (p Profile) Clamped() Profile {
	for i := range p {
		p[i] = Clamp01(p[i])
	}
	return p
}

// Valid reports whether every entry lies in [0,1]
func (p Profile) Valid() bool {
	for _, v := range p {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// IsZero reports whether every entry is exactly zero
func (p Profile) IsZero() bool {
	return p == Profile{}
}

func (p Profile) String() string {
	var sb strings.Builder
	for i, v := range p {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%s=%.3f", dimensionNames[i], v)
	}
	return sb.String()
}

// Clamp01 limits x to [0,1]. NaN maps to 0.
func Clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
