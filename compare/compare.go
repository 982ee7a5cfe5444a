// Package compare turns a target and a current timbre profile into a signed
// diff vector and the two most divergent dimensions.
package compare

import (
	"fmt"
	"math"
	"strings"

	"github.com/RyanBlaney/timbre-match/timbre"
	"gonum.org/v1/gonum/floats"
)

const (
	NoTargetText = "No target captured yet!"
	MatchedText  = "Sounds matched!"
)

// Result is an immutable comparison outcome
type Result struct {
	HasTarget bool
	Diff      [timbre.NumDimensions]float64
	Top       timbre.Dimension
	Second    timbre.Dimension
	Text      string
}

// NoTarget is the result reported while no capture is ready
func NoTarget() *Result {
	return &Result{
		Top:    timbre.None,
		Second: timbre.None,
		Text:   NoTargetText,
	}
}

// Compare computes diff[i] = target[i] - current[i] and ranks |diff|.
// Only dimensions with |diff| > threshold are suggested. The ranking is a
// single pass with strict comparisons, so lower indices win ties.
func Compare(target, current timbre.Profile, threshold float64) *Result {
	r := &Result{HasTarget: true, Top: timbre.None, Second: timbre.None}

	floats.SubTo(r.Diff[:], target[:], current[:])

	first, second := threshold, threshold
	for i, d := range r.Diff {
		a := math.Abs(d)
		switch {
		case a > first:
			r.Second, second = r.Top, first
			r.Top, first = timbre.Dimension(i), a
		case a > second:
			r.Second, second = timbre.Dimension(i), a
		}
	}

	r.Text = r.render()
	return r
}

// Suggestion describes one recommended move
func (r *Result) Suggestion(d timbre.Dimension) string {
	if !d.Valid() {
		return ""
	}
	diff := r.Diff[d]
	direction := "decrease"
	if diff > 0 {
		direction = "increase"
	}
	return fmt.Sprintf("%s: %s by %.2f", d.Label(), direction, math.Abs(diff))
}

func (r *Result) render() string {
	var lines []string
	for n, d := range []timbre.Dimension{r.Top, r.Second} {
		if d.Valid() {
			lines = append(lines, fmt.Sprintf("%d. %s", n+1, r.Suggestion(d)))
		}
	}
	if len(lines) == 0 {
		return MatchedText
	}
	return strings.Join(lines, "\n")
}

// DiffAt returns diff[i], or 0 for an out-of-range index
func (r *Result) DiffAt(i int) float64 {
	if r == nil || i < 0 || i >= timbre.NumDimensions {
		return 0
	}
	return r.Diff[i]
}

// Matched reports whether a target exists and nothing cleared the threshold
func (r *Result) Matched() bool {
	return r.HasTarget && !r.Top.Valid()
}
