package capture

import (
	"fmt"
	"strconv"
)

// State is the capture controller's phase
type State uint8

const (
	Idle State = iota
	Capturing
	Ready
)

const stateBits = 2

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// pack combines a generation and a state into the controller's single word
func pack(generation uint64, s State) uint64 {
	return generation<<stateBits | uint64(s)
}

func unpack(word uint64) (uint64, State) {
	return word >> stateBits, State(word & (1<<stateBits - 1))
}

// Status is a point-in-time view of the controller, read without locks
type Status struct {
	State      State
	Generation uint64
	Written    int
	Total      int
	Seconds    float64
}

// Percent is the truncated completion percentage of a running capture
func (s Status) Percent() int {
	if s.Total <= 0 {
		return 0
	}
	return s.Written * 100 / s.Total
}

// Text renders the status line shown to the user
func (s Status) Text() string {
	switch s.State {
	case Capturing:
		if s.Written == 0 {
			return "Capturing target... " + strconv.FormatFloat(s.Seconds, 'f', 1, 64) + "s"
		}
		return fmt.Sprintf("Capturing: %d%%", s.Percent())
	case Ready:
		return "Target Captured"
	default:
		return "Ready"
	}
}
