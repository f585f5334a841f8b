package animation

import (
	"fmt"
	"strings"
)

// LoopDirection is the traversal order of a playback window.
type LoopDirection uint8

const (
	// LoopPositive plays the window from start to end on every cycle.
	LoopPositive LoopDirection = iota
	// LoopNegative plays the window from end to start on every cycle.
	LoopNegative
	// LoopPingPong alternates direction every cycle, beginning forwards.
	LoopPingPong
)

func (d LoopDirection) String() string {
	switch d {
	case LoopPositive:
		return "positive"
	case LoopNegative:
		return "negative"
	case LoopPingPong:
		return "pingpong"
	default:
		return fmt.Sprintf("LoopDirection(%d)", uint8(d))
	}
}

// LoopMode is a traversal direction plus a repeat budget. A mode with Forever set ignores Repeats.
type LoopMode struct {
	Direction LoopDirection
	Repeats   int
	Forever   bool
}

// Positive plays forwards n times and then stops.
func Positive(n int) LoopMode {
	return LoopMode{Direction: LoopPositive, Repeats: n}
}

// PositiveForever plays forwards indefinitely.
func PositiveForever() LoopMode {
	return LoopMode{Direction: LoopPositive, Forever: true}
}

// Negative plays backwards n times and then stops.
func Negative(n int) LoopMode {
	return LoopMode{Direction: LoopNegative, Repeats: n}
}

// NegativeForever plays backwards indefinitely.
func NegativeForever() LoopMode {
	return LoopMode{Direction: LoopNegative, Forever: true}
}

// PingPong plays n cycles alternating direction, starting forwards.
func PingPong(n int) LoopMode {
	return LoopMode{Direction: LoopPingPong, Repeats: n}
}

// PingPongForever alternates direction indefinitely.
func PingPongForever() LoopMode {
	return LoopMode{Direction: LoopPingPong, Forever: true}
}

// Once plays forwards a single time.
func Once() LoopMode {
	return Positive(1)
}

// ParseLoopMode builds a LoopMode from a direction name and a repeat count, where repeats <= 0 means forever.
//
// Parameters:
//   - direction: "positive", "negative", or "pingpong"
//   - repeats: the repeat budget
//
// Returns:
//   - LoopMode: the parsed mode
//   - error: error if the direction is unknown
func ParseLoopMode(direction string, repeats int) (LoopMode, error) {
	var d LoopDirection
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "positive", "forward":
		d = LoopPositive
	case "negative", "reverse":
		d = LoopNegative
	case "pingpong", "ping-pong":
		d = LoopPingPong
	default:
		return LoopMode{}, fmt.Errorf("unknown loop direction %q", direction)
	}
	if repeats <= 0 {
		return LoopMode{Direction: d, Forever: true}, nil
	}
	return LoopMode{Direction: d, Repeats: repeats}, nil
}

// Validate checks that a finite mode has a positive repeat budget.
func (m LoopMode) Validate() error {
	if m.Direction > LoopPingPong {
		return fmt.Errorf("unknown loop direction %d", m.Direction)
	}
	if !m.Forever && m.Repeats <= 0 {
		return fmt.Errorf("finite loop needs at least one repeat, got %d", m.Repeats)
	}
	return nil
}

// exhausted reports whether cycle lies beyond the repeat budget.
func (m LoopMode) exhausted(cycle int) bool {
	return !m.Forever && cycle >= m.Repeats
}

// forward reports whether the given zero-based cycle runs from window start to window end.
func (m LoopMode) forward(cycle int) bool {
	switch m.Direction {
	case LoopNegative:
		return false
	case LoopPingPong:
		return cycle%2 == 0
	default:
		return true
	}
}

func (m LoopMode) String() string {
	if m.Forever {
		return m.Direction.String() + "(forever)"
	}
	return fmt.Sprintf("%s(%d)", m.Direction, m.Repeats)
}
