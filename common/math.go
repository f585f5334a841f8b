package common

import (
	"errors"
	"fmt"
	"math"
)

const (
	// TicksPerSecond is the curve resolution: one source second maps to 1000 ticks.
	TicksPerSecond = 1000

	// MaxTick is the last representable frame index. Curves are capped at 65.535 seconds.
	MaxTick = math.MaxUint16
)

// ErrTickOutOfRange is returned when a source timestamp cannot be represented as a Tick.
var ErrTickOutOfRange = errors.New("timestamp out of tick range")

// SecondsToTick converts a source timestamp in seconds into a frame index using round(seconds * 1000).
//
// Parameters:
//   - seconds: the source timestamp
//
// Returns:
//   - Tick: the rounded frame index
//   - error: ErrTickOutOfRange if the timestamp is negative, NaN, or beyond MaxTick
func SecondsToTick(seconds float32) (Tick, error) {
	s := float64(seconds)
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0, fmt.Errorf("%w: %v", ErrTickOutOfRange, seconds)
	}
	ticks := math.Round(s * TicksPerSecond)
	if ticks < 0 || ticks > MaxTick {
		return 0, fmt.Errorf("%w: %v", ErrTickOutOfRange, seconds)
	}
	return Tick(ticks), nil
}

// TickToSeconds converts a frame index (or fractional frame) back into seconds.
//
// Parameters:
//   - frame: the frame position in ticks
//
// Returns:
//   - float32: the time in seconds
func TickToSeconds(frame float32) float32 {
	return frame / TicksPerSecond
}

// HermiteBasis returns the four cubic Hermite basis weights for the normalized parameter s in [0, 1].
// The result is used as h00*p0 + h10*dt*m0 + h01*p1 + h11*dt*m1.
//
// Parameters:
//   - s: the normalized position between the two bounding keyframes
//
// Returns:
//   - h00, h10, h01, h11: the basis weights
func HermiteBasis(s float32) (h00, h10, h01, h11 float32) {
	s2 := s * s
	s3 := s2 * s
	h00 = 2*s3 - 3*s2 + 1
	h10 = s3 - 2*s2 + s
	h01 = -2*s3 + 3*s2
	h11 = s3 - s2
	return
}

// Clamp01 limits v to the closed range [0, 1].
func Clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Coalesce returns the first of values that is not the zero value of T.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
