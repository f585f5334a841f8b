// Package curve holds baked, fixed-resolution keyframe curves and the ingest step that produces them
// from raw sampler streams.
package curve

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

var (
	// ErrUnsupportedChannelKind is returned for channel outputs the engine does not model, such as morph target weights.
	ErrUnsupportedChannelKind = errors.New("unsupported channel kind")

	// ErrMalformedKeyframeStream is returned when a keyframe stream cannot be baked: empty input,
	// mismatched value counts, or timestamps that are not strictly increasing.
	ErrMalformedKeyframeStream = errors.New("malformed keyframe stream")
)

// Interpolation selects how a curve is evaluated between keyframes.
type Interpolation uint8

const (
	// InterpolationStep holds the value of the last keyframe at or before the sampled frame.
	InterpolationStep Interpolation = iota
	// InterpolationLinear interpolates linearly between the two bounding keyframes (spherically for rotations).
	InterpolationLinear
	// InterpolationCubicSpline evaluates a cubic Hermite segment using the keyframes' tangents.
	InterpolationCubicSpline
)

func (i Interpolation) String() string {
	switch i {
	case InterpolationStep:
		return "STEP"
	case InterpolationLinear:
		return "LINEAR"
	case InterpolationCubicSpline:
		return "CUBICSPLINE"
	default:
		return fmt.Sprintf("Interpolation(%d)", uint8(i))
	}
}

// ParseInterpolation converts a sampler interpolation name into an Interpolation.
// An empty name yields InterpolationLinear, the glTF default.
//
// Parameters:
//   - s: the interpolation name ("STEP", "LINEAR", "CUBICSPLINE")
//
// Returns:
//   - Interpolation: the parsed mode
//   - error: error if the name is unknown
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "LINEAR":
		return InterpolationLinear, nil
	case "STEP":
		return InterpolationStep, nil
	case "CUBICSPLINE":
		return InterpolationCubicSpline, nil
	default:
		return 0, fmt.Errorf("unknown interpolation %q", s)
	}
}

// Keyframe is a single baked sample. InTangent and OutTangent are only meaningful for cubic spline curves.
type Keyframe[V Value[V]] struct {
	Frame      common.Tick
	Value      V
	InTangent  V
	OutTangent V
}

// RawKeyframe is a keyframe flattened into components, independent of the value type.
type RawKeyframe struct {
	Frame      common.Tick
	Value      [4]float32
	InTangent  [4]float32
	OutTangent [4]float32
}

// Curve is the type-erased view of a baked curve that caches, bindings, and playback work with.
type Curve interface {
	// Interpolation returns the evaluation strategy of the curve.
	//
	// Returns:
	//   - Interpolation: the interpolation mode
	Interpolation() Interpolation

	// Len returns the number of keyframes.
	//
	// Returns:
	//   - int: the keyframe count
	Len() int

	// StartFrame returns the frame of the first keyframe.
	//
	// Returns:
	//   - common.Tick: the first frame
	StartFrame() common.Tick

	// EndFrame returns the frame of the last keyframe.
	//
	// Returns:
	//   - common.Tick: the last frame
	EndFrame() common.Tick

	// Sample evaluates the curve at a fractional frame and flattens the result into components.
	// Frames before the first keyframe clamp to the first value; frames after the last clamp to the last value.
	//
	// Parameters:
	//   - frame: the frame to evaluate, in ticks
	//
	// Returns:
	//   - [4]float32: the evaluated value (xyz for vectors, xyzw for rotations)
	Sample(frame float32) [4]float32

	// Keyframes returns a flattened copy of the curve's keyframes.
	//
	// Returns:
	//   - []RawKeyframe: the keyframes in frame order
	Keyframes() []RawKeyframe
}

// FrameCurve is an immutable, baked sequence of keyframes with strictly increasing frames.
type FrameCurve[V Value[V]] struct {
	interpolation Interpolation
	keys          []Keyframe[V]
}

var (
	_ Curve = &FrameCurve[Vec3]{}
	_ Curve = &FrameCurve[Quat]{}
)

// NewFrameCurve validates and wraps the given keyframes. The slice is copied so later mutation by the
// caller cannot affect the curve.
//
// Parameters:
//   - interpolation: the evaluation strategy
//   - keys: keyframes ordered by strictly increasing frame
//
// Returns:
//   - *FrameCurve[V]: the baked curve
//   - error: ErrMalformedKeyframeStream if keys is empty or frames are not strictly increasing
func NewFrameCurve[V Value[V]](interpolation Interpolation, keys []Keyframe[V]) (*FrameCurve[V], error) {
	if interpolation > InterpolationCubicSpline {
		return nil, fmt.Errorf("%w: unknown interpolation %d", ErrMalformedKeyframeStream, interpolation)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no keyframes", ErrMalformedKeyframeStream)
	}
	for i := 1; i < len(keys); i++ {
		if keys[i].Frame <= keys[i-1].Frame {
			return nil, fmt.Errorf("%w: frame %d at keyframe %d does not follow frame %d",
				ErrMalformedKeyframeStream, keys[i].Frame, i, keys[i-1].Frame)
		}
	}

	owned := make([]Keyframe[V], len(keys))
	copy(owned, keys)
	return &FrameCurve[V]{interpolation: interpolation, keys: owned}, nil
}

func (c *FrameCurve[V]) Interpolation() Interpolation {
	return c.interpolation
}

func (c *FrameCurve[V]) Len() int {
	return len(c.keys)
}

func (c *FrameCurve[V]) StartFrame() common.Tick {
	return c.keys[0].Frame
}

func (c *FrameCurve[V]) EndFrame() common.Tick {
	return c.keys[len(c.keys)-1].Frame
}

// Key returns the keyframe at index i.
func (c *FrameCurve[V]) Key(i int) Keyframe[V] {
	return c.keys[i]
}

// Evaluate returns the typed value of the curve at a fractional frame.
func (c *FrameCurve[V]) Evaluate(frame float32) V {
	first, last := c.keys[0], c.keys[len(c.keys)-1]
	if frame <= float32(first.Frame) {
		return first.Value
	}
	if frame >= float32(last.Frame) {
		return last.Value
	}

	// index of the first keyframe strictly after frame; always in [1, len-1] here
	i := sort.Search(len(c.keys), func(i int) bool {
		return float32(c.keys[i].Frame) > frame
	})
	left, right := c.keys[i-1], c.keys[i]
	if frame == float32(left.Frame) {
		return left.Value
	}

	span := float32(right.Frame - left.Frame)
	s := (frame - float32(left.Frame)) / span

	switch c.interpolation {
	case InterpolationStep:
		return left.Value
	case InterpolationCubicSpline:
		return left.Value.Hermite(left.OutTangent, right.Value, right.InTangent, s, common.TickToSeconds(span))
	default:
		return left.Value.Lerp(right.Value, s)
	}
}

func (c *FrameCurve[V]) Sample(frame float32) [4]float32 {
	return c.Evaluate(frame).Components()
}

func (c *FrameCurve[V]) Keyframes() []RawKeyframe {
	raw := make([]RawKeyframe, len(c.keys))
	for i, k := range c.keys {
		raw[i] = RawKeyframe{
			Frame:      k.Frame,
			Value:      k.Value.Components(),
			InTangent:  k.InTangent.Components(),
			OutTangent: k.OutTangent.Components(),
		}
	}
	return raw
}
