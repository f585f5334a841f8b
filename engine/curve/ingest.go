package curve

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// ChannelPath is the animated property named by a source channel.
type ChannelPath string

const (
	PathTranslation ChannelPath = "translation"
	PathRotation    ChannelPath = "rotation"
	PathScale       ChannelPath = "scale"
	PathWeights     ChannelPath = "weights"
)

// Channel is a raw keyframe stream as decoded from a source asset. Vector outputs use the first three
// components of each value; rotations use all four in x, y, z, w order. Cubic spline streams carry
// three values per timestamp: in-tangent, value, out-tangent.
type Channel struct {
	Path          ChannelPath
	Interpolation Interpolation
	Times         []float32
	Values        [][4]float32
}

// KindForPath maps a channel path onto the attribute kind it drives.
//
// Parameters:
//   - path: the channel path
//
// Returns:
//   - common.AttributeKind: the driven attribute
//   - error: ErrUnsupportedChannelKind for weights or unknown paths
func KindForPath(path ChannelPath) (common.AttributeKind, error) {
	switch path {
	case PathTranslation:
		return common.AttributePosition, nil
	case PathScale:
		return common.AttributeScaling, nil
	case PathRotation:
		return common.AttributeRotation, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedChannelKind, path)
	}
}

// Bake converts a timestamp/value stream into a FrameCurve. Timestamps are rounded to ticks with
// common.SecondsToTick and must stay strictly increasing after rounding. Cubic spline streams are read
// as (in-tangent, value, out-tangent) triples by index.
//
// Parameters:
//   - interpolation: the evaluation strategy
//   - times: keyframe timestamps in seconds
//   - values: one value per timestamp, or three per timestamp for cubic splines
//   - decode: converts raw components into the payload type
//
// Returns:
//   - *FrameCurve[V]: the baked curve
//   - error: ErrMalformedKeyframeStream on any structural problem
func Bake[V Value[V]](interpolation Interpolation, times []float32, values [][4]float32, decode func([4]float32) V) (*FrameCurve[V], error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("%w: no timestamps", ErrMalformedKeyframeStream)
	}

	stride := 1
	if interpolation == InterpolationCubicSpline {
		stride = 3
	}
	if len(values) != stride*len(times) {
		return nil, fmt.Errorf("%w: %s stream with %d timestamps needs %d values, got %d",
			ErrMalformedKeyframeStream, interpolation, len(times), stride*len(times), len(values))
	}

	keys := make([]Keyframe[V], len(times))
	for i, t := range times {
		frame, err := common.SecondsToTick(t)
		if err != nil {
			return nil, fmt.Errorf("%w: keyframe %d: %w", ErrMalformedKeyframeStream, i, err)
		}
		if i > 0 && frame <= keys[i-1].Frame {
			return nil, fmt.Errorf("%w: keyframe %d at %vs is not after keyframe %d at tick %d",
				ErrMalformedKeyframeStream, i, t, i-1, keys[i-1].Frame)
		}

		key := Keyframe[V]{Frame: frame}
		if stride == 3 {
			key.InTangent = decode(values[3*i])
			key.Value = decode(values[3*i+1]).Normalized()
			key.OutTangent = decode(values[3*i+2])
		} else {
			key.Value = decode(values[i]).Normalized()
		}
		keys[i] = key
	}

	return NewFrameCurve(interpolation, keys)
}

// Ingest bakes a decoded channel into a type-erased curve for the attribute kind its path drives.
//
// Parameters:
//   - ch: the decoded channel
//
// Returns:
//   - common.AttributeKind: the attribute the curve drives
//   - Curve: the baked curve
//   - error: ErrUnsupportedChannelKind or ErrMalformedKeyframeStream
func Ingest(ch Channel) (common.AttributeKind, Curve, error) {
	kind, err := KindForPath(ch.Path)
	if err != nil {
		return 0, nil, err
	}

	c, err := bakeKind(kind, ch.Interpolation, ch.Times, ch.Values)
	if err != nil {
		return 0, nil, fmt.Errorf("%s channel: %w", ch.Path, err)
	}
	return kind, c, nil
}

// Rebuild reconstructs a curve from flattened keyframes, such as those read back from a resource pack.
//
// Parameters:
//   - kind: the attribute the curve drives
//   - interpolation: the evaluation strategy
//   - raw: the flattened keyframes
//
// Returns:
//   - Curve: the rebuilt curve
//   - error: ErrMalformedKeyframeStream if the keyframes are invalid
func Rebuild(kind common.AttributeKind, interpolation Interpolation, raw []RawKeyframe) (Curve, error) {
	switch kind {
	case common.AttributeRotation:
		c, err := rebuild(interpolation, raw, QuatFromComponents)
		if err != nil {
			return nil, err
		}
		return c, nil
	case common.AttributePosition, common.AttributeScaling:
		c, err := rebuild(interpolation, raw, Vec3FromComponents)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedChannelKind, kind)
	}
}

func bakeKind(kind common.AttributeKind, interpolation Interpolation, times []float32, values [][4]float32) (Curve, error) {
	if kind == common.AttributeRotation {
		c, err := Bake(interpolation, times, values, QuatFromComponents)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	c, err := Bake(interpolation, times, values, Vec3FromComponents)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func rebuild[V Value[V]](interpolation Interpolation, raw []RawKeyframe, decode func([4]float32) V) (*FrameCurve[V], error) {
	keys := make([]Keyframe[V], len(raw))
	for i, r := range raw {
		keys[i] = Keyframe[V]{
			Frame:      r.Frame,
			Value:      decode(r.Value),
			InTangent:  decode(r.InTangent),
			OutTangent: decode(r.OutTangent),
		}
	}
	return NewFrameCurve(interpolation, keys)
}
