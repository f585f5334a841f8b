// Package animation binds cached curves to scene object attributes and drives their playback through
// named animation groups.
package animation

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/cache"
)

// Animation pairs a shared curve reference with a base frame offset. The keyframe buffer stays in the
// cache; an Animation only holds a counted reference to it.
type Animation struct {
	curve     *cache.SharedCurve
	baseFrame common.Tick
	kind      common.AttributeKind
}

// NewAnimation wraps a curve reference with a base frame of 0. The Animation takes ownership of ref.
//
// Parameters:
//   - ref: the shared curve reference
//
// Returns:
//   - Animation: the new animation handle
func NewAnimation(ref *cache.SharedCurve) Animation {
	return NewAnimationAt(ref, 0)
}

// NewAnimationAt wraps a curve reference starting at the given base frame.
//
// Parameters:
//   - ref: the shared curve reference
//   - baseFrame: offset added to every evaluated frame
//
// Returns:
//   - Animation: the new animation handle
func NewAnimationAt(ref *cache.SharedCurve, baseFrame common.Tick) Animation {
	return Animation{curve: ref, baseFrame: baseFrame, kind: ref.Kind()}
}

// Kind returns the attribute kind this animation drives.
func (a Animation) Kind() common.AttributeKind {
	return a.kind
}

// BaseFrame returns the frame offset applied before evaluation.
func (a Animation) BaseFrame() common.Tick {
	return a.baseFrame
}

// Curve returns the shared curve reference.
func (a Animation) Curve() *cache.SharedCurve {
	return a.curve
}

// Valid reports whether the animation holds a curve reference.
func (a Animation) Valid() bool {
	return a.curve != nil
}

// Evaluate samples the bound curve at baseFrame + frame.
func (a Animation) Evaluate(frame float32) [4]float32 {
	return a.curve.Curve().Sample(float32(a.baseFrame) + frame)
}

// Release drops the curve reference held by the animation.
func (a Animation) Release() {
	if a.curve != nil {
		a.curve.Release()
	}
}

// TargetAnimation records which object attribute an Animation drives inside a group.
type TargetAnimation struct {
	Target    common.ObjectID
	Kind      common.AttributeKind
	Animation Animation
}
