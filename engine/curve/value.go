package curve

import (
	"cogentcore.org/core/math32"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// Value is the constraint for keyframe payloads. A single generic FrameCurve serves every attribute kind
// as long as the payload knows how to interpolate itself.
type Value[V any] interface {
	// Lerp interpolates from the receiver towards to by t in [0, 1].
	// Vector payloads interpolate component-wise, rotations interpolate spherically.
	Lerp(to V, t float32) V

	// Hermite evaluates the cubic Hermite segment starting at the receiver.
	//
	// Parameters:
	//   - outTangent: the out-tangent of the left keyframe
	//   - to: the value of the right keyframe
	//   - inTangent: the in-tangent of the right keyframe
	//   - s: normalized position in the segment
	//   - dt: segment length in seconds, used to scale the tangents
	Hermite(outTangent, to, inTangent V, s, dt float32) V

	// Normalized returns the canonical form of the value (unit length for rotations).
	Normalized() V

	// Components flattens the value into four floats. Unused trailing components are zero.
	Components() [4]float32
}

// Vec3 is a three-component payload used for position, scaling, and Euler angles.
type Vec3 math32.Vector3

// Quat is a rotation payload stored as a quaternion in x, y, z, w order.
type Quat math32.Quat

var (
	_ Value[Vec3] = Vec3{}
	_ Value[Quat] = Quat{}
)

// Vec3FromComponents builds a Vec3 from the first three components of c.
func Vec3FromComponents(c [4]float32) Vec3 {
	return Vec3{X: c[0], Y: c[1], Z: c[2]}
}

// QuatFromComponents builds a Quat from c in x, y, z, w order without normalizing it.
// Tangents of cubic rotation curves are not unit quaternions and must keep their magnitude.
func QuatFromComponents(c [4]float32) Quat {
	return Quat{X: c[0], Y: c[1], Z: c[2], W: c[3]}
}

// QuatFromEuler builds a unit quaternion from Euler angles in radians.
func QuatFromEuler(x, y, z float32) Quat {
	return Quat(math32.NewQuatEuler(math32.Vec3(x, y, z)))
}

func (v Vec3) Lerp(to Vec3, t float32) Vec3 {
	a := math32.Vector3(v)
	return Vec3(a.Add(math32.Vector3(to).Sub(a).MulScalar(t)))
}

func (v Vec3) Hermite(outTangent, to, inTangent Vec3, s, dt float32) Vec3 {
	h00, h10, h01, h11 := common.HermiteBasis(s)
	p0 := math32.Vector3(v).MulScalar(h00)
	m0 := math32.Vector3(outTangent).MulScalar(h10 * dt)
	p1 := math32.Vector3(to).MulScalar(h01)
	m1 := math32.Vector3(inTangent).MulScalar(h11 * dt)
	return Vec3(p0.Add(m0).Add(p1).Add(m1))
}

func (v Vec3) Normalized() Vec3 {
	return v
}

func (v Vec3) Components() [4]float32 {
	return [4]float32{v.X, v.Y, v.Z, 0}
}

func (q Quat) Lerp(to Quat, t float32) Quat {
	r := math32.Quat(q)
	r.Slerp(math32.Quat(to), t)
	return Quat(r)
}

func (q Quat) Hermite(outTangent, to, inTangent Quat, s, dt float32) Quat {
	h00, h10, h01, h11 := common.HermiteBasis(s)
	a, m0, b, m1 := q.Components(), outTangent.Components(), to.Components(), inTangent.Components()
	var out [4]float32
	for i := range out {
		out[i] = h00*a[i] + h10*dt*m0[i] + h01*b[i] + h11*dt*m1[i]
	}
	return QuatFromComponents(out).Normalized()
}

func (q Quat) Normalized() Quat {
	r := math32.Quat(q)
	r.Normalize()
	return Quat(r)
}

func (q Quat) Components() [4]float32 {
	return [4]float32{q.X, q.Y, q.Z, q.W}
}

// Euler converts the rotation into Euler angles in radians.
func (q Quat) Euler() Vec3 {
	r := math32.Quat(q)
	return Vec3(r.ToEuler())
}
