package game_object

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

func TestDefaults(t *testing.T) {
	obj := NewGameObject(WithID(4), WithName("Fox"))
	assert.Equal(t, common.ObjectID(4), obj.ID())
	assert.Equal(t, "Fox", obj.Name())
	assert.True(t, obj.Enabled())

	pos, scale, rot := obj.TransformData()
	assert.Equal(t, [3]float32{0, 0, 0}, pos)
	assert.Equal(t, [3]float32{1, 1, 1}, scale)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, rot)
}

func TestApplyAttribute(t *testing.T) {
	obj := NewGameObject(WithEnabled(false))
	assert.False(t, obj.Enabled())

	require.NoError(t, obj.ApplyAttribute(common.AttributePosition, [4]float32{1, 2, 3, 99}))
	x, y, z := obj.Position()
	assert.Equal(t, []float32{1, 2, 3}, []float32{x, y, z})

	require.NoError(t, obj.ApplyAttribute(common.AttributeScaling, [4]float32{2, 2, 2}))
	sx, sy, sz := obj.Scale()
	assert.Equal(t, []float32{2, 2, 2}, []float32{sx, sy, sz})

	// a non-unit quaternion is normalized on write
	require.NoError(t, obj.ApplyAttribute(common.AttributeRotation, [4]float32{0, 0, 2, 2}))
	q := obj.Quaternion()
	assert.InDelta(t, 0.7071, q[2], 1e-4)
	assert.InDelta(t, 0.7071, q[3], 1e-4)

	_, _, rz := obj.Rotation()
	assert.InDelta(t, math32.Pi/2, rz, 1e-4)

	assert.Error(t, obj.ApplyAttribute(common.AttributeKind(42), [4]float32{}))
}

func TestEulerRotationRoundTrip(t *testing.T) {
	obj := NewGameObject(WithRotation(0, math32.Pi/4, 0))
	rx, ry, rz := obj.Rotation()
	assert.InDelta(t, 0, rx, 1e-5)
	assert.InDelta(t, math32.Pi/4, ry, 1e-5)
	assert.InDelta(t, 0, rz, 1e-5)

	obj.SetQuaternion(0, 0, 0, 3)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, obj.Quaternion())
}
