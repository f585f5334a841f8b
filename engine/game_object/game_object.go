package game_object

import (
	"fmt"
	"sync/atomic"

	"cogentcore.org/core/math32"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

type gameObject struct {
	id      common.ObjectID
	name    string
	enabled atomic.Bool

	position math32.Vector3
	scale    math32.Vector3
	rotation math32.Quat
}

// GameObject defines the interface for a scene entity whose transform attributes can be driven by
// animation playback. Rotation is stored as a unit quaternion and exposed both as a quaternion and as
// Euler angles.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - common.ObjectID: the object ID
	ID() common.ObjectID

	// Name returns the object's name, usually the glTF node name it was created from.
	//
	// Returns:
	//   - string: the object name
	Name() string

	// Enabled returns whether this object is enabled.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Position returns the object's position.
	//
	// Returns:
	//   - x, y, z: position components
	Position() (x, y, z float32)

	// Scale returns the object's scale.
	//
	// Returns:
	//   - sx, sy, sz: scale components
	Scale() (sx, sy, sz float32)

	// Rotation returns the object's rotation as Euler angles in radians.
	//
	// Returns:
	//   - rx, ry, rz: rotation angles
	Rotation() (rx, ry, rz float32)

	// Quaternion returns the object's rotation as a unit quaternion.
	//
	// Returns:
	//   - [4]float32: x, y, z, w
	Quaternion() [4]float32

	// TransformData reads every transform attribute at once.
	//
	// Returns:
	//   - pos: position as [3]float32 (x, y, z)
	//   - scale: scale as [3]float32 (x, y, z)
	//   - rot: rotation as [4]float32 (x, y, z, w)
	TransformData() (pos, scale [3]float32, rot [4]float32)

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id common.ObjectID)

	// SetEnabled sets whether the object is enabled.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetPosition updates the object's position.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// SetScale updates the object's scale.
	//
	// Parameters:
	//   - sx, sy, sz: new scale factors
	SetScale(sx, sy, sz float32)

	// SetRotation updates the object's rotation from Euler angles in radians.
	//
	// Parameters:
	//   - rx, ry, rz: new rotation angles
	SetRotation(rx, ry, rz float32)

	// SetQuaternion updates the object's rotation from a quaternion, normalizing it.
	//
	// Parameters:
	//   - x, y, z, w: quaternion components
	SetQuaternion(x, y, z, w float32)

	// ApplyAttribute writes one animated attribute value. Vector attributes read the first three
	// components, rotations read all four as a quaternion.
	//
	// Parameters:
	//   - kind: the attribute to write
	//   - value: the attribute value
	//
	// Returns:
	//   - error: error if the attribute kind is unknown
	ApplyAttribute(kind common.AttributeKind, value [4]float32) error
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		scale:    math32.Vec3(1, 1, 1),
		rotation: math32.Quat{W: 1},
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() common.ObjectID {
	return g.id
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Position() (x, y, z float32) {
	return g.position.X, g.position.Y, g.position.Z
}

func (g *gameObject) Scale() (sx, sy, sz float32) {
	return g.scale.X, g.scale.Y, g.scale.Z
}

func (g *gameObject) Rotation() (rx, ry, rz float32) {
	q := g.rotation
	e := q.ToEuler()
	return e.X, e.Y, e.Z
}

func (g *gameObject) Quaternion() [4]float32 {
	return [4]float32{g.rotation.X, g.rotation.Y, g.rotation.Z, g.rotation.W}
}

func (g *gameObject) TransformData() (pos, scale [3]float32, rot [4]float32) {
	pos = [3]float32{g.position.X, g.position.Y, g.position.Z}
	scale = [3]float32{g.scale.X, g.scale.Y, g.scale.Z}
	rot = g.Quaternion()
	return
}

func (g *gameObject) SetID(id common.ObjectID) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.position = math32.Vec3(x, y, z)
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.scale = math32.Vec3(sx, sy, sz)
}

func (g *gameObject) SetRotation(rx, ry, rz float32) {
	g.rotation = math32.NewQuatEuler(math32.Vec3(rx, ry, rz))
}

func (g *gameObject) SetQuaternion(x, y, z, w float32) {
	q := math32.Quat{X: x, Y: y, Z: z, W: w}
	q.Normalize()
	g.rotation = q
}

func (g *gameObject) ApplyAttribute(kind common.AttributeKind, value [4]float32) error {
	switch kind {
	case common.AttributePosition:
		g.SetPosition(value[0], value[1], value[2])
	case common.AttributeScaling:
		g.SetScale(value[0], value[1], value[2])
	case common.AttributeRotation:
		g.SetQuaternion(value[0], value[1], value[2], value[3])
	default:
		return fmt.Errorf("object %d: cannot apply %s", g.id, kind)
	}
	return nil
}
