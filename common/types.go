// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"
	"strings"
)

// ObjectID identifies a scene object whose attributes are driven by animation playback.
type ObjectID uint64

// SceneID identifies a scene context owning objects and animation groups.
type SceneID uint64

// GroupID identifies an animation group. Group IDs are unique across an animation system, not only within a scene.
type GroupID uint64

// Tick is a fixed-resolution frame index used by baked curves. One source second spans TicksPerSecond ticks.
type Tick uint16

// AttributeKind identifies which transform attribute of an object a curve drives.
type AttributeKind uint8

const (
	// AttributePosition drives an object's translation.
	AttributePosition AttributeKind = iota
	// AttributeScaling drives an object's per-axis scale.
	AttributeScaling
	// AttributeRotation drives an object's orientation, stored as a unit quaternion.
	AttributeRotation
)

// AttributeKinds lists every attribute kind in partition order.
var AttributeKinds = []AttributeKind{AttributePosition, AttributeScaling, AttributeRotation}

// String returns the lowercase name of the attribute kind.
func (k AttributeKind) String() string {
	switch k {
	case AttributePosition:
		return "position"
	case AttributeScaling:
		return "scaling"
	case AttributeRotation:
		return "rotation"
	default:
		return fmt.Sprintf("attribute(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the known attribute kinds.
func (k AttributeKind) Valid() bool {
	return k <= AttributeRotation
}

// ParseAttributeKind converts a kind name (as returned by AttributeKind.String) back into an AttributeKind.
// Matching is case-insensitive.
//
// Parameters:
//   - s: the attribute kind name
//
// Returns:
//   - AttributeKind: the parsed kind
//   - error: error if the name is unknown
func ParseAttributeKind(s string) (AttributeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "position":
		return AttributePosition, nil
	case "scaling", "scale":
		return AttributeScaling, nil
	case "rotation":
		return AttributeRotation, nil
	default:
		return 0, fmt.Errorf("unknown attribute kind %q", s)
	}
}
