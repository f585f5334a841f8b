package animation

import "github.com/Carmen-Shannon/oxy-anim/common"

// GroupBuilderOption is a functional option for configuring a Group during construction.
type GroupBuilderOption func(*group)

// WithID sets the ID of the Group.
//
// Parameters:
//   - id: identifier for the group, unique within an animation system
//
// Returns:
//   - GroupBuilderOption: functional option to set the ID
func WithID(id common.GroupID) GroupBuilderOption {
	return func(g *group) {
		g.id = id
	}
}

// WithName sets the name of the Group.
//
// Parameters:
//   - name: the group name
//
// Returns:
//   - GroupBuilderOption: functional option to set the name
func WithName(name string) GroupBuilderOption {
	return func(g *group) {
		g.name = name
	}
}

// WithScene records the scene that owns the Group.
//
// Parameters:
//   - scene: the owning scene
//
// Returns:
//   - GroupBuilderOption: functional option to set the owning scene
func WithScene(scene common.SceneID) GroupBuilderOption {
	return func(g *group) {
		g.scene = scene
	}
}

// WithTargets seeds the Group with bindings. The group takes ownership of their curve references.
//
// Parameters:
//   - targets: the initial bindings
//
// Returns:
//   - GroupBuilderOption: functional option to add the bindings
func WithTargets(targets ...TargetAnimation) GroupBuilderOption {
	return func(g *group) {
		g.targets = append(g.targets, targets...)
	}
}
