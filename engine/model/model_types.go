package model

import "fmt"

// --- Decoded Asset Types ---

// DecodedAsset is the CPU-side result of decoding a scene file: the node list and the raw keyframe
// streams of every animation. It is produced on a decode worker and handed to the tick loop whole;
// nothing in it references the curve cache or any animation group.
type DecodedAsset struct {
	// Name is the asset identifier, usually the path or cache key it was loaded under.
	Name string

	// Nodes are the scene nodes in document order.
	Nodes []DecodedNode

	// Animations are the decoded animations in document order.
	Animations []DecodedAnimation
}

// DecodedNode is a node of the source scene graph.
type DecodedNode struct {
	// Index is the node's position in the source document.
	Index int

	// Name is the node name; may be empty.
	Name string

	// Parent is the index of the parent node (-1 for root nodes).
	Parent int

	// Translation, Rotation (x, y, z, w) and Scale are the node's rest transform.
	Translation [3]float32
	Rotation    [4]float32
	Scale       [3]float32
}

// DecodedAnimation is one source animation (walk, run, attack, etc.).
type DecodedAnimation struct {
	// Index is the animation's position in the source document.
	Index int

	// Name is the animation identifier.
	Name string

	// Channels are the channels whose sampler data could be read.
	Channels []DecodedChannel

	// Failures are the channels that could not be decoded. They do not prevent the rest from loading.
	Failures []ChannelFailure
}

// Duration returns the largest keyframe time across the animation's channels in seconds.
func (a DecodedAnimation) Duration() float32 {
	var d float32
	for _, ch := range a.Channels {
		if n := len(ch.Times); n > 0 && ch.Times[n-1] > d {
			d = ch.Times[n-1]
		}
	}
	return d
}

// DecodedChannel is the raw keyframe stream of one animated node property.
type DecodedChannel struct {
	// Index is the channel's position within its animation.
	Index int

	// Node is the index of the animated node (-1 when the channel has no node target).
	Node int

	// Path is the animated property: "translation", "rotation", "scale" or "weights".
	Path string

	// Interpolation is the sampler mode: "LINEAR", "STEP" or "CUBICSPLINE".
	Interpolation string

	// Times are the keyframe timestamps in seconds.
	Times []float32

	// Values are the sampler outputs padded to four components. Cubic spline samplers carry
	// three entries per timestamp (in-tangent, value, out-tangent).
	Values [][4]float32
}

// ChannelFailure records a channel that could not be decoded or imported.
type ChannelFailure struct {
	Animation int
	Channel   int
	Err       error
}

func (f ChannelFailure) Error() string {
	return fmt.Sprintf("animation %d channel %d: %v", f.Animation, f.Channel, f.Err)
}

func (f ChannelFailure) Unwrap() error {
	return f.Err
}

// NodeByName returns the first node with the given name.
//
// Parameters:
//   - name: the node name to look up
//
// Returns:
//   - DecodedNode: the node, zero value if absent
//   - bool: true if a node matched
func (a *DecodedAsset) NodeByName(name string) (DecodedNode, bool) {
	for _, n := range a.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return DecodedNode{}, false
}

// AnimationByName returns the animation with the given name.
//
// Parameters:
//   - name: the animation name to look up
//
// Returns:
//   - *DecodedAnimation: the animation, nil if absent
func (a *DecodedAsset) AnimationByName(name string) *DecodedAnimation {
	for i := range a.Animations {
		if a.Animations[i].Name == name {
			return &a.Animations[i]
		}
	}
	return nil
}
