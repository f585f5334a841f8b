package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// gltfAnimationExtractorImpl is the implementation of the gltfAnimationExtractor interface.
type gltfAnimationExtractorImpl struct {
	parser gltfParser
}

// gltfAnimationExtractor defines the interface for extracting raw keyframe streams from a parsed glTF
// document. Channels are returned undecided: baking them into curves, and rejecting paths the engine
// cannot drive, happens at import time.
type gltfAnimationExtractor interface {
	// ExtractAnimation extracts a single animation by index. Channels whose sampler or accessors cannot
	// be read are recorded as failures on the result instead of failing the animation.
	//
	// Parameters:
	//   - animIndex: the index of the animation in the document
	//
	// Returns:
	//   - model.DecodedAnimation: the extracted animation
	//   - error: error if the index is out of range or no document is loaded
	ExtractAnimation(animIndex int) (model.DecodedAnimation, error)

	// ExtractAllAnimations extracts every animation in the document.
	//
	// Returns:
	//   - []model.DecodedAnimation: the extracted animations in document order
	//   - error: error if no document is loaded
	ExtractAllAnimations() ([]model.DecodedAnimation, error)
}

var _ gltfAnimationExtractor = &gltfAnimationExtractorImpl{}

// newGLTFAnimationExtractor creates a new animation extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfAnimationExtractor: the animation extractor
func newGLTFAnimationExtractor(parser gltfParser) gltfAnimationExtractor {
	return &gltfAnimationExtractorImpl{parser: parser}
}

func (e *gltfAnimationExtractorImpl) ExtractAnimation(animIndex int) (model.DecodedAnimation, error) {
	doc := e.parser.Document()
	if doc == nil {
		return model.DecodedAnimation{}, errNoDocument
	}
	if animIndex < 0 || animIndex >= len(doc.Animations) {
		return model.DecodedAnimation{}, fmt.Errorf("animation index %d out of range", animIndex)
	}

	anim := &doc.Animations[animIndex]
	out := model.DecodedAnimation{
		Index: animIndex,
		Name:  anim.Name,
	}
	if out.Name == "" {
		out.Name = fmt.Sprintf("animation%d", animIndex)
	}

	for ci := range anim.Channels {
		ch, err := e.extractChannel(anim, ci)
		if err != nil {
			out.Failures = append(out.Failures, model.ChannelFailure{Animation: animIndex, Channel: ci, Err: err})
			continue
		}
		out.Channels = append(out.Channels, ch)
	}
	return out, nil
}

func (e *gltfAnimationExtractorImpl) ExtractAllAnimations() ([]model.DecodedAnimation, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	anims := make([]model.DecodedAnimation, 0, len(doc.Animations))
	for i := range doc.Animations {
		a, err := e.ExtractAnimation(i)
		if err != nil {
			return nil, err
		}
		anims = append(anims, a)
	}
	return anims, nil
}

// extractChannel reads the sampler of one channel into a DecodedChannel.
func (e *gltfAnimationExtractorImpl) extractChannel(anim *gltfAnimation, ci int) (model.DecodedChannel, error) {
	channel := &anim.Channels[ci]
	if channel.Sampler < 0 || channel.Sampler >= len(anim.Samplers) {
		return model.DecodedChannel{}, fmt.Errorf("sampler index %d out of range", channel.Sampler)
	}
	sampler := &anim.Samplers[channel.Sampler]

	node := -1
	if channel.Target.Node != nil {
		node = *channel.Target.Node
		if nodes := len(e.parser.Document().Nodes); node < 0 || node >= nodes {
			return model.DecodedChannel{}, fmt.Errorf("target node %d out of range", node)
		}
	}

	interpolation := sampler.Interpolation
	if interpolation == "" {
		interpolation = "LINEAR"
	}

	times, err := e.parser.ReadScalarAccessor(sampler.Input)
	if err != nil {
		return model.DecodedChannel{}, fmt.Errorf("failed to read input accessor: %w", err)
	}
	values, _, err := e.parser.ReadVectorAccessor(sampler.Output)
	if err != nil {
		return model.DecodedChannel{}, fmt.Errorf("failed to read output accessor: %w", err)
	}

	// morph weight outputs hold one value per target per keyframe and are not padded per element
	if channel.Target.Path != "weights" {
		want := len(times)
		if interpolation == gltfAnimInterpolationCubicSpline {
			want *= 3
		}
		if len(values) != want {
			return model.DecodedChannel{}, fmt.Errorf("%s sampler has %d inputs but %d outputs", interpolation, len(times), len(values))
		}
	}

	return model.DecodedChannel{
		Index:         ci,
		Node:          node,
		Path:          channel.Target.Path,
		Interpolation: interpolation,
		Times:         times,
		Values:        values,
	}, nil
}
