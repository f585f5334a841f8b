package loader

import (
	"fmt"
	"io"

	"cogentcore.org/core/math32"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter defines the interface for orchestrating a full glTF/GLB import.
// It combines the parser and the animation extractor to produce a DecodedAsset.
type gltfImporter interface {
	// Import loads a glTF/GLB file and extracts its node list and animations.
	//
	// Parameters:
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - *model.DecodedAsset: the decoded asset, named after path
	//   - error: error if import fails
	Import(path string) (*model.DecodedAsset, error)

	// ImportReader loads a glTF document from a reader and extracts its node list and animations.
	// The reader should provide a complete glTF JSON or GLB binary stream.
	//
	// Parameters:
	//   - name: the name given to the decoded asset
	//   - r: the reader providing glTF/GLB data
	//   - isGLB: true if the reader provides GLB binary data, false for glTF JSON
	//   - baseDir: directory external buffer URIs are resolved against, may be empty
	//
	// Returns:
	//   - *model.DecodedAsset: the decoded asset
	//   - error: error if import fails
	ImportReader(name string, r io.Reader, isGLB bool, baseDir string) (*model.DecodedAsset, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

func (imp *gltfImporterImpl) Import(path string) (*model.DecodedAsset, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return imp.importFromParser(parser, path)
}

func (imp *gltfImporterImpl) ImportReader(name string, r io.Reader, isGLB bool, baseDir string) (*model.DecodedAsset, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB, baseDir); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}

	return imp.importFromParser(parser, name)
}

// importFromParser builds a DecodedAsset from a parser that has already loaded a document.
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, name string) (*model.DecodedAsset, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document after parsing")
	}

	animations, err := newGLTFAnimationExtractor(parser).ExtractAllAnimations()
	if err != nil {
		return nil, fmt.Errorf("animation extraction failed: %w", err)
	}

	return &model.DecodedAsset{
		Name:       gltfAssetName(doc, name),
		Nodes:      gltfDecodeNodes(doc),
		Animations: animations,
	}, nil
}

// --- Helper Functions ---

// gltfDecodeNodes converts the document nodes, resolving each node's parent from the children lists
// and filling in the identity rest transform where TRS components are omitted.
func gltfDecodeNodes(doc *gltfDocument) []model.DecodedNode {
	nodes := make([]model.DecodedNode, len(doc.Nodes))
	for i := range nodes {
		nodes[i] = gltfNodeTransform(&doc.Nodes[i])
		nodes[i].Index = i
		nodes[i].Name = doc.Nodes[i].Name
		nodes[i].Parent = -1
	}

	for i := range doc.Nodes {
		for _, child := range doc.Nodes[i].Children {
			if child >= 0 && child < len(nodes) {
				nodes[child].Parent = i
			}
		}
	}
	return nodes
}

// gltfNodeTransform extracts the rest transform of a node. A matrix takes precedence over TRS.
func gltfNodeTransform(node *gltfNode) model.DecodedNode {
	if node.Matrix != nil {
		return gltfDecomposeMatrix(*node.Matrix)
	}

	n := model.DecodedNode{
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	}
	if node.Translation != nil {
		n.Translation = *node.Translation
	}
	if node.Rotation != nil {
		n.Rotation = *node.Rotation
	}
	if node.Scale != nil {
		n.Scale = *node.Scale
	}
	return n
}

// gltfDecomposeMatrix splits a column-major 4x4 matrix into translation, rotation and scale.
// Shear is ignored.
func gltfDecomposeMatrix(m [16]float32) model.DecodedNode {
	var n model.DecodedNode
	n.Translation = [3]float32{m[12], m[13], m[14]}

	sx := math32.Sqrt(m[0]*m[0] + m[1]*m[1] + m[2]*m[2])
	sy := math32.Sqrt(m[4]*m[4] + m[5]*m[5] + m[6]*m[6])
	sz := math32.Sqrt(m[8]*m[8] + m[9]*m[9] + m[10]*m[10])
	n.Scale = [3]float32{sx, sy, sz}

	// avoid dividing a degenerate axis by zero
	if sx < 1e-4 {
		sx = 1
	}
	if sy < 1e-4 {
		sy = 1
	}
	if sz < 1e-4 {
		sz = 1
	}

	// rows of the normalized rotation
	r := [3][3]float32{
		{m[0] / sx, m[4] / sy, m[8] / sz},
		{m[1] / sx, m[5] / sy, m[9] / sz},
		{m[2] / sx, m[6] / sy, m[10] / sz},
	}
	n.Rotation = gltfRotationToQuaternion(r)
	return n
}

// gltfRotationToQuaternion converts a row-major rotation matrix to a unit quaternion (x, y, z, w).
func gltfRotationToQuaternion(r [3][3]float32) [4]float32 {
	var x, y, z, w float32
	trace := r[0][0] + r[1][1] + r[2][2]

	switch {
	case trace > 0:
		s := 0.5 / math32.Sqrt(trace+1)
		w = 0.25 / s
		x = (r[2][1] - r[1][2]) * s
		y = (r[0][2] - r[2][0]) * s
		z = (r[1][0] - r[0][1]) * s
	case r[0][0] > r[1][1] && r[0][0] > r[2][2]:
		s := 2 * math32.Sqrt(1+r[0][0]-r[1][1]-r[2][2])
		w = (r[2][1] - r[1][2]) / s
		x = 0.25 * s
		y = (r[0][1] + r[1][0]) / s
		z = (r[0][2] + r[2][0]) / s
	case r[1][1] > r[2][2]:
		s := 2 * math32.Sqrt(1+r[1][1]-r[0][0]-r[2][2])
		w = (r[0][2] - r[2][0]) / s
		x = (r[0][1] + r[1][0]) / s
		y = 0.25 * s
		z = (r[1][2] + r[2][1]) / s
	default:
		s := 2 * math32.Sqrt(1+r[2][2]-r[0][0]-r[1][1])
		w = (r[1][0] - r[0][1]) / s
		x = (r[0][2] + r[2][0]) / s
		y = (r[1][2] + r[2][1]) / s
		z = 0.25 * s
	}

	if l := math32.Sqrt(x*x + y*y + z*z + w*w); l > 1e-4 {
		x, y, z, w = x/l, y/l, z/l, w/l
	}
	return [4]float32{x, y, z, w}
}

// gltfAssetName picks the asset name: the caller's name when given, then the default scene name.
func gltfAssetName(doc *gltfDocument, name string) string {
	if name != "" {
		return name
	}
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if sceneName := doc.Scenes[*doc.Scene].Name; sceneName != "" {
			return sceneName
		}
	}
	return "unnamed_asset"
}
