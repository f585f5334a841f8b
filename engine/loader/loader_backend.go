package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// loaderBackend defines the generic interface for decoding scene files or streams.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Extensions lists the lower-case file extensions the backend can decode.
	//
	// Returns:
	//   - []string: the extensions including the leading dot
	Extensions() []string

	// Load decodes the file at the given path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.DecodedAsset: the decoded asset
	//   - error: error if loading fails
	Load(path string) (*model.DecodedAsset, error)

	// LoadReader decodes an asset from a reader stream.
	//
	// Parameters:
	//   - name: the name given to the decoded asset
	//   - r: the reader providing asset data
	//   - isGLB: true if the reader provides GLB binary data, false for text-based formats
	//
	// Returns:
	//   - *model.DecodedAsset: the decoded asset
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (*model.DecodedAsset, error)
}
