package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// LoaderBackendType identifies the scene file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// LoadResult is delivered once on the channel returned by Loader.LoadAsync.
type LoadResult struct {
	Asset *model.DecodedAsset
	Err   error
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	assetCache map[string]*model.DecodedAsset

	backend loaderBackend
	logger  *slog.Logger

	decodeWorkers int
	decodePool    worker.DynamicWorkerPool
	taskID        atomic.Int64
}

// Loader defines the public-facing interface for decoding and caching animation assets.
// It abstracts the file format (glTF, GLB, etc.) behind a generic backend and manages a cache of
// previously decoded assets. Decoding never touches the curve cache or any scene, so assets can be
// decoded off the tick loop and imported on it.
type Loader interface {
	// Load decodes a scene file and caches the result.
	// If the asset is already cached (by file path), the cached version is returned.
	//
	// Parameters:
	//   - path: the file path to the scene file
	//
	// Returns:
	//   - *model.DecodedAsset: the decoded asset
	//   - error: error if the format is unsupported or decoding fails
	Load(path string) (*model.DecodedAsset, error)

	// LoadReader decodes an asset from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key and asset name
	//   - r: the reader providing asset data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *model.DecodedAsset: the decoded asset
	//   - error: error if decoding fails
	LoadReader(name string, r io.Reader, isGLB bool) (*model.DecodedAsset, error)

	// LoadAsync decodes a scene file on the loader's decode workers. The returned channel receives
	// exactly one result and is then closed. If ctx is done before decoding finishes the result
	// carries ctx.Err() and the decoded asset is not cached.
	//
	// Parameters:
	//   - ctx: cancels the load
	//   - path: the file path to the scene file
	//
	// Returns:
	//   - <-chan LoadResult: receives the single result
	LoadAsync(ctx context.Context, path string) <-chan LoadResult

	// Get retrieves a cached asset by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *model.DecodedAsset: the cached asset or nil
	Get(name string) *model.DecodedAsset

	// Assets returns a snapshot of the asset cache.
	//
	// Returns:
	//   - map[string]*model.DecodedAsset: all cached assets keyed by name
	Assets() map[string]*model.DecodedAsset

	// Evict removes an asset from the cache.
	//
	// Parameters:
	//   - name: the cache key to remove
	//
	// Returns:
	//   - bool: true if an asset was removed
	Evict(name string) bool
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:            sync.RWMutex{},
		assetCache:    make(map[string]*model.DecodedAsset),
		logger:        slog.Default(),
		decodeWorkers: 2,
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}

	if l.decodeWorkers > 0 {
		l.decodePool = worker.NewDynamicWorkerPool(l.decodeWorkers, 64, 1*time.Second)
	}
	return l
}

func (l *loader) Load(path string) (*model.DecodedAsset, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	asset, err := l.decode(path)
	if err != nil {
		return nil, err
	}

	l.store(path, asset)
	return asset, nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (*model.DecodedAsset, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}

	asset, err := l.backend.LoadReader(name, r, isGLB)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	l.store(name, asset)
	return asset, nil
}

func (l *loader) LoadAsync(ctx context.Context, path string) <-chan LoadResult {
	out := make(chan LoadResult, 1)
	if cached := l.Get(path); cached != nil {
		out <- LoadResult{Asset: cached}
		close(out)
		return out
	}

	run := func() {
		defer close(out)
		if err := ctx.Err(); err != nil {
			out <- LoadResult{Err: err}
			return
		}

		asset, err := l.decode(path)
		if err != nil {
			out <- LoadResult{Err: err}
			return
		}
		// a load cancelled mid-decode is discarded so nothing half-wanted stays cached
		if err := ctx.Err(); err != nil {
			l.logger.Debug("discarding cancelled load", "path", path)
			out <- LoadResult{Err: err}
			return
		}

		l.store(path, asset)
		out <- LoadResult{Asset: asset}
	}

	if l.decodePool == nil {
		go run()
		return out
	}
	l.decodePool.SubmitTask(worker.Task{
		ID: int(l.taskID.Add(1)),
		Do: func() (any, error) {
			run()
			return nil, nil
		},
	})
	return out
}

func (l *loader) Get(name string) *model.DecodedAsset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.assetCache[name]
}

func (l *loader) Assets() map[string]*model.DecodedAsset {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*model.DecodedAsset, len(l.assetCache))
	for k, v := range l.assetCache {
		result[k] = v
	}
	return result
}

func (l *loader) Evict(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.assetCache[name]
	delete(l.assetCache, name)
	return ok
}

// decode resolves the backend for path and decodes it without touching the cache.
func (l *loader) decode(path string) (*model.DecodedAsset, error) {
	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	asset, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	failures := 0
	for _, a := range asset.Animations {
		failures += len(a.Failures)
	}
	l.logger.Debug("decoded asset", "name", asset.Name, "nodes", len(asset.Nodes),
		"animations", len(asset.Animations), "channel_failures", failures)
	return asset, nil
}

// store caches asset under key. A concurrent load of the same key keeps the first stored asset.
func (l *loader) store(key string, asset *model.DecodedAsset) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.assetCache[key]; !ok {
		l.assetCache[key] = asset
	}
}

// resolveBackend selects the loader backend based on the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if l.backend == nil || !slices.Contains(l.backend.Extensions(), ext) {
		return nil, fmt.Errorf("unsupported asset format: %q", ext)
	}
	return l.backend, nil
}
