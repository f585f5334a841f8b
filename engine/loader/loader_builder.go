package loader

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithAsset is an option builder that pre-populates the asset cache.
//
// Parameters:
//   - key: the cache key for the asset
//   - asset: the decoded asset to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the asset option to a loader
func WithAsset(key string, asset *model.DecodedAsset) LoaderBuilderOption {
	return func(l *loader) {
		if asset != nil {
			l.assetCache[key] = asset
		}
	}
}

// WithDecodeWorkers sets how many workers LoadAsync decodes on. 0 decodes each async load on its own
// goroutine.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithDecodeWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n >= 0 {
			l.decodeWorkers = n
		}
	}
}

// WithLogger sets the logger used for decode diagnostics.
//
// Parameters:
//   - logger: the logger, ignored if nil
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}
