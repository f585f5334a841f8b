package cache

import "log/slog"

// CurveCacheBuilderOption is a functional option for configuring a CurveCache during construction.
type CurveCacheBuilderOption func(*curveCache)

// WithLogger sets the structured logger used for bake and eviction events.
//
// Parameters:
//   - logger: the logger to use; nil keeps slog.Default()
//
// Returns:
//   - CurveCacheBuilderOption: functional option to set the logger
func WithLogger(logger *slog.Logger) CurveCacheBuilderOption {
	return func(c *curveCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}
