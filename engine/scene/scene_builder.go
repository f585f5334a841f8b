package scene

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-anim/engine/game_object"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene takes part in playback. Scenes are active by default.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithObjects adds initial objects to the scene.
// Objects without IDs will be assigned new IDs.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			s.addLocked(obj)
		}
	}
}

// WithApplyWorkers sets the number of worker goroutines used to apply large command batches.
// Defaults to runtime.NumCPU()-1. A value of 1 keeps every apply on the calling goroutine.
//
// Parameters:
//   - n: the number of apply workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithApplyWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.applyWorkers = n
	}
}

// WithLogger sets the structured logger used by the scene. Defaults to slog.Default().
//
// Parameters:
//   - logger: the logger, ignored if nil
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}
