package engine

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-anim/engine/cache"
	"github.com/Carmen-Shannon/oxy-anim/engine/command"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
)

// SystemBuilderOption is a functional option for configuring an AnimationSystem.
type SystemBuilderOption func(*animationSystem)

// WithSystemLogger sets the logger used by the system and handed to the scenes and cache it creates.
//
// Parameters:
//   - logger: the logger, ignored if nil
//
// Returns:
//   - SystemBuilderOption: option function to apply
func WithSystemLogger(logger *slog.Logger) SystemBuilderOption {
	return func(s *animationSystem) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCache shares an existing curve cache, for example one preloaded from a resource pack.
//
// Parameters:
//   - c: the curve cache
//
// Returns:
//   - SystemBuilderOption: option function to apply
func WithCache(c cache.CurveCache) SystemBuilderOption {
	return func(s *animationSystem) {
		s.cache = c
	}
}

// WithQueue sets the command queue Advance pushes into.
//
// Parameters:
//   - q: the queue
//
// Returns:
//   - SystemBuilderOption: option function to apply
func WithQueue(q command.Queue) SystemBuilderOption {
	return func(s *animationSystem) {
		s.queue = q
	}
}

// WithSceneOptions sets options applied to every scene the system creates.
//
// Parameters:
//   - options: the scene options
//
// Returns:
//   - SystemBuilderOption: option function to apply
func WithSceneOptions(options ...scene.SceneBuilderOption) SystemBuilderOption {
	return func(s *animationSystem) {
		s.sceneOptions = append(s.sceneOptions, options...)
	}
}
