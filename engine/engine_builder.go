package engine

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/command"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithProfiler sets the profiler the engine feeds when profiling is enabled.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithSystem sets the animation system the engine drives rather than letting the engine create one.
//
// Parameters:
//   - s: a pre-configured AnimationSystem
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSystem(s AnimationSystem) EngineBuilderOption {
	return func(e *engine) {
		e.system = s
	}
}

// WithSink sets where each tick's attribute commands are applied. Combine several with command.Fanout.
//
// Parameters:
//   - sink: the command consumer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSink(sink command.Sink) EngineBuilderOption {
	return func(e *engine) {
		e.sink = sink
	}
}

// WithLogger sets the logger used by the engine and the system and profiler it creates.
//
// Parameters:
//   - logger: the logger, ignored if nil
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
