package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"cogentcore.org/core/base/errors"

	"github.com/Carmen-Shannon/oxy-anim/engine/command"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
)

// engine implements the Engine interface.
// Drives an AnimationSystem from a fixed-rate ticker.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	mu      sync.Mutex

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	system AnimationSystem
	sink   command.Sink
	logger *slog.Logger

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaMs float32)
}

// Engine is the main entry point for the engine.
// It owns the tick loop: every tick it advances the AnimationSystem and flushes the produced
// attribute commands to the configured sink.
type Engine interface {
	// System returns the animation system the engine drives.
	//
	// Returns:
	//   - AnimationSystem: the system
	System() AnimationSystem

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	// Takes effect on the next tick when the engine is running.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called at the start of each engine tick, before the
	// system advances. It runs on the tick goroutine, so it may call into the system directly.
	//
	// Parameters:
	//   - callback: function receiving the tick's delta time in milliseconds
	SetTickCallback(callback func(deltaMs float32))

	// Run starts the tick loop and blocks until ctx is done or Quit is called.
	//
	// Parameters:
	//   - ctx: stops the loop when done
	//
	// Returns:
	//   - error: ctx.Err() if the context ended the loop, nil after Quit
	Run(ctx context.Context) error

	// Quit signals the tick loop to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Without WithSystem a new AnimationSystem is created; without WithSink commands are discarded.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, sink, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		logger:          slog.Default(),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.system == nil {
		e.system = NewAnimationSystem(WithSystemLogger(e.logger))
	}
	if e.sink == nil {
		e.sink = command.Discard
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	return e
}

func (e *engine) System() AnimationSystem {
	return e.system
}

func (e *engine) Run(ctx context.Context) error {
	e.running.Store(true)
	defer e.running.Store(false)

	e.mu.Lock()
	rate := e.engineTickRate
	e.mu.Unlock()

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.quitChannel:
			return nil
		case <-ticker.C:
			now := time.Now()
			deltaMs := float32(now.Sub(lastTick).Seconds() * 1000)
			lastTick = now
			e.tick(deltaMs)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.mu.Lock()
			e.engineTickRate = newRate
			e.mu.Unlock()
		}
	}
}

// tick runs one engine tick. Sink errors are logged and the loop keeps going.
func (e *engine) tick(deltaMs float32) {
	if e.tickCallback != nil {
		e.tickCallback(deltaMs)
	}

	n, err := e.system.Tick(deltaMs, e.sink)
	errors.Log(err)

	if e.profilingEnabled.Load() {
		e.profiler.Tick(n)
	}
}

// Quit signals the tick loop to exit.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running.Load() {
		e.mu.Lock()
		e.engineTickRate = newRate
		e.mu.Unlock()
		return
	}

	// Non-blocking send; a pending update is replaced by the newer one
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

// SetTickCallback registers the function called each engine tick.
// Must be called before Run.
func (e *engine) SetTickCallback(callback func(deltaMs float32)) {
	e.tickCallback = callback
}
