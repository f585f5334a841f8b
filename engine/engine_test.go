package engine

import (
	"bytes"
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/command"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
)

func TestRunTicksUntilQuit(t *testing.T) {
	sys := newTestSystem()
	sc, _, _ := playing(t, sys, "0channel0", linearTranslation(1, [3]float32{}, [3]float32{1, 0, 0}),
		animation.DefaultPlaybackParams(0, 1000))

	var logs bytes.Buffer
	rec := command.NewRecordingSink()
	e := NewEngine(
		WithSystem(sys),
		WithSink(command.Fanout(sc, rec)),
		WithTickRate(200),
		WithProfiling(true),
		WithProfiler(profiler.NewProfiler(profiler.WithUpdateInterval(0), profiler.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))),
	)
	assert.Same(t, sys, e.System())

	var ticks atomic.Int32
	e.SetTickCallback(func(deltaMs float32) {
		if ticks.Add(1) >= 3 {
			e.Quit()
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Run(ctx))

	assert.GreaterOrEqual(t, ticks.Load(), int32(3))
	assert.Len(t, rec.Batches(), int(ticks.Load()))
	assert.Contains(t, logs.String(), "commands_per_s=")

	// quitting again is a no-op
	e.Quit()
}

func TestRunStopsOnContext(t *testing.T) {
	e := NewEngine(WithLogger(quietLogger()), WithTickRate(1000))
	e.SetTickRate(500)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, e.Run(ctx), context.DeadlineExceeded)
}

func TestSetTickRateWhileRunning(t *testing.T) {
	e := NewEngine(WithLogger(quietLogger()), WithTickRate(1))

	var ticks atomic.Int32
	e.SetTickCallback(func(float32) {
		ticks.Add(1)
		e.Quit()
	})

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	// at 1Hz the first tick would take a second; raising the rate makes it arrive quickly
	require.Eventually(t, func() bool {
		e.SetTickRate(500)
		return ticks.Load() > 0
	}, 900*time.Millisecond, 5*time.Millisecond)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop")
	}
}
