package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/command"
	"github.com/Carmen-Shannon/oxy-anim/engine/curve"
	"github.com/Carmen-Shannon/oxy-anim/engine/game_object"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSystem() AnimationSystem {
	return NewAnimationSystem(WithSystemLogger(quietLogger()), WithSceneOptions(scene.WithApplyWorkers(1)))
}

// linearTranslation moves from `from` at 0s to `to` at `seconds`.
func linearTranslation(seconds float32, from, to [3]float32) curve.Channel {
	return curve.Channel{
		Path:          curve.PathTranslation,
		Interpolation: curve.InterpolationLinear,
		Times:         []float32{0, seconds},
		Values:        [][4]float32{{from[0], from[1], from[2]}, {to[0], to[1], to[2]}},
	}
}

// playing builds a scene with one object and one started group moving it along ch.
func playing(t *testing.T, sys AnimationSystem, key string, ch curve.Channel, params animation.PlaybackParams) (scene.Scene, common.ObjectID, common.GroupID) {
	t.Helper()
	sid := sys.CreateScene("main")
	sc, ok := sys.Scene(sid)
	require.True(t, ok)
	obj := sc.Add(game_object.NewGameObject())

	gid, err := sys.CreateGroup(sid, "")
	require.NoError(t, err)
	ref, err := sys.BakeCurve(key, ch)
	require.NoError(t, err)
	require.NoError(t, sys.AddTargetAnimation(sid, obj, gid, animation.NewAnimation(ref)))
	require.NoError(t, sys.Start(sid, gid, params))
	return sc, obj, gid
}

func objectPosition(t *testing.T, sc scene.Scene, id common.ObjectID) [3]float32 {
	t.Helper()
	obj := sc.Get(id)
	require.NotNil(t, obj)
	x, y, z := obj.Position()
	return [3]float32{x, y, z}
}

func TestTickAppliesInterpolatedValue(t *testing.T) {
	sys := newTestSystem()
	sc, obj, gid := playing(t, sys, "0channel0", linearTranslation(2, [3]float32{}, [3]float32{2, 1, 0}),
		animation.DefaultPlaybackParams(0, 2000))

	g, err := sys.GroupByName(sc.ID(), "group1")
	require.NoError(t, err)
	assert.Equal(t, gid, g.ID())

	n, err := sys.Tick(1500, sc)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pos := objectPosition(t, sc, obj)
	assert.InDelta(t, 1.5, pos[0], 1e-4)
	assert.InDelta(t, 0.75, pos[1], 1e-4)
	assert.InDelta(t, 0, pos[2], 1e-4)
	assert.Equal(t, 0, sys.Queue().Len())
}

func TestTicksWalkThreeKeyframePath(t *testing.T) {
	sys := newTestSystem()
	ch := curve.Channel{
		Path:          curve.PathTranslation,
		Interpolation: curve.InterpolationLinear,
		Times:         []float32{0, 1, 2},
		Values:        [][4]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}},
	}
	sc, obj, _ := playing(t, sys, "0channel0", ch, animation.DefaultPlaybackParams(0, 2000))

	rec := command.NewRecordingSink()
	for range 3 {
		_, err := sys.Tick(500, command.Fanout(sc, rec))
		require.NoError(t, err)
	}

	cmds := rec.Commands()
	require.Len(t, cmds, 3)
	last := cmds[len(cmds)-1]
	assert.Equal(t, obj, last.Target)
	assert.InDelta(t, 1500, last.Frame, 1e-3)
	for i, want := range []float32{1, 0.5, 0} {
		assert.InDelta(t, want, last.Value[i], 1e-5)
	}
	pos := objectPosition(t, sc, obj)
	assert.InDelta(t, 1, pos[0], 1e-5)
	assert.InDelta(t, 0.5, pos[1], 1e-5)
	assert.InDelta(t, 0, pos[2], 1e-5)
}

func TestAdvanceIsDeterministic(t *testing.T) {
	run := func() command.Batch {
		sys := newTestSystem()
		params := animation.DefaultPlaybackParams(0, 1000)
		params.Loop = animation.PingPong(3)
		sc, _, _ := playing(t, sys, "0channel0", linearTranslation(1, [3]float32{}, [3]float32{4, 0, 0}), params)

		rec := command.NewRecordingSink()
		for _, delta := range []float32{16, 33, 250, 7, 400, 1000, 16, 900} {
			_, err := sys.Tick(delta, command.Fanout(sc, rec))
			require.NoError(t, err)
		}
		return rec.Commands()
	}

	first := run()
	require.NotEmpty(t, first)
	assert.Equal(t, first, run())
}

func TestFiniteLoopStopsOnWindowEnd(t *testing.T) {
	sys := newTestSystem()
	params := animation.DefaultPlaybackParams(0, 2000)
	params.Loop = animation.Positive(2)
	sc, obj, gid := playing(t, sys, "0channel0", linearTranslation(2, [3]float32{}, [3]float32{2, 1, 0}), params)

	rec := command.NewRecordingSink()
	sink := command.Fanout(sc, rec)
	for range 3 {
		_, err := sys.Tick(1000, sink)
		require.NoError(t, err)
	}
	g, err := sys.Group(sc.ID(), gid)
	require.NoError(t, err)
	assert.Equal(t, animation.StatePlaying, g.State())

	// cumulative 4000ms reaches 2 * window length
	n, err := sys.Tick(1000, sink)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, animation.StateStopped, g.State())

	cmds := rec.Commands()
	last := cmds[len(cmds)-1]
	assert.InDelta(t, 2000, last.Frame, 1e-3)
	assert.InDelta(t, 2, last.Value[0], 1e-4)
	assert.InDelta(t, 1, last.Value[1], 1e-4)
	assert.InDelta(t, 2, objectPosition(t, sc, obj)[0], 1e-4)

	// a stopped group holds its value and emits nothing more
	n, err = sys.Tick(1000, sink)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMissingTargetSkipsGroupForTick(t *testing.T) {
	sys := newTestSystem()
	sc, _, gid := playing(t, sys, "0channel0", linearTranslation(2, [3]float32{}, [3]float32{2, 0, 0}),
		animation.DefaultPlaybackParams(0, 2000))

	ref, err := sys.BakeCurve("0channel0", linearTranslation(2, [3]float32{}, [3]float32{2, 0, 0}))
	require.NoError(t, err)
	require.NoError(t, sys.AddTargetAnimation(sc.ID(), 99, gid, animation.NewAnimation(ref)))

	n, err := sys.Tick(500, sc)
	require.NoError(t, err)
	assert.Zero(t, n)

	// progress still advanced while the group was skipped
	g, err := sys.Group(sc.ID(), gid)
	require.NoError(t, err)
	assert.InDelta(t, 500, g.Frame(), 1e-3)

	assert.Equal(t, common.ObjectID(99), sc.Add(game_object.NewGameObject(game_object.WithID(99))))
	n, err = sys.Tick(500, sc)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 1, objectPosition(t, sc, 99)[0], 1e-4)
}

func TestLaterGroupWinsSameAttribute(t *testing.T) {
	sys := newTestSystem()
	sc, obj, _ := playing(t, sys, "0channel0", linearTranslation(1, [3]float32{1, 0, 0}, [3]float32{1, 0, 0}),
		animation.DefaultPlaybackParams(0, 1000))

	second, err := sys.CreateGroup(sc.ID(), "override")
	require.NoError(t, err)
	ref, err := sys.BakeCurve("1channel0", linearTranslation(1, [3]float32{5, 0, 0}, [3]float32{5, 0, 0}))
	require.NoError(t, err)
	require.NoError(t, sys.AddTargetAnimation(sc.ID(), obj, second, animation.NewAnimation(ref)))
	require.NoError(t, sys.Start(sc.ID(), second, animation.DefaultPlaybackParams(0, 1000)))

	rec := command.NewRecordingSink()
	n, err := sys.Tick(100, command.Fanout(sc, rec))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	cmds := rec.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, second, cmds[1].Group)
	assert.InDelta(t, 5, objectPosition(t, sc, obj)[0], 1e-4)
}

func TestBakeCurveSharesByKey(t *testing.T) {
	sys := newTestSystem()
	ch := linearTranslation(1, [3]float32{}, [3]float32{1, 1, 1})

	a, err := sys.BakeCurve("0channel0", ch)
	require.NoError(t, err)
	b, err := sys.BakeCurve("0channel0", ch)
	require.NoError(t, err)
	assert.True(t, a.Same(b))
	assert.Equal(t, 2, sys.Cache().RefCount("0channel0", common.AttributePosition))

	_, err = sys.BakeCurve("0channel1", curve.Channel{Path: curve.PathWeights, Times: []float32{0}, Values: [][4]float32{{1}}})
	require.ErrorIs(t, err, curve.ErrUnsupportedChannelKind)
	assert.Equal(t, 1, sys.Cache().Len())
}

func TestLookupErrors(t *testing.T) {
	sys := newTestSystem()
	sid := sys.CreateScene("main")

	_, err := sys.CreateGroup(42, "walk")
	require.ErrorIs(t, err, ErrUnknownScene)

	gid, err := sys.CreateGroup(sid, "walk")
	require.NoError(t, err)
	_, err = sys.CreateGroup(sid, "walk")
	require.ErrorIs(t, err, animation.ErrDuplicateGroup)

	require.ErrorIs(t, sys.Start(sid, gid+10, animation.DefaultPlaybackParams(0, 10)), ErrUnknownGroup)
	require.ErrorIs(t, sys.Pause(sid, gid), animation.ErrInvalidStateTransition)
	require.ErrorIs(t, sys.Resume(sid, gid), animation.ErrInvalidStateTransition)
	require.ErrorIs(t, sys.Stop(sid, gid), animation.ErrInvalidStateTransition)
	require.Error(t, sys.AddTargetAnimation(sid, 1, gid, animation.Animation{}))

	require.NoError(t, sys.RemoveGroup(sid, gid))
	require.ErrorIs(t, sys.RemoveGroup(sid, gid), ErrUnknownGroup)

	require.NoError(t, sys.RemoveScene(sid))
	require.ErrorIs(t, sys.RemoveScene(sid), ErrUnknownScene)
	_, ok := sys.Scene(sid)
	assert.False(t, ok)
	assert.Empty(t, sys.Scenes())
}

func TestInactiveScenesAreNotAdvanced(t *testing.T) {
	sys := newTestSystem()
	sc, _, gid := playing(t, sys, "0channel0", linearTranslation(1, [3]float32{}, [3]float32{1, 0, 0}),
		animation.DefaultPlaybackParams(0, 1000))

	sc.SetActive(false)
	assert.Zero(t, sys.Advance(250))
	g, err := sys.Group(sc.ID(), gid)
	require.NoError(t, err)
	assert.InDelta(t, 0, g.Frame(), 1e-6)

	sc.SetActive(true)
	assert.Equal(t, 1, sys.Advance(250))
	require.NoError(t, sys.Flush(nil))
	assert.Zero(t, sys.Queue().Len())
}
