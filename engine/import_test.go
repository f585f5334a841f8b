package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/curve"
	"github.com/Carmen-Shannon/oxy-anim/engine/game_object"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

var errDecode = errors.New("output accessor out of range")

// rigAsset has one animation whose channels exercise every import failure next to a good channel.
func rigAsset() *model.DecodedAsset {
	return &model.DecodedAsset{
		Name: "rig",
		Nodes: []model.DecodedNode{
			{Index: 0, Name: "hip", Parent: -1},
			{Index: 1, Name: "knee", Parent: 0},
		},
		Animations: []model.DecodedAnimation{{
			Index: 0,
			Name:  "wave",
			Channels: []model.DecodedChannel{
				{Index: 0, Node: 0, Path: "translation", Interpolation: "LINEAR",
					Times: []float32{0, 1}, Values: [][4]float32{{0, 0, 0}, {4, 0, 0}}},
				{Index: 1, Node: 1, Path: "weights", Interpolation: "LINEAR",
					Times: []float32{0, 1}, Values: [][4]float32{{0}, {1}}},
				{Index: 2, Node: 5, Path: "scale", Interpolation: "LINEAR",
					Times: []float32{0, 1}, Values: [][4]float32{{1, 1, 1}, {2, 2, 2}}},
				{Index: 3, Node: 0, Path: "rotation", Interpolation: "STEP",
					Times: []float32{1, 0}, Values: [][4]float32{{0, 0, 0, 1}, {0, 0, 0, 1}}},
				{Index: 4, Node: 0, Path: "translation", Interpolation: "LINEAR",
					Times: []float32{0, 1}, Values: [][4]float32{{9, 9, 9}, {9, 9, 9}}},
			},
			Failures: []model.ChannelFailure{{Animation: 0, Channel: 5, Err: errDecode}},
		}},
	}
}

func TestImportRecordsPerChannelFailures(t *testing.T) {
	sys := newTestSystem()
	sid := sys.CreateScene("main")
	sc, _ := sys.Scene(sid)
	hip := sc.Add(game_object.NewGameObject(game_object.WithName("hip")))
	knee := sc.Add(game_object.NewGameObject(game_object.WithName("knee")))

	report, err := ImportAnimations(sys, sid, rigAsset(), map[int]common.ObjectID{0: hip, 1: knee}, ImportOptions{AutoStart: true})
	require.NoError(t, err)

	require.Len(t, report.Groups, 1)
	imported := report.Groups[0]
	assert.Equal(t, "wave", imported.Animation)
	assert.Equal(t, 1, imported.Bound)
	assert.Equal(t, 1, report.Bound())
	assert.True(t, imported.Started)
	assert.Equal(t, common.Tick(0), imported.WindowStart)
	assert.Equal(t, common.Tick(1000), imported.WindowEnd)

	require.Len(t, report.Failures, 5)
	joined := report.Err()
	assert.ErrorIs(t, joined, errDecode)
	assert.ErrorIs(t, joined, curve.ErrUnsupportedChannelKind)
	assert.ErrorIs(t, joined, ErrUnmappedNode)
	assert.ErrorIs(t, joined, curve.ErrMalformedKeyframeStream)
	assert.ErrorIs(t, joined, ErrDuplicateBinding)

	g, err := sys.GroupByName(sid, "rig/wave")
	require.NoError(t, err)
	assert.Equal(t, imported.Group, g.ID())
	assert.Equal(t, animation.StatePlaying, g.State())
	assert.True(t, sys.Cache().Contains("rig/0channel0", common.AttributePosition))

	_, err = sys.Tick(250, sc)
	require.NoError(t, err)
	assert.InDelta(t, 1, objectPosition(t, sc, hip)[0], 1e-4)
}

func TestReimportReusesGroupAndCurves(t *testing.T) {
	sys := newTestSystem()
	sid := sys.CreateScene("main")
	sc, _ := sys.Scene(sid)
	hip := sc.Add(game_object.NewGameObject())
	targets := map[int]common.ObjectID{0: hip}

	first, err := ImportAnimations(sys, sid, rigAsset(), targets, ImportOptions{})
	require.NoError(t, err)
	second, err := ImportAnimations(sys, sid, rigAsset(), targets, ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, first.Groups[0].Group, second.Groups[0].Group)
	assert.Zero(t, second.Bound())
	assert.Equal(t, 1, sys.Cache().Len())
	assert.Equal(t, 1, sys.Cache().RefCount("rig/0channel0", common.AttributePosition))

	g, err := sys.Group(sid, first.Groups[0].Group)
	require.NoError(t, err)
	assert.Equal(t, animation.StateIdle, g.State())
}

func TestImportUnknownScene(t *testing.T) {
	_, err := ImportAnimations(newTestSystem(), 7, rigAsset(), nil, ImportOptions{})
	require.ErrorIs(t, err, ErrUnknownScene)
}

func TestImportPlaybackOverride(t *testing.T) {
	sys := newTestSystem()
	sid := sys.CreateScene("main")
	sc, _ := sys.Scene(sid)
	hip := sc.Add(game_object.NewGameObject())

	override := animation.DefaultPlaybackParams(0, 0)
	override.Loop = animation.Once()
	override.Speed = 2

	report, err := ImportAnimations(sys, sid, rigAsset(), map[int]common.ObjectID{0: hip}, ImportOptions{AutoStart: true, Playback: &override})
	require.NoError(t, err)
	require.True(t, report.Groups[0].Started)

	g, err := sys.Group(sid, report.Groups[0].Group)
	require.NoError(t, err)
	assert.Equal(t, common.Tick(1000), g.Params().WindowEnd)
	assert.Equal(t, float32(2), g.Params().Speed)

	// twice the speed finishes the one second window in half a second
	_, err = sys.Tick(500, sc)
	require.NoError(t, err)
	assert.Equal(t, animation.StateStopped, g.State())
	assert.InDelta(t, 4, objectPosition(t, sc, hip)[0], 1e-4)
}
