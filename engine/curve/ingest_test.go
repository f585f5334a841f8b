package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

func TestIngestLinearPosition(t *testing.T) {
	kind, c, err := Ingest(Channel{
		Path:          PathTranslation,
		Interpolation: InterpolationLinear,
		Times:         []float32{0, 1, 2},
		Values:        [][4]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}},
	})
	require.NoError(t, err)
	assert.Equal(t, common.AttributePosition, kind)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, common.Tick(2000), c.EndFrame())
	assert.Equal(t, [4]float32{1, 0.5, 0, 0}, c.Sample(1500))
}

func TestIngestCubicSplineReadsTriplesByIndex(t *testing.T) {
	// (in, value, out) per timestamp; every slot is distinct so a shifted read would be visible
	values := [][4]float32{
		{10, 0, 0}, {1, 0, 0}, {11, 0, 0},
		{20, 0, 0}, {2, 0, 0}, {21, 0, 0},
		{30, 0, 0}, {3, 0, 0}, {31, 0, 0},
	}
	c, err := Bake(InterpolationCubicSpline, []float32{0, 0.5, 1}, values, Vec3FromComponents)
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	for i := 0; i < 3; i++ {
		k := c.Key(i)
		assert.Equal(t, values[3*i][0], k.InTangent.X, "keyframe %d in-tangent", i)
		assert.Equal(t, values[3*i+1][0], k.Value.X, "keyframe %d value", i)
		assert.Equal(t, values[3*i+2][0], k.OutTangent.X, "keyframe %d out-tangent", i)
	}
	assert.Equal(t, common.Tick(500), c.Key(1).Frame)
}

func TestIngestRejectsTangentCountMismatch(t *testing.T) {
	_, _, err := Ingest(Channel{
		Path:          PathScale,
		Interpolation: InterpolationCubicSpline,
		Times:         []float32{0, 1},
		Values:        [][4]float32{{}, {}, {}, {}, {}},
	})
	assert.ErrorIs(t, err, ErrMalformedKeyframeStream)

	_, _, err = Ingest(Channel{
		Path:          PathScale,
		Interpolation: InterpolationLinear,
		Times:         []float32{0, 1},
		Values:        [][4]float32{{}},
	})
	assert.ErrorIs(t, err, ErrMalformedKeyframeStream)
}

func TestIngestRejectsNonMonotonicTime(t *testing.T) {
	for name, times := range map[string][]float32{
		"decreasing":      {0, 1, 0.5},
		"duplicate":       {0, 1, 1},
		"rounds together": {0, 0.0001},
		"negative":        {-1, 0},
		"too long":        {0, 70},
		"empty":           {},
	} {
		values := make([][4]float32, len(times))
		_, _, err := Ingest(Channel{Path: PathTranslation, Interpolation: InterpolationStep, Times: times, Values: values})
		assert.ErrorIs(t, err, ErrMalformedKeyframeStream, name)
	}
}

func TestIngestRejectsWeights(t *testing.T) {
	_, _, err := Ingest(Channel{
		Path:   PathWeights,
		Times:  []float32{0},
		Values: [][4]float32{{1}},
	})
	assert.ErrorIs(t, err, ErrUnsupportedChannelKind)

	_, err = KindForPath("pointer")
	assert.ErrorIs(t, err, ErrUnsupportedChannelKind)
}

func TestIngestRotationNormalizesValues(t *testing.T) {
	kind, c, err := Ingest(Channel{
		Path:          PathRotation,
		Interpolation: InterpolationLinear,
		Times:         []float32{0, 1},
		Values:        [][4]float32{{0, 0, 0, 2}, {0, 0, 0, 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, common.AttributeRotation, kind)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, c.Sample(0))
}

func TestRebuildMatchesOriginal(t *testing.T) {
	_, original, err := Ingest(Channel{
		Path:          PathRotation,
		Interpolation: InterpolationCubicSpline,
		Times:         []float32{0, 1},
		Values: [][4]float32{
			{0, 0.1, 0, 0}, {0, 0, 0, 1}, {0, 0.2, 0, 0},
			{0, 0.3, 0, 0}, {0, 0.7071068, 0, 0.7071068}, {0, 0.4, 0, 0},
		},
	})
	require.NoError(t, err)

	rebuilt, err := Rebuild(common.AttributeRotation, original.Interpolation(), original.Keyframes())
	require.NoError(t, err)
	assert.Equal(t, original.Keyframes(), rebuilt.Keyframes())
	assert.Equal(t, original.Sample(420), rebuilt.Sample(420))

	_, err = Rebuild(common.AttributePosition, InterpolationLinear, nil)
	assert.ErrorIs(t, err, ErrMalformedKeyframeStream)
}
