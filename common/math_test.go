package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecondsToTick(t *testing.T) {
	tests := []struct {
		seconds float32
		want    Tick
	}{
		{0, 0},
		{1, 1000},
		{0.0004, 0},
		{0.0006, 1},
		{2.5, 2500},
		{65.535, 65535},
	}
	for _, tt := range tests {
		got, err := SecondsToTick(tt.seconds)
		require.NoError(t, err, "seconds %v", tt.seconds)
		assert.Equal(t, tt.want, got, "seconds %v", tt.seconds)
	}
}

func TestSecondsToTickOutOfRange(t *testing.T) {
	for _, s := range []float32{-0.01, 65.6, float32(math.NaN()), float32(math.Inf(1))} {
		_, err := SecondsToTick(s)
		assert.ErrorIs(t, err, ErrTickOutOfRange, "seconds %v", s)
	}
}

func TestHermiteBasisEndpoints(t *testing.T) {
	h00, h10, h01, h11 := HermiteBasis(0)
	assert.Equal(t, []float32{1, 0, 0, 0}, []float32{h00, h10, h01, h11})

	h00, h10, h01, h11 = HermiteBasis(1)
	assert.Equal(t, []float32{0, 0, 1, 0}, []float32{h00, h10, h01, h11})

	h00, _, h01, _ = HermiteBasis(0.5)
	assert.InDelta(t, 1, h00+h01, 1e-6)
}

func TestAttributeKindRoundTrip(t *testing.T) {
	for _, k := range AttributeKinds {
		parsed, err := ParseAttributeKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
		assert.True(t, k.Valid())
	}

	_, err := ParseAttributeKind("weights")
	assert.Error(t, err)
	assert.False(t, AttributeKind(9).Valid())
	assert.Equal(t, "attribute(9)", AttributeKind(9).String())
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
	assert.Equal(t, float32(2), Coalesce(float32(0), 2))
}
