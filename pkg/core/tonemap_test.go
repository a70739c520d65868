package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToneMapChannel_Range(t *testing.T) {
	assert.Equal(t, 0.0, ToneMapChannel(0))

	inputs := []float64{1e-9, 0.01, 0.5, 1, 2, 10, 1e3, 1e6, 1e300, math.Inf(1)}
	prev := 0.0
	for _, c := range inputs {
		got := ToneMapChannel(c)
		assert.True(t, got >= 0 && got < 1, "f(%g) = %g out of [0,1)", c, got)
		assert.GreaterOrEqual(t, got, prev, "tone map must be non-decreasing at %g", c)
		prev = got
	}
}

func TestToneMapChannel_KnownValue(t *testing.T) {
	// f(1) = 0.5^(1/2.2)
	assert.InDelta(t, math.Pow(0.5, 1/2.2), ToneMapChannel(1), 1e-12)
}

func TestToneMapChannel_InvalidInputs(t *testing.T) {
	assert.Equal(t, 0.0, ToneMapChannel(-3))
	assert.Equal(t, 0.0, ToneMapChannel(math.NaN()))
	assert.Equal(t, 0.0, ToneMapChannel(math.Inf(-1)))
}

func TestToneMap_PerChannel(t *testing.T) {
	c := ToneMap(NewVec3(0, 1, -1))
	assert.Equal(t, 0.0, c.X)
	assert.InDelta(t, math.Pow(0.5, 1/2.2), c.Y, 1e-12)
	assert.Equal(t, 0.0, c.Z)
}
