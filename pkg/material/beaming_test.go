package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
)

func TestBeamingModel_TextRoundTrip(t *testing.T) {
	for _, model := range []BeamingModel{BeamingNone, BeamingVelocity, BeamingPositional} {
		text, err := model.MarshalText()
		require.NoError(t, err)

		var decoded BeamingModel
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, model, decoded)
	}
}

func TestBeamingModel_UnmarshalText(t *testing.T) {
	var m BeamingModel
	require.NoError(t, m.UnmarshalText([]byte(" Positional ")))
	assert.Equal(t, BeamingPositional, m)

	assert.Error(t, m.UnmarshalText([]byte("doppler")))
	_, err := BeamingModel(42).MarshalText()
	assert.Error(t, err)
}

func TestBeamingModel_Alignment(t *testing.T) {
	pos := core.NewVec3(8, 0, 0)

	assert.InDelta(t, 1.0, BeamingVelocity.Alignment(pos, core.NewVec3(0, 0, 1)), 1e-12)
	assert.InDelta(t, -1.0, BeamingVelocity.Alignment(pos, core.NewVec3(0, 0, -1)), 1e-12)
	assert.InDelta(t, 0.0, BeamingVelocity.Alignment(pos, core.NewVec3(0, -1, 0)), 1e-12)

	// Positional proxy ignores the ray direction
	assert.InDelta(t, -1.0, BeamingPositional.Alignment(pos, core.NewVec3(0, 0, 1)), 1e-12)
	assert.InDelta(t, 1.0, BeamingPositional.Alignment(core.NewVec3(-5, 0, 0), core.NewVec3(0, 0, 1)), 1e-12)
	assert.Equal(t, 0.0, BeamingPositional.Alignment(core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1)))

	assert.Equal(t, 0.0, BeamingNone.Alignment(pos, core.NewVec3(0, 0, 1)))
}

func TestBeamingConfig_Boost(t *testing.T) {
	cfg := DefaultDiskConfig().Beaming

	assert.InDelta(t, 1.0, cfg.Boost(0), 1e-12)
	assert.InDelta(t, 4.096, cfg.Boost(1), 1e-9)
	assert.InDelta(t, 0.064, cfg.Boost(-1), 1e-9)

	// Boost is monotone in alignment and never negative
	prev := -1.0
	for a := -1.0; a <= 1.0; a += 0.125 {
		b := cfg.Boost(a)
		assert.GreaterOrEqual(t, b, 0.0)
		assert.Greater(t, b, prev)
		prev = b
	}

	cfg.Model = BeamingNone
	assert.Equal(t, 1.0, cfg.Boost(1))
}

func TestBeamingConfig_ApplyDisabled(t *testing.T) {
	cfg := DefaultDiskConfig().Beaming
	cfg.Model = BeamingNone
	color := core.NewVec3(0.4, 0.3, 0.2)
	assert.Equal(t, color, cfg.Apply(color, 1))
}

func TestOrbitTangent(t *testing.T) {
	assert.Equal(t, core.NewVec3(0, 0, -1), OrbitTangent(core.NewVec3(3, 0, 0)))
	assert.Equal(t, core.NewVec3(1, 0, 0), OrbitTangent(core.NewVec3(0, 2, 5)))
	assert.Equal(t, core.Vec3{}, OrbitTangent(core.NewVec3(0, 4, 0)))
}
