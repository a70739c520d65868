package material

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
)

func randomDirections(n int, seed int64) []core.Vec3 {
	random := rand.New(rand.NewSource(seed))
	dirs := make([]core.Vec3, 0, n)
	for len(dirs) < n {
		v := core.NewVec3(random.Float64()*2-1, random.Float64()*2-1, random.Float64()*2-1)
		if l := v.LengthSquared(); l > 1e-6 && l <= 1 {
			dirs = append(dirs, v.Normalize())
		}
	}
	return dirs
}

func TestStarfield_NonNegativeAndDeterministic(t *testing.T) {
	sf := NewStarfield(DefaultStarfieldConfig())
	for _, d := range randomDirections(2000, 7) {
		c := sf.Color(d)
		assert.True(t, c.X >= 0 && c.Y >= 0 && c.Z >= 0, "negative background %v for %v", c, d)
		assert.True(t, c.IsFinite())
		assert.Equal(t, c, sf.Color(d))
	}
}

func TestStarfield_Sparse(t *testing.T) {
	cfg := DefaultStarfieldConfig()
	cfg.NebulaStrength = 0
	sf := NewStarfield(cfg)

	lit := 0
	dirs := randomDirections(4000, 11)
	for _, d := range dirs {
		if sf.Color(d).MaxComponent() > 0 {
			lit++
		}
	}
	assert.Less(t, float64(lit)/float64(len(dirs)), 0.05, "starfield should be sparse, got %d lit of %d", lit, len(dirs))
}

func TestStarfield_DenseThresholdProducesStars(t *testing.T) {
	cfg := DefaultStarfieldConfig()
	cfg.NebulaStrength = 0
	cfg.Threshold = 0
	sf := NewStarfield(cfg)

	lit := 0
	for _, d := range randomDirections(500, 3) {
		if sf.Color(d).MaxComponent() > 0 {
			lit++
		}
	}
	assert.Greater(t, lit, 0)
}

func TestStarfield_Disabled(t *testing.T) {
	cfg := DefaultStarfieldConfig()
	cfg.Threshold = 1
	cfg.NebulaStrength = 0
	sf := NewStarfield(cfg)
	for _, d := range randomDirections(200, 5) {
		assert.Equal(t, core.Vec3{}, sf.Color(d))
	}
}

func TestStarfield_NebulaIsFaint(t *testing.T) {
	cfg := DefaultStarfieldConfig()
	cfg.Threshold = 1
	sf := NewStarfield(cfg)
	for _, d := range randomDirections(500, 9) {
		assert.LessOrEqual(t, sf.Color(d).MaxComponent(), cfg.NebulaStrength)
	}
}

func TestNoise_Range(t *testing.T) {
	random := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		p := core.NewVec3(random.Float64()*200-100, random.Float64()*200-100, random.Float64()*200-100)
		h := Hash3(p.Floor())
		n := ValueNoise(p)
		f := FBM(p, 5)
		assert.True(t, h >= 0 && h < 1, "hash out of range: %v", h)
		assert.True(t, n >= 0 && n < 1, "noise out of range: %v", n)
		assert.True(t, f >= 0 && f < 1, "fbm out of range: %v", f)
		assert.Equal(t, n, ValueNoise(p))
	}
	assert.Equal(t, 0.0, FBM(core.NewVec3(1, 2, 3), 0))
}

func TestValueNoise_MatchesHashAtLatticePoints(t *testing.T) {
	for _, p := range []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(3, -2, 7), core.NewVec3(-11, 4, 0)} {
		assert.InDelta(t, Hash3(p), ValueNoise(p), 1e-12)
	}
}
