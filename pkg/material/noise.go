package material

import (
	"math"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
)

// Hash3 maps a lattice point to a pseudo-random value in [0, 1).
// It is deterministic and stateless.
func Hash3(p core.Vec3) float64 {
	n := p.Dot(core.NewVec3(127.1, 311.7, 74.7))
	return core.Fract(math.Sin(n) * 43758.5453123)
}

// ValueNoise returns smoothly interpolated lattice noise in [0, 1)
func ValueNoise(p core.Vec3) float64 {
	cell := p.Floor()
	f := p.Subtract(cell)
	// Quintic fade avoids visible lattice seams
	u := core.NewVec3(fade(f.X), fade(f.Y), fade(f.Z))

	corner := func(dx, dy, dz float64) float64 {
		return Hash3(cell.Add(core.NewVec3(dx, dy, dz)))
	}

	x00 := core.Mix(corner(0, 0, 0), corner(1, 0, 0), u.X)
	x10 := core.Mix(corner(0, 1, 0), corner(1, 1, 0), u.X)
	x01 := core.Mix(corner(0, 0, 1), corner(1, 0, 1), u.X)
	x11 := core.Mix(corner(0, 1, 1), corner(1, 1, 1), u.X)

	y0 := core.Mix(x00, x10, u.Y)
	y1 := core.Mix(x01, x11, u.Y)
	return core.Mix(y0, y1, u.Z)
}

// FBM sums octaves of value noise and normalizes the result to [0, 1)
func FBM(p core.Vec3, octaves int) float64 {
	if octaves <= 0 {
		return 0
	}
	sum, norm := 0.0, 0.0
	amplitude := 0.5
	for i := 0; i < octaves; i++ {
		sum += amplitude * ValueNoise(p)
		norm += amplitude
		p = p.Multiply(2.03).Add(core.NewVec3(1.7, 9.2, 3.1))
		amplitude *= 0.5
	}
	return sum / norm
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}
