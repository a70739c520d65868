package renderer

import (
	"math/rand"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
)

// Camera maps pixel coordinates to the normalized device coordinates consumed
// by a shader. The vertical axis spans [-1, 1], top to bottom; the horizontal
// axis is scaled by the aspect ratio.
type Camera struct {
	width  int
	height int
	aspect float64
	jitter bool
}

// NewCamera creates a pixel camera for a width x height viewport. With jitter
// enabled every sample is offset randomly inside its pixel; otherwise samples
// land on the pixel center.
func NewCamera(width, height int, jitter bool) *Camera {
	c := &Camera{
		width:  max(width, 1),
		height: max(height, 1),
		jitter: jitter,
	}
	c.aspect = float64(c.width) / float64(c.height)
	return c
}

// NDC returns the device coordinate of a sample in pixel (i, j)
func (c *Camera) NDC(i, j int, random *rand.Rand) core.Vec2 {
	jx, jy := 0.5, 0.5
	if c.jitter && random != nil {
		jx, jy = random.Float64(), random.Float64()
	}
	x := float64(i) + jx
	y := float64(j) + jy
	return core.Vec2{
		X: (2*x/float64(c.width) - 1) * c.aspect,
		Y: 1 - 2*y/float64(c.height),
	}
}

// AspectRatio returns width / height
func (c *Camera) AspectRatio() float64 {
	return c.aspect
}
