package material

import (
	"math"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
)

// TextureFilter selects how texels are reconstructed
type TextureFilter int

const (
	FilterNearest TextureFilter = iota
	FilterBilinear
)

// ImageTexture provides color from a 2D image. U always wraps around; V wraps
// too unless ClampV is set.
type ImageTexture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major: Pixels[y*Width + x]
	Filter TextureFilter
	ClampV bool // V is clamped to the edge rows
}

// NewImageTexture creates a new image texture using nearest-neighbor filtering
func NewImageTexture(width, height int, pixels []core.Vec3) *ImageTexture {
	return &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// NewFilteredImageTexture creates an image texture with the given filter
func NewFilteredImageTexture(width, height int, pixels []core.Vec3, filter TextureFilter) *ImageTexture {
	t := NewImageTexture(width, height, pixels)
	t.Filter = filter
	return t
}

// NewDiskTexture creates a texture addressed in disk space: U around the disk
// wraps, V from the inner edge (0) to the outer edge (1) is clamped.
func NewDiskTexture(width, height int, pixels []core.Vec3, filter TextureFilter) *ImageTexture {
	t := NewFilteredImageTexture(width, height, pixels, filter)
	t.ClampV = true
	return t
}

// Evaluate samples the texture at the given UV coordinates.
// V=0 is the bottom row of the image, V=1 the top.
func (t *ImageTexture) Evaluate(uv core.Vec2) core.Vec3 {
	if t.Width <= 0 || t.Height <= 0 || len(t.Pixels) < t.Width*t.Height {
		return core.Vec3{}
	}

	u := core.Fract(uv.X)
	var v float64
	if t.ClampV {
		v = core.Clamp01(uv.Y)
	} else {
		v = core.Fract(uv.Y)
	}

	if t.Filter == FilterBilinear {
		return t.bilinear(u, v)
	}

	// Clamp guards against u*Width rounding up to Width
	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int((1.0-v)*float64(t.Height)), t.Height-1)
	return t.texel(x, y)
}

func (t *ImageTexture) bilinear(u, v float64) core.Vec3 {
	fx := u*float64(t.Width) - 0.5
	fy := (1.0-v)*float64(t.Height) - 0.5
	x0 := math.Floor(fx)
	y0 := math.Floor(fy)
	tx := fx - x0
	ty := fy - y0

	ix, iy := int(x0), int(y0)
	top := t.texel(ix, iy).Lerp(t.texel(ix+1, iy), tx)
	bottom := t.texel(ix, iy+1).Lerp(t.texel(ix+1, iy+1), tx)
	return top.Lerp(bottom, ty)
}

// texel fetches a pixel, wrapping x and wrapping or clamping y
func (t *ImageTexture) texel(x, y int) core.Vec3 {
	x %= t.Width
	if x < 0 {
		x += t.Width
	}
	if t.ClampV {
		y = min(max(y, 0), t.Height-1)
	}
	y %= t.Height
	if y < 0 {
		y += t.Height
	}
	return t.Pixels[y*t.Width+x]
}
