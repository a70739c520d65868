package renderer

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
)

// BloomConfig controls the glow added around bright disk regions
type BloomConfig struct {
	Threshold float64 `json:"threshold" toml:"threshold" yaml:"threshold"` // Luminance in [0, 1] above which pixels glow
	Radius    float64 `json:"radius" toml:"radius" yaml:"radius"`          // Gaussian blur radius in pixels
	Strength  float64 `json:"strength" toml:"strength" yaml:"strength"`    // Scale applied to the glow before blending
}

// DefaultBloomConfig returns a subtle bloom
func DefaultBloomConfig() BloomConfig {
	return BloomConfig{
		Threshold: 0.7,
		Radius:    6,
		Strength:  0.6,
	}
}

// Bloom returns a copy of img with a bright-pass glow added on top. The input
// is not modified. A non-positive radius or strength returns a plain copy.
func Bloom(img image.Image, config BloomConfig) *image.RGBA {
	base := clone.AsRGBA(img)
	if config.Radius <= 0 || config.Strength <= 0 {
		return base
	}

	bounds := base.Bounds()
	bright := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := base.RGBAAt(x, y)
			lum := (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255
			if lum <= config.Threshold {
				bright.SetRGBA(x, y, color.RGBA{A: 255})
				continue
			}
			bright.SetRGBA(x, y, color.RGBA{
				R: scaleChannel(c.R, config.Strength),
				G: scaleChannel(c.G, config.Strength),
				B: scaleChannel(c.B, config.Strength),
				A: 255,
			})
		}
	}

	glow := blur.Gaussian(bright, config.Radius)
	return blend.Add(base, glow)
}

func scaleChannel(c uint8, s float64) uint8 {
	v := float64(c) * s
	if v > 255 {
		return 255
	}
	return uint8(v)
}
