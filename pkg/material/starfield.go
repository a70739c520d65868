package material

import (
	"math"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
)

// StarfieldConfig shapes the background seen by escaped rays
type StarfieldConfig struct {
	Density        float64   `json:"density" toml:"density" yaml:"density"`       // Cells per unit of direction
	Threshold      float64   `json:"threshold" toml:"threshold" yaml:"threshold"` // Hash cutoff; higher is sparser
	Brightness     float64   `json:"brightness" toml:"brightness" yaml:"brightness"`
	NebulaScale    float64   `json:"nebulaScale" toml:"nebula_scale" yaml:"nebula_scale"`
	NebulaStrength float64   `json:"nebulaStrength" toml:"nebula_strength" yaml:"nebula_strength"`
	NebulaColorA   core.Vec3 `json:"nebulaColorA" toml:"nebula_color_a" yaml:"nebula_color_a"`
	NebulaColorB   core.Vec3 `json:"nebulaColorB" toml:"nebula_color_b" yaml:"nebula_color_b"`
}

// DefaultStarfieldConfig returns a sparse starfield with a faint nebula
func DefaultStarfieldConfig() StarfieldConfig {
	return StarfieldConfig{
		Density:        180,
		Threshold:      0.985,
		Brightness:     4.0,
		NebulaScale:    2.5,
		NebulaStrength: 0.06,
		NebulaColorA:   core.NewVec3(0.25, 0.1, 0.45),
		NebulaColorB:   core.NewVec3(0.05, 0.2, 0.4),
	}
}

// Starfield produces the background color for a ray direction
type Starfield struct {
	config StarfieldConfig
}

// NewStarfield creates a background generator
func NewStarfield(config StarfieldConfig) *Starfield {
	return &Starfield{config: config}
}

// Color returns the non-negative background radiance in direction dir
func (s *Starfield) Color(dir core.Vec3) core.Vec3 {
	d := dir.Normalize()
	color := s.stars(d)
	if s.config.NebulaStrength > 0 {
		color = color.Add(s.nebula(d))
	}
	return color.Clamp(0, math.MaxFloat64)
}

func (s *Starfield) stars(d core.Vec3) core.Vec3 {
	c := s.config
	if c.Threshold >= 1 || c.Density <= 0 || c.Brightness <= 0 {
		return core.Vec3{}
	}

	scaled := d.Multiply(c.Density)
	cell := scaled.Floor()
	h := Hash3(cell)
	if h <= c.Threshold {
		return core.Vec3{}
	}

	// Point-like falloff around a jittered star center inside the cell
	center := core.NewVec3(
		0.25+0.5*Hash3(cell.Add(core.NewVec3(11, 0, 0))),
		0.25+0.5*Hash3(cell.Add(core.NewVec3(0, 23, 0))),
		0.25+0.5*Hash3(cell.Add(core.NewVec3(0, 0, 37))),
	)
	dist := scaled.Subtract(cell).Subtract(center).Length()
	falloff := math.Pow(core.Clamp01(1-dist*2.2), 2)
	if falloff <= 0 {
		return core.Vec3{}
	}

	intensity := math.Pow((h-c.Threshold)/(1-c.Threshold), 3) * c.Brightness
	warmth := Hash3(cell.Add(core.NewVec3(5, 7, 13)))
	tint := core.NewVec3(0.8+0.2*warmth, 0.85+0.1*warmth, 1.0-0.25*warmth)
	return tint.Multiply(intensity * falloff)
}

func (s *Starfield) nebula(d core.Vec3) core.Vec3 {
	c := s.config
	p := d.Multiply(c.NebulaScale)
	cloud := core.Smoothstep(0.35, 0.85, FBM(p, 4))
	hue := FBM(p.Add(core.NewVec3(4.1, 1.3, 7.7)), 3)
	return c.NebulaColorA.Lerp(c.NebulaColorB, hue).Multiply(cloud * c.NebulaStrength)
}
