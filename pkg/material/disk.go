package material

import (
	"math"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
)

// DiskConfig describes the volumetric accretion disk lying in the XZ plane
type DiskConfig struct {
	InnerRadius      float64       `json:"innerRadius" toml:"inner_radius" yaml:"inner_radius"`
	OuterRadius      float64       `json:"outerRadius" toml:"outer_radius" yaml:"outer_radius"`
	Thickness        float64       `json:"thickness" toml:"thickness" yaml:"thickness"`    // Half-height of the vertical band
	EdgeWidth        float64       `json:"edgeWidth" toml:"edge_width" yaml:"edge_width"` // Radial fade-in/out width at both edges
	RotationSpeed    float64       `json:"rotationSpeed" toml:"rotation_speed" yaml:"rotation_speed"`
	HotColor         core.Vec3     `json:"hotColor" toml:"hot_color" yaml:"hot_color"`
	CoolColor        core.Vec3     `json:"coolColor" toml:"cool_color" yaml:"cool_color"`
	Emission         float64       `json:"emission" toml:"emission" yaml:"emission"`
	TemperaturePower float64       `json:"temperaturePower" toml:"temperature_power" yaml:"temperature_power"`
	NoiseScale       float64       `json:"noiseScale" toml:"noise_scale" yaml:"noise_scale"`
	NoiseOctaves     int           `json:"noiseOctaves" toml:"noise_octaves" yaml:"noise_octaves"`
	Beaming          BeamingConfig `json:"beaming" toml:"beaming" yaml:"beaming"`
}

// DefaultDiskConfig returns a disk bounded just outside the ISCO-like inner radius
func DefaultDiskConfig() DiskConfig {
	return DiskConfig{
		InnerRadius:      3.0,
		OuterRadius:      14.0,
		Thickness:        0.3,
		EdgeWidth:        1.0,
		RotationSpeed:    2.5,
		HotColor:         core.NewVec3(1.0, 0.92, 0.75),
		CoolColor:        core.NewVec3(0.9, 0.28, 0.06),
		Emission:         3.0,
		TemperaturePower: 1.6,
		NoiseScale:       1.4,
		NoiseOctaves:     4,
		Beaming: BeamingConfig{
			Model:      BeamingVelocity,
			Strength:   0.6,
			Exponent:   3.0,
			BlueTint:   core.NewVec3(0.75, 0.85, 1.25),
			RedTint:    core.NewVec3(1.25, 0.7, 0.5),
			TintAmount: 0.6,
		},
	}
}

// DiskSample is the emitted color and local opacity density at one point.
// Alpha is in [0, 1].
type DiskSample struct {
	Color core.Vec3
	Alpha float64
}

// DiskExtent is the bounding band of the disk used for step-size control
type DiskExtent struct {
	InnerRadius float64
	OuterRadius float64
	Thickness   float64
}

// AccretionDisk samples the stylized emissive disk
type AccretionDisk struct {
	config DiskConfig
}

// NewAccretionDisk creates a disk sampler
func NewAccretionDisk(config DiskConfig) *AccretionDisk {
	return &AccretionDisk{config: config}
}

// Config returns the disk configuration
func (d *AccretionDisk) Config() DiskConfig {
	return d.config
}

// Extent returns the disk band
func (d *AccretionDisk) Extent() DiskExtent {
	return DiskExtent{
		InnerRadius: d.config.InnerRadius,
		OuterRadius: d.config.OuterRadius,
		Thickness:   d.config.Thickness,
	}
}

// RotationOffset is the angular pattern offset at cylindrical radius r after
// elapsed time t. Angular speed falls off as r^-1.5 so inner material turns faster.
func (d *AccretionDisk) RotationOffset(r, t float64) float64 {
	return d.config.RotationSpeed * t / math.Pow(max(r, 1e-3), 1.5)
}

// Density returns the geometric opacity at pos before pattern modulation.
// It is exactly zero outside the radial band [Inner, Outer] and at or
// beyond the vertical thickness.
func (d *AccretionDisk) Density(pos core.Vec3) float64 {
	c := d.config
	h := math.Abs(pos.Y)
	if h >= c.Thickness {
		return 0
	}
	r := math.Hypot(pos.X, pos.Z)
	if r < c.InnerRadius || r > c.OuterRadius {
		return 0
	}

	vertical := core.Smoothstep(0, 1, 1-h/c.Thickness)
	edge := min(c.EdgeWidth, 0.5*(c.OuterRadius-c.InnerRadius))
	radial := core.Smoothstep(c.InnerRadius, c.InnerRadius+edge, r) *
		(1 - core.Smoothstep(c.OuterRadius-edge, c.OuterRadius, r))
	return vertical * radial
}

// Sample returns the disk emission and opacity at pos for a ray travelling along dir
func (d *AccretionDisk) Sample(pos, dir core.Vec3, frame *core.FrameContext) DiskSample {
	density := d.Density(pos)
	if density <= 0 {
		return DiskSample{}
	}

	c := d.config
	r := math.Hypot(pos.X, pos.Z)
	angle := math.Atan2(pos.Z, pos.X) + d.RotationOffset(r, frame.Time)
	pattern := d.pattern(angle, r, frame.DiskTexture)

	// Temperature rises toward the inner edge; pattern brightness perturbs it
	radialT := core.Clamp01(1 - (r-c.InnerRadius)/(c.OuterRadius-c.InnerRadius))
	temperature := core.Clamp01(math.Pow(radialT, c.TemperaturePower) * (0.55 + 0.9*pattern))

	color := c.CoolColor.Lerp(c.HotColor, temperature).
		Multiply(c.Emission * (0.25 + 1.5*pattern) * (0.4 + 0.6*temperature))
	color = c.Beaming.Apply(color, c.Beaming.Model.Alignment(pos, dir))

	return DiskSample{
		Color: color,
		Alpha: core.Clamp01(density * (0.35 + 0.65*pattern)),
	}
}

// pattern returns the local brightness in [0, 1]. The texture is used only
// once it has been loaded.
func (d *AccretionDisk) pattern(angle, r float64, texture core.Texture) float64 {
	c := d.config
	if texture != nil {
		uv := core.NewVec2(
			core.Fract(angle/(2*math.Pi)),
			core.Clamp01((r-c.InnerRadius)/(c.OuterRadius-c.InnerRadius)),
		)
		return core.Clamp01(texture.Evaluate(uv).Luminance())
	}

	// Sampling on a circle keeps the pattern seamless across the angle wrap
	ring := c.NoiseScale * 2.0
	p := core.NewVec3(math.Cos(angle)*ring, math.Sin(angle)*ring, r*c.NoiseScale)
	streaks := FBM(p, c.NoiseOctaves)
	return core.Smoothstep(0.2, 0.85, streaks)
}
