package material

import (
	"fmt"
	"math"
	"strings"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
)

// BeamingModel selects the Doppler beaming heuristic. Both heuristics are
// stylized approximations chosen for their look; neither is derived from
// relativistic kinematics.
type BeamingModel int

const (
	// BeamingNone disables brightness boost and color tint
	BeamingNone BeamingModel = iota
	// BeamingVelocity scores how much the local orbital velocity points back along the ray
	BeamingVelocity
	// BeamingPositional uses the horizontal offset from the center as a proxy for approach speed
	BeamingPositional
)

var beamingNames = map[BeamingModel]string{
	BeamingNone:       "none",
	BeamingVelocity:   "velocity",
	BeamingPositional: "positional",
}

// String returns the config name of the model
func (b BeamingModel) String() string {
	if name, ok := beamingNames[b]; ok {
		return name
	}
	return fmt.Sprintf("BeamingModel(%d)", int(b))
}

// MarshalText implements encoding.TextMarshaler
func (b BeamingModel) MarshalText() ([]byte, error) {
	if _, ok := beamingNames[b]; !ok {
		return nil, fmt.Errorf("unknown beaming model %d", int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (b *BeamingModel) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for model, n := range beamingNames {
		if n == name {
			*b = model
			return nil
		}
	}
	return fmt.Errorf("unknown beaming model %q (want none, velocity or positional)", string(text))
}

// OrbitTangent returns the unit direction of disk motion at pos for
// rotation about +Y. It is zero on the axis.
func OrbitTangent(pos core.Vec3) core.Vec3 {
	return core.NewVec3(pos.Z, 0, -pos.X).Normalize()
}

// Alignment scores approach toward the viewer in [-1, 1]: positive for
// material moving toward the camera, negative for material receding.
func (b BeamingModel) Alignment(pos, rayDir core.Vec3) float64 {
	switch b {
	case BeamingVelocity:
		return core.Clamp(-OrbitTangent(pos).Dot(rayDir.Normalize()), -1, 1)
	case BeamingPositional:
		r := math.Hypot(pos.X, pos.Z)
		if r == 0 {
			return 0
		}
		return core.Clamp(-pos.X/r, -1, 1)
	default:
		return 0
	}
}

// BeamingConfig shapes the brightness boost and tint
type BeamingConfig struct {
	Model      BeamingModel `json:"model" toml:"model" yaml:"model"`
	Strength   float64      `json:"strength" toml:"strength" yaml:"strength"`       // Linear gain on alignment
	Exponent   float64      `json:"exponent" toml:"exponent" yaml:"exponent"`       // Power-curve exponent for the boost
	BlueTint   core.Vec3    `json:"blueTint" toml:"blue_tint" yaml:"blue_tint"`     // Tint for approaching material
	RedTint    core.Vec3    `json:"redTint" toml:"red_tint" yaml:"red_tint"`        // Tint for receding material
	TintAmount float64      `json:"tintAmount" toml:"tint_amount" yaml:"tint_amount"` // 0 = no tint
}

// Boost returns the non-negative brightness multiplier for an alignment score
func (c BeamingConfig) Boost(align float64) float64 {
	if c.Model == BeamingNone {
		return 1
	}
	return math.Pow(core.Clamp(1+c.Strength*align, 0, 2), c.Exponent)
}

// Apply brightens and blueshifts approaching material, dims and redshifts receding material
func (c BeamingConfig) Apply(color core.Vec3, align float64) core.Vec3 {
	if c.Model == BeamingNone {
		return color
	}
	tint := c.RedTint.Lerp(c.BlueTint, core.Smoothstep(-1, 1, align))
	shifted := color.Lerp(color.MultiplyVec(tint), core.Clamp01(c.TintAmount))
	return shifted.Multiply(c.Boost(align))
}
