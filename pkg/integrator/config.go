package integrator

import (
	"fmt"
	"strings"
)

// Method selects the per-step integration scheme
type Method int

const (
	// MethodEuler is a semi-implicit Euler step: velocity first, then position
	MethodEuler Method = iota
	// MethodRK4 is classic fourth-order Runge-Kutta on position and velocity
	MethodRK4
)

// String returns the config name of the method
func (m Method) String() string {
	switch m {
	case MethodEuler:
		return "euler"
	case MethodRK4:
		return "rk4"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler
func (m Method) MarshalText() ([]byte, error) {
	if m != MethodEuler && m != MethodRK4 {
		return nil, fmt.Errorf("unknown integration method %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Method) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "euler":
		*m = MethodEuler
	case "rk4", "runge-kutta":
		*m = MethodRK4
	default:
		return fmt.Errorf("unknown integration method %q (want euler or rk4)", string(text))
	}
	return nil
}

// Config contains the gravitational field and ray-march parameters
type Config struct {
	HorizonRadius     float64 `json:"horizonRadius" toml:"horizon_radius" yaml:"horizon_radius"` // Capture threshold
	MaxDistance       float64 `json:"maxDistance" toml:"max_distance" yaml:"max_distance"`       // Escape radius
	MaxSteps          int     `json:"maxSteps" toml:"max_steps" yaml:"max_steps"`
	Method            Method  `json:"method" toml:"method" yaml:"method"`
	StepSize          float64 `json:"stepSize" toml:"step_size" yaml:"step_size"` // Step per unit of radius
	MinStepSize       float64 `json:"minStepSize" toml:"min_step_size" yaml:"min_step_size"`
	MaxStepSize       float64 `json:"maxStepSize" toml:"max_step_size" yaml:"max_step_size"`
	CloseRadius       float64 `json:"closeRadius" toml:"close_radius" yaml:"close_radius"` // Steps are halved inside this radius
	FrameDragStrength float64 `json:"frameDragStrength" toml:"frame_drag_strength" yaml:"frame_drag_strength"`
	RadiusFloor       float64 `json:"radiusFloor" toml:"radius_floor" yaml:"radius_floor"`
	OpaqueThreshold   float64 `json:"opaqueThreshold" toml:"opaque_threshold" yaml:"opaque_threshold"`
	Absorption        float64 `json:"absorption" toml:"absorption" yaml:"absorption"` // Disk opacity per unit length
}

// DefaultConfig returns the Euler configuration used by the classic scene
func DefaultConfig() Config {
	return Config{
		HorizonRadius:     1.0,
		MaxDistance:       60.0,
		MaxSteps:          80,
		Method:            MethodEuler,
		StepSize:          0.08,
		MinStepSize:       0.02,
		MaxStepSize:       2.5,
		CloseRadius:       3.0,
		FrameDragStrength: 0,
		RadiusFloor:       1e-3,
		OpaqueThreshold:   0.01,
		Absorption:        6.0,
	}
}

// Validate reports configuration values the marcher cannot work with
func (c Config) Validate() error {
	switch {
	case c.HorizonRadius <= 0:
		return fmt.Errorf("horizon radius must be positive, got %g", c.HorizonRadius)
	case c.MaxDistance <= c.HorizonRadius:
		return fmt.Errorf("max distance %g must exceed horizon radius %g", c.MaxDistance, c.HorizonRadius)
	case c.MaxSteps <= 0:
		return fmt.Errorf("max steps must be positive, got %d", c.MaxSteps)
	case c.StepSize <= 0:
		return fmt.Errorf("step size must be positive, got %g", c.StepSize)
	case c.MinStepSize <= 0 || c.MaxStepSize < c.MinStepSize:
		return fmt.Errorf("step size bounds must satisfy 0 < min <= max, got [%g, %g]", c.MinStepSize, c.MaxStepSize)
	case c.RadiusFloor <= 0:
		return fmt.Errorf("radius floor must be positive, got %g", c.RadiusFloor)
	case c.OpaqueThreshold < 0 || c.OpaqueThreshold >= 1:
		return fmt.Errorf("opaque threshold must be in [0, 1), got %g", c.OpaqueThreshold)
	case c.Absorption < 0:
		return fmt.Errorf("absorption must be non-negative, got %g", c.Absorption)
	case c.Method != MethodEuler && c.Method != MethodRK4:
		return fmt.Errorf("unknown integration method %d", int(c.Method))
	}
	return nil
}
