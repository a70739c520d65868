package integrator

import (
	"github.com/df07/go-blackhole-raymarcher/pkg/core"
	"github.com/df07/go-blackhole-raymarcher/pkg/material"
)

// Volume is an emissive, absorbing medium sampled along the bent ray
type Volume interface {
	Sample(pos, dir core.Vec3, frame *core.FrameContext) material.DiskSample
	Extent() material.DiskExtent
}

// Background is the radiance seen by rays that escape
type Background interface {
	Color(dir core.Vec3) core.Vec3
}

// Outcome records why a ray stopped
type Outcome int

const (
	// OutcomeExhausted means the step budget ran out
	OutcomeExhausted Outcome = iota
	// OutcomeAbsorbed means the ray fell inside the horizon
	OutcomeAbsorbed
	// OutcomeEscaped means the ray left the max distance moving outward
	OutcomeEscaped
	// OutcomeOpaque means accumulated material blocked all further light
	OutcomeOpaque
)

// String returns a short name for the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeAbsorbed:
		return "absorbed"
	case OutcomeEscaped:
		return "escaped"
	case OutcomeOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// TraceResult is the integrated radiance of one ray
type TraceResult struct {
	Color         core.Vec3 // Accumulated HDR color, including the background for escaped rays
	Transmittance float64   // Remaining fraction of light, in [0, 1]
	Outcome       Outcome
	Steps         int
	Direction     core.Vec3 // Final unit direction
}

// StepRecord is the ray state after one integration step, reported to observers
type StepRecord struct {
	Step          int
	Pos           core.Vec3
	Dir           core.Vec3
	StepSize      float64
	Color         core.Vec3
	Transmittance float64
}

// Marcher integrates rays through the gravity field and composites the disk
// and background front to back. It holds no per-ray state and is safe for
// concurrent use.
type Marcher struct {
	config     Config
	volume     Volume
	background Background
}

// NewMarcher creates a marcher. volume and background may be nil.
func NewMarcher(config Config, volume Volume, background Background) *Marcher {
	return &Marcher{
		config:     config,
		volume:     volume,
		background: background,
	}
}

// Config returns the marcher configuration
func (m *Marcher) Config() Config {
	return m.config
}

// Shade is the per-pixel entry point: it builds the camera ray for ndc,
// traces it and tone-maps the result into [0, 1).
func (m *Marcher) Shade(ndc core.Vec2, frame *core.FrameContext) core.Vec3 {
	return core.ToneMap(m.RayColor(frame.Camera.Ray(ndc), frame))
}

// RayColor returns the HDR color for a ray
func (m *Marcher) RayColor(ray core.Ray, frame *core.FrameContext) core.Vec3 {
	return m.Trace(ray, frame).Color
}

// Trace integrates a single ray
func (m *Marcher) Trace(ray core.Ray, frame *core.FrameContext) TraceResult {
	return m.TraceObserved(ray, frame, nil)
}

// TraceObserved integrates a single ray, calling observe after every step
func (m *Marcher) TraceObserved(ray core.Ray, frame *core.FrameContext, observe func(StepRecord)) TraceResult {
	cfg := m.config
	state := NewRayState(ray.Origin, ray.Direction)
	field := m.field(frame, state.H2)

	var extent material.DiskExtent
	if m.volume != nil {
		extent = m.volume.Extent()
	}

	result := TraceResult{Transmittance: 1, Outcome: OutcomeExhausted}
	for step := 0; ; step++ {
		r := state.Radius()
		if r < cfg.HorizonRadius {
			// Captured: nothing behind the horizon reaches the camera
			result.Transmittance = 0
			result.Outcome = OutcomeAbsorbed
			break
		}
		if r > cfg.MaxDistance && state.Pos.Dot(state.Dir) > 0 {
			if m.background != nil {
				result.Color = result.Color.Add(m.background.Color(state.Dir).Multiply(result.Transmittance))
			}
			result.Outcome = OutcomeEscaped
			break
		}
		if step >= cfg.MaxSteps {
			break
		}

		dt := AdaptiveStep(state.Pos, cfg, extent)
		state = m.advance(state, field, dt)
		result.Steps++

		if m.volume != nil {
			m.composite(&result, m.volume.Sample(state.Pos, state.Dir, frame), dt)
		}

		if observe != nil {
			observe(StepRecord{
				Step:          step,
				Pos:           state.Pos,
				Dir:           state.Dir,
				StepSize:      dt,
				Color:         result.Color,
				Transmittance: result.Transmittance,
			})
		}

		if result.Transmittance < cfg.OpaqueThreshold {
			result.Outcome = OutcomeOpaque
			break
		}
	}

	result.Direction = state.Dir
	return result
}

// composite blends one disk sample into the running color front to back
func (m *Marcher) composite(result *TraceResult, sample material.DiskSample, dt float64) {
	if sample.Alpha <= 0 {
		return
	}
	stepAlpha := core.Clamp01(core.Clamp01(sample.Alpha) * dt * m.config.Absorption)
	result.Color = result.Color.Add(sample.Color.Multiply(result.Transmittance * stepAlpha))
	result.Transmittance *= 1 - stepAlpha
}

func (m *Marcher) advance(state RayState, field Field, dt float64) RayState {
	if m.config.Method == MethodRK4 {
		return StepRK4(state, field, dt)
	}
	return StepEuler(state, field, dt)
}

// field builds the gravity field from the frame uniforms. A non-positive
// mass falls back to 1 and spin is clamped to [0, 1].
func (m *Marcher) field(frame *core.FrameContext, h2 float64) Field {
	mass := frame.Mass
	if mass <= 0 {
		mass = 1
	}
	return Field{
		Mass:        mass,
		Spin:        core.Clamp01(frame.Spin),
		FrameDrag:   m.config.FrameDragStrength,
		RadiusFloor: m.config.RadiusFloor,
		H2:          h2,
	}
}
