package integrator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
	"github.com/df07/go-blackhole-raymarcher/pkg/material"
)

func TestNewRayState(t *testing.T) {
	s := NewRayState(core.NewVec3(0, 0, -10), core.NewVec3(3, 0, 0))
	assert.Equal(t, core.NewVec3(1, 0, 0), s.Dir)
	assert.InDelta(t, 100.0, s.H2, 1e-12)
	assert.InDelta(t, 10.0, s.Radius(), 1e-12)
}

func TestFieldAcceleration_RadialPull(t *testing.T) {
	f := Field{Mass: 1, RadiusFloor: 1e-3, H2: 4}
	pos := core.NewVec3(3, 0, 4)
	a := f.Acceleration(pos)

	// Points straight at the center
	assert.Less(t, a.Dot(pos), 0.0)
	assert.InDelta(t, 0.0, a.Cross(pos).Length(), 1e-15)
	// |a| = 1.5 * M * h^2 / r^4
	assert.InDelta(t, 1.5*4/math.Pow(5, 4), a.Length(), 1e-12)

	// Doubling the distance divides the pull by 16
	far := f.Acceleration(pos.Multiply(2))
	assert.InDelta(t, a.Length()/16, far.Length(), 1e-15)
}

func TestFieldAcceleration_RadiusFloor(t *testing.T) {
	f := Field{Mass: 1, Spin: 1, FrameDrag: 1, RadiusFloor: 1e-3, H2: 1}
	for _, pos := range []core.Vec3{{}, core.NewVec3(1e-12, 0, 0), core.NewVec3(0, 1e-9, 1e-9)} {
		a := f.Acceleration(pos)
		assert.True(t, a.IsFinite(), "acceleration at %v is %v", pos, a)
	}
}

func TestFieldAcceleration_FrameDragging(t *testing.T) {
	pos := core.NewVec3(5, 0, 0)
	still := Field{Mass: 1, Spin: 0, FrameDrag: 2, RadiusFloor: 1e-3}
	assert.Equal(t, core.Vec3{}, still.Acceleration(pos), "no drag without spin and with zero angular momentum")

	spinning := Field{Mass: 1, Spin: 0.9, FrameDrag: 2, RadiusFloor: 1e-3}
	drag := spinning.Acceleration(pos)
	assert.Greater(t, drag.Length(), 0.0)
	// Tangential about the spin axis, same sense as the disk orbit
	assert.InDelta(t, 0.0, drag.Dot(pos), 1e-15)
	assert.InDelta(t, 0.0, drag.Dot(SpinAxis), 1e-15)
	assert.Greater(t, drag.Dot(material.OrbitTangent(pos)), 0.0)
	// Magnitude falls off as 1/r^4
	far := spinning.Acceleration(pos.Multiply(2))
	assert.InDelta(t, drag.Length()/16, far.Length(), 1e-15)

	// No drag on the spin axis itself
	assert.Equal(t, core.Vec3{}, spinning.Acceleration(core.NewVec3(0, 4, 0)))
}

func TestSteppersKeepUnitDirection(t *testing.T) {
	field := Field{Mass: 1, Spin: 0.8, FrameDrag: 3, RadiusFloor: 1e-3}
	steppers := map[string]func(RayState, Field, float64) RayState{
		"euler": StepEuler,
		"rk4":   StepRK4,
	}
	for name, stepper := range steppers {
		t.Run(name, func(t *testing.T) {
			s := NewRayState(core.NewVec3(0.5, 1, -8), core.NewVec3(0.1, -0.05, 1))
			f := field
			f.H2 = s.H2
			for i := 0; i < 200; i++ {
				s = stepper(s, f, 0.05)
				require.InDelta(t, 1.0, s.Dir.Length(), 1e-12, "step %d", i)
			}
		})
	}
}

func TestSteppersStraightWithoutGravity(t *testing.T) {
	s := NewRayState(core.NewVec3(0, 0, -10), core.NewVec3(1, 0, 0))
	f := Field{Mass: 0, RadiusFloor: 1e-3, H2: s.H2}

	euler := StepEuler(s, f, 0.5)
	rk4 := StepRK4(s, f, 0.5)
	expected := core.NewVec3(0.5, 0, -10)
	assert.InDelta(t, 0.0, euler.Pos.Subtract(expected).Length(), 1e-12)
	assert.InDelta(t, 0.0, rk4.Pos.Subtract(expected).Length(), 1e-12)
	assert.Equal(t, s.H2, rk4.H2)
}

func TestStepRK4MoreAccurateThanEuler(t *testing.T) {
	start := NewRayState(core.NewVec3(0, 0, -6), core.NewVec3(1, 0, 0.2))
	f := Field{Mass: 1, RadiusFloor: 1e-3, H2: start.H2}

	integrate := func(stepper func(RayState, Field, float64) RayState, dt float64, n int) RayState {
		s := start
		for i := 0; i < n; i++ {
			s = stepper(s, f, dt)
		}
		return s
	}

	reference := integrate(StepRK4, 0.005, 1000)
	euler := integrate(StepEuler, 0.5, 10)
	rk4 := integrate(StepRK4, 0.5, 10)

	eulerErr := euler.Pos.Subtract(reference.Pos).Length()
	rk4Err := rk4.Pos.Subtract(reference.Pos).Length()
	assert.Less(t, rk4Err, eulerErr)
}

func TestStepBendsTowardCenter(t *testing.T) {
	// A ray passing the hole sideways picks up a velocity component toward it
	s := NewRayState(core.NewVec3(0, 0, -4), core.NewVec3(1, 0, 0))
	f := Field{Mass: 1, RadiusFloor: 1e-3, H2: s.H2}
	next := StepRK4(s, f, 0.1)
	assert.Greater(t, next.Dir.Z, 0.0)
}

func TestAdaptiveStep(t *testing.T) {
	cfg := DefaultConfig()
	disk := material.DiskExtent{InnerRadius: 3, OuterRadius: 14, Thickness: 0.3}

	far := AdaptiveStep(core.NewVec3(0, 20, 0), cfg, disk)
	mid := AdaptiveStep(core.NewVec3(0, 8, 0), cfg, disk)
	near := AdaptiveStep(core.NewVec3(0, 2, 0), cfg, disk)
	assert.Greater(t, far, mid)
	assert.Greater(t, mid, near)
	assert.InDelta(t, cfg.StepSize*2*0.5, near, 1e-12, "halved inside the close radius")

	// Near the disk plane inside the band steps shrink to a fraction of the thickness
	nearDisk := AdaptiveStep(core.NewVec3(8, 0.1, 0), cfg, disk)
	assert.InDelta(t, 0.15, nearDisk, 1e-12)
	// The same radius well above the plane is unaffected
	assert.InDelta(t, cfg.StepSize*math.Hypot(8, 5), AdaptiveStep(core.NewVec3(8, 5, 0), cfg, disk), 1e-12)

	// Clamped on both ends
	assert.Equal(t, cfg.MaxStepSize, AdaptiveStep(core.NewVec3(0, 1000, 0), cfg, disk))
	assert.Equal(t, cfg.MinStepSize, AdaptiveStep(core.NewVec3(0, 0.01, 0), cfg, disk))
}
