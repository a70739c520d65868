package integrator

import (
	"math"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
	"github.com/df07/go-blackhole-raymarcher/pkg/material"
)

// SpinAxis is the fixed rotation axis of the black hole and its disk
var SpinAxis = core.NewVec3(0, 1, 0)

// RayState is the transient state of one ray during integration
type RayState struct {
	Pos core.Vec3
	Dir core.Vec3 // Unit direction, renormalized after every velocity update
	H2  float64   // Squared angular momentum |Pos x Dir|^2 at the origin
}

// NewRayState starts a ray at origin travelling along dir
func NewRayState(origin, dir core.Vec3) RayState {
	d := dir.Normalize()
	return RayState{
		Pos: origin,
		Dir: d,
		H2:  origin.Cross(d).LengthSquared(),
	}
}

// Radius returns the distance from the singularity
func (s RayState) Radius() float64 {
	return s.Pos.Length()
}

// Field is the simplified gravity field seen by a single ray
type Field struct {
	Mass        float64
	Spin        float64
	FrameDrag   float64
	RadiusFloor float64
	H2          float64
}

// Acceleration returns the bending acceleration at pos: a radial pull
// -1.5*M*h^2*p/r^5 plus, for a spinning hole, a tangential drag about the
// spin axis whose magnitude falls off as 1/r^4.
func (f Field) Acceleration(pos core.Vec3) core.Vec3 {
	r := max(pos.Length(), f.RadiusFloor)
	r2 := r * r
	invR5 := 1.0 / (r2 * r2 * r)

	accel := pos.Multiply(-1.5 * f.Mass * f.H2 * invR5)
	if f.Spin != 0 && f.FrameDrag != 0 {
		drag := SpinAxis.Cross(pos).Multiply(f.Spin * f.FrameDrag * f.Mass * invR5)
		accel = accel.Add(drag)
	}
	return accel
}

// StepEuler advances the ray by dt: velocity update, renormalize, then position
func StepEuler(s RayState, f Field, dt float64) RayState {
	dir := renormalize(s.Dir.Add(f.Acceleration(s.Pos).Multiply(dt)), s.Dir)
	return RayState{
		Pos: s.Pos.Add(dir.Multiply(dt)),
		Dir: dir,
		H2:  s.H2,
	}
}

// StepRK4 advances the ray by dt with fourth-order Runge-Kutta on (pos, vel)
func StepRK4(s RayState, f Field, dt float64) RayState {
	half := dt * 0.5

	k1p := s.Dir
	k1v := f.Acceleration(s.Pos)

	k2p := s.Dir.Add(k1v.Multiply(half))
	k2v := f.Acceleration(s.Pos.Add(k1p.Multiply(half)))

	k3p := s.Dir.Add(k2v.Multiply(half))
	k3v := f.Acceleration(s.Pos.Add(k2p.Multiply(half)))

	k4p := s.Dir.Add(k3v.Multiply(dt))
	k4v := f.Acceleration(s.Pos.Add(k3p.Multiply(dt)))

	sixth := dt / 6.0
	dp := k1p.Add(k2p.Multiply(2)).Add(k3p.Multiply(2)).Add(k4p)
	dv := k1v.Add(k2v.Multiply(2)).Add(k3v.Multiply(2)).Add(k4v)

	return RayState{
		Pos: s.Pos.Add(dp.Multiply(sixth)),
		Dir: renormalize(s.Dir.Add(dv.Multiply(sixth)), s.Dir),
		H2:  s.H2,
	}
}

// AdaptiveStep returns the step length at pos. Steps grow with distance from
// the center, halve inside the close radius, and shrink near the disk band.
func AdaptiveStep(pos core.Vec3, cfg Config, disk material.DiskExtent) float64 {
	r := max(pos.Length(), cfg.RadiusFloor)
	dt := cfg.StepSize * r
	if r < cfg.CloseRadius {
		dt *= 0.5
	}

	if disk.Thickness > 0 {
		h := math.Abs(pos.Y)
		cyl := math.Hypot(pos.X, pos.Z)
		if h < 2*disk.Thickness && cyl >= 0.9*disk.InnerRadius && cyl <= 1.1*disk.OuterRadius {
			dt = min(dt, 0.5*max(h, disk.Thickness))
		}
	}

	return core.Clamp(dt, cfg.MinStepSize, cfg.MaxStepSize)
}

// renormalize returns v as a unit vector, falling back when v collapses to zero
func renormalize(v, fallback core.Vec3) core.Vec3 {
	if v.LengthSquared() == 0 {
		return fallback
	}
	return v.Normalize()
}
