package core

import "math"

// CameraState is the per-frame view basis used for ray generation
type CameraState struct {
	Position Vec3    `json:"position" toml:"position" yaml:"position"`
	Forward  Vec3    `json:"forward" toml:"forward" yaml:"forward"`
	Up       Vec3    `json:"up" toml:"up" yaml:"up"`
	FovScale float64 `json:"fovScale" toml:"fov_scale" yaml:"fov_scale"` // 1 = plain basis, tan(vfov/2) for look-at cameras
}

// LookAt builds a camera at position looking at target with the given vertical field of view
func LookAt(position, target, up Vec3, vfovDegrees float64) CameraState {
	return CameraState{
		Position: position,
		Forward:  target.Subtract(position).Normalize(),
		Up:       up.Normalize(),
		FovScale: math.Tan(vfovDegrees * math.Pi / 360.0),
	}
}

// Basis returns the orthonormal forward, right and up vectors.
// A zero-length forward vector is not handled.
func (c CameraState) Basis() (forward, right, up Vec3) {
	forward = c.Forward.Normalize()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

// RayDirection returns the unit direction through the aspect-corrected
// normalized device coordinate ndc.
func (c CameraState) RayDirection(ndc Vec2) Vec3 {
	forward, right, up := c.Basis()
	scale := c.FovScale
	if scale <= 0 {
		scale = 1
	}
	offset := right.Multiply(ndc.X).Add(up.Multiply(ndc.Y)).Multiply(scale)
	return forward.Add(offset).Normalize()
}

// Ray returns the primary ray through ndc
func (c CameraState) Ray(ndc Vec2) Ray {
	return NewRay(c.Position, c.RayDirection(ndc))
}
