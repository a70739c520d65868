package renderer

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
)

// DriverConfig is the fixed setup of a frame driver
type DriverConfig struct {
	Camera     core.CameraState
	Spin       float64
	Mass       float64
	OrbitSpeed float64 // Camera orbit about +Y, in radians per second of elapsed time
	StartTime  float64
	Textures   core.TextureSource // Optional
}

// FrameDriver accumulates elapsed time and produces the uniforms for each
// frame. It is not safe for concurrent use; one goroutine owns it.
type FrameDriver struct {
	config DriverConfig
	time   float64
}

// NewFrameDriver creates a driver starting at config.StartTime
func NewFrameDriver(config DriverConfig) *FrameDriver {
	return &FrameDriver{
		config: config,
		time:   max(config.StartTime, 0),
	}
}

// Advance moves the clock forward by dt seconds. Negative deltas are ignored
// so time never runs backwards.
func (d *FrameDriver) Advance(dt float64) {
	if dt > 0 {
		d.time += dt
	}
}

// Time returns the accumulated elapsed time
func (d *FrameDriver) Time() float64 {
	return d.time
}

// OrbitSpeed returns the current camera orbit speed
func (d *FrameDriver) OrbitSpeed() float64 {
	return d.config.OrbitSpeed
}

// SetOrbitSpeed changes the camera orbit speed for subsequent snapshots
func (d *FrameDriver) SetOrbitSpeed(speed float64) {
	d.config.OrbitSpeed = speed
}

// Snapshot returns the frame context for the current time and viewport
func (d *FrameDriver) Snapshot(width, height int) *core.FrameContext {
	frame := &core.FrameContext{
		Time:   d.time,
		Width:  width,
		Height: height,
		Camera: d.orbitCamera(),
		Spin:   d.config.Spin,
		Mass:   d.config.Mass,
	}
	if d.config.Textures != nil {
		frame.DiskTexture = d.config.Textures.Texture()
	}
	return frame
}

// orbitCamera rotates the base camera about the spin axis by OrbitSpeed * time
func (d *FrameDriver) orbitCamera() core.CameraState {
	base := d.config.Camera
	angle := d.config.OrbitSpeed * d.time
	if angle == 0 {
		return base
	}

	q := mgl64.QuatRotate(angle, mgl64.Vec3{0, 1, 0})
	rotate := func(v core.Vec3) core.Vec3 {
		r := q.Rotate(mgl64.Vec3{v.X, v.Y, v.Z})
		return core.NewVec3(r[0], r[1], r[2])
	}

	return core.CameraState{
		Position: rotate(base.Position),
		Forward:  rotate(base.Forward),
		Up:       rotate(base.Up),
		FovScale: base.FovScale,
	}
}
