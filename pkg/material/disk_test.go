package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
)

func newTestDisk() *AccretionDisk {
	return NewAccretionDisk(DefaultDiskConfig())
}

func TestDiskSample_ZeroAlphaOutsideBand(t *testing.T) {
	disk := newTestDisk()
	frame := &core.FrameContext{Time: 1.5}
	dir := core.NewVec3(0, -1, 0)

	tests := []struct {
		name string
		pos  core.Vec3
	}{
		{"at thickness bound", core.NewVec3(8, 0.3, 0)},
		{"above thickness", core.NewVec3(8, 0.31, 0)},
		{"below thickness", core.NewVec3(8, -0.5, 0)},
		{"inside inner radius", core.NewVec3(2.99, 0, 0)},
		{"at inner radius", core.NewVec3(0, 0, 3)},
		{"at outer radius", core.NewVec3(14, 0, 0)},
		{"outside outer radius", core.NewVec3(0, 0, -14.01)},
		{"far outside", core.NewVec3(20, 0, 0)},
		{"on axis", core.NewVec3(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := disk.Sample(tt.pos, dir, frame)
			assert.Equal(t, 0.0, sample.Alpha)
			assert.Equal(t, core.Vec3{}, sample.Color)
		})
	}
}

func TestDiskSample_GrazingRayInsideBand(t *testing.T) {
	disk := newTestDisk()
	frame := &core.FrameContext{Time: 0}

	// Camera at y = 5 looking down through the plane at radius 8
	dir := core.NewVec3(8, -5, 0).Normalize()
	sample := disk.Sample(core.NewVec3(8, 0.05, 0), dir, frame)
	assert.Greater(t, sample.Alpha, 0.0)
	assert.LessOrEqual(t, sample.Alpha, 1.0)
	assert.Greater(t, sample.Color.Luminance(), 0.0)

	// Same ray geometry at radius 20 lies outside the outer radius of 14
	far := disk.Sample(core.NewVec3(20, 0.05, 0), core.NewVec3(20, -5, 0).Normalize(), frame)
	assert.Equal(t, 0.0, far.Alpha)
}

func TestDiskDensity_FallsOffTowardEdges(t *testing.T) {
	disk := newTestDisk()

	center := disk.Density(core.NewVec3(8, 0, 0))
	assert.InDelta(t, 1.0, center, 1e-12)

	// Vertical taper
	assert.Less(t, disk.Density(core.NewVec3(8, 0.2, 0)), center)
	// Radial ramps near both edges
	assert.Less(t, disk.Density(core.NewVec3(3.3, 0, 0)), center)
	assert.Less(t, disk.Density(core.NewVec3(13.7, 0, 0)), center)
	assert.Greater(t, disk.Density(core.NewVec3(3.3, 0, 0)), 0.0)
}

func TestDiskDensity_VerticalProfile(t *testing.T) {
	disk := newTestDisk()
	c := disk.Config()
	r := 0.5 * (c.InnerRadius + c.OuterRadius)
	plane := disk.Density(core.NewVec3(r, 0, 0))
	require.Greater(t, plane, 0.0)

	// smoothstep(0, 1, 1-|y|/T) relative to the midplane
	assert.InDelta(t, 0.84375, disk.Density(core.NewVec3(r, 0.25*c.Thickness, 0))/plane, 1e-9)
	assert.InDelta(t, 0.5, disk.Density(core.NewVec3(r, -0.5*c.Thickness, 0))/plane, 1e-9)
	assert.Zero(t, disk.Density(core.NewVec3(r, c.Thickness, 0)))
}

func TestDiskRotationOffset_Deterministic(t *testing.T) {
	disk := newTestDisk()
	const dt = 1.0 / 60.0

	for _, r := range []float64{3.5, 8, 13} {
		first := disk.RotationOffset(r, 2.0+dt) - disk.RotationOffset(r, 2.0)
		second := disk.RotationOffset(r, 7.25+dt) - disk.RotationOffset(r, 7.25)
		assert.InDelta(t, first, second, 1e-12, "radius %v", r)
		assert.Greater(t, first, 0.0)
	}

	// Keplerian-like: inner material turns faster
	assert.Greater(t, disk.RotationOffset(4, 1), disk.RotationOffset(10, 1))
}

func TestDiskSample_ReproducibleForSameTime(t *testing.T) {
	disk := newTestDisk()
	pos := core.NewVec3(6, 0.02, 4)
	dir := core.NewVec3(-0.3, -1, 0.1).Normalize()

	a := disk.Sample(pos, dir, &core.FrameContext{Time: 3.3})
	b := disk.Sample(pos, dir, &core.FrameContext{Time: 3.3})
	assert.Equal(t, a, b)
}

func TestDiskSample_UsesTextureWhenLoaded(t *testing.T) {
	disk := newTestDisk()
	pos := core.NewVec3(8, 0, 0)
	dir := core.NewVec3(0, -1, 0)

	white := NewImageTexture(1, 1, []core.Vec3{core.NewVec3(1, 1, 1)})
	black := NewImageTexture(1, 1, []core.Vec3{core.NewVec3(0, 0, 0)})

	bright := disk.Sample(pos, dir, &core.FrameContext{DiskTexture: white})
	dark := disk.Sample(pos, dir, &core.FrameContext{DiskTexture: black})
	require.Greater(t, bright.Alpha, 0.0)
	assert.InDelta(t, 1.0, bright.Alpha, 1e-9)
	assert.InDelta(t, 0.35, dark.Alpha, 1e-9)
	assert.Greater(t, bright.Color.Luminance(), dark.Color.Luminance())
}

func TestDiskPattern_OuterEdgeUsesOuterRow(t *testing.T) {
	disk := newTestDisk()
	c := disk.Config()
	white := core.NewVec3(1, 1, 1)
	tex := NewDiskTexture(1, 4, []core.Vec3{white, {}, {}, {}}, FilterBilinear)

	assert.InDelta(t, 1.0, disk.pattern(0.3, c.OuterRadius, tex), 1e-9)
	assert.InDelta(t, 1.0, disk.pattern(0.3, c.OuterRadius-0.01, tex), 1e-9)
	assert.InDelta(t, 0.0, disk.pattern(0.3, c.InnerRadius, tex), 1e-9)
}

func TestDiskSample_VelocityBeaming(t *testing.T) {
	disk := newTestDisk()
	frame := &core.FrameContext{}
	pos := core.NewVec3(8, 0, 0) // orbit tangent here is -Z

	approaching := disk.Sample(pos, core.NewVec3(0, 0, 1), frame)
	receding := disk.Sample(pos, core.NewVec3(0, 0, -1), frame)

	assert.Equal(t, approaching.Alpha, receding.Alpha)
	assert.Greater(t, approaching.Color.Luminance(), receding.Color.Luminance())
	// Approaching side is tinted toward blue
	assert.Greater(t, approaching.Color.Z/approaching.Color.X, receding.Color.Z/receding.Color.X)
}
