package scene

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
	"github.com/df07/go-blackhole-raymarcher/pkg/integrator"
	"github.com/df07/go-blackhole-raymarcher/pkg/loaders"
	"github.com/df07/go-blackhole-raymarcher/pkg/material"
	"github.com/df07/go-blackhole-raymarcher/pkg/renderer"
)

// Scene contains everything needed to render a black hole view
type Scene struct {
	Name        string `json:"name" toml:"name" yaml:"name"`
	Base        string `json:"base,omitempty" toml:"base" yaml:"base"` // Preset a config file starts from
	Description string `json:"description" toml:"description" yaml:"description"`

	Integrator integrator.Config        `json:"integrator" toml:"integrator" yaml:"integrator"`
	Disk       material.DiskConfig      `json:"disk" toml:"disk" yaml:"disk"`
	Starfield  material.StarfieldConfig `json:"starfield" toml:"starfield" yaml:"starfield"`
	Camera     CameraConfig             `json:"camera" toml:"camera" yaml:"camera"`

	Spin float64 `json:"spin" toml:"spin" yaml:"spin"` // In [0, 1]
	Mass float64 `json:"mass" toml:"mass" yaml:"mass"` // > 0

	Sampling  SamplingConfig  `json:"sampling" toml:"sampling" yaml:"sampling"`
	Animation AnimationConfig `json:"animation" toml:"animation" yaml:"animation"`
	Bloom     BloomConfig     `json:"bloom" toml:"bloom" yaml:"bloom"`

	TexturePath    string `json:"texturePath,omitempty" toml:"texture_path" yaml:"texture_path"` // Optional disk texture image
	TextureMaxSize int    `json:"textureMaxSize,omitempty" toml:"texture_max_size" yaml:"texture_max_size"`
}

// CameraConfig describes the view either as a look-at camera or as a raw basis
type CameraConfig struct {
	Position core.Vec3 `json:"position" toml:"position" yaml:"position"`
	Up       core.Vec3 `json:"up" toml:"up" yaml:"up"`
	LookAt   bool      `json:"lookAt" toml:"look_at" yaml:"look_at"`
	Target   core.Vec3 `json:"target" toml:"target" yaml:"target"`       // Look-at cameras only
	VFov     float64   `json:"vfov" toml:"vfov" yaml:"vfov"`             // Vertical field of view in degrees, look-at cameras only
	Forward  core.Vec3 `json:"forward" toml:"forward" yaml:"forward"`    // Basis cameras only
	FovScale float64   `json:"fovScale" toml:"fov_scale" yaml:"fov_scale"` // Basis cameras only; 0 means 1
}

// State returns the camera basis used for ray generation
func (c CameraConfig) State() core.CameraState {
	if c.LookAt {
		return core.LookAt(c.Position, c.Target, c.Up, c.VFov)
	}
	return core.CameraState{
		Position: c.Position,
		Forward:  c.Forward.Normalize(),
		Up:       c.Up.Normalize(),
		FovScale: c.FovScale,
	}
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width              int     `json:"width" toml:"width" yaml:"width"`
	Height             int     `json:"height" toml:"height" yaml:"height"`
	SamplesPerPixel    int     `json:"samplesPerPixel" toml:"samples_per_pixel" yaml:"samples_per_pixel"`
	Passes             int     `json:"passes" toml:"passes" yaml:"passes"`
	AdaptiveMinSamples float64 `json:"adaptiveMinSamples" toml:"adaptive_min_samples" yaml:"adaptive_min_samples"` // Minimum samples as fraction of max (0.0-1.0)
	AdaptiveThreshold  float64 `json:"adaptiveThreshold" toml:"adaptive_threshold" yaml:"adaptive_threshold"`       // Relative error for adaptive convergence
	Jitter             bool    `json:"jitter" toml:"jitter" yaml:"jitter"`
}

// AnimationConfig controls how time advances across a rendered sequence
type AnimationConfig struct {
	Frames     int     `json:"frames" toml:"frames" yaml:"frames"`
	TimeStep   float64 `json:"timeStep" toml:"time_step" yaml:"time_step"` // Seconds between frames
	StartTime  float64 `json:"startTime" toml:"start_time" yaml:"start_time"`
	OrbitSpeed float64 `json:"orbitSpeed" toml:"orbit_speed" yaml:"orbit_speed"` // Camera orbit, radians per second
}

// BloomConfig enables the glow post-process
type BloomConfig struct {
	Enabled   bool    `json:"enabled" toml:"enabled" yaml:"enabled"`
	Threshold float64 `json:"threshold" toml:"threshold" yaml:"threshold"`
	Radius    float64 `json:"radius" toml:"radius" yaml:"radius"`
	Strength  float64 `json:"strength" toml:"strength" yaml:"strength"`
}

// DefaultSamplingConfig returns the preview resolution and sample budget
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:              640,
		Height:             360,
		SamplesPerPixel:    16,
		Passes:             4,
		AdaptiveMinSamples: 0.25,
		AdaptiveThreshold:  0.02,
		Jitter:             true,
	}
}

// DefaultAnimationConfig returns a short 30fps sequence
func DefaultAnimationConfig() AnimationConfig {
	return AnimationConfig{
		Frames:   60,
		TimeStep: 1.0 / 30.0,
	}
}

// DefaultBloomConfig returns bloom settings that are off until enabled
func DefaultBloomConfig() BloomConfig {
	b := renderer.DefaultBloomConfig()
	return BloomConfig{
		Threshold: b.Threshold,
		Radius:    b.Radius,
		Strength:  b.Strength,
	}
}

// Validate reports inconsistent or unusable scene parameters
func (s *Scene) Validate() error {
	if err := s.Integrator.Validate(); err != nil {
		return fmt.Errorf("scene %q: integrator: %w", s.Name, err)
	}

	var errs []error
	d := s.Disk
	if d.InnerRadius <= 0 || d.InnerRadius >= d.OuterRadius {
		errs = append(errs, fmt.Errorf("disk radii must satisfy 0 < inner < outer, got [%g, %g]", d.InnerRadius, d.OuterRadius))
	}
	if d.Thickness <= 0 {
		errs = append(errs, fmt.Errorf("disk thickness must be positive, got %g", d.Thickness))
	}
	if d.EdgeWidth < 0 || d.NoiseOctaves < 0 {
		errs = append(errs, fmt.Errorf("disk edge width and noise octaves must be non-negative"))
	}
	if s.Mass <= 0 || math.IsNaN(s.Mass) {
		errs = append(errs, fmt.Errorf("mass must be positive, got %g", s.Mass))
	}
	if s.Spin < 0 || s.Spin > 1 || math.IsNaN(s.Spin) {
		errs = append(errs, fmt.Errorf("spin must be in [0, 1], got %g", s.Spin))
	}
	if s.Sampling.Width <= 0 || s.Sampling.Height <= 0 {
		errs = append(errs, fmt.Errorf("resolution must be positive, got %dx%d", s.Sampling.Width, s.Sampling.Height))
	}
	if s.Sampling.SamplesPerPixel <= 0 || s.Sampling.Passes <= 0 {
		errs = append(errs, fmt.Errorf("samples per pixel and passes must be positive"))
	}
	if s.Animation.TimeStep < 0 || s.Animation.Frames < 0 {
		errs = append(errs, fmt.Errorf("animation frames and time step must be non-negative"))
	}
	if s.Camera.LookAt && s.Camera.Target.Subtract(s.Camera.Position).LengthSquared() == 0 {
		errs = append(errs, fmt.Errorf("look-at camera target coincides with its position"))
	}
	if !s.Camera.LookAt && s.Camera.Forward.LengthSquared() == 0 {
		errs = append(errs, fmt.Errorf("camera forward vector is zero"))
	}
	if material.IsProceduralTexture(s.TexturePath) {
		if _, err := material.NewProceduralTexture(s.TexturePath, 4); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Camera.Up.LengthSquared() == 0 {
		errs = append(errs, fmt.Errorf("camera up vector is zero"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("scene %q: %w", s.Name, err)
	}
	return nil
}

// NewMarcher builds the per-pixel shader for this scene
func (s *Scene) NewMarcher() *integrator.Marcher {
	return integrator.NewMarcher(s.Integrator,
		material.NewAccretionDisk(s.Disk),
		material.NewStarfield(s.Starfield))
}

// NewTexture returns a lazily loading disk texture, or nil if the scene has none
func (s *Scene) NewTexture(logger core.Logger) *loaders.AsyncTexture {
	if s.TexturePath == "" {
		return nil
	}
	return loaders.NewAsyncTexture(s.TexturePath, s.TextureMaxSize, logger)
}

// DriverConfig returns the frame driver setup without a texture source
func (s *Scene) DriverConfig() renderer.DriverConfig {
	return renderer.DriverConfig{
		Camera:     s.Camera.State(),
		Spin:       s.Spin,
		Mass:       s.Mass,
		OrbitSpeed: s.Animation.OrbitSpeed,
		StartTime:  s.Animation.StartTime,
	}
}

// NewDriver creates a frame driver for the scene. When the scene has a disk
// texture its load starts in the background; frames rendered before it
// finishes use the procedural pattern.
func (s *Scene) NewDriver(ctx context.Context, logger core.Logger) *renderer.FrameDriver {
	config := s.DriverConfig()
	if tex := s.NewTexture(logger); tex != nil {
		tex.Start(ctx)
		config.Textures = tex
	}
	return renderer.NewFrameDriver(config)
}

// ProgressiveConfig returns the pass schedule for this scene's sample budget
func (s *Scene) ProgressiveConfig(numWorkers int) renderer.ProgressiveConfig {
	config := renderer.DefaultProgressiveConfig()
	config.MaxSamplesPerPixel = max(s.Sampling.SamplesPerPixel, 1)
	config.MaxPasses = max(min(s.Sampling.Passes, config.MaxSamplesPerPixel), 1)
	config.NumWorkers = numWorkers
	return config
}

// RendererSampling returns the adaptive sampling parameters for the renderer
func (s *Scene) RendererSampling() renderer.SamplingConfig {
	return renderer.SamplingConfig{
		AdaptiveMinSamples: s.Sampling.AdaptiveMinSamples,
		AdaptiveThreshold:  s.Sampling.AdaptiveThreshold,
		Jitter:             s.Sampling.Jitter,
	}
}

// RendererBloom returns the bloom post-process, or nil when disabled
func (s *Scene) RendererBloom() *renderer.BloomConfig {
	if !s.Bloom.Enabled {
		return nil
	}
	return &renderer.BloomConfig{
		Threshold: s.Bloom.Threshold,
		Radius:    s.Bloom.Radius,
		Strength:  s.Bloom.Strength,
	}
}
