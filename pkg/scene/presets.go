package scene

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
	"github.com/df07/go-blackhole-raymarcher/pkg/integrator"
	"github.com/df07/go-blackhole-raymarcher/pkg/material"
)

// ErrUnknownScene is returned for scene names that are neither presets nor config files
var ErrUnknownScene = errors.New("unknown scene")

// DefaultPreset is used when no scene is named
const DefaultPreset = "classic"

// DefaultTexturePath is the textured preset's disk texture. A config file
// can point texture_path at an image instead.
const DefaultTexturePath = material.ProceduralPrefix + "rings"

const (
	classicDescription  = "Euler integration, look-at camera and positional beaming around a non-spinning hole"
	kerrDescription     = "RK4 integration with frame dragging around a rapidly spinning hole"
	texturedDescription = "RK4 integration with a texture-mapped disk loaded in the background"
)

type preset struct {
	description string
	build       func() Scene
}

var presets = map[string]preset{
	"classic": {
		description: classicDescription,
		build:       NewClassicScene,
	},
	"kerr": {
		description: kerrDescription,
		build:       NewKerrScene,
	},
	"textured": {
		description: texturedDescription,
		build:       NewTexturedScene,
	},
}

// PresetNames returns the built-in scene names in sorted order
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns a fresh copy of the named built-in scene
func Preset(name string) (Scene, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultPreset
	}
	p, ok := presets[key]
	if !ok {
		return Scene{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownScene, name, strings.Join(PresetNames(), ", "))
	}
	return p.build(), nil
}

// baseScene holds the settings shared by every preset
func baseScene() Scene {
	return Scene{
		Integrator: integrator.DefaultConfig(),
		Disk:       material.DefaultDiskConfig(),
		Starfield:  material.DefaultStarfieldConfig(),
		Mass:       1,
		Sampling:   DefaultSamplingConfig(),
		Animation:  DefaultAnimationConfig(),
		Bloom:      DefaultBloomConfig(),
	}
}

// NewClassicScene creates the Euler-integrated view with a look-at camera
func NewClassicScene() Scene {
	s := baseScene()
	s.Name = "classic"
	s.Description = classicDescription

	s.Integrator.Method = integrator.MethodEuler
	s.Integrator.MaxSteps = 80
	s.Disk.Beaming.Model = material.BeamingPositional
	s.Spin = 0

	s.Camera = CameraConfig{
		Position: core.NewVec3(0, 1.6, -20),
		Target:   core.NewVec3(0, 0, 0),
		Up:       core.NewVec3(0, 1, 0),
		LookAt:   true,
		VFov:     48,
	}
	return s
}

// NewKerrScene creates the RK4 view of a spinning hole with frame dragging
func NewKerrScene() Scene {
	s := baseScene()
	s.Name = "kerr"
	s.Description = kerrDescription

	s.Integrator.Method = integrator.MethodRK4
	s.Integrator.MaxSteps = 140
	s.Integrator.StepSize = 0.05
	s.Integrator.FrameDragStrength = 2.0
	s.Disk.Beaming.Model = material.BeamingVelocity
	s.Spin = 0.9
	s.Animation.OrbitSpeed = 0.05

	s.Camera = CameraConfig{
		Position: core.NewVec3(0, 2.5, -18),
		Forward:  core.NewVec3(0, -2.5, 18).Normalize(),
		Up:       core.NewVec3(0, 1, 0),
		FovScale: 1,
	}
	return s
}

// NewTexturedScene creates the RK4 view whose disk pattern comes from an image
func NewTexturedScene() Scene {
	s := baseScene()
	s.Name = "textured"
	s.Description = texturedDescription

	s.Integrator.Method = integrator.MethodRK4
	s.Integrator.MaxSteps = 100
	s.Integrator.StepSize = 0.06
	s.Integrator.FrameDragStrength = 1.0
	s.Disk.Beaming.Model = material.BeamingVelocity
	s.Spin = 0.5
	s.TexturePath = DefaultTexturePath
	s.TextureMaxSize = 1024

	s.Camera = CameraConfig{
		Position: core.NewVec3(0, 3, -16),
		Target:   core.NewVec3(0, 0, 0),
		Up:       core.NewVec3(0, 1, 0),
		LookAt:   true,
		VFov:     52,
	}
	return s
}
