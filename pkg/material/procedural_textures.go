package material

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
)

// ProceduralPrefix marks a disk texture path that names a generated pattern
// instead of an image file, e.g. "procedural:checker"
const ProceduralPrefix = "procedural:"

// Disk textures are addressed with U around the disk and V from the inner
// edge (0) to the outer edge (1).
var proceduralTextures = map[string]func(size int) *ImageTexture{
	"checker": func(size int) *ImageTexture {
		return NewCheckerboardTexture(size, size/2, 16, 8, core.NewVec3(1, 1, 1), core.NewVec3(0.15, 0.15, 0.15))
	},
	"rings": func(size int) *ImageTexture {
		return NewRingTexture(size, size/2, 12)
	},
	"uv": func(size int) *ImageTexture {
		return NewUVDebugTexture(size, size/2)
	},
}

// IsProceduralTexture reports whether path names a generated pattern
func IsProceduralTexture(path string) bool {
	return strings.HasPrefix(path, ProceduralPrefix)
}

// ProceduralTextureNames returns the generated pattern names in sorted order
func ProceduralTextureNames() []string {
	names := make([]string, 0, len(proceduralTextures))
	for name := range proceduralTextures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewProceduralTexture generates the pattern named by path. size is the
// texture width; 0 selects 512.
func NewProceduralTexture(path string, size int) (*ImageTexture, error) {
	name := strings.ToLower(strings.TrimPrefix(path, ProceduralPrefix))
	build, ok := proceduralTextures[name]
	if !ok {
		return nil, fmt.Errorf("unknown procedural texture %q (available: %s)", name, strings.Join(ProceduralTextureNames(), ", "))
	}
	if size <= 0 {
		size = 512
	}
	return build(max(size, 4)), nil
}

// NewCheckerboardTexture creates a polar checkerboard with the given number
// of cells around and across the disk
func NewCheckerboardTexture(width, height, around, across int, color1, color2 core.Vec3) *ImageTexture {
	pixels := make([]core.Vec3, width*height)
	around = max(around, 1)
	across = max(across, 1)

	for y := 0; y < height; y++ {
		cellV := y * across / height
		for x := 0; x < width; x++ {
			cellU := x * around / width
			if (cellU+cellV)%2 == 0 {
				pixels[y*width+x] = color1
			} else {
				pixels[y*width+x] = color2
			}
		}
	}

	return NewDiskTexture(width, height, pixels, FilterNearest)
}

// NewRingTexture creates concentric bright and dark bands across the disk,
// brighter toward the inner edge
func NewRingTexture(width, height, rings int) *ImageTexture {
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		// Row 0 is the top of the image, which is the outer edge (V=1)
		v := 1 - (float64(y)+0.5)/float64(height)
		band := 0.5 + 0.5*math.Cos(2*math.Pi*float64(rings)*v)
		brightness := core.Clamp01((0.3 + 0.7*band) * (1.1 - 0.6*v))
		color := core.NewVec3(brightness, brightness, brightness)
		for x := 0; x < width; x++ {
			pixels[y*width+x] = color
		}
	}

	return NewDiskTexture(width, height, pixels, FilterBilinear)
}

// NewUVDebugTexture creates a texture showing UV coordinates as colors.
// U maps to the red channel, V to the green channel.
func NewUVDebugTexture(width, height int) *ImageTexture {
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		v := 1 - float64(y)/float64(max(height-1, 1))
		for x := 0; x < width; x++ {
			u := float64(x) / float64(max(width-1, 1))
			pixels[y*width+x] = core.NewVec3(u, v, 0.0)
		}
	}

	return NewDiskTexture(width, height, pixels, FilterNearest)
}
