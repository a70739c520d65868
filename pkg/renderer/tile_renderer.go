package renderer

import (
	"image"
	"math"
	"math/rand"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
)

// SamplingConfig controls per-pixel sample placement and adaptive stopping
type SamplingConfig struct {
	AdaptiveMinSamples float64 // Fraction of the pass target always taken before stopping early
	AdaptiveThreshold  float64 // Relative luminance error below which a pixel stops sampling
	Jitter             bool    // Randomize sample positions inside each pixel
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		AdaptiveMinSamples: 0.15,
		AdaptiveThreshold:  0.02,
		Jitter:             true,
	}
}

// TileRenderer shades the pixels of one tile into the shared pixel stats
type TileRenderer struct {
	shader   core.Shader
	camera   *Camera
	sampling SamplingConfig
}

// NewTileRenderer creates a new tile renderer for the given shader and viewport
func NewTileRenderer(shader core.Shader, camera *Camera, sampling SamplingConfig) *TileRenderer {
	return &TileRenderer{
		shader:   shader,
		camera:   camera,
		sampling: sampling,
	}
}

// RenderTileBounds renders pixels within the specified bounds up to targetSamples each
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, pixelStats [][]PixelStats, random *rand.Rand, targetSamples int, frame *core.FrameContext) RenderStats {
	stats := tr.initRenderStatsForBounds(bounds, targetSamples)

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			samplesUsed := tr.adaptiveSamplePixel(i, j, &pixelStats[j][i], random, targetSamples, frame)
			tr.updateStats(&stats, samplesUsed)
		}
	}

	tr.finalizeStats(&stats)
	return stats
}

// adaptiveSamplePixel takes samples until the pixel converges or reaches maxSamples
func (tr *TileRenderer) adaptiveSamplePixel(i, j int, ps *PixelStats, random *rand.Rand, maxSamples int, frame *core.FrameContext) int {
	initialSampleCount := ps.SampleCount

	for ps.SampleCount < maxSamples && !tr.shouldStopSampling(ps, maxSamples) {
		ndc := tr.camera.NDC(i, j, random)
		ps.AddSample(tr.shader.Shade(ndc, frame))
	}

	return ps.SampleCount - initialSampleCount
}

// shouldStopSampling reports whether the pixel's relative luminance error is low enough
func (tr *TileRenderer) shouldStopSampling(ps *PixelStats, maxSamples int) bool {
	minSamples := max(1, int(float64(maxSamples)*tr.sampling.AdaptiveMinSamples))
	if ps.SampleCount < minSamples {
		return false
	}

	mean := ps.LuminanceAccum / float64(ps.SampleCount)
	meanSq := ps.LuminanceSqAccum / float64(ps.SampleCount)
	variance := math.Max(0, meanSq-mean*mean)

	// Black pixels (the shadow) have no meaningful relative error
	if mean <= 1e-8 {
		return variance < 1e-6
	}

	relativeError := math.Sqrt(variance) / mean
	return relativeError < tr.sampling.AdaptiveThreshold
}

func (tr *TileRenderer) initRenderStatsForBounds(bounds image.Rectangle, maxSamples int) RenderStats {
	return RenderStats{
		TotalPixels: bounds.Dx() * bounds.Dy(),
		MaxSamples:  maxSamples,
		MinSamples:  maxSamples,
	}
}

func (tr *TileRenderer) updateStats(stats *RenderStats, samplesUsed int) {
	stats.TotalSamples += samplesUsed
	stats.MinSamples = min(stats.MinSamples, samplesUsed)
	stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, samplesUsed)
}

func (tr *TileRenderer) finalizeStats(stats *RenderStats) {
	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
}
