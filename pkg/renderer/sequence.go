package renderer

import (
	"context"
	"fmt"
	"image"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
)

// FrameResult is one rendered frame of a sequence
type FrameResult struct {
	Index int
	Frame *core.FrameContext
	Image *image.RGBA
	Stats RenderStats
}

// Sequence renders consecutive frames, advancing the driver by a fixed time
// step between them
type Sequence struct {
	Driver      *FrameDriver
	Shader      core.Shader
	Width       int
	Height      int
	Frames      int
	TimeStep    float64
	Progressive ProgressiveConfig
	Sampling    SamplingConfig
	Bloom       *BloomConfig // Optional post-process
	Logger      core.Logger
}

// Render renders every frame and hands it to emit in order. It stops at the
// first error from rendering or emit, or when ctx is cancelled.
func (s *Sequence) Render(ctx context.Context, emit func(FrameResult) error) error {
	if s.Driver == nil || s.Shader == nil {
		return fmt.Errorf("sequence needs a driver and a shader")
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid sequence resolution %dx%d", s.Width, s.Height)
	}
	frames := max(s.Frames, 1)
	logger := s.Logger
	if logger == nil {
		logger = NewDefaultLogger()
	}

	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame := s.Driver.Snapshot(s.Width, s.Height)
		img, stats, err := RenderFrame(ctx, s.Shader, frame, s.Progressive, s.Sampling, s.Bloom, logger)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		logger.Printf("Frame %d/%d at t=%.3f (%.1f samples/pixel)\n", i+1, frames, frame.Time, stats.AverageSamples)

		if err := emit(FrameResult{Index: i, Frame: frame, Image: img, Stats: stats}); err != nil {
			return err
		}
		s.Driver.Advance(s.TimeStep)
	}
	return nil
}

// RenderFrame renders a single frame to completion and applies optional bloom
func RenderFrame(ctx context.Context, shader core.Shader, frame *core.FrameContext, progressive ProgressiveConfig, sampling SamplingConfig, bloom *BloomConfig, logger core.Logger) (*image.RGBA, RenderStats, error) {
	pr := NewProgressiveRenderer(shader, frame, progressive, sampling, logger)
	img, stats, err := pr.Render(ctx)
	if err != nil {
		return nil, RenderStats{}, err
	}
	if bloom != nil {
		img = Bloom(img, *bloom)
	}
	return img, stats, nil
}
