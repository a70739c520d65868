package core

// FrameContext carries the uniforms for one rendered frame. It is built by a
// frame driver and passed explicitly to every shading call.
type FrameContext struct {
	Time        float64     // Accumulated elapsed time in seconds
	Width       int         // Viewport width in pixels
	Height      int         // Viewport height in pixels
	Camera      CameraState // View basis
	Spin        float64     // Black hole spin in [0, 1]
	Mass        float64     // Black hole mass, > 0
	DiskTexture Texture     // Optional; nil until loaded
}

// AspectRatio returns width / height, or 1 for an empty viewport
func (f *FrameContext) AspectRatio() float64 {
	if f.Width <= 0 || f.Height <= 0 {
		return 1
	}
	return float64(f.Width) / float64(f.Height)
}
