package core

// Logger interface for renderer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// Texture provides color from a 2D image addressed by UV coordinates.
// Implementations must be safe for concurrent reads.
type Texture interface {
	Evaluate(uv Vec2) Vec3
}

// TextureSource yields a texture once it is available. Texture returns nil
// while the texture has not been loaded yet.
type TextureSource interface {
	Texture() Texture
}

// Shader maps a normalized device coordinate and the frame uniforms to a
// displayable color in [0, 1].
type Shader interface {
	Shade(ndc Vec2, frame *FrameContext) Vec3
}
