package loaders

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/df07/go-blackhole-raymarcher/pkg/core"
	"github.com/df07/go-blackhole-raymarcher/pkg/material"
)

// AsyncTexture loads an image texture in the background. Paths with the
// material.ProceduralPrefix are generated instead of decoded. Until the load
// completes Texture returns nil, so rendering can start immediately and pick
// the texture up on a later frame.
type AsyncTexture struct {
	path    string
	maxSize int
	logger  core.Logger

	texture atomic.Pointer[textureBox]
	err     atomic.Pointer[error]
	once    sync.Once
	done    chan struct{}
}

// textureBox lets an interface value be published atomically
type textureBox struct {
	texture core.Texture
}

// NewAsyncTexture creates a lazily loaded texture for path. maxSize bounds the
// longer side of the decoded image (0 keeps the original size). logger may be nil.
func NewAsyncTexture(path string, maxSize int, logger core.Logger) *AsyncTexture {
	return &AsyncTexture{
		path:    path,
		maxSize: maxSize,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start begins loading in a new goroutine. Only the first call has an effect.
func (a *AsyncTexture) Start(ctx context.Context) {
	a.once.Do(func() {
		go a.load(ctx)
	})
}

func (a *AsyncTexture) load(ctx context.Context) {
	defer close(a.done)

	if err := ctx.Err(); err != nil {
		a.fail(err)
		return
	}

	if material.IsProceduralTexture(a.path) {
		tex, err := material.NewProceduralTexture(a.path, a.maxSize)
		if err != nil {
			a.fail(fmt.Errorf("disk texture: %w", err))
			return
		}
		a.texture.Store(&textureBox{texture: tex})
		if a.logger != nil {
			a.logger.Printf("Generated disk texture %s (%dx%d)\n", a.path, tex.Width, tex.Height)
		}
		return
	}

	data, err := LoadImageMaxSize(a.path, a.maxSize)
	if err != nil {
		a.fail(fmt.Errorf("disk texture: %w", err))
		return
	}

	a.texture.Store(&textureBox{texture: data.Texture()})
	if a.logger != nil {
		a.logger.Printf("Loaded disk texture %s (%dx%d %s)\n", a.path, data.Width, data.Height, data.Format)
	}
}

func (a *AsyncTexture) fail(err error) {
	a.err.Store(&err)
	if a.logger != nil {
		a.logger.Printf("Disk texture unavailable, using procedural pattern: %v\n", err)
	}
}

// Texture returns the loaded texture, or nil while loading or after a failure
func (a *AsyncTexture) Texture() core.Texture {
	if box := a.texture.Load(); box != nil {
		return box.texture
	}
	return nil
}

// Err returns the load error, if any
func (a *AsyncTexture) Err() error {
	if err := a.err.Load(); err != nil {
		return *err
	}
	return nil
}

// Done is closed once loading has finished, successfully or not
func (a *AsyncTexture) Done() <-chan struct{} {
	return a.done
}

// Path returns the image path being loaded
func (a *AsyncTexture) Path() string {
	return a.path
}

// Wait blocks until loading finishes or ctx is cancelled, then returns Err
func (a *AsyncTexture) Wait(ctx context.Context) error {
	select {
	case <-a.done:
		return a.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
