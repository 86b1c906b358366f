// Package render presents frames to a window surface. The Presenter owns the
// image chain and per-image fences, the View owns everything sized to the
// surface, and the Driver ties them to the tick loop and to background mesh
// generation.
package render

import (
	"fmt"

	"mini-vox/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// Extent is a surface size in pixels.
type Extent struct {
	Width, Height int
}

// Zero reports whether either dimension is non-positive.
func (e Extent) Zero() bool {
	return e.Width <= 0 || e.Height <= 0
}

// Aspect returns width/height, or 1 for a degenerate extent.
func (e Extent) Aspect() float32 {
	if e.Zero() {
		return 1
	}
	return float32(e.Width) / float32(e.Height)
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// Viewport is the logical rectangle the pipeline rasterizes into.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// ViewportFor covers the whole extent with the default depth range.
func ViewportFor(e Extent) Viewport {
	return Viewport{Width: float32(e.Width), Height: float32(e.Height), MinDepth: 0, MaxDepth: 1}
}

// Extent converts the viewport size back to whole pixels.
func (v Viewport) Extent() Extent {
	return Extent{Width: int(v.Width), Height: int(v.Height)}
}

// Format is the pixel format of the chain images.
type Format int

const (
	FormatUndefined Format = iota
	FormatRGBA8
	FormatBGRA8
	FormatRGBA8SRGB
)

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "rgba8"
	case FormatBGRA8:
		return "bgra8"
	case FormatRGBA8SRGB:
		return "rgba8_srgb"
	default:
		return "undefined"
	}
}

// Chain describes the current surface image chain.
type Chain struct {
	ImageCount int
	Format     Format
	Extent     Extent
}

// Resource is any backend object the view owns and releases.
type Resource interface {
	Release()
}

// Targets are the size-dependent render targets: one depth target and one
// render-target binding per chain image.
type Targets struct {
	Depth    Resource
	Bindings []Resource
}

// Release frees the depth target and every binding.
func (t *Targets) Release() {
	for _, b := range t.Bindings {
		if b != nil {
			b.Release()
		}
	}
	if t.Depth != nil {
		t.Depth.Release()
	}
	t.Depth, t.Bindings = nil, nil
}

// Commands is a recorded command sequence for one chain image. A backend that
// owns native command buffers keeps them alive until the fence of any
// submission that used them has signaled.
type Commands interface{}

// Signal is a GPU-side completion or availability signal.
type Signal interface {
	Signaled() bool
}

// Fence is a Signal the CPU can block on.
type Fence interface {
	Signal
	// Wait blocks without timeout until the fence signals.
	Wait() error
}

// AcquireStatus classifies the result of acquiring a chain image.
type AcquireStatus int

const (
	AcquireReady AcquireStatus = iota
	// AcquireSuboptimal: the image is usable but the chain should be rebuilt.
	AcquireSuboptimal
	// AcquireOutOfDate: no image was acquired; the chain must be rebuilt.
	AcquireOutOfDate
)

func (s AcquireStatus) String() string {
	switch s {
	case AcquireReady:
		return "ready"
	case AcquireSuboptimal:
		return "suboptimal"
	case AcquireOutOfDate:
		return "out_of_date"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// PushConstants is the per-draw camera data.
type PushConstants struct {
	Proj mgl32.Mat4
	View mgl32.Mat4
}

// Backend is the GPU layer the core drives. All methods are called from the
// render thread.
type Backend interface {
	scene.BufferAllocator

	// CreateChain creates the surface image chain, or recreates it at a new
	// size. The caller guarantees no submission to the old chain is pending.
	CreateChain(size Extent, minImages int) (Chain, error)
	// CreateTargets builds a depth target sized to the chain images and one
	// render-target binding per image.
	CreateTargets(chain Chain) (Targets, error)
	// CreatePipeline builds the graphics pipeline for the target format and viewport.
	CreatePipeline(format Format, viewport Viewport) (Resource, error)
	// Record builds the command sequence drawing meshes, in order, into binding.
	Record(binding, pipeline Resource, pc PushConstants, meshes []*scene.Mesh) (Commands, error)

	// Acquire blocks until a chain image is available. A non-nil error is fatal.
	Acquire() (image int, available Signal, status AcquireStatus, err error)
	// Now returns an already-satisfied signal.
	Now() Signal
	// SubmitAndPresent submits cmds for image after every signal in waits and
	// queues the present of the same image. An error wrapping ErrOutOfDate is
	// recoverable; any other error is fatal.
	SubmitAndPresent(waits []Signal, cmds Commands, image int) (Fence, error)
}
