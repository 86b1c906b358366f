// Package glbackend implements render.Backend on OpenGL 4.1.
//
// OpenGL has no swap chain object, so the chain is emulated: every chain image
// is an offscreen color texture, each frame renders into one of them through
// its framebuffer, and present blits that image to the window before
// SwapBuffers. Fences are GL sync objects.
package glbackend

import (
	"fmt"
	"image"

	"mini-vox/internal/logging"
	"mini-vox/internal/render"
	"mini-vox/internal/scene"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Window is the part of *glfw.Window the backend needs.
type Window interface {
	GetFramebufferSize() (width, height int)
	SwapBuffers()
}

// Options configures a Backend.
type Options struct {
	ClearColor [4]float32
	// Overlay enables the text overlay drawn over each presented frame.
	Overlay bool
}

// Backend draws into an emulated image chain. The GL context must be current
// on the calling thread for every method.
type Backend struct {
	win   Window
	opts  Options
	voxel *Shader

	chain  render.Chain
	images []uint32
	next   int

	overlay      *overlay
	overlayLines []string
	capture      []func(*image.RGBA)

	presented uint64
}

// New compiles the shaders. gl.Init must already have run.
func New(win Window, opts Options) (*Backend, error) {
	voxel, err := loadShader("voxel")
	if err != nil {
		return nil, err
	}
	b := &Backend{win: win, opts: opts, voxel: voxel}
	if opts.Overlay {
		ov, err := newOverlay()
		if err != nil {
			voxel.Delete()
			return nil, fmt.Errorf("overlay: %w", err)
		}
		b.overlay = ov
	}

	logging.Logger().Info("opengl backend ready",
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"version", gl.GoStr(gl.GetString(gl.VERSION)))
	return b, nil
}

// SetOverlay replaces the overlay text. It is ignored when the overlay is off.
func (b *Backend) SetOverlay(lines []string) {
	b.overlayLines = append(b.overlayLines[:0], lines...)
}

// RequestCapture registers fn to receive a copy of the next presented image.
func (b *Backend) RequestCapture(fn func(*image.RGBA)) {
	b.capture = append(b.capture, fn)
}

// Presented returns the number of successful presents.
func (b *Backend) Presented() uint64 {
	return b.presented
}

// Release frees the chain images and shaders. Resources handed out earlier
// must be released by their owners first.
func (b *Backend) Release() {
	b.deleteImages()
	b.voxel.Delete()
	if b.overlay != nil {
		b.overlay.release()
	}
}

func (b *Backend) deleteImages() {
	if len(b.images) > 0 {
		gl.DeleteTextures(int32(len(b.images)), &b.images[0])
	}
	b.images = nil
}

// imageCount is the number of chain images for a requested minimum; GL
// imposes no limits of its own, but fewer than two images would leave
// nothing to render into while one is being presented.
func imageCount(minImages int) int {
	return max(minImages, 2)
}

func (b *Backend) CreateChain(size render.Extent, minImages int) (render.Chain, error) {
	if size.Zero() {
		return render.Chain{}, fmt.Errorf("glbackend: chain extent %v: %w", size, render.ErrOutOfDate)
	}
	b.deleteImages()

	n := imageCount(minImages)
	b.images = make([]uint32, n)
	gl.GenTextures(int32(n), &b.images[0])
	for _, tex := range b.images {
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(size.Width), int32(size.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if err := glError("create chain"); err != nil {
		return render.Chain{}, err
	}

	b.chain = render.Chain{ImageCount: n, Format: render.FormatRGBA8, Extent: size}
	b.next = 0
	return b.chain, nil
}

type depthTarget struct{ rb uint32 }

func (d *depthTarget) Release() {
	if d.rb != 0 {
		gl.DeleteRenderbuffers(1, &d.rb)
		d.rb = 0
	}
}

type framebuffer struct {
	fbo    uint32
	image  int
	extent render.Extent
}

func (f *framebuffer) Release() {
	if f.fbo != 0 {
		gl.DeleteFramebuffers(1, &f.fbo)
		f.fbo = 0
	}
}

func (b *Backend) CreateTargets(chain render.Chain) (render.Targets, error) {
	if len(b.images) != chain.ImageCount {
		return render.Targets{}, fmt.Errorf("glbackend: targets for %d images, chain has %d", chain.ImageCount, len(b.images))
	}
	w, h := int32(chain.Extent.Width), int32(chain.Extent.Height)

	depth := &depthTarget{}
	gl.GenRenderbuffers(1, &depth.rb)
	gl.BindRenderbuffer(gl.RENDERBUFFER, depth.rb)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, w, h)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	targets := render.Targets{Depth: depth}
	for i, tex := range b.images {
		fb := &framebuffer{image: i, extent: chain.Extent}
		gl.GenFramebuffers(1, &fb.fbo)
		gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, depth.rb)
		status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
		targets.Bindings = append(targets.Bindings, fb)
		if status != gl.FRAMEBUFFER_COMPLETE {
			gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
			targets.Release()
			return render.Targets{}, fmt.Errorf("glbackend: framebuffer %d incomplete: 0x%04x", i, status)
		}
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return targets, glError("create targets")
}

type pipeline struct {
	shader   *Shader
	format   render.Format
	viewport render.Viewport
}

// Release is a no-op; the program outlives every pipeline.
func (p *pipeline) Release() {}

func (b *Backend) CreatePipeline(format render.Format, vp render.Viewport) (render.Resource, error) {
	if format != render.FormatRGBA8 {
		return nil, fmt.Errorf("glbackend: unsupported target format %v", format)
	}
	return &pipeline{shader: b.voxel, format: format, viewport: vp}, nil
}

func (b *Backend) CreateBuffer(usage scene.BufferUsage, count int, data []byte) (scene.Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("glbackend: empty %v buffer", usage)
	}
	buf := &buffer{usage: usage, count: count}
	gl.GenBuffers(1, &buf.id)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.id)
	gl.BufferData(gl.ARRAY_BUFFER, len(data), gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	if err := glError("create buffer"); err != nil {
		buf.Release()
		return nil, err
	}
	return buf, nil
}

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("glbackend: %s: gl error 0x%04x", op, code)
	}
	return nil
}
