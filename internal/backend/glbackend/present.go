package glbackend

import (
	"fmt"
	"image"

	"mini-vox/internal/profiling"
	"mini-vox/internal/render"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// fenceWaitStep bounds each ClientWaitSync call so a hung driver shows up as
// repeated waits rather than one opaque stall.
const fenceWaitStep = uint64(1_000_000_000)

type fence struct {
	sync uintptr
	done bool
}

func newFence() *fence {
	return &fence{sync: gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0)}
}

func (f *fence) Signaled() bool {
	if f.done {
		return true
	}
	switch gl.ClientWaitSync(f.sync, 0, 0) {
	case gl.ALREADY_SIGNALED, gl.CONDITION_SATISFIED:
		f.finish()
	}
	return f.done
}

func (f *fence) Wait() error {
	defer profiling.Track("glbackend.FenceWait")()
	for !f.done {
		switch gl.ClientWaitSync(f.sync, gl.SYNC_FLUSH_COMMANDS_BIT, fenceWaitStep) {
		case gl.ALREADY_SIGNALED, gl.CONDITION_SATISFIED:
			f.finish()
		case gl.WAIT_FAILED:
			return fmt.Errorf("glbackend: fence wait failed: %w", render.ErrSurfaceLost)
		}
	}
	return nil
}

func (f *fence) finish() {
	gl.DeleteSync(f.sync)
	f.sync = 0
	f.done = true
}

type readySignal struct{}

func (readySignal) Signaled() bool { return true }

func (b *Backend) Now() render.Signal { return readySignal{} }

func (b *Backend) framebufferExtent() render.Extent {
	w, h := b.win.GetFramebufferSize()
	return render.Extent{Width: w, Height: h}
}

// acquireStatus maps the window framebuffer size to an acquire result: the
// emulated chain goes stale as soon as the window stops matching it.
func acquireStatus(framebuffer, chain render.Extent) render.AcquireStatus {
	if framebuffer.Zero() || framebuffer != chain {
		return render.AcquireOutOfDate
	}
	return render.AcquireReady
}

// Acquire hands out chain images round-robin. Image availability is implied
// by GL command ordering, so the returned signal is always satisfied.
func (b *Backend) Acquire() (int, render.Signal, render.AcquireStatus, error) {
	if len(b.images) == 0 {
		return -1, nil, render.AcquireOutOfDate, fmt.Errorf("glbackend: acquire without a chain: %w", render.ErrSurfaceLost)
	}
	if st := acquireStatus(b.framebufferExtent(), b.chain.Extent); st == render.AcquireOutOfDate {
		return -1, nil, st, nil
	}
	image := b.next
	b.next = (b.next + 1) % len(b.images)
	return image, readySignal{}, render.AcquireReady, nil
}

// SubmitAndPresent makes the GPU wait on every pending fence in waits,
// replays cmds, blits the image to the window, and swaps.
func (b *Backend) SubmitAndPresent(waits []render.Signal, cmds render.Commands, image int) (render.Fence, error) {
	list, ok := cmds.(*drawList)
	if !ok {
		return nil, fmt.Errorf("glbackend: submit of foreign commands %T", cmds)
	}
	if list.target.image != image {
		return nil, fmt.Errorf("glbackend: commands for image %d submitted to image %d", list.target.image, image)
	}
	if acquireStatus(b.framebufferExtent(), b.chain.Extent) == render.AcquireOutOfDate {
		return nil, fmt.Errorf("glbackend: window resized before submit: %w", render.ErrOutOfDate)
	}

	for _, w := range waits {
		if f, ok := w.(*fence); ok && !f.done {
			gl.WaitSync(f.sync, 0, gl.TIMEOUT_IGNORED)
		}
	}

	func() { defer profiling.Track("glbackend.Execute")(); list.execute() }()

	ext := list.target.extent
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, list.target.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, int32(ext.Width), int32(ext.Height), 0, 0, int32(ext.Width), int32(ext.Height), gl.COLOR_BUFFER_BIT, gl.NEAREST)

	if len(b.capture) > 0 {
		img := readPixels(ext)
		for _, fn := range b.capture {
			fn(img)
		}
		b.capture = b.capture[:0]
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if b.overlay != nil && len(b.overlayLines) > 0 {
		b.overlay.draw(b.overlayLines, ext)
	}

	f := newFence()
	func() { defer profiling.Track("glfw.SwapBuffers")(); b.win.SwapBuffers() }()
	if err := glError("present"); err != nil {
		return nil, err
	}
	b.presented++
	return f, nil
}

// readPixels copies the bound read framebuffer into a top-down RGBA image.
func readPixels(ext render.Extent) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ext.Width, ext.Height))
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(ext.Width), int32(ext.Height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&img.Pix[0]))
	flipRows(img.Pix, img.Stride, ext.Height)
	return img
}

// flipRows turns GL's bottom-up row order into image order in place.
func flipRows(pix []byte, stride, height int) {
	tmp := make([]byte, stride)
	for top, bottom := 0, height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
