package render

import (
	"mini-vox/internal/logging"
	"mini-vox/internal/profiling"
	"mini-vox/internal/scene"
)

// CameraSource supplies the per-frame push constants.
type CameraSource interface {
	PushConstants(aspect float32) PushConstants
}

// View owns the resources whose lifetime follows the surface size: depth
// target, per-image bindings, pipeline, viewport and the recorded commands.
// It reads the mesh store but never writes to it after construction.
type View struct {
	backend Backend
	store   *scene.Store
	camera  CameraSource

	chain    Chain
	viewport Viewport
	targets  Targets
	pipeline Resource
	commands []Commands

	rebuilds int
}

// NewView seeds the store with the default quad and builds the size-dependent
// resources for the presenter's current chain.
func NewView(backend Backend, p *Presenter, store *scene.Store, camera CameraSource) (*View, error) {
	store.Append(scene.Quad())
	v := &View{
		backend:  backend,
		store:    store,
		camera:   camera,
		viewport: ViewportFor(p.Chain().Extent),
	}
	if err := v.build(p.Chain()); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *View) build(chain Chain) error {
	targets, err := v.backend.CreateTargets(chain)
	if err != nil {
		return &FrameError{Op: "create targets", Image: -1, Err: err}
	}
	pipeline, err := v.backend.CreatePipeline(chain.Format, v.viewport)
	if err != nil {
		targets.Release()
		return &FrameError{Op: "create pipeline", Image: -1, Err: err}
	}
	v.chain = chain
	v.targets = targets
	v.pipeline = pipeline
	v.commands = make([]Commands, chain.ImageCount)
	return nil
}

func (v *View) releaseSized() {
	v.targets.Release()
	if v.pipeline != nil {
		v.pipeline.Release()
		v.pipeline = nil
	}
	v.commands = nil
}

// CheckAndRecreate rebuilds the chain and every size-dependent resource when
// the surface asks for it. A zero-area size defers the rebuild and leaves the
// surface state untouched. A resize to the extent the chain already has, with
// no degradation folded in, is resolved without a rebuild: the chain was
// already rebuilt at that size when acquire saw the change first. It reports
// whether a rebuild happened.
func (v *View) CheckAndRecreate(s *Surface, size Extent, p *Presenter) (bool, error) {
	observed := s.snapshot()
	state := observed.state
	if state == Valid || size.Zero() {
		return false, nil
	}
	if state == ResizePending && !observed.degraded &&
		v.chain.Extent == size && v.viewport.Extent() == size {
		s.resolve(observed)
		return false, nil
	}
	defer profiling.Track("render.Recreate")()

	chain, err := p.RecreateChain(size)
	if err != nil {
		return false, err
	}
	// A degradation can coincide with a size change the window never reported.
	if state == ResizePending || v.viewport.Extent() != chain.Extent {
		v.viewport = ViewportFor(chain.Extent)
	}
	v.releaseSized()
	if err := v.build(chain); err != nil {
		return false, err
	}
	s.resolve(observed)
	v.rebuilds++

	logging.Logger().Info("size-dependent resources rebuilt",
		"reason", state.String(), "extent", chain.Extent.String(), "images", chain.ImageCount)
	p.sink.Record(Event{Tick: p.tick, Kind: "recreate", Image: -1, Detail: state.String() + " " + chain.Extent.String()})
	return true, nil
}

// Update uploads meshes that arrived since the last frame and records a
// fresh command sequence per image drawing every stored mesh in order.
func (v *View) Update() error {
	defer profiling.Track("render.Update")()

	meshes := v.store.Snapshot()
	for _, m := range meshes {
		if m.Uploaded() {
			continue
		}
		if err := m.Upload(v.backend); err != nil {
			return &FrameError{Op: "upload", Image: -1, Err: err}
		}
	}

	pc := v.camera.PushConstants(v.viewport.Extent().Aspect())
	for i, binding := range v.targets.Bindings {
		cmds, err := v.backend.Record(binding, v.pipeline, pc, meshes)
		if err != nil {
			return &FrameError{Op: "record", Image: i, Err: err}
		}
		v.commands[i] = cmds
	}
	return nil
}

// Commands returns the sequence recorded for image, or nil.
func (v *View) Commands(image int) Commands {
	if image < 0 || image >= len(v.commands) {
		return nil
	}
	return v.commands[image]
}

// Viewport returns the current viewport.
func (v *View) Viewport() Viewport {
	return v.viewport
}

// Chain returns the chain the resources were built for.
func (v *View) Chain() Chain {
	return v.chain
}

// Rebuilds counts completed rebuilds since construction.
func (v *View) Rebuilds() int {
	return v.rebuilds
}

// Release frees the size-dependent resources and every stored mesh. The
// caller must have waited for the GPU to go idle.
func (v *View) Release() {
	v.releaseSized()
	v.store.Clear()
}
