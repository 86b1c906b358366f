package render

import (
	"errors"
	"fmt"
	"sync"

	"mini-vox/internal/scene"
)

type fakeResource struct {
	kind     string
	released bool
}

func (r *fakeResource) Release() { r.released = true }

type fakeBuffer struct {
	usage scene.BufferUsage
	count int
}

func (b *fakeBuffer) Usage() scene.BufferUsage { return b.usage }
func (b *fakeBuffer) Len() int                 { return b.count }
func (b *fakeBuffer) Release()                 {}

type readySignal struct{}

func (readySignal) Signaled() bool { return true }

type fakeFence struct {
	b     *fakeBackend
	image int
	done  bool
}

func (f *fakeFence) Signaled() bool { return f.done }

func (f *fakeFence) Wait() error {
	if f.b.waitErr != nil {
		return f.b.waitErr
	}
	f.done = true
	if f.b.inFlight[f.image] == f {
		delete(f.b.inFlight, f.image)
	}
	return nil
}

type fakeCommands struct {
	binding Resource
	meshes  int
}

// fakeBackend models a FIFO image chain whose images stay busy until their
// fence is waited on. Misuse is collected in violations.
type fakeBackend struct {
	imageCount int
	format     Format

	// surface is the current window size; acquire goes out of date when the
	// chain no longer matches it.
	surface Extent
	chain   Chain
	next    int

	inFlight map[int]*fakeFence

	// acquireStatus and submitErr, when set, override one call each.
	acquireStatus func() AcquireStatus
	submitErr     func() error
	acquireErr    error
	waitErr       error

	chains     int
	targets    []*Targets
	pipelines  []Viewport
	resources  []*fakeResource
	buffers    int
	submits    int
	records    int
	lastMeshes int

	mu         sync.Mutex
	violations []string
}

func newFakeBackend(size Extent) *fakeBackend {
	return &fakeBackend{
		imageCount: 3,
		format:     FormatBGRA8,
		surface:    size,
		inFlight:   map[int]*fakeFence{},
	}
}

func (b *fakeBackend) violate(format string, args ...any) {
	b.mu.Lock()
	b.violations = append(b.violations, fmt.Sprintf(format, args...))
	b.mu.Unlock()
}

func (b *fakeBackend) CreateBuffer(usage scene.BufferUsage, count int, data []byte) (scene.Buffer, error) {
	b.buffers++
	return &fakeBuffer{usage: usage, count: count}, nil
}

func (b *fakeBackend) CreateChain(size Extent, minImages int) (Chain, error) {
	if len(b.inFlight) > 0 {
		b.violate("chain recreated with %d images in flight", len(b.inFlight))
	}
	if size.Zero() {
		return Chain{}, errors.New("zero extent")
	}
	b.chains++
	b.chain = Chain{ImageCount: max(b.imageCount, minImages), Format: b.format, Extent: size}
	b.next = 0
	return b.chain, nil
}

func (b *fakeBackend) newResource(kind string) *fakeResource {
	r := &fakeResource{kind: kind}
	b.resources = append(b.resources, r)
	return r
}

func (b *fakeBackend) CreateTargets(chain Chain) (Targets, error) {
	t := Targets{Depth: b.newResource("depth")}
	for range chain.ImageCount {
		t.Bindings = append(t.Bindings, b.newResource("binding"))
	}
	b.targets = append(b.targets, &t)
	return t, nil
}

func (b *fakeBackend) CreatePipeline(format Format, vp Viewport) (Resource, error) {
	b.pipelines = append(b.pipelines, vp)
	return b.newResource("pipeline"), nil
}

func (b *fakeBackend) Record(binding, pipeline Resource, pc PushConstants, meshes []*scene.Mesh) (Commands, error) {
	if binding.(*fakeResource).released || pipeline.(*fakeResource).released {
		b.violate("recording with released resources")
	}
	for i, m := range meshes {
		if !m.Uploaded() {
			b.violate("mesh %d recorded before upload", i)
		}
	}
	b.records++
	b.lastMeshes = len(meshes)
	return &fakeCommands{binding: binding, meshes: len(meshes)}, nil
}

func (b *fakeBackend) Acquire() (int, Signal, AcquireStatus, error) {
	if b.acquireErr != nil {
		return -1, nil, AcquireOutOfDate, b.acquireErr
	}
	status := AcquireReady
	if b.acquireStatus != nil {
		status = b.acquireStatus()
	}
	if b.surface != b.chain.Extent {
		status = AcquireOutOfDate
	}
	if status == AcquireOutOfDate {
		return -1, nil, status, nil
	}
	image := b.next % b.chain.ImageCount
	b.next++
	return image, readySignal{}, status, nil
}

func (b *fakeBackend) Now() Signal { return readySignal{} }

func (b *fakeBackend) SubmitAndPresent(waits []Signal, cmds Commands, image int) (Fence, error) {
	if f, busy := b.inFlight[image]; busy && !f.done {
		b.violate("image %d resubmitted before its fence was waited on", image)
	}
	if len(waits) != 2 {
		b.violate("submit waits on %d signals, want 2", len(waits))
	}
	for i, w := range waits {
		if w == nil {
			b.violate("submit wait %d is nil", i)
		}
	}
	if c, ok := cmds.(*fakeCommands); !ok || c.binding.(*fakeResource).released {
		b.violate("submitted stale commands for image %d", image)
	}
	if b.submitErr != nil {
		if err := b.submitErr(); err != nil {
			return nil, err
		}
	}
	b.submits++
	f := &fakeFence{b: b, image: image}
	b.inFlight[image] = f
	return f, nil
}

type fixedCamera struct{}

func (fixedCamera) PushConstants(aspect float32) PushConstants {
	return NewCamera(60, 0.1, 100).PushConstants(aspect)
}

func newTestView(b *fakeBackend, size Extent) (*Presenter, *View, *scene.Store, error) {
	p, err := NewPresenter(b, size, 2)
	if err != nil {
		return nil, nil, nil, err
	}
	store := scene.NewStore()
	v, err := NewView(b, p, store, fixedCamera{})
	if err != nil {
		return nil, nil, nil, err
	}
	return p, v, store, nil
}
