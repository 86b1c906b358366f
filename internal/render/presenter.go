package render

import (
	"errors"

	"mini-vox/internal/logging"
	"mini-vox/internal/profiling"
)

// PresenterStats counts presenter outcomes since creation.
type PresenterStats struct {
	Presented  uint64
	Skipped    uint64
	Suboptimal uint64
	FenceWaits uint64
	Recreated  uint64
}

// Presenter owns the surface image chain and one fence slot per image. A slot
// is never re-submitted before its previous fence has been waited on.
type Presenter struct {
	backend   Backend
	minImages int
	chain     Chain

	fences      []Fence
	previous    int
	hasPrevious bool

	stats PresenterStats
	sink  EventSink
	tick  uint64
}

// NewPresenter creates the initial chain for size.
func NewPresenter(backend Backend, size Extent, minImages int) (*Presenter, error) {
	chain, err := backend.CreateChain(size, minImages)
	if err != nil {
		return nil, &FrameError{Op: "create chain", Image: -1, Err: err}
	}
	logging.Logger().Info("swap chain created",
		"images", chain.ImageCount, "format", chain.Format.String(), "extent", chain.Extent.String())
	return &Presenter{
		backend:   backend,
		minImages: minImages,
		chain:     chain,
		fences:    make([]Fence, chain.ImageCount),
		sink:      nopSink{},
	}, nil
}

// SetEventSink routes frame events to s. A nil sink disables tracing.
func (p *Presenter) SetEventSink(s EventSink) {
	if s == nil {
		s = nopSink{}
	}
	p.sink = s
}

// Chain returns the current chain description.
func (p *Presenter) Chain() Chain {
	return p.chain
}

// Stats returns a copy of the counters.
func (p *Presenter) Stats() PresenterStats {
	return p.stats
}

// WaitIdle waits on every outstanding fence and empties all slots.
func (p *Presenter) WaitIdle() error {
	for i, f := range p.fences {
		if f == nil {
			continue
		}
		if err := f.Wait(); err != nil {
			return &FrameError{Op: "wait idle", Image: i, Err: err}
		}
		p.stats.FenceWaits++
		p.fences[i] = nil
	}
	return nil
}

// RecreateChain rebuilds the chain at size once the GPU has finished with the
// old images. Fence slots are resized to the new image count.
func (p *Presenter) RecreateChain(size Extent) (Chain, error) {
	if err := p.WaitIdle(); err != nil {
		return Chain{}, err
	}
	chain, err := p.backend.CreateChain(size, p.minImages)
	if err != nil {
		return Chain{}, &FrameError{Op: "recreate chain", Image: -1, Err: err}
	}
	p.chain = chain
	p.fences = make([]Fence, chain.ImageCount)
	p.hasPrevious = false
	p.stats.Recreated++
	return chain, nil
}

// Present draws one frame: acquire an image, wait on that image's previous
// fence, then submit the view's commands for it after both the previous frame
// and the acquire have signaled. Out-of-date conditions mark the surface and
// return nil; everything else is a *FrameError.
func (p *Presenter) Present(s *Surface, v *View) error {
	defer profiling.Track("render.Present")()
	p.tick++
	log := logging.Logger()

	image, available, status, err := p.backend.Acquire()
	if err != nil {
		return &FrameError{Op: "acquire", Image: -1, Err: err}
	}
	switch status {
	case AcquireOutOfDate:
		s.MarkDegraded()
		p.stats.Skipped++
		log.Debug("acquire out of date, skipping frame", "tick", p.tick)
		p.sink.Record(Event{Tick: p.tick, Kind: "acquire_out_of_date", Image: -1})
		return nil
	case AcquireSuboptimal:
		s.MarkDegraded()
		p.stats.Suboptimal++
		log.Debug("acquire suboptimal", "image", image)
		p.sink.Record(Event{Tick: p.tick, Kind: "acquire_suboptimal", Image: image})
	}
	if image < 0 || image >= len(p.fences) {
		return &FrameError{Op: "acquire", Image: image, Err: ErrSurfaceLost}
	}

	if f := p.fences[image]; f != nil {
		if err := f.Wait(); err != nil {
			return &FrameError{Op: "fence wait", Image: image, Err: err}
		}
		p.stats.FenceWaits++
		p.fences[image] = nil
	}

	cmds := v.Commands(image)
	if cmds == nil {
		return &FrameError{Op: "submit", Image: image, Err: ErrNotRecorded}
	}

	prev := p.backend.Now()
	if p.hasPrevious && p.previous < len(p.fences) && p.fences[p.previous] != nil {
		prev = p.fences[p.previous]
	}

	fence, err := p.backend.SubmitAndPresent([]Signal{prev, available}, cmds, image)
	switch {
	case errors.Is(err, ErrOutOfDate):
		s.MarkDegraded()
		p.stats.Skipped++
		log.Debug("present out of date", "image", image)
		p.sink.Record(Event{Tick: p.tick, Kind: "present_out_of_date", Image: image})
	case err != nil:
		return &FrameError{Op: "submit", Image: image, Err: err}
	default:
		p.fences[image] = fence
		p.stats.Presented++
	}
	p.previous = image
	p.hasPrevious = true
	return nil
}
