package render

import (
	"context"
	"errors"
	"sync"

	"mini-vox/internal/logging"
	"mini-vox/internal/profiling"
	"mini-vox/internal/world"
)

// DefaultJobEvery is the number of ticks between generation jobs.
const DefaultJobEvery = 500

// JobSender accepts generation jobs, blocking while the queue is full.
type JobSender interface {
	Send(ctx context.Context, job world.Job) error
}

// jobTrier is implemented by senders that can queue a job without blocking.
type jobTrier interface {
	TrySend(job world.Job) bool
}

// Cadence supplies the tick interval between generation jobs. It is read
// once per tick so it may change at runtime; values <= 0 pause generation.
type Cadence interface {
	JobEvery() int
}

// FixedCadence is a constant Cadence.
type FixedCadence int

func (c FixedCadence) JobEvery() int { return int(c) }

// Driver runs the per-tick sequence on the render thread and hands
// generation jobs to the background workers.
type Driver struct {
	surface   *Surface
	view      *View
	presenter *Presenter
	world     *world.World
	jobs      JobSender
	cadence   Cadence

	ticks     uint64
	submitted uint64
	exhausted bool
	wg        sync.WaitGroup
}

// NewDriver wires the frame path to the generation path.
func NewDriver(surface *Surface, view *View, presenter *Presenter, w *world.World, jobs JobSender, cadence Cadence) *Driver {
	if cadence == nil {
		cadence = FixedCadence(DefaultJobEvery)
	}
	return &Driver{
		surface:   surface,
		view:      view,
		presenter: presenter,
		world:     w,
		jobs:      jobs,
		cadence:   cadence,
	}
}

// OnResize is the window resize callback.
func (d *Driver) OnResize(size Extent) {
	logging.Logger().Debug("window resized", "extent", size.String())
	d.surface.MarkResized()
}

// OnSurfaceDegraded is called when the window system reports the surface stale.
func (d *Driver) OnSurfaceDegraded() {
	d.surface.MarkDegraded()
}

// Ticks returns the number of completed ticks.
func (d *Driver) Ticks() uint64 {
	return d.ticks
}

// Submitted returns the number of generation jobs handed to the sender.
func (d *Driver) Submitted() uint64 {
	return d.submitted
}

// Tick rebuilds if needed, refreshes the view and presents one frame. Every
// cadence ticks it claims the next free chunk and sends its job in the
// background so a full queue never stalls the frame.
func (d *Driver) Tick(ctx context.Context, size Extent) error {
	defer profiling.Track("render.Tick")()

	if _, err := d.view.CheckAndRecreate(d.surface, size, d.presenter); err != nil {
		return err
	}
	if err := d.view.Update(); err != nil {
		return err
	}
	if err := d.presenter.Present(d.surface, d.view); err != nil {
		return err
	}

	d.ticks++
	if every := d.cadence.JobEvery(); every > 0 && d.ticks%uint64(every) == 0 {
		d.submitNext(ctx)
	}
	return nil
}

func (d *Driver) submitNext(ctx context.Context) {
	if d.exhausted {
		return
	}
	job, ok := d.world.NextJob()
	if !ok {
		d.exhausted = true
		logging.Logger().Info("world fully claimed", "chunks", d.world.Grid().ClaimedCount())
		return
	}
	d.submitted++
	d.presenter.sink.Record(Event{Tick: d.presenter.tick, Kind: "job", Image: -1, Detail: job.Coord.String()})

	// Only a full queue costs a goroutine; the frame never waits on it.
	if t, ok := d.jobs.(jobTrier); ok && t.TrySend(job) {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.jobs.Send(ctx, job); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logging.Logger().Warn("generation job dropped", "chunk", job.Coord.String(), "err", err)
		}
	}()
}

// Close waits for in-flight job sends to finish. Cancel the context passed to
// Tick first if the receiver may already be gone.
func (d *Driver) Close() {
	d.wg.Wait()
}
