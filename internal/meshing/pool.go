package meshing

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"mini-vox/internal/logging"
	"mini-vox/internal/profiling"
	"mini-vox/internal/scene"
	"mini-vox/internal/world"
)

// DefaultQueueSize is the job channel capacity.
const DefaultQueueSize = 100

// ErrPoolClosed is returned by Send after Shutdown.
var ErrPoolClosed = errors.New("meshing: worker pool closed")

// MeshSink receives finished meshes. Append is the only point where the
// background path touches render state.
type MeshSink interface {
	Append(m *scene.Mesh)
}

// Result describes one finished job.
type Result struct {
	Coord    world.ChunkCoord
	Live     int
	Vertices int
	Indices  int
	Duration time.Duration
	Err      error
}

// Option configures a WorkerPool.
type Option func(*WorkerPool)

// WithResultHook installs fn to be called from the worker after every job.
func WithResultHook(fn func(Result)) Option {
	return func(p *WorkerPool) { p.onResult = fn }
}

// WorkerPool consumes generation jobs from a bounded queue, meshes them and
// appends the result to the sink.
type WorkerPool struct {
	jobQueue chan world.Job
	workers  int
	sink     MeshSink
	onResult func(Result)

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	generated atomic.Uint64
	failed    atomic.Uint64
}

// NewWorkerPool starts workers goroutines reading from a queue of queueSize.
func NewWorkerPool(workers, queueSize int, sink MeshSink, opts ...Option) *WorkerPool {
	pool := &WorkerPool{
		jobQueue: make(chan world.Job, max(queueSize, 1)),
		workers:  max(workers, 1),
		sink:     sink,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(pool)
	}

	for i := range pool.workers {
		pool.wg.Add(1)
		go pool.worker(i)
	}
	return pool
}

// Send queues job, waiting for space while the queue is full. It returns
// ctx.Err() if ctx ends first and ErrPoolClosed after Shutdown.
func (p *WorkerPool) Send(ctx context.Context, job world.Job) error {
	select {
	case <-p.done:
		return ErrPoolClosed
	default:
	}

	select {
	case p.jobQueue <- job:
		return nil
	case <-p.done:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend queues job without waiting. It returns false if the queue is full
// or the pool is closed.
func (p *WorkerPool) TrySend(job world.Job) bool {
	select {
	case <-p.done:
		return false
	default:
	}

	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	log := logging.Logger().With("worker", id)

	for {
		select {
		case job := <-p.jobQueue:
			p.process(log, job)
		case <-p.done:
			// finish whatever is already queued, then exit
			for {
				select {
				case job := <-p.jobQueue:
					p.process(log, job)
				default:
					return
				}
			}
		}
	}
}

func (p *WorkerPool) process(log *slog.Logger, job world.Job) {
	defer profiling.Track("meshing.Generate")()
	start := time.Now()

	mesh, err := GenerateChunkMesh(job)
	res := Result{Coord: job.Coord, Live: job.LiveCount(), Duration: time.Since(start), Err: err}
	switch {
	case err != nil:
		p.failed.Add(1)
		log.Warn("mesh job rejected", "chunk", job.Coord.String(), "err", err)
	case len(mesh.Indices) == 0:
		log.Debug("chunk empty, nothing to draw", "chunk", job.Coord.String())
	default:
		res.Vertices, res.Indices = len(mesh.Vertices), len(mesh.Indices)
		p.sink.Append(mesh)
		p.generated.Add(1)
		log.Debug("chunk meshed", "chunk", job.Coord.String(), "live", res.Live,
			"vertices", res.Vertices, "indices", res.Indices, "took", res.Duration)
	}

	if p.onResult != nil {
		p.onResult(res)
	}
}

// Shutdown stops accepting jobs, lets workers finish the queued ones and
// waits for them to exit. Jobs sent concurrently with Shutdown may be dropped.
func (p *WorkerPool) Shutdown() {
	p.closeOnce.Do(func() { close(p.done) })
	p.wg.Wait()
}

// QueueLength returns the number of jobs waiting in the queue.
func (p *WorkerPool) QueueLength() int {
	return len(p.jobQueue)
}

// Stats returns how many jobs produced a mesh and how many were rejected.
func (p *WorkerPool) Stats() (generated, failed uint64) {
	return p.generated.Load(), p.failed.Load()
}
