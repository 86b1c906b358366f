package world

import (
	"errors"
	"sync"
)

// World owns the occupancy grid and the liveness source used to fill new
// jobs. It is constructed once at startup and shared by reference.
type World struct {
	grid     *OccupancyGrid
	liveness LivenessSource

	mu     sync.Mutex
	cursor int
}

// New creates a world of size³ chunks.
func New(size int, liveness LivenessSource) *World {
	return &World{
		grid:     NewOccupancyGrid(size),
		liveness: liveness,
	}
}

// Grid exposes the occupancy grid.
func (w *World) Grid() *OccupancyGrid {
	return w.grid
}

// RequestJob creates a job for c. It fails with ErrAlreadyClaimed when the
// chunk was claimed before, and with ErrOutOfRange when c is outside the grid.
func (w *World) RequestJob(c ChunkCoord) (Job, error) {
	return NewJob(w.grid, c, w.liveness)
}

// NextJob claims the next unclaimed chunk in index order and returns its job.
// It returns false once every chunk has been claimed.
func (w *World) NextJob() (Job, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for {
		c, idx, ok := w.grid.NextUnclaimed(w.cursor)
		if !ok {
			return Job{}, false
		}
		w.cursor = idx + 1
		job, err := NewJob(w.grid, c, w.liveness)
		if errors.Is(err, ErrAlreadyClaimed) {
			// lost the chunk to a concurrent RequestJob
			continue
		}
		if err != nil {
			return Job{}, false
		}
		return job, true
	}
}
