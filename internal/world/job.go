package world

import (
	"errors"
	"fmt"
)

// ErrAlreadyClaimed is returned when a job is requested for a chunk that has
// already been claimed.
var ErrAlreadyClaimed = errors.New("world: chunk already claimed")

// Job is a request to mesh one chunk.
type Job struct {
	Coord  ChunkCoord
	Voxels []bool // ChunkVolume entries, indexed with Flatten(x, y, z, ChunkSize)
}

// NewJob claims c in g and, only if the claim succeeded, allocates and
// populates the voxel buffer from src.
func NewJob(g *OccupancyGrid, c ChunkCoord, src LivenessSource) (Job, error) {
	ok, err := g.Claim(c)
	if err != nil {
		return Job{}, err
	}
	if !ok {
		return Job{}, fmt.Errorf("job %v: %w", c, ErrAlreadyClaimed)
	}

	voxels := make([]bool, ChunkVolume)
	if src != nil {
		src.Populate(c, voxels)
	}
	return Job{Coord: c, Voxels: voxels}, nil
}

// LiveCount returns the number of live voxels in the job.
func (j Job) LiveCount() int {
	n := 0
	for _, v := range j.Voxels {
		if v {
			n++
		}
	}
	return n
}
