package world

import (
	"math/rand/v2"
	"sync"
)

// LivenessSource decides which voxels of a freshly claimed chunk are live.
// Populate receives a zeroed buffer of ChunkVolume entries.
type LivenessSource interface {
	Populate(c ChunkCoord, voxels []bool)
}

// LivenessFunc adapts a per-voxel predicate. x, y, z are chunk-local.
type LivenessFunc func(c ChunkCoord, x, y, z int) bool

func (f LivenessFunc) Populate(c ChunkCoord, voxels []bool) {
	for i := range voxels {
		x, y, z := Unflatten(i, ChunkSize)
		voxels[i] = f(c, x, y, z)
	}
}

// RandomLiveness marks each voxel live independently with probability Density.
type RandomLiveness struct {
	mu      sync.Mutex
	rng     *rand.Rand
	density float64
}

// NewRandomLiveness creates a seeded random source.
func NewRandomLiveness(seed uint64, density float64) *RandomLiveness {
	return &RandomLiveness{
		rng:     rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
		density: density,
	}
}

func (r *RandomLiveness) Populate(_ ChunkCoord, voxels []bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range voxels {
		voxels[i] = r.rng.Float64() < r.density
	}
}

// NoiseLiveness derives liveness from 3D value noise sampled in world space,
// so the same seed always produces the same world.
type NoiseLiveness struct {
	Seed        int64
	Scale       float64
	Threshold   float64
	Octaves     int
	Persistence float64
	Lacunarity  float64
}

// NewNoiseLiveness returns a noise source with the default shape parameters.
func NewNoiseLiveness(seed int64, threshold float64) *NoiseLiveness {
	return &NoiseLiveness{
		Seed:        seed,
		Scale:       1.0 / 24.0,
		Threshold:   threshold,
		Octaves:     3,
		Persistence: 0.5,
		Lacunarity:  2.0,
	}
}

func (n *NoiseLiveness) Populate(c ChunkCoord, voxels []bool) {
	ox, oy, oz := c.X*ChunkSize, c.Y*ChunkSize, c.Z*ChunkSize
	for i := range voxels {
		x, y, z := Unflatten(i, ChunkSize)
		v := octaveNoise3D(
			float64(ox+x)*n.Scale,
			float64(oy+y)*n.Scale,
			float64(oz+z)*n.Scale,
			n.Seed, n.Octaves, n.Persistence, n.Lacunarity,
		)
		voxels[i] = v > n.Threshold
	}
}
