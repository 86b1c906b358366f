package world

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// ChunkSize is the edge length of a chunk in voxels.
	ChunkSize = 32
	// ChunkVolume is the number of voxels in one chunk.
	ChunkVolume = ChunkSize * ChunkSize * ChunkSize

	// DefaultWorldSize is the default edge length of the world in chunks.
	DefaultWorldSize = 8
)

// ErrOutOfRange is returned when a coordinate falls outside the grid.
var ErrOutOfRange = errors.New("world: coordinate out of range")

// ChunkCoord identifies a chunk inside the world grid.
type ChunkCoord struct {
	X, Y, Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// InBounds reports whether every axis lies in [0, n).
func (c ChunkCoord) InBounds(n int) bool {
	return c.X >= 0 && c.X < n && c.Y >= 0 && c.Y < n && c.Z >= 0 && c.Z < n
}

// Index flattens c into a grid of edge n. The caller guarantees InBounds(n).
func (c ChunkCoord) Index(n int) int {
	return Flatten(c.X, c.Y, c.Z, n)
}

// Origin returns the world-space position of the chunk's (0,0,0) voxel.
func (c ChunkCoord) Origin() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(c.X * ChunkSize),
		float32(c.Y * ChunkSize),
		float32(c.Z * ChunkSize),
	}
}

// CoordFromIndex is the inverse of ChunkCoord.Index.
func CoordFromIndex(idx, n int) ChunkCoord {
	x, y, z := Unflatten(idx, n)
	return ChunkCoord{X: x, Y: y, Z: z}
}

// Flatten maps (x,y,z) in a cube of edge n to z*n² + y*n + x.
func Flatten(x, y, z, n int) int {
	return z*n*n + y*n + x
}

// Unflatten is the inverse of Flatten.
func Unflatten(idx, n int) (x, y, z int) {
	z = idx / (n * n)
	rem := idx % (n * n)
	y = rem / n
	x = rem % n
	return x, y, z
}
