package meshing

import (
	"errors"
	"fmt"

	"mini-vox/internal/scene"
	"mini-vox/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrMalformedJob is returned when a job's voxel buffer has the wrong length.
var ErrMalformedJob = errors.New("meshing: malformed job")

const (
	vertsPerVoxel   = 8
	indicesPerVoxel = 36
)

// cubeCorners are the unit offsets of a voxel's corners. Corner i has
// x = i&1, y = (i>>1)&1, z = (i>>2)&1.
var cubeCorners = [vertsPerVoxel]mgl32.Vec3{
	{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
}

// cubeIndices holds two counter-clockwise triangles per face, seen from outside.
var cubeIndices = [indicesPerVoxel]uint32{
	0, 2, 1, 1, 2, 3, // -Z
	4, 5, 6, 5, 7, 6, // +Z
	0, 4, 2, 2, 4, 6, // -X
	1, 3, 5, 3, 7, 5, // +X
	0, 1, 4, 1, 5, 4, // -Y
	2, 6, 3, 3, 6, 7, // +Y
}

// GenerateChunkMesh emits one unit cube per live voxel of job, positioned in
// world space at chunk origin + local voxel position. Shared faces between
// neighbouring voxels are not culled.
//
// Each cube's indices are offset by emitted*8, where emitted counts the live
// voxels already written to this mesh, so indices always address the
// vertices of the same cube regardless of where the chunk sits in the world.
func GenerateChunkMesh(job world.Job) (*scene.Mesh, error) {
	if len(job.Voxels) != world.ChunkVolume {
		return nil, fmt.Errorf("chunk %v: %d voxels, want %d: %w",
			job.Coord, len(job.Voxels), world.ChunkVolume, ErrMalformedJob)
	}

	live := 0
	for _, v := range job.Voxels {
		if v {
			live++
		}
	}

	vertices := make([]scene.Vertex, 0, live*vertsPerVoxel)
	indices := make([]uint32, 0, live*indicesPerVoxel)
	origin := job.Coord.Origin()

	emitted := uint32(0)
	for i, alive := range job.Voxels {
		if !alive {
			continue
		}
		x, y, z := world.Unflatten(i, world.ChunkSize)
		base := origin.Add(mgl32.Vec3{float32(x), float32(y), float32(z)})
		color := voxelColor(x, y, z)

		for _, corner := range cubeCorners {
			// darken the bottom corners a little so faces read apart
			shade := 0.75 + 0.25*corner.Y()
			vertices = append(vertices, scene.Vertex{
				Pos:   base.Add(corner),
				Color: color.Mul(shade),
			})
		}
		offset := emitted * vertsPerVoxel
		for _, idx := range cubeIndices {
			indices = append(indices, offset+idx)
		}
		emitted++
	}

	return scene.NewMesh(vertices, indices), nil
}

// voxelColor maps a chunk-local position to a stable color.
func voxelColor(x, y, z int) mgl32.Vec3 {
	const span = float32(world.ChunkSize - 1)
	return mgl32.Vec3{
		0.3 + 0.7*float32(x)/span,
		0.3 + 0.7*float32(y)/span,
		0.3 + 0.7*float32(z)/span,
	}
}
