package meshing

import (
	"errors"
	"fmt"
	"sort"
	"testing"

	"mini-vox/internal/scene"
	"mini-vox/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

func jobWith(c world.ChunkCoord, live ...[3]int) world.Job {
	voxels := make([]bool, world.ChunkVolume)
	for _, v := range live {
		voxels[world.Flatten(v[0], v[1], v[2], world.ChunkSize)] = true
	}
	return world.Job{Coord: c, Voxels: voxels}
}

func TestSingleVoxelAtOrigin(t *testing.T) {
	for _, c := range []world.ChunkCoord{{}, {X: 1, Y: 0, Z: 2}} {
		m, err := GenerateChunkMesh(jobWith(c, [3]int{0, 0, 0}))
		if err != nil {
			t.Fatalf("GenerateChunkMesh: %v", err)
		}
		if len(m.Vertices) != 8 {
			t.Fatalf("chunk %v: %d vertices, want 8", c, len(m.Vertices))
		}
		if len(m.Indices) != 36 {
			t.Fatalf("chunk %v: %d indices, want 36 (12 triangles)", c, len(m.Indices))
		}

		origin := c.Origin()
		seen := map[mgl32.Vec3]bool{}
		for _, v := range m.Vertices {
			local := v.Pos.Sub(origin)
			for axis := 0; axis < 3; axis++ {
				if local[axis] != 0 && local[axis] != 1 {
					t.Fatalf("chunk %v: vertex %v not in {0,1}³ + origin", c, v.Pos)
				}
			}
			seen[local] = true
		}
		if len(seen) != 8 {
			t.Fatalf("chunk %v: %d distinct corners, want 8", c, len(seen))
		}
	}
}

func TestEmptyChunk(t *testing.T) {
	m, err := GenerateChunkMesh(jobWith(world.ChunkCoord{}))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != 0 || len(m.Indices) != 0 {
		t.Fatalf("empty chunk produced %d vertices, %d indices", len(m.Vertices), len(m.Indices))
	}
}

func TestMalformedJob(t *testing.T) {
	for _, n := range []int{0, 10, world.ChunkVolume + 1} {
		_, err := GenerateChunkMesh(world.Job{Voxels: make([]bool, n)})
		if !errors.Is(err, ErrMalformedJob) {
			t.Errorf("len %d: err = %v, want ErrMalformedJob", n, err)
		}
	}
}

func TestAdjacentVoxelsNotCulled(t *testing.T) {
	m, err := GenerateChunkMesh(jobWith(world.ChunkCoord{}, [3]int{0, 0, 0}, [3]int{1, 0, 0}))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Indices) != 72 {
		t.Fatalf("two touching voxels: %d indices, want 72", len(m.Indices))
	}
}

func TestIndicesStayInsideVertexBuffer(t *testing.T) {
	// a chunk far from the world origin with scattered voxels
	job := jobWith(world.ChunkCoord{X: 3, Y: 5, Z: 7},
		[3]int{31, 31, 31}, [3]int{0, 17, 4}, [3]int{12, 0, 30}, [3]int{5, 5, 5})
	m, err := GenerateChunkMesh(job)
	if err != nil {
		t.Fatal(err)
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			t.Fatalf("index %d = %d out of %d vertices", i, idx, len(m.Vertices))
		}
		// every triangle of a cube refers to that cube's own 8 vertices
		if int(idx)/8 != i/36 {
			t.Fatalf("index %d addresses cube %d, want cube %d", i, idx/8, i/36)
		}
	}
}

func TestTrianglesFaceOutward(t *testing.T) {
	m, err := GenerateChunkMesh(jobWith(world.ChunkCoord{}, [3]int{4, 4, 4}))
	if err != nil {
		t.Fatal(err)
	}
	center := mgl32.Vec3{4.5, 4.5, 4.5}
	for tri := 0; tri < len(m.Indices); tri += 3 {
		a := m.Vertices[m.Indices[tri]].Pos
		b := m.Vertices[m.Indices[tri+1]].Pos
		c := m.Vertices[m.Indices[tri+2]].Pos
		normal := b.Sub(a).Cross(c.Sub(a))
		if normal.Dot(a.Sub(center)) <= 0 {
			t.Fatalf("triangle %d winds inward", tri/3)
		}
	}
}

// faceSet describes the mesh as a sorted list of triangles by corner
// positions, independent of vertex order in the buffers.
func faceSet(m *scene.Mesh) []string {
	var out []string
	for tri := 0; tri < len(m.Indices); tri += 3 {
		corners := []string{}
		for k := 0; k < 3; k++ {
			p := m.Vertices[m.Indices[tri+k]].Pos
			corners = append(corners, fmt.Sprint(p))
		}
		sort.Strings(corners)
		out = append(out, corners[0]+corners[1]+corners[2])
	}
	sort.Strings(out)
	return out
}

func TestMeshingDeterministic(t *testing.T) {
	src := world.NewNoiseLiveness(3, 0.55)
	job := world.Job{Coord: world.ChunkCoord{X: 1, Y: 1, Z: 1}, Voxels: make([]bool, world.ChunkVolume)}
	src.Populate(job.Coord, job.Voxels)

	a, err := GenerateChunkMesh(job)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateChunkMesh(job)
	if err != nil {
		t.Fatal(err)
	}
	fa, fb := faceSet(a), faceSet(b)
	if len(fa) != len(fb) {
		t.Fatalf("face counts differ: %d vs %d", len(fa), len(fb))
	}
	for i := range fa {
		if fa[i] != fb[i] {
			t.Fatalf("face %d differs", i)
		}
	}
}

func BenchmarkGenerateChunkMesh_Half(b *testing.B) {
	job := world.Job{Voxels: make([]bool, world.ChunkVolume)}
	for i := range job.Voxels {
		job.Voxels[i] = i%2 == 0
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = GenerateChunkMesh(job)
	}
}
