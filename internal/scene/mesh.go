// Package scene holds drawable geometry and the ordered Mesh Store the view
// records draw commands from.
package scene

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BufferUsage is the class of a GPU buffer.
type BufferUsage int

const (
	UsageVertex BufferUsage = iota
	UsageIndex
	UsageInstance
)

func (u BufferUsage) String() string {
	switch u {
	case UsageVertex:
		return "vertex"
	case UsageIndex:
		return "index"
	case UsageInstance:
		return "instance"
	default:
		return fmt.Sprintf("usage(%d)", int(u))
	}
}

// Buffer is a GPU-resident buffer handle owned by a Mesh.
type Buffer interface {
	Usage() BufferUsage
	Len() int // element count
	Release()
}

// BufferAllocator creates GPU buffers from encoded element data.
type BufferAllocator interface {
	CreateBuffer(usage BufferUsage, count int, data []byte) (Buffer, error)
}

// Vertex layout: position then color, 6 float32.
type Vertex struct {
	Pos   mgl32.Vec3
	Color mgl32.Vec3
}

// VertexStride is the encoded size of a Vertex in bytes.
const VertexStride = 6 * 4

// Instance is a per-instance offset and tint.
type Instance struct {
	Offset mgl32.Vec3
	Tint   mgl32.Vec3
}

// InstanceStride is the encoded size of an Instance in bytes.
const InstanceStride = 6 * 4

// ErrNoGeometry is returned when uploading a mesh without vertices or indices.
var ErrNoGeometry = errors.New("scene: mesh has no geometry")

// Mesh is CPU geometry plus the GPU buffers created from it. The geometry is
// filled by whoever builds the mesh; buffers are created later on the render
// thread by Upload.
type Mesh struct {
	Vertices  []Vertex
	Indices   []uint32
	Instances []Instance

	vertexBuf   Buffer
	indexBuf    Buffer
	instanceBuf Buffer
}

// NewMesh wraps geometry in a Mesh.
func NewMesh(vertices []Vertex, indices []uint32) *Mesh {
	return &Mesh{Vertices: vertices, Indices: indices}
}

// WithInstances attaches per-instance data and returns the mesh.
func (m *Mesh) WithInstances(instances []Instance) *Mesh {
	m.Instances = instances
	return m
}

// Quad is the default mesh the view starts with.
func Quad() *Mesh {
	white := mgl32.Vec3{1, 1, 1}
	return NewMesh(
		[]Vertex{
			{Pos: mgl32.Vec3{0.1, 0.1, 0}, Color: white},
			{Pos: mgl32.Vec3{0.1, -0.1, 0}, Color: white},
			{Pos: mgl32.Vec3{-0.1, 0.1, 0}, Color: white},
			{Pos: mgl32.Vec3{-0.1, -0.1, 0}, Color: white},
		},
		[]uint32{0, 1, 2, 2, 1, 3},
	)
}

// Uploaded reports whether GPU buffers exist for the mesh.
func (m *Mesh) Uploaded() bool {
	return m.vertexBuf != nil && m.indexBuf != nil
}

// Upload creates the vertex, index and (if any) instance buffers. Calling it
// on an uploaded mesh is a no-op.
func (m *Mesh) Upload(alloc BufferAllocator) error {
	if m.Uploaded() {
		return nil
	}
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return ErrNoGeometry
	}

	vb, err := alloc.CreateBuffer(UsageVertex, len(m.Vertices), EncodeVertices(m.Vertices))
	if err != nil {
		return fmt.Errorf("vertex buffer: %w", err)
	}
	ib, err := alloc.CreateBuffer(UsageIndex, len(m.Indices), EncodeIndices(m.Indices))
	if err != nil {
		vb.Release()
		return fmt.Errorf("index buffer: %w", err)
	}
	var instb Buffer
	if len(m.Instances) > 0 {
		instb, err = alloc.CreateBuffer(UsageInstance, len(m.Instances), EncodeInstances(m.Instances))
		if err != nil {
			vb.Release()
			ib.Release()
			return fmt.Errorf("instance buffer: %w", err)
		}
	}

	m.vertexBuf, m.indexBuf, m.instanceBuf = vb, ib, instb
	return nil
}

// VertexBuffer returns the uploaded vertex buffer or nil.
func (m *Mesh) VertexBuffer() Buffer { return m.vertexBuf }

// IndexBuffer returns the uploaded index buffer or nil.
func (m *Mesh) IndexBuffer() Buffer { return m.indexBuf }

// InstanceBuffer returns the uploaded instance buffer or nil.
func (m *Mesh) InstanceBuffer() Buffer { return m.instanceBuf }

// IndexCount is the number of indices drawn per instance.
func (m *Mesh) IndexCount() int {
	if m.indexBuf != nil {
		return m.indexBuf.Len()
	}
	return len(m.Indices)
}

// InstanceCount is the number of instances drawn; a mesh without an instance
// buffer draws once.
func (m *Mesh) InstanceCount() int {
	if m.instanceBuf != nil {
		return m.instanceBuf.Len()
	}
	return 1
}

// Release frees the GPU buffers. The CPU geometry is kept.
func (m *Mesh) Release() {
	for _, b := range []Buffer{m.vertexBuf, m.indexBuf, m.instanceBuf} {
		if b != nil {
			b.Release()
		}
	}
	m.vertexBuf, m.indexBuf, m.instanceBuf = nil, nil, nil
}

// EncodeVertices packs vertices little-endian in Vertex layout.
func EncodeVertices(vs []Vertex) []byte {
	out := make([]byte, 0, len(vs)*VertexStride)
	for _, v := range vs {
		out = appendVec3(out, v.Pos)
		out = appendVec3(out, v.Color)
	}
	return out
}

// EncodeInstances packs instances little-endian in Instance layout.
func EncodeInstances(is []Instance) []byte {
	out := make([]byte, 0, len(is)*InstanceStride)
	for _, in := range is {
		out = appendVec3(out, in.Offset)
		out = appendVec3(out, in.Tint)
	}
	return out
}

// EncodeIndices packs indices as little-endian uint32.
func EncodeIndices(idx []uint32) []byte {
	out := make([]byte, 0, len(idx)*4)
	for _, i := range idx {
		out = binary.LittleEndian.AppendUint32(out, i)
	}
	return out
}

func appendVec3(b []byte, v mgl32.Vec3) []byte {
	for _, f := range v {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
	}
	return b
}
