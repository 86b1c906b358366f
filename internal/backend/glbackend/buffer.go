package glbackend

import (
	"mini-vox/internal/scene"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Attribute locations shared with shaders/voxel.vert.
const (
	attrPos    = 0
	attrColor  = 1
	attrOffset = 2
	attrTint   = 3
)

type buffer struct {
	id    uint32
	usage scene.BufferUsage
	count int

	// vao is created lazily for vertex buffers, which belong to exactly one
	// mesh, and captures that mesh's attribute layout.
	vao uint32
}

func (b *buffer) Usage() scene.BufferUsage { return b.usage }
func (b *buffer) Len() int                 { return b.count }

func (b *buffer) Release() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
	if b.id != 0 {
		gl.DeleteBuffers(1, &b.id)
		b.id = 0
	}
}

// bindMesh binds (building on first use) the vertex array for a draw.
func bindMesh(d draw) {
	if d.vertices.vao != 0 {
		gl.BindVertexArray(d.vertices.vao)
		return
	}
	gl.GenVertexArrays(1, &d.vertices.vao)
	gl.BindVertexArray(d.vertices.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, d.vertices.id)
	gl.EnableVertexAttribArray(attrPos)
	gl.VertexAttribPointer(attrPos, 3, gl.FLOAT, false, scene.VertexStride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(attrColor)
	gl.VertexAttribPointer(attrColor, 3, gl.FLOAT, false, scene.VertexStride, gl.PtrOffset(12))

	if d.instances != nil {
		gl.BindBuffer(gl.ARRAY_BUFFER, d.instances.id)
		gl.EnableVertexAttribArray(attrOffset)
		gl.VertexAttribPointer(attrOffset, 3, gl.FLOAT, false, scene.InstanceStride, gl.PtrOffset(0))
		gl.VertexAttribDivisor(attrOffset, 1)
		gl.EnableVertexAttribArray(attrTint)
		gl.VertexAttribPointer(attrTint, 3, gl.FLOAT, false, scene.InstanceStride, gl.PtrOffset(12))
		gl.VertexAttribDivisor(attrTint, 1)
	} else {
		gl.DisableVertexAttribArray(attrOffset)
		gl.DisableVertexAttribArray(attrTint)
	}

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, d.indices.id)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}
