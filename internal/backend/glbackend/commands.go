package glbackend

import (
	"fmt"

	"mini-vox/internal/render"
	"mini-vox/internal/scene"

	"github.com/go-gl/gl/v4.1-core/gl"
)

type draw struct {
	vertices  *buffer
	indices   *buffer
	instances *buffer
	count     int32
	instanced int32
}

// drawList is the recorded command sequence for one chain image. Recording
// only captures state; GL calls happen when the list is submitted.
type drawList struct {
	target   *framebuffer
	pipeline *pipeline
	pc       render.PushConstants
	clear    [4]float32
	draws    []draw
}

func (b *Backend) Record(binding, pl render.Resource, pc render.PushConstants, meshes []*scene.Mesh) (render.Commands, error) {
	fb, ok := binding.(*framebuffer)
	if !ok || fb.fbo == 0 {
		return nil, fmt.Errorf("glbackend: record into invalid binding %T", binding)
	}
	p, ok := pl.(*pipeline)
	if !ok {
		return nil, fmt.Errorf("glbackend: record with invalid pipeline %T", pl)
	}

	list := &drawList{target: fb, pipeline: p, pc: pc, clear: b.opts.ClearColor, draws: make([]draw, 0, len(meshes))}
	for i, m := range meshes {
		d, err := drawFor(m)
		if err != nil {
			return nil, fmt.Errorf("glbackend: mesh %d: %w", i, err)
		}
		list.draws = append(list.draws, d)
	}
	return list, nil
}

func drawFor(m *scene.Mesh) (draw, error) {
	if !m.Uploaded() {
		return draw{}, fmt.Errorf("mesh not uploaded")
	}
	d := draw{
		count:     int32(m.IndexCount()),
		instanced: int32(m.InstanceCount()),
	}
	var ok bool
	if d.vertices, ok = m.VertexBuffer().(*buffer); !ok {
		return draw{}, fmt.Errorf("foreign vertex buffer %T", m.VertexBuffer())
	}
	if d.indices, ok = m.IndexBuffer().(*buffer); !ok {
		return draw{}, fmt.Errorf("foreign index buffer %T", m.IndexBuffer())
	}
	if ib := m.InstanceBuffer(); ib != nil {
		if d.instances, ok = ib.(*buffer); !ok {
			return draw{}, fmt.Errorf("foreign instance buffer %T", ib)
		}
	}
	return d, nil
}

// execute replays the list into its framebuffer.
func (l *drawList) execute() {
	vp := l.pipeline.viewport
	gl.BindFramebuffer(gl.FRAMEBUFFER, l.target.fbo)
	gl.Viewport(int32(vp.X), int32(vp.Y), int32(vp.Width), int32(vp.Height))
	gl.DepthRangef(vp.MinDepth, vp.MaxDepth)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	// the default quad is single-sided and must show from both sides
	gl.Disable(gl.CULL_FACE)

	gl.ClearColor(l.clear[0], l.clear[1], l.clear[2], l.clear[3])
	gl.ClearDepthf(1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	s := l.pipeline.shader
	s.Use()
	s.SetMatrix4("proj", &l.pc.Proj[0])
	s.SetMatrix4("view", &l.pc.View[0])

	for _, d := range l.draws {
		bindMesh(d)
		if d.instances == nil {
			gl.VertexAttrib3f(attrOffset, 0, 0, 0)
			gl.VertexAttrib3f(attrTint, 1, 1, 1)
		}
		gl.DrawElementsInstanced(gl.TRIANGLES, d.count, gl.UNSIGNED_INT, gl.PtrOffset(0), d.instanced)
	}
	gl.BindVertexArray(0)
}
