package gpubuf

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/meshspan/pkg/meshconv"
)

// Buffer is one uploaded span.
type Buffer struct {
	Span       *meshconv.Span
	Layout     Layout
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
}

// Upload creates the VAO, VBO and EBO for s. Requires a current GL context.
func Upload(s *meshconv.Span) *Buffer {
	b := &Buffer{Span: s, Layout: LayoutFor(s.Format), indexCount: int32(len(s.Indices))}
	if len(s.Vertices) == 0 || len(s.Indices) == 0 {
		return b
	}
	vertices := Interleave(s, b.Layout)

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	stride := b.Layout.StrideBytes()
	for _, a := range b.Layout.Attribs {
		if a.Integer {
			gl.VertexAttribIPointerWithOffset(a.Location, a.Size, gl.UNSIGNED_INT, stride, uintptr(a.Offset*4))
		} else {
			gl.VertexAttribPointerWithOffset(a.Location, a.Size, gl.FLOAT, false, stride, uintptr(a.Offset*4))
		}
		gl.EnableVertexAttribArray(a.Location)
	}

	gl.GenBuffers(1, &b.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(s.Indices)*4, unsafe.Pointer(&s.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return b
}

// Draw issues one indexed draw call.
func (b *Buffer) Draw() {
	if b.vao == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.DrawElements(gl.TRIANGLES, b.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// Delete releases the GL objects.
func (b *Buffer) Delete() {
	if b.vao == 0 {
		return
	}
	gl.DeleteBuffers(1, &b.ebo)
	gl.DeleteBuffers(1, &b.vbo)
	gl.DeleteVertexArrays(1, &b.vao)
	b.vao, b.vbo, b.ebo = 0, 0, 0
}
