package debug

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/meshspan/internal/engine/shader"
	"github.com/Faultbox/meshspan/pkg/math"
)

// LineSet is a GPU line list drawn in one color.
type LineSet struct {
	vao, vbo uint32
	count    int32
	Color    [3]float32
}

// LineRenderer draws LineSets.
type LineRenderer struct {
	program  uint32
	locMVP   int32
	locColor int32
}

// NewLineRenderer compiles the line program. Requires a current GL context.
func NewLineRenderer() (*LineRenderer, error) {
	program, err := shader.CompileProgram(shader.LineVertex, shader.LineFragment)
	if err != nil {
		return nil, err
	}
	return &LineRenderer{
		program:  program,
		locMVP:   shader.Uniform(program, "uMVP"),
		locColor: shader.Uniform(program, "uColor"),
	}, nil
}

// Upload creates a LineSet from [x, y, z] vertex pairs.
func (r *LineRenderer) Upload(vertices []float32, color [3]float32) *LineSet {
	ls := &LineSet{count: int32(len(vertices) / 3), Color: color}
	if ls.count == 0 {
		return ls
	}
	gl.GenVertexArrays(1, &ls.vao)
	gl.BindVertexArray(ls.vao)
	gl.GenBuffers(1, &ls.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, ls.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)
	return ls
}

// Draw renders sets with the given view-projection matrix.
func (r *LineRenderer) Draw(viewProj math.Mat4, sets []*LineSet) {
	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.locMVP, 1, false, viewProj.Ptr())
	for _, ls := range sets {
		if ls.vao == 0 {
			continue
		}
		gl.Uniform3f(r.locColor, ls.Color[0], ls.Color[1], ls.Color[2])
		gl.BindVertexArray(ls.vao)
		gl.DrawArrays(gl.LINES, 0, ls.count)
	}
	gl.BindVertexArray(0)
}

// Delete releases a LineSet.
func (ls *LineSet) Delete() {
	if ls.vao == 0 {
		return
	}
	gl.DeleteBuffers(1, &ls.vbo)
	gl.DeleteVertexArrays(1, &ls.vao)
	ls.vao, ls.vbo = 0, 0
}

// Release deletes the program.
func (r *LineRenderer) Release() {
	gl.DeleteProgram(r.program)
}
