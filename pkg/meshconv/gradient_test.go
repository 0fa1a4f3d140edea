package meshconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshspan/pkg/math"
)

func uvTriangle(uvs [3]math.Vec3) *SourceMesh {
	return &SourceMesh{
		Vertices:   []math.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces:      []Face{{V: [3]int{0, 1, 2}, SmoothGroup: 1}},
		UVChannels: []*MapChannel{{Verts: uvs[:], Faces: [][3]int{{0, 1, 2}}}},
	}
}

func TestComputeGradient(t *testing.T) {
	tests := []struct {
		name   string
		uvs    [3]math.Vec3
		axis   UVAxis
		want   math.Vec3
		wantOK bool
	}{
		{"u along edge", [3]math.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, AxisU, math.Vec3{X: 1}, true},
		{"v along reversed edge", [3]math.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, AxisV, math.Vec3{Y: 1}, true},
		{"rotated edge", [3]math.Vec3{{0, 0, 0}, {1, 1, 0}, {-1, 1, 0}}, AxisU, math.Vec3{X: 1, Y: -1}, true},
		{"general solve", [3]math.Vec3{{0, 0, 0}, {2, 1, 0}, {1, 3, 0}}, AxisU, math.Vec3{X: 0.6, Y: -0.2}, true},
		{"degenerate", [3]math.Vec3{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}, AxisU, math.Vec3{X: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewUVGradientBuilder(uvTriangle(tt.uvs), 0)
			require.NotNil(t, g)
			got, ok := g.ComputeGradient(0, tt.axis)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, got.ApproxEqual(tt.want, 1e-5), "got %v, want %v", got, tt.want)
		})
	}
}

func TestUVGradientBuilderMissingChannel(t *testing.T) {
	m := uvTriangle([3]math.Vec3{})
	assert.Nil(t, NewUVGradientBuilder(m, 1))
	assert.Nil(t, NewUVGradientBuilder(m, -1))
}

func TestUVGradientBuilderGradients(t *testing.T) {
	m := quadMesh(1)
	g := NewUVGradientBuilder(m, 0)
	require.NotNil(t, g)
	assert.Equal(t, 0, g.Build([]bool{true, true}))

	for f := range m.Faces {
		for c := 0; c < 3; c++ {
			du, dv := g.Gradients(f, c)
			assert.True(t, du.ApproxEqual(math.Vec3{X: 1}, 1e-6), "du %v", du)
			assert.True(t, dv.ApproxEqual(math.Vec3{Y: -1}, 1e-6), "dv %v", dv)
		}
	}
}
