package meshconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshspan/pkg/math"
)

func TestVertexAccumulatorDedup(t *testing.T) {
	a := NewVertexAccumulator(2)
	up := Vertex{Normal: math.Vec3{Z: 1}, UVs: []math.Vec3{{X: 0.5}}}
	down := Vertex{Normal: math.Vec3{Z: -1}, UVs: []math.Vec3{{X: 0.5}}}

	assert.Equal(t, uint32(0), a.AddVertex(0, up))
	assert.Equal(t, uint32(0), a.AddVertex(0, up))
	assert.Equal(t, uint32(1), a.AddVertex(0, down))
	// Same attributes on a different source vertex never merge.
	assert.Equal(t, uint32(2), a.AddVertex(1, up))

	assert.Equal(t, 3, a.NumVertices())
	assert.Equal(t, []uint32{0, 0, 1, 2}, a.Indices())
	assert.Equal(t, 0, a.SourceIndex(1))
	assert.Equal(t, 1, a.SourceIndex(2))
}

func TestVertexAccumulatorUVDistinguishes(t *testing.T) {
	a := NewVertexAccumulator(1)
	a.AddVertex(0, Vertex{UVs: []math.Vec3{{X: 0}}})
	a.AddVertex(0, Vertex{UVs: []math.Vec3{{X: 1}}})
	a.AddVertex(0, Vertex{UVs: []math.Vec3{{X: 0}, {}}})
	assert.Equal(t, 3, a.NumVertices())
}

func TestVertexAccumulatorCopiesUVs(t *testing.T) {
	a := NewVertexAccumulator(1)
	uvs := []math.Vec3{{X: 1}}
	a.AddVertex(0, Vertex{UVs: uvs})
	uvs[0].X = 7

	verts := a.Flatten()
	require.Len(t, verts, 1)
	assert.Equal(t, float32(1), verts[0].UVs[0].X)

	verts[0].Position.X = 3
	assert.Equal(t, float32(0), a.Flatten()[0].Position.X, "Flatten returns a copy")
}
