package meshconv

import "github.com/Faultbox/meshspan/pkg/math"

// VertexAccumulator deduplicates corners into canonical vertices and records
// the triangle index buffer.
//
// Canonical ids are grouped per source vertex; a new corner is compared only
// against the few variants already created for the same source vertex.
type VertexAccumulator struct {
	verts    []Vertex
	bySource [][]uint32
	indices  []uint32
}

// NewVertexAccumulator creates an accumulator for numSource source vertices.
func NewVertexAccumulator(numSource int) *VertexAccumulator {
	return &VertexAccumulator{bySource: make([][]uint32, numSource)}
}

// AddVertex appends the canonical id for v to the index buffer, creating a
// new canonical vertex when no attribute-equal one exists for src.
// v.UVs is copied when a new vertex is stored.
func (a *VertexAccumulator) AddVertex(src int, v Vertex) uint32 {
	for _, id := range a.bySource[src] {
		if sameAttributes(&a.verts[id], &v) {
			a.indices = append(a.indices, id)
			return id
		}
	}
	id := uint32(len(a.verts))
	v.Source = src
	if v.UVs != nil {
		v.UVs = append([]math.Vec3(nil), v.UVs...)
	}
	a.verts = append(a.verts, v)
	a.bySource[src] = append(a.bySource[src], id)
	a.indices = append(a.indices, id)
	return id
}

// NumVertices returns the number of canonical vertices.
func (a *VertexAccumulator) NumVertices() int {
	return len(a.verts)
}

// Indices returns the index buffer built so far.
func (a *VertexAccumulator) Indices() []uint32 {
	return a.indices
}

// SourceIndex returns the source vertex a canonical id came from.
func (a *VertexAccumulator) SourceIndex(id int) int {
	return a.verts[id].Source
}

// Flatten returns the canonical vertices in id order.
func (a *VertexAccumulator) Flatten() []Vertex {
	out := make([]Vertex, len(a.verts))
	copy(out, a.verts)
	return out
}

// sameAttributes compares everything that distinguishes two corners of the
// same source vertex: normal, color (with alpha), illumination and UVs.
func sameAttributes(a, b *Vertex) bool {
	if a.Normal != b.Normal || a.Color != b.Color || a.Illum != b.Illum {
		return false
	}
	if len(a.UVs) != len(b.UVs) {
		return false
	}
	for i := range a.UVs {
		if a.UVs[i] != b.UVs[i] {
			return false
		}
	}
	return true
}
