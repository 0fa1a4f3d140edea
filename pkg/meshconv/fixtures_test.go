package meshconv

import (
	"sync"

	"github.com/Faultbox/meshspan/pkg/math"
)

// recorder collects diagnostics.
type recorder struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func (r *recorder) Report(d Diagnostic) {
	r.mu.Lock()
	r.diags = append(r.diags, d)
	r.mu.Unlock()
}

func (r *recorder) count(code Code) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.diags {
		if d.Code == code {
			n++
		}
	}
	return n
}

// quadMesh is a unit quad in the XY plane with UVs equal to XY.
func quadMesh(mask uint32) *SourceMesh {
	verts := []math.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	uv := &MapChannel{Verts: verts, Faces: [][3]int{{0, 1, 2}, {0, 2, 3}}}
	return &SourceMesh{
		Name:     "quad",
		Vertices: verts,
		Faces: []Face{
			{V: [3]int{0, 1, 2}, SmoothGroup: mask},
			{V: [3]int{0, 2, 3}, SmoothGroup: mask},
		},
		UVChannels: []*MapChannel{uv},
	}
}

// cubeMesh is a unit cube with outward winding and every face in mask.
func cubeMesh(mask uint32) *SourceMesh {
	verts := make([]math.Vec3, 8)
	for i := range verts {
		verts[i] = math.Vec3{X: float32(i & 1), Y: float32(i >> 1 & 1), Z: float32(i >> 2 & 1)}
	}
	sides := [][4]int{
		{0, 4, 6, 2}, // -X
		{1, 3, 7, 5}, // +X
		{0, 1, 5, 4}, // -Y
		{2, 6, 7, 3}, // +Y
		{0, 2, 3, 1}, // -Z
		{4, 5, 7, 6}, // +Z
	}
	m := &SourceMesh{Name: "cube", Vertices: verts}
	for _, s := range sides {
		m.Faces = append(m.Faces,
			Face{V: [3]int{s[0], s[1], s[2]}, SmoothGroup: mask},
			Face{V: [3]int{s[0], s[2], s[3]}, SmoothGroup: mask},
		)
	}
	return m
}

// gridMesh is an n by n vertex grid in the XY plane, one smoothing group.
func gridMesh(n int) *SourceMesh {
	m := &SourceMesh{Name: "grid"}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			m.Vertices = append(m.Vertices, math.Vec3{X: float32(x), Y: float32(y)})
		}
	}
	for y := 0; y < n-1; y++ {
		for x := 0; x < n-1; x++ {
			a := y*n + x
			b, c, d := a+1, a+n+1, a+n
			m.Faces = append(m.Faces,
				Face{V: [3]int{a, b, c}, SmoothGroup: 1},
				Face{V: [3]int{a, c, d}, SmoothGroup: 1},
			)
		}
	}
	return m
}

// untexturedMaterial needs no UV channels.
func untexturedMaterial() MaterialResolver {
	return MaterialFunc(func(int) MaterialDescriptor {
		return MaterialDescriptor{Name: "flat", Kind: MatSimple, Layers: []Layer{{}}}
	})
}
