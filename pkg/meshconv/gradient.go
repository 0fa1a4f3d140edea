package meshconv

import "github.com/Faultbox/meshspan/pkg/math"

// UVAxis selects the texture axis of a gradient.
type UVAxis int

const (
	AxisU UVAxis = 0
	AxisV UVAxis = 1
)

// UVGradientBuilder reconstructs object-space tangent directions (dPos/dU,
// dPos/dV) from one UV channel, smoothed per smoothing group like normals.
type UVGradientBuilder struct {
	mesh    *SourceMesh
	channel *MapChannel

	du, dv         *NormalAccumulator
	faceDu, faceDv []math.Vec3
}

// NewUVGradientBuilder creates a builder reading UV channel ch of mesh.
// It returns nil if the channel is absent.
func NewUVGradientBuilder(mesh *SourceMesh, ch int) *UVGradientBuilder {
	channel := mesh.uvChannel(ch)
	if channel == nil {
		return nil
	}
	return &UVGradientBuilder{
		mesh:    mesh,
		channel: channel,
		du:      NewNormalAccumulator(len(mesh.Vertices)),
		dv:      NewNormalAccumulator(len(mesh.Vertices)),
		faceDu:  make([]math.Vec3, len(mesh.Faces)),
		faceDv:  make([]math.Vec3, len(mesh.Faces)),
	}
}

// ComputeGradient returns the object-space direction along which the other
// UV axis stays constant and the axis increases. ok is false when the UV
// triangle is degenerate and an edge vector was substituted.
func (g *UVGradientBuilder) ComputeGradient(f int, axis UVAxis) (grad math.Vec3, ok bool) {
	face := g.mesh.Faces[f]
	var p [3]math.Vec3
	var t [3]math.Vec2
	for c := 0; c < 3; c++ {
		p[c] = g.mesh.Vertices[face.V[c]]
		uv, _ := g.channel.lookup(f, c)
		t[c] = uv.XY()
	}
	a := int(axis)
	o := 1 - a

	// An edge whose endpoints share the other coordinate already is the gradient.
	for _, e := range [3][2]int{{0, 1}, {1, 2}, {2, 0}} {
		i, j := e[0], e[1]
		if t[i].Axis(o) != t[j].Axis(o) || t[i].Axis(a) == t[j].Axis(a) {
			continue
		}
		edge := p[j].Sub(p[i])
		if t[j].Axis(a) < t[i].Axis(a) {
			edge = edge.Neg()
		}
		return edge, true
	}

	d1 := t[1].Sub(t[0])
	d2 := t[2].Sub(t[0])
	e1 := p[1].Sub(p[0])
	e2 := p[2].Sub(p[0])
	det := d1.Axis(a)*d2.Axis(o) - d2.Axis(a)*d1.Axis(o)
	if det == 0 {
		if d1.Axis(a) < 0 {
			return e1.Neg(), false
		}
		return e1, false
	}
	return e1.Scale(d2.Axis(o)).Sub(e2.Scale(d1.Axis(o))).Scale(1 / det), true
}

// Build computes and smooths gradients for the faces marked in include.
// It returns the number of faces that needed the degenerate fallback.
func (g *UVGradientBuilder) Build(include []bool) int {
	bad := 0
	for f, face := range g.mesh.Faces {
		if !include[f] {
			continue
		}
		du, okU := g.ComputeGradient(f, AxisU)
		dv, okV := g.ComputeGradient(f, AxisV)
		if !okU || !okV {
			bad++
		}
		g.faceDu[f] = du.Normalize()
		g.faceDv[f] = dv.Normalize()
		if face.SmoothGroup == 0 {
			continue
		}
		for c := 0; c < 3; c++ {
			g.du.AddFaceNormal(face.V[c], du, face.SmoothGroup)
			g.dv.AddFaceNormal(face.V[c], dv, face.SmoothGroup)
		}
	}
	g.du.Normalize()
	g.dv.Normalize()
	return bad
}

// Gradients returns dPos/dU and -dPos/dV for corner c of face f.
// V is negated because texture V runs opposite to object space.
func (g *UVGradientBuilder) Gradients(f, c int) (du, dv math.Vec3) {
	face := g.mesh.Faces[f]
	du, dv = g.faceDu[f], g.faceDv[f]
	if face.SmoothGroup != 0 {
		if n := g.du.GetNormal(face.V[c], face.SmoothGroup); !n.IsZero() {
			du = n
		}
		if n := g.dv.GetNormal(face.V[c], face.SmoothGroup); !n.IsZero() {
			dv = n
		}
	}
	return du, dv.Neg()
}
