// Package gpubuf uploads converted spans into OpenGL vertex and index buffers.
package gpubuf

import (
	gomath "math"
	"strconv"

	"github.com/Faultbox/meshspan/pkg/meshconv"
)

// Fixed attribute locations. UV slot i binds to LocUV0+i.
const (
	LocPosition = 0
	LocNormal   = 1
	LocColor    = 2
	LocWeights  = 3
	LocBones    = 4
	LocUV0      = 5
)

// Attrib is one vertex attribute inside the interleaved buffer.
type Attrib struct {
	Name     string
	Location uint32
	Size     int32 // Components
	Offset   int   // In float32 words
	Integer  bool  // Bound with glVertexAttribIPointer
}

// Layout is the interleaved layout for one span format.
type Layout struct {
	Attribs []Attrib
	Stride  int // In float32 words
}

// StrideBytes returns the stride in bytes.
func (l Layout) StrideBytes() int32 {
	return int32(l.Stride * 4)
}

// LayoutFor builds the attribute layout of a span format. Weights are
// present only when the format stores them; packed bone indices travel as
// one 32-bit integer attribute.
func LayoutFor(f meshconv.Format) Layout {
	var l Layout
	add := func(name string, loc uint32, size int32, integer bool) {
		l.Attribs = append(l.Attribs, Attrib{Name: name, Location: loc, Size: size, Offset: l.Stride, Integer: integer})
		l.Stride += int(size)
	}
	add("position", LocPosition, 3, false)
	add("normal", LocNormal, 3, false)
	add("color", LocColor, 4, false)
	if f.SkinWeights > 0 {
		add("weights", LocWeights, int32(f.SkinWeights), false)
	}
	if f.SkinIndices {
		add("bones", LocBones, 1, true)
	}
	for i := 0; i < f.UVCount; i++ {
		add("uv"+strconv.Itoa(i), uint32(LocUV0+i), 3, false)
	}
	return l
}

// Interleave packs the span vertices according to l.
func Interleave(s *meshconv.Span, l Layout) []float32 {
	out := make([]float32, 0, len(s.Vertices)*l.Stride)
	for i := range s.Vertices {
		v := &s.Vertices[i]
		for _, a := range l.Attribs {
			switch a.Location {
			case LocPosition:
				out = append(out, v.Position.X, v.Position.Y, v.Position.Z)
			case LocNormal:
				out = append(out, v.Normal.X, v.Normal.Y, v.Normal.Z)
			case LocColor:
				out = append(out, v.Color[:]...)
			case LocWeights:
				out = append(out, v.Weights[:a.Size]...)
			case LocBones:
				out = append(out, gomath.Float32frombits(v.Bones))
			default:
				slot := int(a.Location - LocUV0)
				if slot < len(v.UVs) {
					uv := v.UVs[slot]
					out = append(out, uv.X, uv.Y, uv.Z)
				} else {
					out = append(out, 0, 0, 0)
				}
			}
		}
	}
	return out
}
