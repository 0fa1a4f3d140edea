package meshconv

import (
	"fmt"
	"slices"

	"github.com/Faultbox/meshspan/pkg/math"
)

// Dice splits spans that reach a buffer ceiling or violate policy into
// spatially coherent children. Spans that fit are returned unchanged.
// An error wrapping ErrCapacity means a child still does not fit.
func Dice(spans []*Span, maxVerts, maxIndices int, policy *DicingPolicy) ([]*Span, error) {
	out := make([]*Span, 0, len(spans))
	for _, s := range spans {
		d := newDicer(s, maxVerts, maxIndices, policy)
		tris := make([]int, s.NumFaces())
		for i := range tris {
			tris[i] = i
		}
		if d.needsSplit(tris) {
			d.split(tris)
			out = append(out, d.parts...)
		} else {
			out = append(out, s)
		}
	}
	for _, s := range out {
		if len(s.Vertices) >= maxVerts || len(s.Indices) >= maxIndices {
			return nil, fmt.Errorf("%w: %d vertices, %d indices (limits %d, %d)",
				ErrCapacity, len(s.Vertices), len(s.Indices), maxVerts, maxIndices)
		}
	}
	return out, nil
}

// dicer recursively bisects the triangles of one span.
type dicer struct {
	span       *Span
	maxVerts   int
	maxIndices int
	policy     *DicingPolicy

	stamp []uint32 // Per vertex: generation that last touched it
	remap []uint32
	gen   uint32
	keys  []float32 // Per triangle centroid (times 3) on the current axis

	parts []*Span
}

func newDicer(s *Span, maxVerts, maxIndices int, policy *DicingPolicy) *dicer {
	return &dicer{
		span:       s,
		maxVerts:   maxVerts,
		maxIndices: maxIndices,
		policy:     policy,
		stamp:      make([]uint32, len(s.Vertices)),
		remap:      make([]uint32, len(s.Vertices)),
		keys:       make([]float32, s.NumFaces()),
	}
}

// measure returns the unique vertex count and vertex bounds of a triangle set.
func (d *dicer) measure(tris []int) (int, math.Box3) {
	d.gen++
	n := 0
	b := math.EmptyBox()
	for _, t := range tris {
		for _, idx := range d.span.Indices[3*t : 3*t+3] {
			if d.stamp[idx] == d.gen {
				continue
			}
			d.stamp[idx] = d.gen
			n++
			b = b.Extend(d.span.Vertices[idx].Position)
		}
	}
	return n, b
}

func (d *dicer) needsSplit(tris []int) bool {
	if len(tris) <= 1 {
		return false
	}
	verts, bounds := d.measure(tris)
	if verts >= d.maxVerts || 3*len(tris) >= d.maxIndices {
		return true
	}
	p := d.policy
	if p == nil || len(tris) <= p.MinFaces {
		return false
	}
	if p.MaxFaces > 0 && len(tris) > p.MaxFaces {
		return true
	}
	return p.MaxSize > 0 && bounds.MaxExtent() > p.MaxSize
}

func (d *dicer) split(tris []int) {
	if !d.needsSplit(tris) {
		d.extract(tris)
		return
	}
	_, bounds := d.measure(tris)
	axis := bounds.LongestAxis()
	for _, t := range tris {
		var sum float32
		for _, idx := range d.span.Indices[3*t : 3*t+3] {
			sum += d.span.Vertices[idx].Position.Axis(axis)
		}
		d.keys[t] = sum
	}
	mid := len(tris) / 2
	nthElement(tris, mid, func(a, b int) bool {
		if d.keys[a] != d.keys[b] {
			return d.keys[a] < d.keys[b]
		}
		return a < b
	})
	d.split(tris[:mid])
	d.split(tris[mid:])
}

// extract copies a triangle set into a new span, renumbering vertices in
// first-use order of the ascending triangle order.
func (d *dicer) extract(tris []int) {
	slices.Sort(tris)
	src := d.span
	child := src.cloneEmpty()
	child.Props |= PropDiced
	child.Indices = make([]uint32, 0, 3*len(tris))

	d.gen++
	for _, t := range tris {
		for _, idx := range src.Indices[3*t : 3*t+3] {
			if d.stamp[idx] != d.gen {
				d.stamp[idx] = d.gen
				d.remap[idx] = uint32(len(child.Vertices))
				child.Vertices = append(child.Vertices, src.Vertices[idx])
			}
			child.Indices = append(child.Indices, d.remap[idx])
		}
	}
	child.computeBounds()
	if child.Props.Has(PropSkinned) {
		child.DominantBone, child.SecondaryBone = dominantBones(child.Vertices)
	}
	d.parts = append(d.parts, child)
}

// nthElement partially orders s so that s[n] is the element a full sort
// would place there, everything before it is not greater and everything
// after it is not less. less must be a strict total order.
func nthElement(s []int, n int, less func(a, b int) bool) {
	lo, hi := 0, len(s)-1
	for lo < hi {
		mid := lo + (hi-lo)/2
		if less(s[mid], s[lo]) {
			s[mid], s[lo] = s[lo], s[mid]
		}
		if less(s[hi], s[lo]) {
			s[hi], s[lo] = s[lo], s[hi]
		}
		if less(s[hi], s[mid]) {
			s[hi], s[mid] = s[mid], s[hi]
		}
		pivot := s[mid]

		i, j := lo, hi
		for i <= j {
			for less(s[i], pivot) {
				i++
			}
			for less(pivot, s[j]) {
				j--
			}
			if i <= j {
				s[i], s[j] = s[j], s[i]
				i++
				j--
			}
		}
		switch {
		case n <= j:
			hi = j
		case n >= i:
			lo = i
		default:
			return
		}
	}
}
