// Package debug provides span inspection overlays for the preview.
package debug

import "github.com/Faultbox/meshspan/pkg/math"

// BoxLines returns the 12 edges of b as a line list, [x, y, z] per vertex,
// transformed by m. Empty boxes produce no lines.
func BoxLines(b math.Box3, m math.Mat4) []float32 {
	if b.IsEmpty() {
		return nil
	}
	var corners [8]math.Vec3
	for i := range corners {
		c := b.Min
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		corners[i] = m.TransformPoint(c)
	}

	// Corner pairs differing in exactly one axis bit
	edges := [12][2]int{
		{0, 1}, {2, 3}, {4, 5}, {6, 7}, // X
		{0, 2}, {1, 3}, {4, 6}, {5, 7}, // Y
		{0, 4}, {1, 5}, {2, 6}, {3, 7}, // Z
	}
	out := make([]float32, 0, len(edges)*6)
	for _, e := range edges {
		a, c := corners[e[0]], corners[e[1]]
		out = append(out, a.X, a.Y, a.Z, c.X, c.Y, c.Z)
	}
	return out
}

// SpanColor returns a stable debug color for span i, so diced siblings are
// told apart.
func SpanColor(i int) [3]float32 {
	palette := [...][3]float32{
		{1, 0.35, 0.35},
		{0.35, 1, 0.35},
		{0.4, 0.6, 1},
		{1, 0.85, 0.3},
		{0.9, 0.4, 1},
		{0.3, 1, 1},
	}
	return palette[i%len(palette)]
}
