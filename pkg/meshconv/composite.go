package meshconv

import "github.com/Faultbox/meshspan/pkg/math"

// blendSource returns where blend channel k of d reads its weight.
// Channels without an explicit source read alpha, then illumination R, G, B.
func (d *MaterialDescriptor) blendSource(k int) BlendSource {
	if d.Composite != nil && k < len(d.Composite.Sources) {
		return d.Composite.Sources[k]
	}
	return BlendSource(min(k, int(BlendFromIllumB)))
}

// blendValue extracts the weight a blend source reads from one corner.
func blendValue(src BlendSource, alpha float32, illum math.Vec3) float32 {
	switch src {
	case BlendFromIllumR:
		return illum.X
	case BlendFromIllumG:
		return illum.Y
	case BlendFromIllumB:
		return illum.Z
	default:
		return alpha
	}
}

// compositeVariant picks the layer combination a composite face needs.
// Bit k is set when layer k is visible on any corner. A layer that is fully
// opaque on all three corners hides everything below it.
func compositeVariant(vals [3][]float32) int {
	variant := 0
	for k := range vals[0] {
		lo, hi := vals[0][k], vals[0][k]
		for c := 1; c < 3; c++ {
			lo = min(lo, vals[c][k])
			hi = max(hi, vals[c][k])
		}
		switch {
		case lo >= 1:
			variant = 1 << k
		case hi > 0:
			variant |= 1 << k
		}
	}
	return variant
}
