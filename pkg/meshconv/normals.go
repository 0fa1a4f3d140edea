package meshconv

import "github.com/Faultbox/meshspan/pkg/math"

// smoothNode is one smoothing-group bucket of a vertex.
type smoothNode struct {
	mask uint32
	sum  math.Vec3
}

// NormalAccumulator sums face vectors per vertex and smoothing group.
//
// Contributions whose masks share a bit land in the same node; Normalize
// merges nodes whose masks overlap after those unions and unit-normalizes
// the result. A zero mask never shares, so mask-0 faces are not
// accumulated at all and callers shade them flat.
type NormalAccumulator struct {
	chains     [][]smoothNode
	normalized bool
}

// NewNormalAccumulator creates an accumulator for numVerts source vertices.
func NewNormalAccumulator(numVerts int) *NormalAccumulator {
	return &NormalAccumulator{chains: make([][]smoothNode, numVerts)}
}

// AddFaceNormal adds a (non-unit) face vector to vertex v for the given mask.
func (a *NormalAccumulator) AddFaceNormal(v int, n math.Vec3, mask uint32) {
	if mask == 0 || v < 0 || v >= len(a.chains) {
		return
	}
	chain := a.chains[v]
	for i := range chain {
		if chain[i].mask&mask != 0 {
			chain[i].mask |= mask
			chain[i].sum = chain[i].sum.Add(n)
			return
		}
	}
	a.chains[v] = append(chain, smoothNode{mask: mask, sum: n})
}

// Normalize merges overlapping nodes and unit-normalizes every node.
// It must be called once, after the last AddFaceNormal.
func (a *NormalAccumulator) Normalize() {
	if a.normalized {
		return
	}
	for v, chain := range a.chains {
		for merged := true; merged; {
			merged = false
			for i := 0; i < len(chain); i++ {
				for j := i + 1; j < len(chain); {
					if chain[i].mask&chain[j].mask == 0 {
						j++
						continue
					}
					chain[i].mask |= chain[j].mask
					chain[i].sum = chain[i].sum.Add(chain[j].sum)
					chain = append(chain[:j], chain[j+1:]...)
					merged = true
				}
			}
		}
		for i := range chain {
			chain[i].sum = chain[i].sum.Normalize()
		}
		a.chains[v] = chain
	}
	a.normalized = true
}

// GetNormal returns the normalized vector of the node matching mask.
// The zero vector means undefined: the vertex has no node for this mask
// (or the contributions cancelled out) and the caller should use the
// flat face normal.
func (a *NormalAccumulator) GetNormal(v int, mask uint32) math.Vec3 {
	if mask == 0 || v < 0 || v >= len(a.chains) {
		return math.Vec3{}
	}
	for _, node := range a.chains[v] {
		if node.mask&mask != 0 {
			return node.sum
		}
	}
	return math.Vec3{}
}

// NumGroups returns how many distinct smoothing nodes vertex v holds.
func (a *NormalAccumulator) NumGroups(v int) int {
	if v < 0 || v >= len(a.chains) {
		return 0
	}
	return len(a.chains[v])
}
