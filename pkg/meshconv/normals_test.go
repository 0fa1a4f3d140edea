package meshconv

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/meshspan/pkg/math"
)

func TestNormalAccumulatorSharedMask(t *testing.T) {
	a := NewNormalAccumulator(1)
	a.AddFaceNormal(0, math.Vec3{X: 2}, 1)
	a.AddFaceNormal(0, math.Vec3{Y: 2}, 1)
	a.Normalize()

	n := a.GetNormal(0, 1)
	assert.InDelta(t, 1, n.Length(), 1e-6)
	assert.InDelta(t, n.X, n.Y, 1e-6)
	assert.Equal(t, 1, a.NumGroups(0))
}

func TestNormalAccumulatorDisjointMasks(t *testing.T) {
	a := NewNormalAccumulator(1)
	a.AddFaceNormal(0, math.Vec3{X: 1}, 1)
	a.AddFaceNormal(0, math.Vec3{Y: 1}, 2)
	a.Normalize()

	assert.Equal(t, 2, a.NumGroups(0))
	assert.Equal(t, math.Vec3{X: 1}, a.GetNormal(0, 1))
	assert.Equal(t, math.Vec3{Y: 1}, a.GetNormal(0, 2))
	assert.True(t, a.GetNormal(0, 4).IsZero())
}

func TestNormalAccumulatorTransitiveMerge(t *testing.T) {
	a := NewNormalAccumulator(1)
	a.AddFaceNormal(0, math.Vec3{X: 1}, 1)
	a.AddFaceNormal(0, math.Vec3{Y: 1}, 2)
	// Bridges groups 1 and 2 after both nodes exist.
	a.AddFaceNormal(0, math.Vec3{Z: 1}, 3)
	a.Normalize()

	assert.Equal(t, 1, a.NumGroups(0))
	assert.Equal(t, a.GetNormal(0, 1), a.GetNormal(0, 2))
}

func TestNormalAccumulatorZeroMask(t *testing.T) {
	a := NewNormalAccumulator(2)
	a.AddFaceNormal(0, math.Vec3{X: 1}, 0)
	a.AddFaceNormal(5, math.Vec3{X: 1}, 1)
	a.Normalize()

	assert.Equal(t, 0, a.NumGroups(0))
	assert.True(t, a.GetNormal(0, 0).IsZero())
	assert.True(t, a.GetNormal(1, 1).IsZero(), "untouched vertex")
}
