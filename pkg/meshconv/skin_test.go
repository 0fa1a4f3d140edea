package meshconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshspan/pkg/math"
)

func skinnedTriangle(skin *SkinBinding) *SourceMesh {
	m := &SourceMesh{
		Name:     "skinned",
		Vertices: []math.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces:    []Face{{V: [3]int{0, 1, 2}, SmoothGroup: 1}},
		Skin:     skin,
	}
	return m
}

func TestSkinPartialWeightsNormalize(t *testing.T) {
	w := []BoneWeight{{Bone: 2, Weight: 0.4}, {Bone: 3, Weight: 0.2}}
	r, err := NewSkinWeightResolver(skinnedTriangle(&SkinBinding{
		Native:   [][]BoneWeight{w, w, w},
		NumBones: 4,
	}))
	require.NoError(t, err)
	require.True(t, r.Native())

	weights, bones := r.Resolve(0)
	var sum float32
	for i, x := range weights {
		sum += x
		if i > 0 {
			assert.LessOrEqual(t, x, weights[i-1], "weights must be descending")
		}
	}
	assert.InDelta(t, 1, sum, 1e-6)
	// The 0.4 remainder goes to bone 0 and ties keep insertion order.
	assert.Equal(t, [4]int{2, 0, 3, 0}, bones)
	assert.InDelta(t, 0.4, weights[0], 1e-6)
	assert.InDelta(t, 0.4, weights[1], 1e-6)
	assert.InDelta(t, 0.2, weights[2], 1e-6)
}

func TestSkinTruncatesToFourSlots(t *testing.T) {
	w := []BoneWeight{
		{Bone: 1, Weight: 0.1}, {Bone: 2, Weight: 0.3}, {Bone: 3, Weight: 0.2},
		{Bone: 4, Weight: 0.25}, {Bone: 5, Weight: 0.15},
	}
	r, err := NewSkinWeightResolver(skinnedTriangle(&SkinBinding{
		Native:   [][]BoneWeight{w, w, w},
		NumBones: 6,
	}))
	require.NoError(t, err)

	weights, bones := r.Resolve(1)
	assert.Equal(t, [4]int{2, 4, 3, 5}, bones)
	assert.InDelta(t, 1, weights[0]+weights[1]+weights[2]+weights[3], 1e-6)
	assert.InDelta(t, 0.3/0.9, weights[0], 1e-6)
}

func TestSkinImplicitBoneMergesWithExplicitZero(t *testing.T) {
	w := []BoneWeight{{Bone: 0, Weight: 0.1}, {Bone: 7, Weight: 0.5}}
	r, err := NewSkinWeightResolver(skinnedTriangle(&SkinBinding{
		Native:   [][]BoneWeight{w, w, w},
		NumBones: 8,
	}))
	require.NoError(t, err)

	weights, bones := r.Resolve(0)
	assert.Equal(t, [4]int{0, 7, 0, 0}, bones)
	assert.InDelta(t, 0.5, weights[0], 1e-6)
	assert.InDelta(t, 0.5, weights[1], 1e-6)
}

func TestSkinSingleBoneRemapSwap(t *testing.T) {
	w := []BoneWeight{{Bone: 1, Weight: 1}}
	skin := &SkinBinding{Native: [][]BoneWeight{w, w, w}, NumBones: 2}

	r, err := NewSkinWeightResolver(skinnedTriangle(skin))
	require.NoError(t, err)
	weights, bones := r.Resolve(0)
	assert.Equal(t, [4]float32{1, 0, 0, 0}, weights)
	assert.Equal(t, [4]int{1, 0, 0, 0}, bones)

	skin.BoneRemap = []int{0, 5}
	weights, bones = r.Resolve(0)
	assert.Equal(t, [4]float32{0, 1, 0, 0}, weights)
	assert.Equal(t, [4]int{0, 5, 0, 0}, bones)
}

func TestSkinZeroWeightsFallBackToBoneZero(t *testing.T) {
	w := []BoneWeight{{Bone: 3, Weight: 0}, {Bone: 4, Weight: -1}}
	r, err := NewSkinWeightResolver(skinnedTriangle(&SkinBinding{
		Native:   [][]BoneWeight{w, w, w},
		NumBones: 5,
	}))
	require.NoError(t, err)

	weights, bones := r.Resolve(2)
	assert.Equal(t, [4]float32{1, 0, 0, 0}, weights)
	assert.Equal(t, [4]int{}, bones)
}

func TestSkinSyntheticChannel(t *testing.T) {
	m := skinnedTriangle(&SkinBinding{WeightChannel: 1})
	m.UVChannels = []*MapChannel{nil, {
		Verts: []math.Vec3{{Y: 0.25}, {Y: 2}, {Y: -1}},
		Faces: [][3]int{{0, 1, 2}},
	}}
	r, err := NewSkinWeightResolver(m)
	require.NoError(t, err)
	assert.False(t, r.Native())

	tests := []struct {
		v    int
		want [4]float32
	}{
		{0, [4]float32{0.75, 0.25, 0, 0}},
		{1, [4]float32{0, 1, 0, 0}},
		{2, [4]float32{1, 0, 0, 0}},
	}
	for _, tt := range tests {
		weights, bones := r.Resolve(tt.v)
		assert.Equal(t, tt.want, weights, "vertex %d", tt.v)
		assert.Equal(t, [4]int{0, 1, 0, 0}, bones)
	}
}

func TestSkinSyntheticMissingChannel(t *testing.T) {
	r, err := NewSkinWeightResolver(skinnedTriangle(&SkinBinding{WeightChannel: 3}))
	require.NoError(t, err)

	weights, bones := r.Resolve(0)
	assert.Equal(t, [4]float32{1, 0, 0, 0}, weights)
	assert.Equal(t, [4]int{}, bones)
}

func TestSkinFatalErrors(t *testing.T) {
	_, err := NewSkinWeightResolver(skinnedTriangle(&SkinBinding{
		Native:   [][]BoneWeight{{{Bone: 0, Weight: 1}}},
		NumBones: 1,
	}))
	assert.ErrorIs(t, err, ErrSkinMismatch)

	_, err = NewSkinWeightResolver(skinnedTriangle(&SkinBinding{
		Native: make([][]BoneWeight, 3),
	}))
	assert.ErrorIs(t, err, ErrNoBones)
}

func TestDominantBones(t *testing.T) {
	verts := []Vertex{
		{Source: 0, Weights: [4]float32{0.6, 0.4}, Bones: PackBones([4]int{3, 1})},
		{Source: 1, Weights: [4]float32{0.7, 0.3}, Bones: PackBones([4]int{2, 3})},
		{Source: 2, Weights: [4]float32{0.9, 0.1}, Bones: PackBones([4]int{3, 2})},
	}
	dom, sec := dominantBones(verts)
	assert.Equal(t, 3, dom)
	assert.Equal(t, 1, sec)

	tie := []Vertex{
		{Source: 0, Weights: [4]float32{1}, Bones: PackBones([4]int{4})},
		{Source: 1, Weights: [4]float32{1}, Bones: PackBones([4]int{2})},
	}
	dom, sec = dominantBones(tie)
	assert.Equal(t, 4, dom, "first bone wins ties")
	assert.Equal(t, 4, sec, "no bone carries slot-1 weight")

	dom, sec = dominantBones(nil)
	assert.Equal(t, 0, dom)
	assert.Equal(t, 0, sec)
}

func TestDominantBonesFollowSourceOrder(t *testing.T) {
	// Canonical order 1, 2, 0 as a face {1, 2, 0} would produce it.
	verts := []Vertex{
		{Source: 1, Weights: [4]float32{1}, Bones: PackBones([4]int{3})},
		{Source: 2, Weights: [4]float32{1}, Bones: PackBones([4]int{7})},
		{Source: 0, Weights: [4]float32{1}, Bones: PackBones([4]int{5})},
	}
	dom, sec := dominantBones(verts)
	assert.Equal(t, 5, dom)
	assert.Equal(t, 5, sec)
}

func TestDominantBonesCountSourceOnce(t *testing.T) {
	// Source 0 split into three canonical variants must not outweigh source 1.
	verts := []Vertex{
		{Source: 0, Weights: [4]float32{0.6, 0.4}, Bones: PackBones([4]int{2, 6})},
		{Source: 0, Normal: math.Vec3{Z: 1}, Weights: [4]float32{0.6, 0.4}, Bones: PackBones([4]int{2, 6})},
		{Source: 0, Normal: math.Vec3{Z: -1}, Weights: [4]float32{0.6, 0.4}, Bones: PackBones([4]int{2, 6})},
		{Source: 1, Weights: [4]float32{0.9, 0.1}, Bones: PackBones([4]int{4, 2})},
	}
	dom, sec := dominantBones(verts)
	assert.Equal(t, 4, dom)
	assert.Equal(t, 6, sec)
}

func TestSkinBoneRange(t *testing.T) {
	tests := []struct {
		name string
		skin *SkinBinding
	}{
		{"palette too large", &SkinBinding{NumBones: 300}},
		{"bone past count", &SkinBinding{NumBones: 8, Native: [][]BoneWeight{{{Bone: 9, Weight: 1}}, nil, nil}}},
		{"negative bone", &SkinBinding{NumBones: 8, Native: [][]BoneWeight{{{Bone: -1, Weight: 1}}, nil, nil}}},
		{"remap past palette", &SkinBinding{NumBones: 2, BoneRemap: []int{0, 260}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.skin.Native == nil {
				tt.skin.Native = [][]BoneWeight{{{Bone: 1, Weight: 1}}, nil, nil}
			}
			_, err := NewSkinWeightResolver(skinnedTriangle(tt.skin))
			assert.ErrorIs(t, err, ErrBoneRange)
		})
	}

	w := []BoneWeight{{Bone: 255, Weight: 1}}
	_, err := NewSkinWeightResolver(skinnedTriangle(&SkinBinding{
		Native:   [][]BoneWeight{w, w, w},
		NumBones: MaxBones,
	}))
	assert.NoError(t, err)
}

func TestSkinFormatSwappedSlot(t *testing.T) {
	r := &SkinWeightResolver{skin: &SkinBinding{BoneRemap: []int{0}}}
	verts := []Vertex{{Weights: [4]float32{0, 1}, Bones: PackBones([4]int{0, 2})}}
	weights, indices := skinFormat(r, verts)
	assert.Equal(t, 1, weights)
	assert.True(t, indices)
}
