package meshconv

import (
	"fmt"
	"slices"
)

// MaxBones is the size of the bone palette addressable by Vertex.Bones.
const MaxBones = 256

// SkinWeightResolver produces four descending, normalized weights per vertex.
type SkinWeightResolver struct {
	skin *SkinBinding

	// Synthetic path: blend scalar per vertex, hasScalar false where no face maps it.
	scalar    []float32
	hasScalar []bool
	synthetic bool
}

// NewSkinWeightResolver validates mesh.Skin and prepares lookups.
// It returns nil for an unskinned mesh. Errors wrap ErrSkinMismatch,
// ErrNoBones or ErrBoneRange.
func NewSkinWeightResolver(mesh *SourceMesh) (*SkinWeightResolver, error) {
	skin := mesh.Skin
	if skin == nil {
		return nil, nil
	}
	r := &SkinWeightResolver{skin: skin}

	if skin.Native != nil {
		if len(skin.Native) != len(mesh.Vertices) {
			return nil, fmt.Errorf("%w: %d weight lists for %d vertices",
				ErrSkinMismatch, len(skin.Native), len(mesh.Vertices))
		}
		if skin.NumBones == 0 {
			return nil, ErrNoBones
		}
		if err := checkBoneRange(skin); err != nil {
			return nil, err
		}
		return r, nil
	}

	r.synthetic = true
	ch := mesh.uvChannel(skin.WeightChannel)
	if ch == nil {
		return r, nil
	}
	r.scalar = make([]float32, len(mesh.Vertices))
	r.hasScalar = make([]bool, len(mesh.Vertices))
	for f, face := range mesh.Faces {
		for c := 0; c < 3; c++ {
			v := face.V[c]
			if v < 0 || v >= len(r.scalar) || r.hasScalar[v] {
				continue
			}
			if uv, ok := ch.lookup(f, c); ok {
				r.scalar[v] = uv.Y
				r.hasScalar[v] = true
			}
		}
	}
	return r, nil
}

// Native reports whether weights come from explicit bone assignments.
func (r *SkinWeightResolver) Native() bool {
	return !r.synthetic
}

// Resolve returns the weights and bone indices of source vertex v.
func (r *SkinWeightResolver) Resolve(v int) ([4]float32, [4]int) {
	if r.synthetic {
		return r.resolveSynthetic(v)
	}
	return r.resolveNative(v)
}

func (r *SkinWeightResolver) resolveSynthetic(v int) ([4]float32, [4]int) {
	if r.scalar == nil {
		return [4]float32{1, 0, 0, 0}, [4]int{}
	}
	var s float32
	if r.hasScalar[v] {
		s = min(max(r.scalar[v], 0), 1)
	}
	return [4]float32{1 - s, s, 0, 0}, [4]int{0, 1, 0, 0}
}

func (r *SkinWeightResolver) resolveNative(v int) ([4]float32, [4]int) {
	var cand []BoneWeight
	var sum float32
	assigned := 0
	for _, bw := range r.skin.Native[v] {
		if bw.Weight <= 0 {
			continue
		}
		assigned++
		sum += bw.Weight
		cand = addWeight(cand, r.remap(bw.Bone), bw.Weight)
	}
	if sum < 1 {
		// The remainder stays with the unbound (identity) bone.
		cand = addWeight(cand, 0, 1-sum)
	}

	var w [4]float32
	var b [4]int
	n := 0
	for _, c := range cand {
		pos := n
		for pos > 0 && w[pos-1] < c.Weight {
			pos--
		}
		if pos >= len(w) {
			continue
		}
		for k := min(n, len(w)-1); k > pos; k-- {
			w[k], b[k] = w[k-1], b[k-1]
		}
		w[pos], b[pos] = c.Weight, c.Bone
		if n < len(w) {
			n++
		}
	}

	var total float32
	for _, x := range w {
		total += x
	}
	if total <= 0 {
		return [4]float32{1, 0, 0, 0}, [4]int{}
	}
	for i := range w {
		w[i] /= total
	}

	// Single-bone vertices of remapped bindings store the bone in slot 1.
	if assigned < 2 && r.skin.BoneRemap != nil {
		w[0], w[1] = w[1], w[0]
		b[0], b[1] = b[1], b[0]
	}
	return w, b
}

// checkBoneRange rejects bone ids that do not fit the packed bone palette.
func checkBoneRange(skin *SkinBinding) error {
	if skin.NumBones > MaxBones {
		return fmt.Errorf("%w: %d bones, limit %d", ErrBoneRange, skin.NumBones, MaxBones)
	}
	for v, list := range skin.Native {
		for _, bw := range list {
			if bw.Bone < 0 || bw.Bone >= skin.NumBones {
				return fmt.Errorf("%w: vertex %d uses bone %d of %d", ErrBoneRange, v, bw.Bone, skin.NumBones)
			}
		}
	}
	for i, b := range skin.BoneRemap {
		if b < 0 || b >= MaxBones {
			return fmt.Errorf("%w: remap entry %d is bone %d", ErrBoneRange, i, b)
		}
	}
	return nil
}

func (r *SkinWeightResolver) remap(bone int) int {
	if bone >= 0 && bone < len(r.skin.BoneRemap) {
		return r.skin.BoneRemap[bone]
	}
	return bone
}

// addWeight merges weight into an existing entry for bone or appends one.
func addWeight(cand []BoneWeight, bone int, weight float32) []BoneWeight {
	for i := range cand {
		if cand[i].Bone == bone {
			cand[i].Weight += weight
			return cand
		}
	}
	return append(cand, BoneWeight{Bone: bone, Weight: weight})
}

// dominantBones picks the bone with the highest accumulated slot-0 weight
// and, among the other bones that appear in slot 1, the one with the highest
// slot-1 weight. Each source vertex counts once, in ascending source order,
// and ties go to the bone seen first. Without a slot-1 candidate the
// secondary bone equals the dominant one.
func dominantBones(verts []Vertex) (dominant, secondary int) {
	bySource := make([]int, 0, len(verts))
	seenSource := make(map[int]bool, len(verts))
	for i := range verts {
		if !seenSource[verts[i].Source] {
			seenSource[verts[i].Source] = true
			bySource = append(bySource, i)
		}
	}
	if len(bySource) == 0 {
		return 0, 0
	}
	slices.SortFunc(bySource, func(a, b int) int {
		return verts[a].Source - verts[b].Source
	})

	var topOrder, secondOrder []int
	top := make(map[int]float32)
	second := make(map[int]float32)
	for _, i := range bySource {
		v := &verts[i]
		b0 := v.Bone(0)
		if _, ok := top[b0]; !ok {
			topOrder = append(topOrder, b0)
		}
		top[b0] += v.Weights[0]
		if v.Weights[1] > 0 {
			b1 := v.Bone(1)
			if _, ok := second[b1]; !ok {
				secondOrder = append(secondOrder, b1)
			}
			second[b1] += v.Weights[1]
		}
	}

	dominant = topOrder[0]
	for _, b := range topOrder[1:] {
		if top[b] > top[dominant] {
			dominant = b
		}
	}
	secondary = dominant
	var best float32
	for _, b := range secondOrder {
		if b != dominant && second[b] > best {
			secondary, best = b, second[b]
		}
	}
	return dominant, secondary
}

// skinFormat returns the explicit weight count and whether indices are stored.
func skinFormat(r *SkinWeightResolver, verts []Vertex) (weights int, indices bool) {
	if r.synthetic {
		if r.scalar == nil {
			return 0, false
		}
		return 1, false
	}
	// Width follows the highest occupied slot. Swapped single-bone vertices
	// keep their weight in slot 1, which needs one explicit weight.
	influences := 1
	for i := range verts {
		for slot, w := range verts[i].Weights {
			if w > 0 {
				influences = max(influences, slot+1)
			}
		}
	}
	return min(influences-1, 3), true
}
