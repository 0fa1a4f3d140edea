// Package meshconv converts triangulated source meshes into deduplicated,
// GPU-ready vertex/index spans.
//
// A conversion walks every face of a SourceMesh, rejects degenerate
// triangles, resolves per-corner normals (smoothing groups), colors, UVs,
// bump gradients and skin weights, deduplicates identical corners per source
// vertex, and emits one Span per (sub-material, blend variant). Spans that do
// not fit the renderer's buffer ceilings are diced into smaller spans.
package meshconv

import "github.com/Faultbox/meshspan/pkg/math"

// ObjectKind identifies what a scene node carries.
type ObjectKind int

const (
	KindGeometry ObjectKind = iota // Renderable triangle mesh
	KindBone                       // Bone proxy, never rendered
	KindHelper                     // Dummy/helper object, never rendered
)

// String returns a human-readable kind name.
func (k ObjectKind) String() string {
	switch k {
	case KindGeometry:
		return "Geometry"
	case KindBone:
		return "Bone"
	case KindHelper:
		return "Helper"
	default:
		return "Unknown"
	}
}

// Face is one triangle of a SourceMesh.
type Face struct {
	V           [3]int // Indices into SourceMesh.Vertices
	SmoothGroup uint32 // Bit i set means smoothing group i; 0 is a hard edge
	MatID       int    // Sub-material id, clamped to 0 when out of range
}

// MapChannel is a per-corner attribute table (UVs, colors, normals).
// Faces is parallel to SourceMesh.Faces.
type MapChannel struct {
	Verts []math.Vec3
	Faces [][3]int
}

// lookup returns the value mapped to corner c of face f.
// ok is false when the face or vertex index is out of range.
func (mc *MapChannel) lookup(f, c int) (math.Vec3, bool) {
	if mc == nil || f >= len(mc.Faces) {
		return math.Vec3{}, false
	}
	idx := mc.Faces[f][c]
	if idx < 0 || idx >= len(mc.Verts) {
		return math.Vec3{}, false
	}
	return mc.Verts[idx], true
}

// BoneWeight is one native skin assignment.
type BoneWeight struct {
	Bone   int
	Weight float32
}

// SkinBinding describes how vertices follow bones.
//
// With Native set, Native[i] lists the assignments of vertex i and NumBones
// is the number of bones in the binding. Without Native, WeightChannel names
// a UV channel whose second component blends between bones 0 and 1; a
// negative WeightChannel means the mesh is rigidly bound to bone 0.
type SkinBinding struct {
	Native        [][]BoneWeight
	NumBones      int
	BoneRemap     []int // Optional bone id remap; its presence enables the single-bone slot swap
	WeightChannel int
}

// VisRange is a visibility distance window. Zero Max means unbounded.
type VisRange struct {
	Min float32
	Max float32
}

// SourceMesh is the caller-owned input of a conversion. It is never modified.
type SourceMesh struct {
	Name     string
	Kind     ObjectKind
	Vertices []math.Vec3
	Faces    []Face

	UVChannels []*MapChannel // nil entries are absent channels
	Colors     *MapChannel
	Illum      *MapChannel
	Alpha      *MapChannel // X component is the opacity
	Normals    *MapChannel // Explicit per-corner normal override

	RadialNormals bool // Normals point away from the bounds center

	Skin *SkinBinding

	MaterialSlot  int
	LocalToObject math.Mat4 // Zero means identity
	WaterHeight   *float32
	VisRanges     map[int]VisRange // Keyed by sub-material id
}

// uvChannel returns channel i or nil when absent.
func (m *SourceMesh) uvChannel(i int) *MapChannel {
	if i < 0 || i >= len(m.UVChannels) {
		return nil
	}
	return m.UVChannels[i]
}

// Bounds returns the bounding box of all vertices.
func (m *SourceMesh) Bounds() math.Box3 {
	b := math.EmptyBox()
	for _, v := range m.Vertices {
		b = b.Extend(v)
	}
	return b
}
