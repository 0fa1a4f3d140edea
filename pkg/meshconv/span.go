package meshconv

import "github.com/Faultbox/meshspan/pkg/math"

// Vertex is one canonical output vertex.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	Color    [4]float32 // RGB plus alpha
	Illum    math.Vec3
	UVs      []math.Vec3
	Weights  [4]float32
	Bones    uint32 // Bone index per weight slot, 8 bits each, slot 0 lowest
	Source   int    // Originating SourceMesh vertex index
}

// Bone returns the bone index stored for weight slot i.
func (v *Vertex) Bone(i int) int {
	return int(v.Bones>>(8*uint(i))) & 0xff
}

// PackBones packs four bone indices into the Vertex.Bones layout.
func PackBones(b [4]int) uint32 {
	return uint32(b[0]&0xff) | uint32(b[1]&0xff)<<8 | uint32(b[2]&0xff)<<16 | uint32(b[3]&0xff)<<24
}

// Format describes the vertex layout of a span.
type Format struct {
	UVCount     int
	SkinWeights int // Explicit weights stored per vertex (0-3); the last is implied
	SkinIndices bool
}

// PropFlags are span-level render properties.
type PropFlags uint32

const (
	PropRequiresBlending PropFlags = 1 << iota
	PropNoPreshade
	PropRunTimeLight
	PropWaterHeight
	PropSkinned
	PropVisRange
	PropDiced
)

// Has reports whether all bits of f are set.
func (p PropFlags) Has(f PropFlags) bool {
	return p&f == f
}

// Span is one renderable vertex/index buffer pair with a single material.
type Span struct {
	Name        string
	Format      Format
	Material    *MaterialDescriptor
	SubMaterial int
	Variant     int

	Vertices []Vertex
	Indices  []uint32

	LocalToObject math.Mat4
	ObjectToLocal math.Mat4

	DominantBone  int
	SecondaryBone int

	VisRange    VisRange
	WaterHeight float32
	Props       PropFlags
	Bounds      math.Box3
}

// NumFaces returns the triangle count.
func (s *Span) NumFaces() int {
	return len(s.Indices) / 3
}

// computeBounds refreshes Bounds from the vertex buffer.
func (s *Span) computeBounds() {
	b := math.EmptyBox()
	for i := range s.Vertices {
		b = b.Extend(s.Vertices[i].Position)
	}
	s.Bounds = b
}

// cloneEmpty copies every span-level field but leaves the buffers empty.
func (s *Span) cloneEmpty() *Span {
	c := *s
	c.Vertices = nil
	c.Indices = nil
	return &c
}
