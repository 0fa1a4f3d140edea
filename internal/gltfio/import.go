// Package gltfio reads glTF scenes into source meshes and writes converted
// spans back out as glTF.
package gltfio

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/meshspan/pkg/math"
	"github.com/Faultbox/meshspan/pkg/meshconv"
)

// ErrNoPositions is returned for a triangle primitive without POSITION.
var ErrNoPositions = errors.New("primitive has no POSITION attribute")

// ImportOptions control how primitives become source meshes.
type ImportOptions struct {
	SmoothGroup   uint32 // Smoothing mask given to every face
	KeepNormals   bool   // Use NORMAL as explicit per-corner normals
	WeightChannel int    // UV channel for synthetic skins when JOINTS_0 is absent; -1 disables
}

// Scene is the result of an import.
type Scene struct {
	Meshes []*meshconv.SourceMesh
	// Materials is indexed by SourceMesh.MaterialSlot.
	Materials []meshconv.MaterialDescriptor
	// Skipped counts primitives that are not triangle lists.
	Skipped int
}

// Import opens a .gltf or .glb file.
func Import(path string, opts ImportOptions) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return ImportDocument(doc, opts)
}

// ImportDocument walks the default scene (or every root node when the
// document has no scene) and returns one SourceMesh per triangle primitive.
// Skin joints become KindBone meshes and empty nodes KindHelper meshes.
func ImportDocument(doc *gltf.Document, opts ImportOptions) (*Scene, error) {
	imp := &importer{doc: doc, opts: opts, scene: &Scene{}, joints: make(map[uint32]bool)}
	for _, skin := range doc.Skins {
		for _, j := range skin.Joints {
			imp.joints[j] = true
		}
	}
	for _, m := range doc.Materials {
		imp.scene.Materials = append(imp.scene.Materials, MaterialFromGLTF(m))
	}
	for _, n := range imp.roots() {
		if err := imp.node(n, math.Identity()); err != nil {
			return nil, err
		}
	}
	return imp.scene, nil
}

type importer struct {
	doc    *gltf.Document
	opts   ImportOptions
	scene  *Scene
	joints map[uint32]bool
}

func (imp *importer) roots() []uint32 {
	doc := imp.doc
	if len(doc.Scenes) > 0 {
		s := uint32(0)
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			s = *doc.Scene
		}
		return doc.Scenes[s].Nodes
	}
	child := make(map[uint32]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []uint32
	for i := range doc.Nodes {
		if !child[uint32(i)] {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

// nodeMatrix returns the local transform of n.
func nodeMatrix(n *gltf.Node) math.Mat4 {
	if n.Matrix != gltf.DefaultMatrix && n.Matrix != [16]float32{} {
		return math.Mat4(n.Matrix)
	}
	scale := n.ScaleOrDefault()
	if scale == [3]float32{} {
		scale = [3]float32{1, 1, 1}
	}
	return math.ComposeTRS(
		math.V3(n.TranslationOrDefault()),
		math.QuatFromArray(n.RotationOrDefault()),
		math.V3(scale),
	)
}

func (imp *importer) node(idx uint32, parent math.Mat4) error {
	if int(idx) >= len(imp.doc.Nodes) {
		return fmt.Errorf("node %d out of range", idx)
	}
	n := imp.doc.Nodes[idx]
	world := parent.Mul(nodeMatrix(n))
	name := n.Name
	if name == "" {
		name = fmt.Sprintf("node%d", idx)
	}

	switch {
	case imp.joints[idx]:
		imp.scene.Meshes = append(imp.scene.Meshes, &meshconv.SourceMesh{Name: name, Kind: meshconv.KindBone, LocalToObject: world})
	case n.Mesh == nil:
		imp.scene.Meshes = append(imp.scene.Meshes, &meshconv.SourceMesh{Name: name, Kind: meshconv.KindHelper, LocalToObject: world})
	default:
		if err := imp.mesh(n, name, world); err != nil {
			return fmt.Errorf("node %q: %w", name, err)
		}
	}
	for _, c := range n.Children {
		if err := imp.node(c, world); err != nil {
			return err
		}
	}
	return nil
}

func (imp *importer) mesh(n *gltf.Node, name string, world math.Mat4) error {
	if int(*n.Mesh) >= len(imp.doc.Meshes) {
		return fmt.Errorf("mesh %d out of range", *n.Mesh)
	}
	m := imp.doc.Meshes[*n.Mesh]
	numBones := 0
	if n.Skin != nil && int(*n.Skin) < len(imp.doc.Skins) {
		numBones = len(imp.doc.Skins[*n.Skin].Joints)
	}
	extras := parseExtras(n.Extras)

	for i, p := range m.Primitives {
		if p.Mode != gltf.PrimitiveTriangles {
			imp.scene.Skipped++
			continue
		}
		sm, err := imp.primitive(p, numBones)
		if err != nil {
			return fmt.Errorf("primitive %d: %w", i, err)
		}
		sm.Name = name
		if len(m.Primitives) > 1 {
			sm.Name = fmt.Sprintf("%s.%d", name, i)
		}
		sm.LocalToObject = world
		extras.apply(sm)
		imp.scene.Meshes = append(imp.scene.Meshes, sm)
	}
	return nil
}

func (imp *importer) accessor(p *gltf.Primitive, attr string) *gltf.Accessor {
	idx, ok := p.Attributes[attr]
	if !ok || int(idx) >= len(imp.doc.Accessors) {
		return nil
	}
	return imp.doc.Accessors[idx]
}

func (imp *importer) primitive(p *gltf.Primitive, numBones int) (*meshconv.SourceMesh, error) {
	doc := imp.doc
	acr := imp.accessor(p, "POSITION")
	if acr == nil {
		return nil, ErrNoPositions
	}
	pos, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("POSITION: %w", err)
	}

	var indices []uint32
	if p.Indices != nil && int(*p.Indices) < len(doc.Accessors) {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*p.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(pos))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	sm := &meshconv.SourceMesh{
		Kind:         meshconv.KindGeometry,
		Vertices:     make([]math.Vec3, len(pos)),
		MaterialSlot: -1,
	}
	if p.Material != nil {
		sm.MaterialSlot = int(*p.Material)
	}
	for i, v := range pos {
		sm.Vertices[i] = math.V3(v)
	}
	corners := make([][3]int, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		f := [3]int{int(indices[i]), int(indices[i+1]), int(indices[i+2])}
		corners = append(corners, f)
		sm.Faces = append(sm.Faces, meshconv.Face{V: f, SmoothGroup: imp.opts.SmoothGroup})
	}
	// glTF attributes are per vertex, so every channel maps corners like the faces do.
	channel := func(verts []math.Vec3) *meshconv.MapChannel {
		return &meshconv.MapChannel{Verts: verts, Faces: corners}
	}

	for ch := 0; ch < meshconv.MaxUVChannels; ch++ {
		acr := imp.accessor(p, fmt.Sprintf("TEXCOORD_%d", ch))
		if acr == nil {
			break
		}
		uvs, err := modeler.ReadTextureCoord(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("TEXCOORD_%d: %w", ch, err)
		}
		verts := make([]math.Vec3, len(uvs))
		for i, uv := range uvs {
			verts[i] = math.Vec3{X: uv[0], Y: uv[1]}
		}
		sm.UVChannels = append(sm.UVChannels, channel(verts))
	}

	if acr := imp.accessor(p, "COLOR_0"); acr != nil {
		cols, err := modeler.ReadColor(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("COLOR_0: %w", err)
		}
		rgb := make([]math.Vec3, len(cols))
		alpha := make([]math.Vec3, len(cols))
		for i, c := range cols {
			rgb[i] = math.Vec3{X: float32(c[0]) / 255, Y: float32(c[1]) / 255, Z: float32(c[2]) / 255}
			alpha[i] = math.Vec3{X: float32(c[3]) / 255}
		}
		sm.Colors = channel(rgb)
		sm.Alpha = channel(alpha)
	}

	if imp.opts.KeepNormals {
		if acr := imp.accessor(p, "NORMAL"); acr != nil {
			normals, err := modeler.ReadNormal(doc, acr, nil)
			if err != nil {
				return nil, fmt.Errorf("NORMAL: %w", err)
			}
			verts := make([]math.Vec3, len(normals))
			for i, n := range normals {
				verts[i] = math.V3(n)
			}
			sm.Normals = channel(verts)
		}
	}

	skin, err := imp.skin(p, numBones)
	if err != nil {
		return nil, err
	}
	sm.Skin = skin
	return sm, nil
}

// skin reads JOINTS_0/WEIGHTS_0, or falls back to a synthetic weight channel.
// Short joint or weight arrays are kept short so the converter reports the
// count mismatch.
func (imp *importer) skin(p *gltf.Primitive, numBones int) (*meshconv.SkinBinding, error) {
	jacr, wacr := imp.accessor(p, "JOINTS_0"), imp.accessor(p, "WEIGHTS_0")
	if jacr == nil || wacr == nil {
		if imp.opts.WeightChannel >= 0 {
			return &meshconv.SkinBinding{WeightChannel: imp.opts.WeightChannel}, nil
		}
		return nil, nil
	}
	joints, err := modeler.ReadJoints(imp.doc, jacr, nil)
	if err != nil {
		return nil, fmt.Errorf("JOINTS_0: %w", err)
	}
	weights, err := modeler.ReadWeights(imp.doc, wacr, nil)
	if err != nil {
		return nil, fmt.Errorf("WEIGHTS_0: %w", err)
	}
	n := min(len(joints), len(weights))
	native := make([][]meshconv.BoneWeight, n)
	for v := 0; v < n; v++ {
		for k := 0; k < 4; k++ {
			if weights[v][k] > 0 {
				native[v] = append(native[v], meshconv.BoneWeight{Bone: int(joints[v][k]), Weight: weights[v][k]})
			}
		}
	}
	return &meshconv.SkinBinding{Native: native, NumBones: numBones}, nil
}

// nodeExtras are converter hints carried in node extras.
type nodeExtras struct {
	waterHeight *float32
	visRange    *meshconv.VisRange
	radial      bool
}

func parseExtras(raw any) nodeExtras {
	var e nodeExtras
	m, ok := raw.(map[string]any)
	if !ok {
		return e
	}
	if h, ok := m["water_height"].(float64); ok {
		wh := float32(h)
		e.waterHeight = &wh
	}
	if r, ok := m["vis_range"].([]any); ok && len(r) == 2 {
		lo, okLo := r[0].(float64)
		hi, okHi := r[1].(float64)
		if okLo && okHi {
			e.visRange = &meshconv.VisRange{Min: float32(lo), Max: float32(hi)}
		}
	}
	e.radial, _ = m["radial_normals"].(bool)
	return e
}

func (e nodeExtras) apply(sm *meshconv.SourceMesh) {
	if e.waterHeight != nil {
		h := *e.waterHeight
		sm.WaterHeight = &h
	}
	if e.visRange != nil {
		sm.VisRanges = map[int]meshconv.VisRange{0: *e.visRange}
	}
	sm.RadialNormals = e.radial
}

// MaterialFromGLTF derives a descriptor from a glTF material. A normal map
// becomes a bump layer whose tangent data lands in the three UV slots after
// the highest texture coordinate set in use.
func MaterialFromGLTF(m *gltf.Material) meshconv.MaterialDescriptor {
	d := meshconv.MaterialDescriptor{
		Name:     m.Name,
		Kind:     meshconv.MatSimple,
		TwoSided: m.DoubleSided,
	}
	base := meshconv.Layer{}
	if pbr := m.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
		base.HasTexture = true
		base.UVWSrc = int(pbr.BaseColorTexture.TexCoord)
	}
	if m.AlphaMode == gltf.AlphaBlend {
		base.Blend = meshconv.BlendAlpha
	}
	d.Layers = append(d.Layers, base)

	if nt := m.NormalTexture; nt != nil {
		src := int(nt.TexCoord)
		next := max(base.UVWSrc, src) + 1
		d.Layers = append(d.Layers,
			meshconv.Layer{UVWSrc: src, HasTexture: true, Misc: meshconv.MiscBump},
			meshconv.Layer{UVWSrc: next, Misc: meshconv.MiscBumpDu},
			meshconv.Layer{UVWSrc: next + 1, Misc: meshconv.MiscBumpDv},
			meshconv.Layer{UVWSrc: next + 2, Misc: meshconv.MiscBumpDw},
		)
	}
	return d
}
