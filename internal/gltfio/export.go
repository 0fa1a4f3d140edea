package gltfio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/meshspan/pkg/math"
	"github.com/Faultbox/meshspan/pkg/meshconv"
)

// Generator is written to asset.generator.
const Generator = "meshspan"

// Export builds a document with one node and mesh per span name and one
// primitive per span. Skinned spans carry JOINTS_0/WEIGHTS_0 but no skin
// object, since spans do not know the skeleton. Span metadata goes to the
// primitive extras.
func Export(spans []*meshconv.Span) *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = Generator

	meshes := make(map[string]*gltf.Mesh)
	materials := make(map[*meshconv.MaterialDescriptor]uint32)
	for _, s := range spans {
		m, ok := meshes[s.Name]
		if !ok {
			m = &gltf.Mesh{Name: s.Name}
			meshes[s.Name] = m
			node := &gltf.Node{Name: s.Name, Mesh: gltf.Index(uint32(len(doc.Meshes)))}
			if s.LocalToObject != math.Identity() && !s.LocalToObject.IsZero() {
				node.Matrix = [16]float32(s.LocalToObject)
			}
			doc.Meshes = append(doc.Meshes, m)
			doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
			doc.Nodes = append(doc.Nodes, node)
		}

		prim := writePrimitive(doc, s)
		if s.Material != nil {
			idx, ok := materials[s.Material]
			if !ok {
				idx = uint32(len(doc.Materials))
				materials[s.Material] = idx
				doc.Materials = append(doc.Materials, materialToGLTF(s))
			}
			prim.Material = gltf.Index(idx)
		}
		m.Primitives = append(m.Primitives, prim)
	}
	return doc
}

func writePrimitive(doc *gltf.Document, s *meshconv.Span) *gltf.Primitive {
	n := len(s.Vertices)
	pos := make([][3]float32, n)
	nrm := make([][3]float32, n)
	col := make([][4]float32, n)
	for i := range s.Vertices {
		v := &s.Vertices[i]
		pos[i] = v.Position.Array()
		nrm[i] = v.Normal.Array()
		col[i] = v.Color
	}

	attrs := map[string]uint32{
		"POSITION": modeler.WritePosition(doc, pos),
		"NORMAL":   modeler.WriteNormal(doc, nrm),
		"COLOR_0":  modeler.WriteColor(doc, col),
	}
	for slot := 0; slot < s.Format.UVCount; slot++ {
		uv := make([][2]float32, n)
		uvw := make([][3]float32, n)
		hasW := false
		for i := range s.Vertices {
			if slot >= len(s.Vertices[i].UVs) {
				continue
			}
			t := s.Vertices[i].UVs[slot]
			uv[i] = [2]float32{t.X, t.Y}
			uvw[i] = t.Array()
			hasW = hasW || t.Z != 0
		}
		attrs[fmt.Sprintf("TEXCOORD_%d", slot)] = modeler.WriteTextureCoord(doc, uv)
		if hasW {
			// Tangent and normal slots need all three components.
			attrs[fmt.Sprintf("_UVW_%d", slot)] = modeler.WriteNormal(doc, uvw)
		}
	}
	if s.Props.Has(meshconv.PropSkinned) {
		joints := make([][4]uint16, n)
		weights := make([][4]float32, n)
		for i := range s.Vertices {
			v := &s.Vertices[i]
			for k := 0; k < 4; k++ {
				joints[i][k] = uint16(v.Bone(k))
			}
			weights[i] = v.Weights
		}
		attrs["JOINTS_0"] = modeler.WriteJoints(doc, joints)
		attrs["WEIGHTS_0"] = modeler.WriteWeights(doc, weights)
	}

	extras := map[string]any{
		"sub_material": s.SubMaterial,
		"variant":      s.Variant,
		"props":        uint32(s.Props),
		"uv_count":     s.Format.UVCount,
	}
	if s.Props.Has(meshconv.PropSkinned) {
		extras["dominant_bone"] = s.DominantBone
		extras["secondary_bone"] = s.SecondaryBone
		extras["skin_weights"] = s.Format.SkinWeights
	}
	if s.Props.Has(meshconv.PropVisRange) {
		extras["vis_range"] = []float32{s.VisRange.Min, s.VisRange.Max}
	}
	if s.Props.Has(meshconv.PropWaterHeight) {
		extras["water_height"] = s.WaterHeight
	}

	return &gltf.Primitive{
		Attributes: attrs,
		Indices:    gltf.Index(modeler.WriteIndices(doc, s.Indices)),
		Extras:     extras,
	}
}

func materialToGLTF(s *meshconv.Span) *gltf.Material {
	d := s.Material
	m := &gltf.Material{
		Name:        d.Name,
		DoubleSided: d.TwoSided,
		AlphaMode:   gltf.AlphaOpaque,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{1, 1, 1, 1},
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(1),
		},
	}
	if s.Props.Has(meshconv.PropRequiresBlending) {
		m.AlphaMode = gltf.AlphaBlend
	}
	return m
}

// Save writes doc as .glb when binary is set, otherwise as a self-contained
// .gltf with base64 buffers.
func Save(doc *gltf.Document, path string, binary bool) error {
	if binary {
		return gltf.SaveBinary(doc, path)
	}
	for _, b := range doc.Buffers {
		if b.URI == "" {
			b.EmbeddedResource()
		}
	}
	return gltf.Save(doc, path)
}

// OutputPath maps an input file to its converted file in dir.
func OutputPath(dir, input string, binary bool) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	ext := ".gltf"
	if binary {
		ext = ".glb"
	}
	return filepath.Join(dir, base+ext)
}
