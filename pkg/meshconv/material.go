package meshconv

// MaterialKind is the closed set of material kinds the converter understands.
type MaterialKind int

const (
	MatSimple    MaterialKind = iota // Plain layered material
	MatMulti                         // Container of sub-materials selected by Face.MatID
	MatComposite                     // Blended stack of layers, split into variants
	MatParticle                      // Particle material, produces no span geometry
	MatClothing                      // Avatar clothing, converted like MatSimple
)

// String returns a human-readable kind name.
func (k MaterialKind) String() string {
	switch k {
	case MatSimple:
		return "Simple"
	case MatMulti:
		return "Multi"
	case MatComposite:
		return "Composite"
	case MatParticle:
		return "Particle"
	case MatClothing:
		return "Clothing"
	default:
		return "Unknown"
	}
}

// LayerMisc flags mark layers that carry tangent-space data instead of a texture lookup.
type LayerMisc uint32

const (
	MiscBump   LayerMisc = 1 << iota // Bump source; its UVWSrc is the gradient channel
	MiscBumpDu                       // UVWSrc slot receives dPos/dU
	MiscBumpDv                       // UVWSrc slot receives -dPos/dV
	MiscBumpDw                       // UVWSrc slot receives the vertex normal
)

// BlendMode of a layer.
type BlendMode int

const (
	BlendNone BlendMode = iota
	BlendAlpha
	BlendAdd
	BlendMult
)

// Layer is one render layer of a material.
type Layer struct {
	UVWSrc     int
	HasTexture bool
	Misc       LayerMisc
	Blend      BlendMode
}

// BlendSource selects where a composite blend channel reads its weight.
type BlendSource int

const (
	BlendFromAlpha  BlendSource = iota // Alpha channel X
	BlendFromIllumR                    // Illumination red
	BlendFromIllumG                    // Illumination green
	BlendFromIllumB                    // Illumination blue
)

// CompositeInfo is the payload of a MatComposite material.
// Sources has one entry per blend channel, bottom layer first.
type CompositeInfo struct {
	Sources []BlendSource
}

// MaterialDescriptor is what a MaterialResolver tells the converter about a slot.
type MaterialDescriptor struct {
	Name             string
	Kind             MaterialKind
	Layers           []Layer
	NumBlendChannels int
	SubMaterials     []MaterialDescriptor // MatMulti only
	Composite        *CompositeInfo       // MatComposite only
	TwoSided         bool
}

// IsComposite reports whether the descriptor is a composite material.
func (d *MaterialDescriptor) IsComposite() bool {
	return d.Kind == MatComposite
}

// IsMultiMat reports whether the descriptor holds sub-materials.
func (d *MaterialDescriptor) IsMultiMat() bool {
	return d.Kind == MatMulti
}

// blendChannels returns the number of trailing UV slots the material needs.
func (d *MaterialDescriptor) blendChannels() int {
	n := d.NumBlendChannels
	if d.Composite != nil && len(d.Composite.Sources) > n {
		n = len(d.Composite.Sources)
	}
	return n
}

// requiredUVs returns the number of UV slots addressed by the layers.
func (d *MaterialDescriptor) requiredUVs() int {
	n := 0
	for _, l := range d.Layers {
		if l.UVWSrc+1 > n {
			n = l.UVWSrc + 1
		}
	}
	return n
}

// textureUVs returns the number of source UV channels textured layers read.
// Tangent slots are generated, not read, and do not count.
func (d *MaterialDescriptor) textureUVs() int {
	n := 0
	for _, l := range d.Layers {
		if !l.HasTexture || l.Misc&(MiscBumpDu|MiscBumpDv|MiscBumpDw) != 0 {
			continue
		}
		if l.UVWSrc+1 > n {
			n = l.UVWSrc + 1
		}
	}
	return n
}

// bumpSource returns the UV channel used for gradients, or -1 without a bump layer.
func (d *MaterialDescriptor) bumpSource() int {
	for _, l := range d.Layers {
		if l.Misc&MiscBump != 0 {
			return l.UVWSrc
		}
	}
	return -1
}

// requiresBlending reports whether the base layer blends.
func (d *MaterialDescriptor) requiresBlending() bool {
	return len(d.Layers) > 0 && d.Layers[0].Blend != BlendNone
}

// MaterialResolver maps a material slot to its descriptor.
type MaterialResolver interface {
	ResolveMaterial(slot int) MaterialDescriptor
}

// MaterialFunc adapts a function to MaterialResolver.
type MaterialFunc func(slot int) MaterialDescriptor

// ResolveMaterial calls f.
func (f MaterialFunc) ResolveMaterial(slot int) MaterialDescriptor {
	return f(slot)
}

// DefaultMaterial is a single textured layer on UV channel 0.
func DefaultMaterial() MaterialDescriptor {
	return MaterialDescriptor{
		Name:   "default",
		Kind:   MatSimple,
		Layers: []Layer{{UVWSrc: 0, HasTexture: true}},
	}
}
