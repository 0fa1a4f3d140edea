package meshconv

import (
	"errors"
	"fmt"
	"slices"

	"github.com/chewxy/math32"

	"github.com/Faultbox/meshspan/pkg/math"
)

// suspiciousUV is the magnitude above which a source UV is reported.
const suspiciousUV = 1e4

// Stats counts what one conversion did.
type Stats struct {
	FacesIn       int
	FacesSkipped  int // Zero-length edge
	FacesBadIndex int // Vertex index out of range
	Spans         int
	Vertices      int
	Indices       int
	DicedSpans    int
}

// Converter turns SourceMeshes into spans. It holds no per-mesh state and is
// safe for concurrent use as long as its resolver and sink are.
type Converter struct {
	opts      Options
	materials MaterialResolver
	sink      Sink
}

// NewConverter creates a converter. A nil resolver gives every slot
// DefaultMaterial; a nil sink drops diagnostics.
func NewConverter(opts Options, materials MaterialResolver, sink Sink) *Converter {
	if materials == nil {
		materials = MaterialFunc(func(int) MaterialDescriptor { return DefaultMaterial() })
	}
	if sink == nil {
		sink = discard{}
	}
	return &Converter{opts: opts.withDefaults(), materials: materials, sink: sink}
}

// Options returns the effective options.
func (c *Converter) Options() Options {
	return c.opts
}

// Convert converts one mesh. Bones and helpers yield no spans and no error.
// A fatal condition returns a *ConversionError and no spans.
func (c *Converter) Convert(mesh *SourceMesh) ([]*Span, error) {
	spans, _, err := c.ConvertWithStats(mesh)
	return spans, err
}

// ConvertWithStats is Convert plus conversion counters.
func (c *Converter) ConvertWithStats(mesh *SourceMesh) ([]*Span, Stats, error) {
	cv := &conversion{
		Converter: c,
		mesh:      mesh,
		warned:    make(map[Code]bool),
	}
	cv.stats.FacesIn = len(mesh.Faces)

	for st := stageInit; st != stageDone; {
		next, err := cv.run(st)
		if err != nil {
			return nil, cv.stats, err
		}
		st = next
	}
	return cv.spans, cv.stats, nil
}

type stage int

const (
	stageInit stage = iota
	stageValidateTopology
	stageResolveMaterialBuckets
	stageIterateFaces
	stageCloseSpans
	stageDone
)

func (s stage) String() string {
	switch s {
	case stageInit:
		return "Init"
	case stageValidateTopology:
		return "ValidateTopology"
	case stageResolveMaterialBuckets:
		return "ResolveMaterialBuckets"
	case stageIterateFaces:
		return "IterateFaces"
	case stageCloseSpans:
		return "CloseSpans"
	default:
		return "Done"
	}
}

// uvLayout places source channels, tangent data and blend weights in the
// UV slots of a span.
type uvLayout struct {
	base    int // Slots below base hold source channels or tangent data
	count   int
	blend   int // Blend weights live at base..base+blend-1
	bumpSrc int // -1 without gradients
	du, dv  int // Tangent slots, -1 when unused
	dw      int
}

type bucketKey struct {
	sub     int
	variant int
}

type bucket struct {
	acc *VertexAccumulator
}

// conversion owns every piece of per-mesh state.
type conversion struct {
	*Converter
	mesh   *SourceMesh
	warned map[Code]bool
	stats  Stats

	skin   *SkinWeightResolver
	center math.Vec3
	valid  []bool

	subs    []MaterialDescriptor
	layouts []uvLayout
	faceSub []int // -1 means the face produces no geometry

	faceNormals []math.Vec3
	normals     *NormalAccumulator
	gradients   map[int]*UVGradientBuilder

	buckets map[bucketKey]*bucket
	spans   []*Span
}

func (cv *conversion) run(st stage) (stage, error) {
	switch st {
	case stageInit:
		return cv.init()
	case stageValidateTopology:
		cv.validateTopology()
		return stageResolveMaterialBuckets, nil
	case stageResolveMaterialBuckets:
		return cv.resolveMaterialBuckets(), nil
	case stageIterateFaces:
		cv.iterateFaces()
		return stageCloseSpans, nil
	case stageCloseSpans:
		return stageDone, cv.closeSpans()
	}
	return stageDone, nil
}

// warn reports a warning once per code per conversion.
func (cv *conversion) warn(code Code, format string, args ...any) {
	if cv.warned[code] {
		return
	}
	cv.warned[code] = true
	cv.sink.Report(Diagnostic{
		Severity: SevWarn,
		Code:     code,
		Context:  cv.mesh.Name,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (cv *conversion) fatal(code Code, err error) error {
	cv.sink.Report(Diagnostic{
		Severity: SevFatal,
		Code:     code,
		Context:  cv.mesh.Name,
		Message:  err.Error(),
	})
	return &ConversionError{Mesh: cv.mesh.Name, Code: code, Err: err}
}

func (cv *conversion) init() (stage, error) {
	if cv.mesh.Kind != KindGeometry {
		return stageDone, nil
	}
	skin, err := NewSkinWeightResolver(cv.mesh)
	if err != nil {
		code := CodeSkinMismatch
		switch {
		case errors.Is(err, ErrNoBones):
			code = CodeNoBones
		case errors.Is(err, ErrBoneRange):
			code = CodeBoneRange
		}
		return stageDone, cv.fatal(code, err)
	}
	cv.skin = skin
	if cv.mesh.RadialNormals {
		cv.center = cv.mesh.Bounds().Center()
	}
	return stageValidateTopology, nil
}

func (cv *conversion) validateTopology() {
	mesh := cv.mesh
	cv.valid = make([]bool, len(mesh.Faces))
	for f, face := range mesh.Faces {
		inRange := true
		for _, v := range face.V {
			if v < 0 || v >= len(mesh.Vertices) {
				inRange = false
			}
		}
		if !inRange {
			cv.stats.FacesBadIndex++
			continue
		}
		p0, p1, p2 := mesh.Vertices[face.V[0]], mesh.Vertices[face.V[1]], mesh.Vertices[face.V[2]]
		if p0 == p1 || p1 == p2 || p2 == p0 {
			cv.stats.FacesSkipped++
			continue
		}
		cv.valid[f] = true
	}
	if n := cv.stats.FacesBadIndex; n > 0 {
		cv.warn(CodeBadFaceIndex, "skipped %d faces with out-of-range vertex indices", n)
	}
	if n := cv.stats.FacesSkipped; n > 0 {
		cv.warn(CodeDegenerateFace, "skipped %d degenerate faces", n)
	}
}

func (cv *conversion) resolveMaterialBuckets() stage {
	mesh := cv.mesh
	mat := cv.materials.ResolveMaterial(mesh.MaterialSlot)
	if mat.IsMultiMat() && len(mat.SubMaterials) > 0 {
		cv.subs = mat.SubMaterials
	} else {
		cv.subs = []MaterialDescriptor{mat}
	}

	cv.faceSub = make([]int, len(mesh.Faces))
	referenced := make([]bool, len(cv.subs))
	for f, face := range mesh.Faces {
		sub := 0
		if len(cv.subs) > 1 && face.MatID >= 0 && face.MatID < len(cv.subs) {
			sub = face.MatID
		}
		if !cv.valid[f] {
			cv.faceSub[f] = -1
			continue
		}
		if cv.subs[sub].Kind == MatParticle {
			cv.warn(CodeNotRenderable, "particle material %q produces no geometry", cv.subs[sub].Name)
			cv.faceSub[f] = -1
			continue
		}
		cv.faceSub[f] = sub
		referenced[sub] = true
	}

	blendSlots := 0
	for i := range cv.subs {
		if referenced[i] {
			blendSlots = max(blendSlots, cv.subs[i].blendChannels())
		}
	}

	cv.layouts = make([]uvLayout, len(cv.subs))
	for i := range cv.subs {
		if referenced[i] {
			cv.layouts[i] = cv.layoutFor(&cv.subs[i], blendSlots)
		}
	}
	return stageIterateFaces
}

// layoutFor computes the UV slot layout of one sub-material.
func (cv *conversion) layoutFor(d *MaterialDescriptor, blendSlots int) uvLayout {
	l := uvLayout{bumpSrc: d.bumpSource(), du: -1, dv: -1, dw: -1}
	l.base = max(d.requiredUVs(), d.textureUVs())
	if cv.opts.WaterDecalEnvMap {
		l.base = max(l.base, 4)
		l.bumpSrc = 0
		l.du, l.dv, l.dw = 1, 2, 3
	}
	for _, layer := range d.Layers {
		switch {
		case layer.Misc&MiscBumpDu != 0:
			l.du = layer.UVWSrc
		case layer.Misc&MiscBumpDv != 0:
			l.dv = layer.UVWSrc
		case layer.Misc&MiscBumpDw != 0:
			l.dw = layer.UVWSrc
		}
	}
	l.blend = blendSlots
	l.count = l.base + blendSlots
	if l.count > MaxUVChannels {
		cv.warn(CodeTooManyUVs, "material %q needs %d UV slots, keeping %d", d.Name, l.count, MaxUVChannels)
		l.count = MaxUVChannels
	}

	for _, layer := range d.Layers {
		if !layer.HasTexture || layer.Misc&(MiscBumpDu|MiscBumpDv|MiscBumpDw) != 0 {
			continue
		}
		if cv.mesh.uvChannel(layer.UVWSrc) == nil {
			cv.warn(CodeInsufficientUVs, "material %q reads UV channel %d which the mesh lacks", d.Name, layer.UVWSrc)
		}
	}
	return l
}

// prepareShading accumulates smoothed normals and gradients for valid faces.
func (cv *conversion) prepareShading() {
	mesh := cv.mesh
	cv.faceNormals = make([]math.Vec3, len(mesh.Faces))
	cv.normals = NewNormalAccumulator(len(mesh.Vertices))
	for f, face := range mesh.Faces {
		if cv.faceSub[f] < 0 {
			continue
		}
		p0 := mesh.Vertices[face.V[0]]
		n := mesh.Vertices[face.V[1]].Sub(p0).Cross(mesh.Vertices[face.V[2]].Sub(p0))
		cv.faceNormals[f] = n.Normalize()
		for _, v := range face.V {
			cv.normals.AddFaceNormal(v, n, face.SmoothGroup)
		}
	}
	cv.normals.Normalize()

	include := make([]bool, len(mesh.Faces))
	for f := range include {
		include[f] = cv.faceSub[f] >= 0
	}
	cv.gradients = make(map[int]*UVGradientBuilder)
	for i, l := range cv.layouts {
		if l.bumpSrc < 0 || l.count == 0 {
			continue
		}
		if _, done := cv.gradients[l.bumpSrc]; done {
			continue
		}
		g := NewUVGradientBuilder(mesh, l.bumpSrc)
		cv.gradients[l.bumpSrc] = g
		if g == nil {
			cv.warn(CodeMissingChannel, "material %q bump source channel %d is missing", cv.subs[i].Name, l.bumpSrc)
			continue
		}
		if bad := g.Build(include); bad > 0 {
			cv.warn(CodeBadGradient, "%d faces have degenerate UV gradients", bad)
		}
	}
}

func (cv *conversion) iterateFaces() {
	cv.prepareShading()
	cv.buckets = make(map[bucketKey]*bucket)

	var corners [3]Vertex
	var blend [3][]float32
	for f, face := range cv.mesh.Faces {
		sub := cv.faceSub[f]
		if sub < 0 {
			continue
		}
		d := &cv.subs[sub]
		l := &cv.layouts[sub]
		nblend := min(d.blendChannels(), l.blend)
		for c := 0; c < 3; c++ {
			corners[c] = cv.corner(f, c, d, l)
			blend[c] = blend[c][:0]
			for k := 0; k < nblend; k++ {
				blend[c] = append(blend[c], blendValue(d.blendSource(k), corners[c].Color[3], corners[c].Illum))
			}
		}

		for c := range corners {
			for k, w := range blend[c] {
				setSlot(corners[c].UVs, l.base+k, math.Vec3{X: w})
			}
		}
		variant := 0
		if d.IsComposite() {
			variant = compositeVariant(blend)
			for c := range corners {
				corners[c].Illum = math.Vec3{}
			}
		}

		key := bucketKey{sub: sub, variant: variant}
		b := cv.buckets[key]
		if b == nil {
			b = &bucket{acc: NewVertexAccumulator(len(cv.mesh.Vertices))}
			cv.buckets[key] = b
		}
		for c := 0; c < 3; c++ {
			b.acc.AddVertex(face.V[c], corners[c])
		}
		if d.TwoSided && cv.opts.Dup2SidedMaterialFaces {
			for _, c := range [3]int{2, 1, 0} {
				b.acc.AddVertex(face.V[c], backCorner(corners[c], l))
			}
		}
	}
}

// backCorner mirrors a corner for the duplicated back face. The normal and
// its copy in the dw slot flip. du and dv are dPos/dU and dPos/dV, which
// are the same vectors on both faces, so they are kept.
func backCorner(v Vertex, l *uvLayout) Vertex {
	v.Normal = v.Normal.Neg()
	if l.dw >= 0 && l.dw < len(v.UVs) {
		v.UVs = append([]math.Vec3(nil), v.UVs...)
		v.UVs[l.dw] = v.UVs[l.dw].Neg()
	}
	return v
}

// corner builds the vertex for corner c of face f before composite handling.
func (cv *conversion) corner(f, c int, d *MaterialDescriptor, l *uvLayout) Vertex {
	mesh := cv.mesh
	face := mesh.Faces[f]
	src := face.V[c]
	v := Vertex{
		Position: mesh.Vertices[src],
		Normal:   cv.cornerNormal(f, c),
		Color:    [4]float32{1, 1, 1, 1},
	}
	if mesh.Colors != nil {
		col := cv.mapped(mesh.Colors, f, c)
		v.Color[0], v.Color[1], v.Color[2] = col.X, col.Y, col.Z
	}
	if mesh.Alpha != nil {
		v.Color[3] = cv.mapped(mesh.Alpha, f, c).X
	}
	if mesh.Illum != nil {
		v.Illum = cv.mapped(mesh.Illum, f, c)
	}

	v.UVs = make([]math.Vec3, l.count)
	for slot := 0; slot < min(l.base, l.count); slot++ {
		ch := mesh.uvChannel(slot)
		if ch == nil {
			continue
		}
		uv := cv.mapped(ch, f, c)
		if !uv.IsFinite() || max(math32.Abs(uv.X), math32.Abs(uv.Y), math32.Abs(uv.Z)) > suspiciousUV {
			cv.warn(CodeSuspiciousUV, "UV channel %d has value %v", slot, uv)
		}
		v.UVs[slot] = uv
	}
	if g := cv.gradients[l.bumpSrc]; g != nil {
		du, dv := g.Gradients(f, c)
		setSlot(v.UVs, l.du, du)
		setSlot(v.UVs, l.dv, dv)
		setSlot(v.UVs, l.dw, v.Normal)
	}

	if cv.skin != nil {
		w, b := cv.skin.Resolve(src)
		v.Weights = w
		v.Bones = PackBones(b)
	}
	return v
}

func setSlot(uvs []math.Vec3, slot int, val math.Vec3) {
	if slot >= 0 && slot < len(uvs) {
		uvs[slot] = val
	}
}

// mapped reads a per-corner value, substituting zero for bad mappings.
func (cv *conversion) mapped(ch *MapChannel, f, c int) math.Vec3 {
	val, ok := ch.lookup(f, c)
	if !ok {
		cv.warn(CodeMappingError, "face %d corner %d maps outside its channel", f, c)
	}
	return val
}

// cornerNormal resolves the shading normal: explicit, radial, then smoothing group.
func (cv *conversion) cornerNormal(f, c int) math.Vec3 {
	mesh := cv.mesh
	face := mesh.Faces[f]
	v := face.V[c]

	var n math.Vec3
	switch {
	case mesh.Normals != nil:
		n = cv.mapped(mesh.Normals, f, c).Normalize()
	case mesh.RadialNormals:
		n = mesh.Vertices[v].Sub(cv.center).Normalize()
	case face.SmoothGroup != 0:
		n = cv.normals.GetNormal(v, face.SmoothGroup)
	default:
		n = cv.faceNormals[f]
	}
	if n.IsZero() {
		cv.warn(CodeBadNormal, "face %d has an undefined normal", f)
		n = cv.faceNormals[f]
	}
	return n
}

func (cv *conversion) closeSpans() error {
	keys := make([]bucketKey, 0, len(cv.buckets))
	for k := range cv.buckets {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b bucketKey) int {
		if a.sub != b.sub {
			return a.sub - b.sub
		}
		return a.variant - b.variant
	})

	mesh := cv.mesh
	toObject := mesh.LocalToObject.OrIdentity()
	toLocal := toObject.Inverse()

	spans := make([]*Span, 0, len(keys))
	for _, k := range keys {
		acc := cv.buckets[k].acc
		if acc.NumVertices() == 0 {
			continue
		}
		d := &cv.subs[k.sub]
		s := &Span{
			Name:          mesh.Name,
			Format:        Format{UVCount: cv.layouts[k.sub].count},
			Material:      d,
			SubMaterial:   k.sub,
			Variant:       k.variant,
			Vertices:      acc.Flatten(),
			Indices:       acc.Indices(),
			LocalToObject: toObject,
			ObjectToLocal: toLocal,
		}
		if d.requiresBlending() {
			s.Props |= PropRequiresBlending
		}
		if !cv.opts.DoPreshading {
			s.Props |= PropNoPreshade
		}
		if cv.opts.RunTimeLighting {
			s.Props |= PropRunTimeLight
		}
		if mesh.WaterHeight != nil {
			s.Props |= PropWaterHeight
			s.WaterHeight = *mesh.WaterHeight
		}
		if vr, ok := mesh.VisRanges[k.sub]; ok {
			s.Props |= PropVisRange
			s.VisRange = vr
		}
		if cv.skin != nil {
			s.Props |= PropSkinned
			s.Format.SkinWeights, s.Format.SkinIndices = skinFormat(cv.skin, s.Vertices)
			s.DominantBone, s.SecondaryBone = dominantBones(s.Vertices)
		}
		s.computeBounds()
		spans = append(spans, s)
	}

	diced, err := Dice(spans, cv.opts.MaxVertsPerBuffer, cv.opts.MaxIndicesPerBuffer, cv.opts.Dicing)
	if err != nil {
		return cv.fatal(CodeCapacity, err)
	}
	cv.spans = diced
	cv.stats.Spans = len(diced)
	for _, s := range diced {
		cv.stats.Vertices += len(s.Vertices)
		cv.stats.Indices += len(s.Indices)
		if s.Props.Has(PropDiced) {
			cv.stats.DicedSpans++
		}
	}
	return nil
}
