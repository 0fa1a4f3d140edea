// Package matlib loads material descriptors from a YAML library and resolves
// material slots for the converter.
package matlib

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshspan/pkg/meshconv"
)

// Library errors.
var (
	ErrUnknownKind     = errors.New("unknown material kind")
	ErrUnknownBlend    = errors.New("unknown blend mode")
	ErrUnknownSource   = errors.New("unknown blend source")
	ErrUnknownMisc     = errors.New("unknown layer flag")
	ErrUnknownMaterial = errors.New("unknown material")
)

// LayerEntry is one layer in YAML form.
type LayerEntry struct {
	UV      int      `yaml:"uv"`
	Texture bool     `yaml:"texture"`
	Blend   string   `yaml:"blend"`
	Flags   []string `yaml:"flags"` // bump, bump_du, bump_dv, bump_dw
}

// Entry is one material in YAML form.
type Entry struct {
	Kind          string       `yaml:"kind"`
	TwoSided      bool         `yaml:"two_sided"`
	Layers        []LayerEntry `yaml:"layers"`
	BlendChannels int          `yaml:"blend_channels"`
	BlendSources  []string     `yaml:"blend_sources"` // composite only
	Subs          []string     `yaml:"subs"`          // multi only, names of other entries
}

// Library is a named set of materials plus slot bindings.
type Library struct {
	Materials map[string]Entry `yaml:"materials"`
	Slots     map[int]string   `yaml:"slots"`   // Overrides by material slot
	Default   string           `yaml:"default"` // Used for unbound slots

	resolved map[string]meshconv.MaterialDescriptor
}

// Load reads and validates a library file.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a library document.
func Parse(data []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("decode material library: %w", err)
	}
	if err := lib.build(); err != nil {
		return nil, err
	}
	return &lib, nil
}

// Names returns the material names in sorted order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.resolved))
	for n := range l.resolved {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the descriptor named name.
func (l *Library) Lookup(name string) (meshconv.MaterialDescriptor, bool) {
	d, ok := l.resolved[name]
	return d, ok
}

func (l *Library) build() error {
	l.resolved = make(map[string]meshconv.MaterialDescriptor, len(l.Materials))
	// Plain materials first so multi materials can reference them.
	for name, e := range l.Materials {
		if e.Kind == "multi" {
			continue
		}
		d, err := e.descriptor(name)
		if err != nil {
			return fmt.Errorf("material %q: %w", name, err)
		}
		l.resolved[name] = d
	}
	for name, e := range l.Materials {
		if e.Kind != "multi" {
			continue
		}
		d := meshconv.MaterialDescriptor{Name: name, Kind: meshconv.MatMulti, TwoSided: e.TwoSided}
		for _, sub := range e.Subs {
			sd, ok := l.resolved[sub]
			if !ok {
				return fmt.Errorf("material %q: sub-material %q: %w", name, sub, ErrUnknownMaterial)
			}
			d.SubMaterials = append(d.SubMaterials, sd)
		}
		l.resolved[name] = d
	}
	for slot, name := range l.Slots {
		if _, ok := l.resolved[name]; !ok {
			return fmt.Errorf("slot %d: %q: %w", slot, name, ErrUnknownMaterial)
		}
	}
	if l.Default != "" {
		if _, ok := l.resolved[l.Default]; !ok {
			return fmt.Errorf("default %q: %w", l.Default, ErrUnknownMaterial)
		}
	}
	return nil
}

var kinds = map[string]meshconv.MaterialKind{
	"":          meshconv.MatSimple,
	"simple":    meshconv.MatSimple,
	"composite": meshconv.MatComposite,
	"particle":  meshconv.MatParticle,
	"clothing":  meshconv.MatClothing,
}

var blends = map[string]meshconv.BlendMode{
	"":      meshconv.BlendNone,
	"none":  meshconv.BlendNone,
	"alpha": meshconv.BlendAlpha,
	"add":   meshconv.BlendAdd,
	"mult":  meshconv.BlendMult,
}

var sources = map[string]meshconv.BlendSource{
	"alpha":   meshconv.BlendFromAlpha,
	"illum_r": meshconv.BlendFromIllumR,
	"illum_g": meshconv.BlendFromIllumG,
	"illum_b": meshconv.BlendFromIllumB,
}

var flags = map[string]meshconv.LayerMisc{
	"bump":    meshconv.MiscBump,
	"bump_du": meshconv.MiscBumpDu,
	"bump_dv": meshconv.MiscBumpDv,
	"bump_dw": meshconv.MiscBumpDw,
}

func (e Entry) descriptor(name string) (meshconv.MaterialDescriptor, error) {
	kind, ok := kinds[e.Kind]
	if !ok {
		return meshconv.MaterialDescriptor{}, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	d := meshconv.MaterialDescriptor{
		Name:             name,
		Kind:             kind,
		TwoSided:         e.TwoSided,
		NumBlendChannels: e.BlendChannels,
	}
	for _, le := range e.Layers {
		blend, ok := blends[le.Blend]
		if !ok {
			return d, fmt.Errorf("%w: %q", ErrUnknownBlend, le.Blend)
		}
		layer := meshconv.Layer{UVWSrc: le.UV, HasTexture: le.Texture, Blend: blend}
		for _, f := range le.Flags {
			bit, ok := flags[f]
			if !ok {
				return d, fmt.Errorf("%w: %q", ErrUnknownMisc, f)
			}
			layer.Misc |= bit
		}
		d.Layers = append(d.Layers, layer)
	}
	if kind == meshconv.MatComposite {
		info := &meshconv.CompositeInfo{}
		for _, s := range e.BlendSources {
			src, ok := sources[s]
			if !ok {
				return d, fmt.Errorf("%w: %q", ErrUnknownSource, s)
			}
			info.Sources = append(info.Sources, src)
		}
		d.Composite = info
	}
	return d, nil
}
