package matlib

import "github.com/Faultbox/meshspan/pkg/meshconv"

// Resolver answers material slots from scene materials, with library
// entries taking precedence. The lookup order for a slot is: the library
// slot binding, a library material with the scene material's name, the
// scene material, the library default, meshconv.DefaultMaterial.
type Resolver struct {
	lib   *Library // may be nil
	scene []meshconv.MaterialDescriptor
}

// NewResolver combines a library (nil allowed) with scene materials.
func NewResolver(lib *Library, scene []meshconv.MaterialDescriptor) *Resolver {
	return &Resolver{lib: lib, scene: scene}
}

// ResolveMaterial implements meshconv.MaterialResolver.
func (r *Resolver) ResolveMaterial(slot int) meshconv.MaterialDescriptor {
	if r.lib != nil {
		if name, ok := r.lib.Slots[slot]; ok {
			return r.lib.resolved[name]
		}
	}
	if slot >= 0 && slot < len(r.scene) {
		d := r.scene[slot]
		if r.lib != nil {
			if ld, ok := r.lib.resolved[d.Name]; ok && d.Name != "" {
				return ld
			}
		}
		return d
	}
	if r.lib != nil && r.lib.Default != "" {
		return r.lib.resolved[r.lib.Default]
	}
	return meshconv.DefaultMaterial()
}
