package simplesurface

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MaterialInstance is a dynamic, per-owner parameterization of a base material.
type MaterialInstance struct {
	id    AssetId
	name  string
	base  *MaterialAsset
	owner any

	scalars  map[string]float32
	vectors  map[string]mgl32.Vec4
	textures map[string]AssetId

	// bumped whenever a parameter value actually changes
	version uint
}

func newMaterialInstance(id AssetId, base *MaterialAsset, owner any, name string) *MaterialInstance {
	return &MaterialInstance{
		id:       id,
		name:     name,
		base:     base,
		owner:    owner,
		scalars:  make(map[string]float32),
		vectors:  make(map[string]mgl32.Vec4),
		textures: make(map[string]AssetId),
	}
}

func (mi *MaterialInstance) AssetId() AssetId     { return mi.id }
func (mi *MaterialInstance) Name() string         { return mi.name }
func (mi *MaterialInstance) Base() *MaterialAsset { return mi.base }
func (mi *MaterialInstance) Owner() any           { return mi.owner }
func (mi *MaterialInstance) Version() uint        { return mi.version }

// IsInstanceOf reports whether m is a dynamic instance created from base.
func IsInstanceOf(m Material, base *MaterialAsset) bool {
	mi, ok := m.(*MaterialInstance)
	return ok && mi != nil && base != nil && mi.base == base
}

func (mi *MaterialInstance) SetScalarParameterValue(name string, value float32) {
	if old, ok := mi.scalars[name]; ok && old == value {
		return
	}
	mi.scalars[name] = value
	mi.version++
}

func (mi *MaterialInstance) SetVectorParameterValue(name string, value mgl32.Vec4) {
	if old, ok := mi.vectors[name]; ok && old == value {
		return
	}
	mi.vectors[name] = value
	mi.version++
}

func (mi *MaterialInstance) SetTextureParameterValue(name string, texture AssetId) {
	if old, ok := mi.textures[name]; ok && old == texture {
		return
	}
	mi.textures[name] = texture
	mi.version++
}

func (mi *MaterialInstance) ScalarParameterValue(name string) (float32, bool) {
	v, ok := mi.scalars[name]
	return v, ok
}

func (mi *MaterialInstance) VectorParameterValue(name string) (mgl32.Vec4, bool) {
	v, ok := mi.vectors[name]
	return v, ok
}

func (mi *MaterialInstance) TextureParameterValue(name string) (AssetId, bool) {
	v, ok := mi.textures[name]
	return v, ok
}
