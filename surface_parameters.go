package simplesurface

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Parameter names understood by the simple surface base material.
const (
	ParamColor             = "Color"
	ParamGlow              = "Glow"
	ParamRoughness         = "Shininess / Roughness"
	ParamMetalness         = "Waxiness / Metalness"
	ParamTexture           = "Texture"
	ParamTextureIntensity  = "Texture Intensity"
	ParamTextureScale      = "Texture Scale"
	ParamGridIntensity     = "Grid Intensity"
	ParamGridSize          = "Grid Size"
	ParamGridSubdivisions  = "Grid Subdivisions"
	ParamGridObjectAligned = "Grid Object Aligned"
)

type GridParameters struct {
	Size          float32 `json:"size" toml:"size" yaml:"size"`
	Subdivisions  float32 `json:"subdivisions" toml:"subdivisions" yaml:"subdivisions"`
	ObjectAligned bool    `json:"object_aligned" toml:"object_aligned" yaml:"object_aligned"`
}

// SurfaceParameters is the user-facing look of the override material.
type SurfaceParameters struct {
	Color            mgl32.Vec4     `json:"color" toml:"color" yaml:"color"`
	Glow             float32        `json:"glow" toml:"glow" yaml:"glow"`
	Roughness        float32        `json:"roughness" toml:"roughness" yaml:"roughness"`
	Metalness        float32        `json:"metalness" toml:"metalness" yaml:"metalness"`
	Texture          AssetId        `json:"texture,omitempty" toml:"texture,omitempty" yaml:"texture,omitempty"`
	TextureIntensity float32        `json:"texture_intensity" toml:"texture_intensity" yaml:"texture_intensity"`
	TextureScale     float32        `json:"texture_scale" toml:"texture_scale" yaml:"texture_scale"`
	GridIntensity    float32        `json:"grid_intensity" toml:"grid_intensity" yaml:"grid_intensity"`
	Grid             GridParameters `json:"grid" toml:"grid" yaml:"grid"`
}

// ColorFromHex converts 0xRRGGBB into an opaque color.
func ColorFromHex(rgb uint32) mgl32.Vec4 {
	return mgl32.Vec4{
		float32((rgb>>16)&0xff) / 255,
		float32((rgb>>8)&0xff) / 255,
		float32(rgb&0xff) / 255,
		1,
	}
}

func DefaultSurfaceParameters() SurfaceParameters {
	return SurfaceParameters{
		Color:            ColorFromHex(0xD84DC2),
		Glow:             0,
		Roughness:        0.5,
		Metalness:        0.5,
		TextureIntensity: 0.1,
		TextureScale:     1,
		GridIntensity:    0,
		Grid: GridParameters{
			Size:         100,
			Subdivisions: 5,
		},
	}
}

func clampf(v, lo, hi float32) float32 {
	return mgl32.Clamp(v, lo, hi)
}

// Clamp returns p with every field forced into its valid range.
func (p SurfaceParameters) Clamp() SurfaceParameters {
	for i := range p.Color {
		p.Color[i] = clampf(p.Color[i], 0, 1)
	}
	p.Glow = clampf(p.Glow, 0, 10)
	p.Roughness = clampf(p.Roughness, 0, 1)
	p.Metalness = clampf(p.Metalness, 0, 1)
	p.TextureIntensity = clampf(p.TextureIntensity, 0, 1)
	p.TextureScale = clampf(p.TextureScale, 0, 1)
	p.GridIntensity = clampf(p.GridIntensity, -1, 1)
	p.Grid.Size = clampf(p.Grid.Size, -0.1, 1_000_000)
	p.Grid.Subdivisions = clampf(p.Grid.Subdivisions, 1, 100)
	return p
}

func boolScalar(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

// ApplyTo pushes every parameter into mi. Unchanged values do not bump mi's version.
func (p SurfaceParameters) ApplyTo(mi *MaterialInstance) {
	if mi == nil {
		return
	}
	mi.SetVectorParameterValue(ParamColor, p.Color)
	mi.SetScalarParameterValue(ParamGlow, p.Glow)
	mi.SetScalarParameterValue(ParamRoughness, p.Roughness)
	mi.SetScalarParameterValue(ParamMetalness, p.Metalness)
	mi.SetTextureParameterValue(ParamTexture, p.Texture)
	mi.SetScalarParameterValue(ParamTextureIntensity, p.TextureIntensity)
	mi.SetScalarParameterValue(ParamTextureScale, p.TextureScale)
	mi.SetScalarParameterValue(ParamGridIntensity, p.GridIntensity)
	mi.SetScalarParameterValue(ParamGridSize, p.Grid.Size)
	mi.SetScalarParameterValue(ParamGridSubdivisions, p.Grid.Subdivisions)
	mi.SetScalarParameterValue(ParamGridObjectAligned, boolScalar(p.Grid.ObjectAligned))
}
