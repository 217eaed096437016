package simplesurface

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func writeTestImage(t *testing.T, name string, encode func(f *os.File, img image.Image) error) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	img.Set(1, 2, color.NRGBA{R: 255, A: 255})
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestAssetServer_LoadTexture(t *testing.T) {
	encoders := map[string]func(f *os.File, img image.Image) error{
		"tex.png": func(f *os.File, img image.Image) error { return png.Encode(f, img) },
		"tex.bmp": func(f *os.File, img image.Image) error { return bmp.Encode(f, img) },
	}
	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			server := NewAssetServer()
			path := writeTestImage(t, name, encode)

			id, err := server.LoadTexture(path)
			require.NoError(t, err)

			tex, ok := server.Texture(id)
			require.True(t, ok)
			w, h := tex.Size()
			assert.Equal(t, uint32(2), w)
			assert.Equal(t, uint32(3), h)
			assert.Len(t, tex.texels, 2*3*4)
			// Pixel (1, 2) is red.
			off := (2*2 + 1) * 4
			assert.Equal(t, []uint8{255, 0, 0, 255}, tex.texels[off:off+4])
		})
	}
}

func TestAssetServer_LoadTextureErrors(t *testing.T) {
	server := NewAssetServer()

	_, err := server.LoadTexture(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	garbage := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0644))
	_, err = server.LoadTexture(garbage)
	assert.Error(t, err)
}

func TestAssetServer_Meshes(t *testing.T) {
	server := NewAssetServer()
	x := server.CreateMaterial("X", "Lit")
	mesh := server.LoadMesh("cube", cubeVertices, cubeIndices, x, nil)

	assert.Equal(t, 6, mesh.VertexCount())
	assert.Equal(t, 3, mesh.TriangleCount())
	assert.Equal(t, 2, mesh.SlotCount())

	got, ok := server.Mesh(mesh.AssetId())
	require.True(t, ok)
	assert.Same(t, mesh, got)

	require.NoError(t, server.ReplaceMeshData(mesh.AssetId(), quadVertices, quadIndices))
	assert.Equal(t, 2, mesh.TriangleCount())
	assert.Equal(t, uint(1), mesh.Version())

	err := server.ReplaceMeshData("nope", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownAsset)
}

func TestAssetServer_Materials(t *testing.T) {
	server := NewAssetServer()
	base := server.CreateMaterial("MI_SimpleSurface", "SimpleSurface")

	found, ok := server.FindMaterial("MI_SimpleSurface")
	require.True(t, ok)
	assert.Same(t, base, found)
	_, ok = server.FindMaterial("missing")
	assert.False(t, ok)

	a := server.CreateMaterialInstance(base, "a", "A")
	b := server.CreateMaterialInstance(base, "b", "B")
	assert.NotEqual(t, a.AssetId(), b.AssetId())
	assert.True(t, IsInstanceOf(a, base))
	assert.False(t, IsInstanceOf(base, base))
	assert.False(t, IsInstanceOf(a, nil))

	resolved, ok := server.ResolveMaterial(a.AssetId())
	require.True(t, ok)
	assert.Same(t, a, resolved)

	server.ReleaseMaterialInstance(a)
	_, ok = server.ResolveMaterial(a.AssetId())
	assert.False(t, ok)
	server.ReleaseMaterialInstance(nil)

	server.UnloadMaterial(base.AssetId())
	_, ok = server.ResolveMaterial(base.AssetId())
	assert.False(t, ok)
}

func TestAssetServer_NamedIdsAreStable(t *testing.T) {
	first, second := NewAssetServer(), NewAssetServer()
	x1 := first.CreateMaterial("X", "Lit")
	x2 := second.CreateMaterial("X", "Lit")
	assert.Equal(t, x1.AssetId(), x2.AssetId())
	assert.Same(t, x1, first.CreateMaterial("X", "Lit"))
	assert.NotEqual(t, x1.AssetId(), first.CreateMaterial("Y", "Lit").AssetId())

	m1 := first.LoadMesh("cube", cubeVertices, cubeIndices, x1)
	m2 := second.LoadMesh("cube", cubeVertices, cubeIndices, x2)
	assert.Equal(t, m1.AssetId(), m2.AssetId())
	assert.NotEqual(t, m1.AssetId(), x1.AssetId())

	reloaded := first.LoadMesh("cube", quadVertices, quadIndices, x1)
	assert.Same(t, m1, reloaded)
	assert.Equal(t, 2, m1.TriangleCount())
	assert.Equal(t, uint(1), m1.Version())

	a := first.CreateMaterialInstance(x1, nil, "mi")
	b := second.CreateMaterialInstance(x2, nil, "mi")
	assert.NotEqual(t, a.AssetId(), b.AssetId(), "instances are per session")
}

func TestMaterialInstance_VersionOnlyBumpsOnChange(t *testing.T) {
	server := NewAssetServer()
	mi := server.CreateMaterialInstance(server.CreateMaterial("Base", "S"), nil, "mi")

	mi.SetScalarParameterValue(ParamGlow, 1)
	mi.SetScalarParameterValue(ParamGlow, 1)
	assert.Equal(t, uint(1), mi.Version())

	mi.SetScalarParameterValue(ParamGlow, 2)
	mi.SetTextureParameterValue(ParamTexture, "t")
	mi.SetTextureParameterValue(ParamTexture, "t")
	assert.Equal(t, uint(3), mi.Version())

	_, ok := mi.ScalarParameterValue("unknown")
	assert.False(t, ok)
}
