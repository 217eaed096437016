package simplesurface

import (
	"github.com/go-gl/mathgl/mgl32"
)

type testScene struct {
	assets *AssetServer
	base   *MaterialAsset
	x, y   *MaterialAsset
	cube   *MeshAsset
	quad   *MeshAsset
}

var (
	cubeVertices = []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}, {0, 0, 1}, {1, 0, 1}}
	cubeIndices  = []uint16{0, 1, 2, 0, 2, 3, 1, 4, 5}
	quadVertices = []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	quadIndices  = []uint16{0, 1, 2, 0, 2, 3}
)

func newTestScene() *testScene {
	assets := NewAssetServer()
	s := &testScene{
		assets: assets,
		base:   assets.CreateMaterial("MI_SimpleSurface", "SimpleSurface"),
		x:      assets.CreateMaterial("X", "Lit"),
		y:      assets.CreateMaterial("Y", "Lit"),
	}
	s.cube = assets.LoadMesh("cube", cubeVertices, cubeIndices, s.x, s.y)
	s.quad = assets.LoadMesh("quad", quadVertices, quadIndices, s.y)
	return s
}

// actorWithMesh builds R -> M where M renders the cube with slots [X, Y].
func (s *testScene) actorWithMesh(name string) (*Actor, *SceneComponent) {
	a := NewActor(name)
	m := a.AddMeshComponent("M", nil, s.cube)
	return a, m
}

func (s *testScene) override(owner any) *MaterialInstance {
	return s.assets.CreateMaterialInstance(s.base, owner, "override")
}

func materialsOf(c *SceneComponent) []Material {
	out := make([]Material, c.NumMaterials())
	for i := range out {
		out[i] = c.GetMaterial(i)
	}
	return out
}
