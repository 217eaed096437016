package simplesurface

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"reflect"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type AssetId string

var ErrUnknownAsset = errors.New("unknown asset")

// Material is anything that can occupy a mesh material slot. Identity is
// pointer identity of the implementation.
type Material interface {
	AssetId() AssetId
	Name() string
}

// MaterialResolver turns a persisted material reference back into a live material.
type MaterialResolver interface {
	ResolveMaterial(id AssetId) (Material, bool)
}

type AssetServer struct {
	meshes    map[AssetId]*MeshAsset
	materials map[AssetId]Material
	textures  map[AssetId]*TextureAsset
}

type MeshAsset struct {
	id       AssetId
	name     string
	version  uint
	vertices []mgl32.Vec3
	indices  []uint16
	// materials assigned to slots when the mesh is first put on a component
	defaults []Material
}

func (m *MeshAsset) AssetId() AssetId { return m.id }
func (m *MeshAsset) Name() string     { return m.name }
func (m *MeshAsset) Version() uint    { return m.version }
func (m *MeshAsset) VertexCount() int { return len(m.vertices) }
func (m *MeshAsset) TriangleCount() int {
	return len(m.indices) / 3
}
func (m *MeshAsset) SlotCount() int { return len(m.defaults) }

// MaterialAsset is a static material template loaded from disk or created in code.
type MaterialAsset struct {
	id         AssetId
	name       string
	shaderName string
}

func (m *MaterialAsset) AssetId() AssetId   { return m.id }
func (m *MaterialAsset) Name() string       { return m.name }
func (m *MaterialAsset) ShaderName() string { return m.shaderName }

type TextureAsset struct {
	id     AssetId
	source string
	texels []uint8
	width  uint32
	height uint32
}

func (t *TextureAsset) AssetId() AssetId { return t.id }
func (t *TextureAsset) Size() (uint32, uint32) {
	return t.width, t.height
}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		meshes:    make(map[AssetId]*MeshAsset),
		materials: make(map[AssetId]Material),
		textures:  make(map[AssetId]*TextureAsset),
	}
}

// LoadMesh registers a mesh under an id derived from name. Loading the same
// name again re-imports the existing asset.
func (server *AssetServer) LoadMesh(name string, vertices []mgl32.Vec3, indices []uint16, defaults ...Material) *MeshAsset {
	id := namedAssetId("mesh", name)
	if mesh, ok := server.meshes[id]; ok {
		mesh.vertices = vertices
		mesh.indices = indices
		mesh.defaults = defaults
		mesh.version++
		return mesh
	}
	mesh := &MeshAsset{
		id:       id,
		name:     name,
		vertices: vertices,
		indices:  indices,
		defaults: defaults,
	}
	server.meshes[mesh.id] = mesh
	return mesh
}

// ReplaceMeshData re-imports mesh content in place. Components referencing the
// mesh keep the same asset id.
func (server *AssetServer) ReplaceMeshData(id AssetId, vertices []mgl32.Vec3, indices []uint16) error {
	mesh, ok := server.meshes[id]
	if !ok {
		return fmt.Errorf("replace mesh %s: %w", id, ErrUnknownAsset)
	}
	mesh.vertices = vertices
	mesh.indices = indices
	mesh.version++
	return nil
}

func (server *AssetServer) Mesh(id AssetId) (*MeshAsset, bool) {
	mesh, ok := server.meshes[id]
	return mesh, ok
}

// CreateMaterial registers a base material. Its id is derived from name, so
// references persisted in one session resolve in the next. Creating a name that
// already exists returns the registered material.
func (server *AssetServer) CreateMaterial(name string, shaderName string) *MaterialAsset {
	id := namedAssetId("material", name)
	if mat, ok := server.materials[id].(*MaterialAsset); ok {
		return mat
	}
	mat := &MaterialAsset{
		id:         id,
		name:       name,
		shaderName: shaderName,
	}
	server.materials[mat.id] = mat
	return mat
}

// FindMaterial returns the base material registered under name.
func (server *AssetServer) FindMaterial(name string) (*MaterialAsset, bool) {
	for _, m := range server.materials {
		if mat, ok := m.(*MaterialAsset); ok && mat.name == name {
			return mat, true
		}
	}
	return nil, false
}

// CreateMaterialInstance makes a new parameterized instance of base owned by owner.
// Every call returns a distinct instance.
func (server *AssetServer) CreateMaterialInstance(base *MaterialAsset, owner any, name string) *MaterialInstance {
	mi := newMaterialInstance(makeAssetId(), base, owner, name)
	server.materials[mi.id] = mi
	return mi
}

// ReleaseMaterialInstance drops the server's reference to an instance.
func (server *AssetServer) ReleaseMaterialInstance(mi *MaterialInstance) {
	if mi == nil {
		return
	}
	delete(server.materials, mi.id)
}

func (server *AssetServer) ResolveMaterial(id AssetId) (Material, bool) {
	mat, ok := server.materials[id]
	return mat, ok
}

// UnloadMaterial forgets a material. References captured earlier stop resolving.
func (server *AssetServer) UnloadMaterial(id AssetId) {
	delete(server.materials, id)
}

func (server *AssetServer) CreateTexture(texels []uint8, width uint32, height uint32) AssetId {
	id := makeAssetId()
	server.textures[id] = &TextureAsset{
		id:     id,
		texels: texels,
		width:  width,
		height: height,
	}
	return id
}

// LoadTexture decodes png, jpeg, bmp, tiff or webp into RGBA texels.
func (server *AssetServer) LoadTexture(filename string) (AssetId, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decode texture %s: %w", filename, err)
	}

	bounds := img.Bounds()
	rgbaImg, ok := img.(*image.RGBA)
	if !ok {
		rgbaImg = image.NewRGBA(bounds)
		draw.Draw(rgbaImg, bounds, img, bounds.Min, draw.Src)
	}

	id := namedAssetId("texture", filepath.Clean(filename))
	server.textures[id] = &TextureAsset{
		id:     id,
		source: filename,
		texels: rgbaImg.Pix,
		width:  uint32(bounds.Dx()),
		height: uint32(bounds.Dy()),
	}
	return id, nil
}

func (server *AssetServer) Texture(id AssetId) (*TextureAsset, bool) {
	tex, ok := server.textures[id]
	return tex, ok
}

type AssetServerModule struct{}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	if app.hasResource(reflect.TypeFor[AssetServer]()) {
		return
	}
	app.addResources(NewAssetServer())
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

var assetNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/gekko3d/simplesurface/assets"))

func namedAssetId(kind, name string) AssetId {
	return AssetId(uuid.NewSHA1(assetNamespace, []byte(kind+"/"+name)).String())
}
