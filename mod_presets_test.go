package simplesurface

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPresetSerialization(t *testing.T) {
	s := newTestScene()
	w := NewWorld(nil)

	// Create a hierarchy
	a, m := s.actorWithMesh("Statue")
	group := a.AddSceneComponent("Group", nil)
	a.AddMeshComponent("Plinth", group, s.quad)
	surface := NewSimpleSurfaceComponent(s.assets, s.base, nil)
	surface.PollInterval = 250 * time.Millisecond
	a.AddComponent(surface)
	w.Spawn(a)
	surface.SetGlow(3)

	testFile := filepath.Join(t.TempDir(), "test_preset.json")

	// Save
	if err := SaveActorPreset(a, testFile); err != nil {
		t.Fatalf("Failed to save preset: %v", err)
	}

	// Inspect JSON
	jsonContent, _ := os.ReadFile(testFile)
	t.Logf("Saved JSON:\n%s", string(jsonContent))

	// Load into a fresh app sharing the asset server
	app := NewApp()
	app.Commands().AddResources(s.assets)
	app.UseModules(SimpleSurfaceModule{})
	cmd := app.Commands()

	loaded, err := LoadActorPreset(cmd, s.assets, s.base, testFile)
	if err != nil {
		t.Fatalf("Failed to load preset: %v", err)
	}
	app.FlushCommands()

	world, _ := Resource[World](app)
	if world.FindActor("Statue") != loaded {
		t.Fatal("Loaded actor was not spawned")
	}

	var names []string
	for _, e := range EnumerateAll(loaded.RootComponent()) {
		names = append(names, e.Component.Name())
	}
	if len(names) != 4 || names[1] != "M" || names[3] != "Plinth" {
		t.Errorf("Unexpected hierarchy %v", names)
	}

	if len(loaded.Components()) != 1 {
		t.Fatalf("Expected 1 component, got %d", len(loaded.Components()))
	}
	ls := loaded.Components()[0].(*SimpleSurfaceComponent)
	if ls.State() != StateActive {
		t.Errorf("Expected loaded surface to be active, got %v", ls.State())
	}
	if ls.Material() == surface.Material() {
		t.Error("Loaded surface shares the source override instance")
	}
	if ls.Parameters().Glow != 3 {
		t.Errorf("Expected glow 3, got %v", ls.Parameters().Glow)
	}
	if ls.PollInterval != surface.PollInterval {
		t.Errorf("Expected poll interval %v, got %v", surface.PollInterval, ls.PollInterval)
	}

	lm, _ := ResolvePath(loaded.RootComponent(), StructuralPath{0})
	if lm.GetMaterial(0) != ls.Material() {
		t.Error("Loaded mesh does not carry the loaded override")
	}

	// Originals come back from the persisted records
	ls.Deactivate()
	if lm.GetMaterial(0) != s.x || lm.GetMaterial(1) != s.y {
		t.Errorf("Expected [X Y] after deactivate, got %v", materialsOf(lm))
	}
	if m.GetMaterial(0) != surface.Material() {
		t.Error("Source actor was modified by the loaded copy")
	}
}

func TestBuildActor_MissingAssets(t *testing.T) {
	s := newTestScene()
	preset := ActorPreset{
		Name: "Broken",
		Root: ComponentData{
			Name: "Root",
			Children: []ComponentData{
				{Name: "Gone", Mesh: "no-such-mesh"},
				{Name: "Cube", Mesh: s.cube.AssetId(), Materials: []AssetId{"no-such-material", ""}},
			},
		},
	}

	a := BuildActor(preset, s.assets, s.base, nil)

	gone, _ := ResolvePath(a.RootComponent(), StructuralPath{0})
	if gone.IsRenderable() {
		t.Error("Component with an unknown mesh should not be renderable")
	}
	cube, _ := ResolvePath(a.RootComponent(), StructuralPath{1})
	if cube.GetMaterial(0) != s.x {
		t.Errorf("Unresolvable material should keep the mesh default, got %v", cube.GetMaterial(0))
	}
	if cube.GetMaterial(1) != nil {
		t.Errorf("Empty slot should stay empty, got %v", cube.GetMaterial(1))
	}
}

func TestActorPreset_JSONShape(t *testing.T) {
	s := newTestScene()
	a, _ := s.actorWithMesh("A")
	a.AddComponent(NewSimpleSurfaceComponent(s.assets, s.base, nil))

	bytes, err := json.Marshal(MakeActorPreset(a))
	if err != nil {
		t.Fatal(err)
	}
	var generic map[string]any
	if err := json.Unmarshal(bytes, &generic); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"name", "root", "surfaces"} {
		if _, ok := generic[key]; !ok {
			t.Errorf("Missing key %q in %s", key, bytes)
		}
	}
}

func TestLoadActorPreset_Errors(t *testing.T) {
	app := NewApp()
	s := newTestScene()

	if _, err := LoadActorPreset(app.Commands(), s.assets, s.base, filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(bad, []byte("{"), 0644)
	if _, err := LoadActorPreset(app.Commands(), s.assets, s.base, bad); err == nil {
		t.Error("Expected error for malformed preset")
	}

	destroyed := NewActor("gone")
	NewWorld(nil).Spawn(destroyed)
	destroyed.World().Destroy(destroyed)
	if err := SaveActorPreset(destroyed, filepath.Join(t.TempDir(), "x.json")); err == nil {
		t.Error("Expected error for destroyed actor")
	}
}
