package simplesurface

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type ComponentData struct {
	Name      string          `json:"name"`
	Mesh      AssetId         `json:"mesh,omitempty"`
	Materials []AssetId       `json:"materials,omitempty"`
	Children  []ComponentData `json:"children,omitempty"`
}

type SurfaceData struct {
	AutoActivate   bool                   `json:"auto_activate"`
	PollIntervalMs int64                  `json:"poll_interval_ms"`
	Parameters     SurfaceParameters      `json:"parameters"`
	Records        []OverrideLedgerRecord `json:"records"`
}

type ActorPreset struct {
	Name     string        `json:"name"`
	Root     ComponentData `json:"root"`
	Surfaces []SurfaceData `json:"surfaces,omitempty"`
}

func componentData(c *SceneComponent) ComponentData {
	data := ComponentData{Name: c.name}
	if c.mesh != nil {
		data.Mesh = c.mesh.id
	}
	for _, m := range c.materials {
		data.Materials = append(data.Materials, materialRef(m))
	}
	for _, child := range c.children {
		data.Children = append(data.Children, componentData(child))
	}
	return data
}

// MakeActorPreset captures actor's hierarchy and its simple surface components.
func MakeActorPreset(actor *Actor) ActorPreset {
	preset := ActorPreset{
		Name: actor.name,
		Root: componentData(actor.root),
	}
	for _, c := range actor.components {
		surface, ok := c.(*SimpleSurfaceComponent)
		if !ok {
			continue
		}
		preset.Surfaces = append(preset.Surfaces, SurfaceData{
			AutoActivate:   surface.AutoActivate,
			PollIntervalMs: surface.PollInterval.Milliseconds(),
			Parameters:     surface.params,
			Records:        surface.Records(),
		})
	}
	return preset
}

func SaveActorPreset(actor *Actor, filename string) error {
	if !actor.IsValid() {
		return fmt.Errorf("save preset %s: actor is not valid", filename)
	}
	bytes, err := json.MarshalIndent(MakeActorPreset(actor), "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filename, bytes, 0644)
}

// BuildActor recreates an unspawned actor from a preset. Meshes and materials
// are looked up in server; anything missing is left at the mesh default.
func BuildActor(preset ActorPreset, server *AssetServer, base *MaterialAsset, logger Logger) *Actor {
	if logger == nil {
		logger = NewNopLogger()
	}
	actor := NewActor(preset.Name)
	actor.root.name = preset.Root.Name
	buildComponent(actor.root, preset.Root, server, logger)

	for _, s := range preset.Surfaces {
		surface := NewSimpleSurfaceComponent(server, base, logger)
		surface.AutoActivate = s.AutoActivate
		surface.PollInterval = time.Duration(s.PollIntervalMs) * time.Millisecond
		surface.params = s.Parameters.Clamp()
		surface.LoadRecords(s.Records)
		actor.AddComponent(surface)
	}
	return actor
}

func buildComponent(c *SceneComponent, data ComponentData, server *AssetServer, logger Logger) {
	if data.Mesh != "" {
		if mesh, ok := server.Mesh(data.Mesh); ok {
			c.SetMesh(mesh)
		} else {
			logger.Warnf("preset: mesh %s for %q not loaded", data.Mesh, data.Name)
		}
	}
	for slot, ref := range data.Materials {
		if slot >= c.NumMaterials() {
			break
		}
		if ref == "" {
			c.SetMaterial(slot, nil)
			continue
		}
		m, ok := server.ResolveMaterial(ref)
		if !ok {
			logger.Debugf("preset: material %s for %q slot %d not loaded", ref, data.Name, slot)
			continue
		}
		c.SetMaterial(slot, m)
	}
	for _, child := range data.Children {
		cc := c.owner.AddSceneComponent(child.Name, c)
		buildComponent(cc, child, server, logger)
	}
}

// LoadActorPreset reads a preset file and queues the rebuilt actor for spawning.
func LoadActorPreset(cmd *Commands, server *AssetServer, base *MaterialAsset, filename string) (*Actor, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var preset ActorPreset
	if err := json.Unmarshal(bytes, &preset); err != nil {
		return nil, fmt.Errorf("parse preset %s: %w", filename, err)
	}

	actor := BuildActor(preset, server, base, cmd.Logger())
	return cmd.SpawnActor(actor), nil
}
