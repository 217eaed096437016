package simplesurface

import (
	"slices"
	"sync/atomic"
)

type ComponentId uint64

var componentIdCounter atomic.Uint64

func nextComponentId() ComponentId {
	return ComponentId(componentIdCounter.Add(1))
}

// SceneComponent is one node of an actor's attachment hierarchy. Children are
// kept in attach order, which is what structural paths index into.
// A SceneComponent with a mesh is renderable and carries material slots.
type SceneComponent struct {
	id       ComponentId
	name     string
	owner    *Actor
	parent   *SceneComponent
	children []*SceneComponent

	mesh      *MeshAsset
	materials []Material

	destroyed     bool
	modifications int
}

func (c *SceneComponent) ID() ComponentId { return c.id }
func (c *SceneComponent) Name() string    { return c.name }
func (c *SceneComponent) Owner() *Actor   { return c.owner }

// IsValid reports whether the handle still refers to a live component.
// Handles held across frames must be checked before use.
func (c *SceneComponent) IsValid() bool {
	return c != nil && !c.destroyed && c.owner != nil
}

func (c *SceneComponent) AttachParent() *SceneComponent { return c.parent }

// AttachChildren returns the ordered child list. Callers must not mutate it.
func (c *SceneComponent) AttachChildren() []*SceneComponent { return c.children }

func (c *SceneComponent) NumChildren() int { return len(c.children) }

func (c *SceneComponent) Child(index int) (*SceneComponent, bool) {
	if index < 0 || index >= len(c.children) {
		return nil, false
	}
	return c.children[index], true
}

func (c *SceneComponent) IndexOfChild(child *SceneComponent) int {
	return slices.Index(c.children, child)
}

// AttachTo appends c to parent's children, detaching it from its previous parent first.
func (c *SceneComponent) AttachTo(parent *SceneComponent) {
	if c.parent != nil {
		c.Detach()
	}
	c.parent = parent
	parent.children = append(parent.children, c)
}

// AttachToAt inserts c into parent's children at index.
func (c *SceneComponent) AttachToAt(parent *SceneComponent, index int) {
	if c.parent != nil {
		c.Detach()
	}
	index = max(0, min(index, len(parent.children)))
	c.parent = parent
	parent.children = slices.Insert(parent.children, index, c)
}

func (c *SceneComponent) Detach() {
	if c.parent == nil {
		return
	}
	if idx := c.parent.IndexOfChild(c); idx >= 0 {
		c.parent.children = slices.Delete(c.parent.children, idx, idx+1)
	}
	c.parent = nil
}

// Destroy detaches c and invalidates it together with its whole subtree.
func (c *SceneComponent) Destroy() {
	c.Detach()
	c.destroySubtree()
}

func (c *SceneComponent) destroySubtree() {
	for _, child := range c.children {
		child.destroySubtree()
	}
	c.destroyed = true
}

func (c *SceneComponent) IsRenderable() bool { return c.mesh != nil }

func (c *SceneComponent) Mesh() *MeshAsset { return c.mesh }

// SetMesh swaps the mesh and resets every slot to the new mesh's default materials.
func (c *SceneComponent) SetMesh(mesh *MeshAsset) {
	c.mesh = mesh
	c.materials = nil
	if mesh != nil {
		c.materials = slices.Clone(mesh.defaults)
	}
}

func (c *SceneComponent) NumMaterials() int { return len(c.materials) }

func (c *SceneComponent) GetMaterial(slot int) Material {
	if slot < 0 || slot >= len(c.materials) {
		return nil
	}
	return c.materials[slot]
}

func (c *SceneComponent) SetMaterial(slot int, m Material) {
	if slot < 0 || slot >= len(c.materials) {
		return
	}
	c.materials[slot] = m
}

// Modify marks the component as edited so the host can record an undo transaction.
func (c *SceneComponent) Modify() {
	c.modifications++
	if c.owner != nil && c.owner.OnModified != nil {
		c.owner.OnModified(c)
	}
}

func (c *SceneComponent) Modifications() int { return c.modifications }

// Actor owns a tree of scene components and a list of lifecycle components.
type Actor struct {
	name       string
	root       *SceneComponent
	components []ActorComponent
	world      *World
	destroyed  bool

	// OnModified is invoked whenever a scene component of this actor is marked edited.
	OnModified func(c *SceneComponent)
}

func NewActor(name string) *Actor {
	a := &Actor{name: name}
	a.root = a.newSceneComponent("Root", nil)
	return a
}

func (a *Actor) Name() string                   { return a.name }
func (a *Actor) RootComponent() *SceneComponent { return a.root }
func (a *Actor) World() *World                  { return a.world }
func (a *Actor) IsValid() bool                  { return a != nil && !a.destroyed }

func (a *Actor) newSceneComponent(name string, parent *SceneComponent) *SceneComponent {
	c := &SceneComponent{
		id:    nextComponentId(),
		name:  name,
		owner: a,
	}
	if parent != nil {
		c.AttachTo(parent)
	}
	return c
}

// AddSceneComponent creates a plain scene component attached under parent
// (the root when parent is nil).
func (a *Actor) AddSceneComponent(name string, parent *SceneComponent) *SceneComponent {
	if parent == nil {
		parent = a.root
	}
	return a.newSceneComponent(name, parent)
}

// AddMeshComponent creates a renderable component attached under parent.
func (a *Actor) AddMeshComponent(name string, parent *SceneComponent, mesh *MeshAsset) *SceneComponent {
	c := a.AddSceneComponent(name, parent)
	c.SetMesh(mesh)
	return c
}

// Components returns the lifecycle components attached to the actor.
func (a *Actor) Components() []ActorComponent { return a.components }

// AddComponent attaches a lifecycle component. If the actor is already
// spawned the component is registered immediately.
func (a *Actor) AddComponent(c ActorComponent) {
	a.components = append(a.components, c)
	if a.world != nil {
		c.OnRegister(a)
	}
}

// RemoveComponent destroys and detaches a lifecycle component.
func (a *Actor) RemoveComponent(c ActorComponent) {
	idx := slices.Index(a.components, c)
	if idx < 0 {
		return
	}
	c.OnDestroy()
	a.components = slices.Delete(a.components, idx, idx+1)
}

// Duplicate deep-copies the attachment hierarchy into a new, unspawned actor.
// Lifecycle components implementing Duplicator are copied through it; others are dropped.
func (a *Actor) Duplicate(name string) *Actor {
	dup := &Actor{name: name, OnModified: a.OnModified}
	dup.root = dup.cloneTree(a.root, nil)
	for _, c := range a.components {
		if d, ok := c.(Duplicator); ok {
			dup.components = append(dup.components, d.Duplicate())
		}
	}
	return dup
}

func (a *Actor) cloneTree(src *SceneComponent, parent *SceneComponent) *SceneComponent {
	c := a.newSceneComponent(src.name, parent)
	c.mesh = src.mesh
	c.materials = slices.Clone(src.materials)
	for _, child := range src.children {
		a.cloneTree(child, c)
	}
	return c
}
