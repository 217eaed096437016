package simplesurface

import (
	"slices"
	"time"
)

// ActorComponent is the lifecycle surface the host drives for every component
// attached to a spawned actor. All calls happen on the frame thread.
type ActorComponent interface {
	OnRegister(actor *Actor)
	OnActivate()
	OnDeactivate()
	OnTick(dt time.Duration)
	OnDestroy()
}

// PropertyListener is implemented by components that react to property edits.
type PropertyListener interface {
	OnPropertyChanged(name string)
}

// Duplicator is implemented by components that survive actor duplication.
// The copy must not share transient state with the source.
type Duplicator interface {
	Duplicate() ActorComponent
}

// World owns spawned actors and ticks their components once per frame.
type World struct {
	actors []*Actor
	logger Logger
}

func NewWorld(logger Logger) *World {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &World{logger: logger}
}

func (w *World) Actors() []*Actor { return w.actors }

func (w *World) FindActor(name string) *Actor {
	for _, a := range w.actors {
		if a.name == name {
			return a
		}
	}
	return nil
}

// Spawn adds the actor to the world and registers its components in order.
func (w *World) Spawn(a *Actor) {
	if a == nil || a.world != nil {
		return
	}
	a.world = w
	w.actors = append(w.actors, a)
	w.logger.Debugf("spawned actor %q with %d components", a.name, len(a.components))
	for _, c := range a.components {
		c.OnRegister(a)
	}
}

// Destroy runs OnDestroy for every component, then invalidates the actor's hierarchy.
func (w *World) Destroy(a *Actor) {
	idx := slices.Index(w.actors, a)
	if idx < 0 {
		return
	}
	for _, c := range a.components {
		c.OnDestroy()
	}
	a.components = nil
	a.root.destroySubtree()
	a.destroyed = true
	a.world = nil
	w.actors = slices.Delete(w.actors, idx, idx+1)
	w.logger.Debugf("destroyed actor %q", a.name)
}

func (w *World) Tick(dt time.Duration) {
	for _, a := range w.actors {
		for _, c := range a.components {
			c.OnTick(dt)
		}
	}
}
