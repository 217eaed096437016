package simplesurface

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// SimpleSurface is the resource the module installs. It hands out components
// configured from Config and owns the optional store and watcher.
type SimpleSurface struct {
	Config  Config
	Base    *MaterialAsset
	Store   *LedgerStore
	Watcher *ParameterWatcher

	assets *AssetServer
	logger Logger
}

// NewComponent returns a component preset with the configured parameters and
// poll interval.
func (s *SimpleSurface) NewComponent() *SimpleSurfaceComponent {
	c := NewSimpleSurfaceComponent(s.assets, s.Base, s.logger)
	c.PollInterval = s.Config.PollInterval()
	c.params = s.Config.Surface.Clamp()
	return c
}

func surfacesOf(actor *Actor) []*SimpleSurfaceComponent {
	var out []*SimpleSurfaceComponent
	for _, c := range actor.components {
		if surface, ok := c.(*SimpleSurfaceComponent); ok {
			out = append(out, surface)
		}
	}
	return out
}

// SaveLedger persists the records of actor's first simple surface component
// under the actor's name.
func (s *SimpleSurface) SaveLedger(ctx context.Context, actor *Actor) error {
	if s.Store == nil {
		return nil
	}
	surfaces := surfacesOf(actor)
	if len(surfaces) == 0 {
		return nil
	}
	return s.Store.Save(ctx, actor.name, surfaces[0].Records())
}

// LoadLedger reads stored records into actor's first simple surface component.
// It reports whether anything was found.
func (s *SimpleSurface) LoadLedger(ctx context.Context, actor *Actor) (bool, error) {
	if s.Store == nil {
		return false, nil
	}
	surfaces := surfacesOf(actor)
	if len(surfaces) == 0 {
		return false, nil
	}
	records, err := s.Store.Load(ctx, actor.name)
	if err != nil {
		return false, err
	}
	if len(records) == 0 {
		return false, nil
	}
	surfaces[0].LoadRecords(records)
	return true, nil
}

func (s *SimpleSurface) Close() error {
	var errs []error
	if s.Watcher != nil {
		errs = append(errs, s.Watcher.Close())
		s.Watcher = nil
	}
	if s.Store != nil {
		errs = append(errs, s.Store.Close())
		s.Store = nil
	}
	return errors.Join(errs...)
}

type SimpleSurfaceModule struct {
	// Config defaults to DefaultConfig when nil.
	Config *Config
}

func (mod SimpleSurfaceModule) Install(app *App, cmd *Commands) {
	cfg := mod.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("simple surface config: %v", err))
	}

	if _, isNop := app.Logger().(*nopLogger); isNop {
		LoggingModule{Prefix: cfg.Logging.Prefix, Debug: cfg.Logging.Debug}.Install(app, cmd)
	}
	logger := app.Logger()

	AssetServerModule{}.Install(app, cmd)
	assets, _ := Resource[AssetServer](app)

	base, ok := assets.FindMaterial(cfg.Override.BaseMaterial)
	if !ok {
		base = assets.CreateMaterial(cfg.Override.BaseMaterial, "SimpleSurface")
	}

	surface := &SimpleSurface{
		Config: *cfg,
		Base:   base,
		assets: assets,
		logger: logger,
	}

	if cfg.Store.Path != "" {
		store, err := OpenLedgerStore(cfg.Store.Path)
		if err != nil {
			logger.Errorf("simple surface: ledger store disabled: %v", err)
		} else {
			surface.Store = store
		}
	}
	if cfg.WatchFile != "" {
		watcher, err := NewParameterWatcher(cfg.WatchFile, logger)
		if err != nil {
			logger.Errorf("simple surface: parameter watching disabled: %v", err)
		} else {
			surface.Watcher = watcher
		}
	}

	if !app.hasResource(reflect.TypeFor[World]()) {
		app.addResources(NewWorld(logger))
	}
	app.addResources(surface)
	TimeModule{}.Install(app, cmd)

	app.UseSystem(
		System(parameterWatchSystem).
			InStage(PreUpdate),
	)
	app.UseSystem(
		System(worldTickSystem).
			InStage(Update),
	)
}

// parameterWatchSystem pushes reloaded parameters into every simple surface
// component in the world.
func parameterWatchSystem(surface *SimpleSurface, world *World) {
	if surface.Watcher == nil {
		return
	}
	params, ok := surface.Watcher.Pending()
	if !ok {
		return
	}
	surface.Config.Surface = params
	n := 0
	for _, a := range world.actors {
		for _, c := range surfacesOf(a) {
			c.SetParameters(params)
			n++
		}
	}
	surface.logger.Infof("simple surface: reloaded parameters from %s into %d components", surface.Watcher.Path(), n)
}

func worldTickSystem(world *World, t *Time) {
	world.Tick(t.Dt)
}
