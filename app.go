package simplesurface

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"time"
)

type systemFn any

type Module interface {
	Install(app *App, cmd *Commands)
}

type App struct {
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
	frameDt   time.Duration
	frame     uint64

	// Command Buffering
	pendingSpawns    []*Actor
	pendingDestroys  []*Actor
	pendingResources []any
}

func NewApp() *App {
	app := &App{
		systems:   make(map[string][]systemFn),
		resources: make(map[reflect.Type]any),
	}
	for _, stage := range defaultStages {
		app.stages = append(app.stages, stage)
		app.systems[stage.Name] = make([]systemFn, 0)
	}
	return app
}

func (app *App) UseModules(modules ...Module) *App {
	cmd := app.Commands()
	for _, module := range modules {
		module.Install(app, cmd)
	}
	app.FlushCommands()
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

func (app *App) Frame() uint64 { return app.frame }

// Step runs every stage once as a single frame of length dt.
func (app *App) Step(dt time.Duration) {
	app.frameDt = dt
	app.callSystems()
	app.frame++
}

// Run steps frames with wall-clock deltas until ctx is done.
func (app *App) Run(ctx context.Context) error {
	app.Logger().Infof("running with %d stages", len(app.stages))
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		now := time.Now()
		app.Step(now.Sub(last))
		last = now
	}
}

func (app *App) callSystems() {
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
		app.FlushCommands()
	}
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// hasResource also sees resources still waiting in the command buffer.
func (app *App) hasResource(resourceType reflect.Type) bool {
	if _, ok := app.resources[resourceType]; ok {
		return true
	}
	for _, r := range app.pendingResources {
		if reflect.TypeOf(r).Elem() == resourceType {
			return true
		}
	}
	return false
}

// Resource returns the resource of type *T, including one still waiting in
// the command buffer.
func Resource[T any](app *App) (*T, bool) {
	if r, ok := app.resources[reflect.TypeFor[T]()]; ok {
		return r.(*T), true
	}
	for _, r := range app.pendingResources {
		if res, ok := r.(*T); ok {
			return res, true
		}
	}
	return nil, false
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			app.unresolvedDependency(systemValue, systemType, argType)
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			app.unresolvedDependency(systemValue, systemType, argType)
		}
	}
	systemValue.Call(args)
}

func (app *App) unresolvedDependency(systemValue reflect.Value, systemType reflect.Type, argType reflect.Type) {
	msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		fmt.Sprint(systemType),
		fmt.Sprint(argType),
	)
	app.Logger().Errorf("%s", msg)
	panic(msg)
}

func (app *App) FlushCommands() {
	if len(app.pendingSpawns) == 0 && len(app.pendingDestroys) == 0 && len(app.pendingResources) == 0 {
		return
	}

	// Resources first so freshly spawned actors can see them
	if len(app.pendingResources) > 0 {
		app.addResources(app.pendingResources...)
		app.pendingResources = app.pendingResources[:0]
	}

	world, ok := Resource[World](app)
	if !ok {
		if len(app.pendingSpawns)+len(app.pendingDestroys) > 0 {
			app.Logger().Warnf("dropping %d actor commands: no World resource", len(app.pendingSpawns)+len(app.pendingDestroys))
		}
		app.pendingSpawns = app.pendingSpawns[:0]
		app.pendingDestroys = app.pendingDestroys[:0]
		return
	}

	// Destroy before spawning so a destroyed actor is not ticked again
	for _, a := range app.pendingDestroys {
		world.Destroy(a)
	}
	app.pendingDestroys = app.pendingDestroys[:0]

	for _, a := range app.pendingSpawns {
		world.Spawn(a)
	}
	app.pendingSpawns = app.pendingSpawns[:0]
}
