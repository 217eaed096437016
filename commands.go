package simplesurface

import "time"

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.pendingResources = append(cmd.app.pendingResources, resources...)
	return cmd
}

func (cmd *Commands) SpawnActor(actor *Actor) *Actor {
	cmd.app.pendingSpawns = append(cmd.app.pendingSpawns, actor)
	return actor
}

func (cmd *Commands) DestroyActor(actor *Actor) {
	cmd.app.pendingDestroys = append(cmd.app.pendingDestroys, actor)
}

// DuplicateActor queues a copy of actor for spawning and returns it.
func (cmd *Commands) DuplicateActor(actor *Actor, name string) *Actor {
	return cmd.SpawnActor(actor.Duplicate(name))
}

func (cmd *Commands) FrameDelta() time.Duration {
	return cmd.app.frameDt
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}
