package simplesurface

import (
	"reflect"
	"time"
)

type Time struct {
	Time time.Time
	Dt   time.Duration
}

type TimeModule struct {
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	if app.hasResource(reflect.TypeFor[Time]()) {
		return
	}
	cmd.AddResources(&Time{
		Time: time.Now(),
		Dt:   0,
	})
	app.UseSystem(System(timeSystem).InStage(Prelude))
}

func timeSystem(cmd *Commands, timeResource *Time) {
	timeResource.Dt = cmd.FrameDelta()
	timeResource.Time = timeResource.Time.Add(timeResource.Dt)
}
