package simplesurface

import "testing"

type MockModule struct {
	installed bool
}

func (m *MockModule) Install(app *App, commands *Commands) {
	m.installed = true
}

type MockModule2 struct {
	installed bool
}

func (m *MockModule2) Install(app *App, commands *Commands) {
	m.installed = true
}

func TestAppBuilder_DefaultStages(t *testing.T) {
	app := NewAppBuilder().Build()

	if len(app.stages) != len(defaultStages) {
		t.Errorf("Expected %d stages, got %d", len(defaultStages), len(app.stages))
	}
	for _, stage := range defaultStages {
		if _, ok := app.systems[stage.Name]; !ok {
			t.Errorf("Expected stage %s to be registered", stage.Name)
		}
	}
}

func TestAppBuilder_UseModule(t *testing.T) {
	builder := NewAppBuilder()
	mockModule := &MockModule{}
	builder.UseModule(mockModule)

	if len(builder.modules) != 1 {
		t.Errorf("Expected modules to contain 1 module, got %v", len(builder.modules))
	}
	if mockModule.installed {
		t.Errorf("Module should not be installed before Build")
	}
}

func TestAppBuilder_Build(t *testing.T) {
	mockModule := &MockModule{}
	mockModule2 := &MockModule2{}

	NewAppBuilder().UseModule(mockModule, mockModule2).Build()

	if !mockModule.installed {
		t.Errorf("Expected mockModule to be installed")
	}
	if !mockModule2.installed {
		t.Errorf("Expected mockModule2 to be installed")
	}
}
