package simplesurface

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := newDefaultLoggerTo(&buf, "test", false)

	logger.Debugf("hidden %d", 1)
	logger.Infof("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden 1")
	assert.Contains(t, buf.String(), "shown 2")
	assert.Contains(t, buf.String(), "test")

	logger.SetDebug(true)
	assert.True(t, logger.DebugEnabled())
	logger.Debugf("now visible")
	logger.Warnf("careful")
	logger.Errorf("broken")
	assert.Contains(t, buf.String(), "now visible")
	assert.Contains(t, buf.String(), "careful")
	assert.Contains(t, buf.String(), "broken")
}

func TestApp_LoggerFallsBackToNop(t *testing.T) {
	var app *App
	assert.NotNil(t, app.Logger())

	app = NewApp()
	assert.False(t, app.Logger().DebugEnabled())

	app.UseModules(LoggingModule{Prefix: "p", Debug: true})
	assert.True(t, app.Logger().DebugEnabled())
}
