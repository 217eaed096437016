package simplesurface

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedConfig = errors.New("unsupported config format")

type LoggingConfig struct {
	Prefix string `toml:"prefix" yaml:"prefix"`
	Debug  bool   `toml:"debug" yaml:"debug"`
}

type OverrideConfig struct {
	// PollIntervalMs throttles drift detection. Zero checks every frame.
	PollIntervalMs int    `toml:"poll_interval_ms" yaml:"poll_interval_ms"`
	BaseMaterial   string `toml:"base_material" yaml:"base_material"`
}

type StoreConfig struct {
	// Path of the sqlite ledger store. Empty disables persistence.
	Path string `toml:"path" yaml:"path"`
}

// Config holds everything the simple surface module reads at install time.
type Config struct {
	Logging  LoggingConfig     `toml:"logging" yaml:"logging"`
	Override OverrideConfig    `toml:"override" yaml:"override"`
	Surface  SurfaceParameters `toml:"surface" yaml:"surface"`
	Store    StoreConfig       `toml:"store" yaml:"store"`
	// WatchFile is a parameter file reloaded on change. Empty disables watching.
	WatchFile string `toml:"watch_file" yaml:"watch_file"`
}

func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Prefix: "simplesurface",
		},
		Override: OverrideConfig{
			PollIntervalMs: 0,
			BaseMaterial:   "MI_SimpleSurface",
		},
		Surface: DefaultSurfaceParameters(),
	}
}

// LoadConfig reads a TOML or YAML file, chosen by extension, over DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := decodeByExt(path, data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func decodeByExt(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, v)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedConfig, filepath.Ext(path))
}

func (c *Config) Validate() error {
	if c.Override.PollIntervalMs < 0 {
		return fmt.Errorf("override.poll_interval_ms must be >= 0")
	}
	if c.Override.BaseMaterial == "" {
		return fmt.Errorf("override.base_material is required")
	}
	c.Surface = c.Surface.Clamp()
	return nil
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Override.PollIntervalMs) * time.Millisecond
}
