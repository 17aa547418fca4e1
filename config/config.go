// Package config loads the YAML settings shared by the binaries.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/tileworlds/collision"
	"github.com/milk9111/tileworlds/common"
)

type Config struct {
	TileSize int `yaml:"tile_size"`
	// PhysicsScale is physics units per tile. Zero means TileSize.
	PhysicsScale     float64 `yaml:"physics_scale"`
	MapsDir          string  `yaml:"maps_dir"`
	RootMap          string  `yaml:"root_map"`
	Tileset          string  `yaml:"tileset"`
	TilesetColumns   int     `yaml:"tileset_columns"`
	BorderPadding    float64 `yaml:"border_padding"`
	TimeStep         float64 `yaml:"time_step"`
	SolverIterations int     `yaml:"solver_iterations"`
	GravityY         float64 `yaml:"gravity_y"`
	MetricsAddr      string  `yaml:"metrics_addr"`
	Watch            bool    `yaml:"watch"`
}

func Default() Config {
	c := Config{}
	c.applyDefaults()
	return c
}

// Load reads path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.TileSize == 0 {
		c.TileSize = common.TileSize
	}
	if c.PhysicsScale == 0 {
		c.PhysicsScale = float64(c.TileSize)
	}
	if c.RootMap == "" {
		c.RootMap = "outside"
	}
	if c.TilesetColumns == 0 {
		c.TilesetColumns = 8
	}
	if c.BorderPadding == 0 {
		c.BorderPadding = 1
	}
	if c.TimeStep == 0 {
		c.TimeStep = common.DefaultTimeStep
	}
	if c.SolverIterations == 0 {
		c.SolverIterations = common.DefaultSolverIterations
	}
}

func (c Config) Validate() error {
	switch {
	case c.TileSize < 0:
		return fmt.Errorf("config: tile_size must be positive, got %d", c.TileSize)
	case c.PhysicsScale < 0:
		return fmt.Errorf("config: physics_scale must be positive, got %g", c.PhysicsScale)
	case c.TilesetColumns < 0:
		return fmt.Errorf("config: tileset_columns must be positive, got %d", c.TilesetColumns)
	case c.BorderPadding < 0:
		return fmt.Errorf("config: border_padding must be positive, got %g", c.BorderPadding)
	case c.TimeStep < 0:
		return fmt.Errorf("config: time_step must be positive, got %g", c.TimeStep)
	case c.SolverIterations < 0:
		return fmt.Errorf("config: solver_iterations must be positive, got %d", c.SolverIterations)
	}
	return nil
}

// Physics returns the per-world physics options.
func (c Config) Physics() collision.Options {
	return collision.Options{
		Scale:      c.PhysicsScale,
		Iterations: c.SolverIterations,
		GravityY:   c.GravityY,
	}
}
