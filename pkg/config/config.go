// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/chazu/detgeo/pkg/units"
)

// Config holds the settings shared by the CLI and the App.
type Config struct {
	// Prefix is the command directory under which modules register.
	Prefix string `env:"DETGEO_PREFIX" envDefault:"/det"`
	// Module names the demo detector module.
	Module string `env:"DETGEO_MODULE" envDefault:"calo"`
	// Width and Height are the module's initial extents, e.g. "1 m".
	Width  string `env:"DETGEO_WIDTH" envDefault:"1 m"`
	Height string `env:"DETGEO_HEIGHT" envDefault:"1 m"`
	// MeshCells is the marching cubes resolution of the geometry kernel.
	MeshCells int `env:"DETGEO_MESH_CELLS" envDefault:"64"`
	// EvalTimeout bounds a single macro run.
	EvalTimeout time.Duration `env:"DETGEO_EVAL_TIMEOUT" envDefault:"5s"`
	// Mesh enables tessellation after a build.
	Mesh bool `env:"DETGEO_MESH" envDefault:"false"`
	// Verbose logs per-component dimensions.
	Verbose bool `env:"DETGEO_VERBOSE" envDefault:"false"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ModuleSize returns Width and Height in internal units.
func (c Config) ModuleSize() (w, h float64, err error) {
	w, err = units.Parse(units.Length, c.Width)
	if err != nil {
		return 0, 0, fmt.Errorf("DETGEO_WIDTH: %w", err)
	}
	h, err = units.Parse(units.Length, c.Height)
	if err != nil {
		return 0, 0, fmt.Errorf("DETGEO_HEIGHT: %w", err)
	}
	return w, h, nil
}
