package main

import (
	"fmt"
	"log"

	"github.com/chazu/detgeo/pkg/command"
	"github.com/chazu/detgeo/pkg/config"
	"github.com/chazu/detgeo/pkg/detector"
	"github.com/chazu/detgeo/pkg/engine"
	"github.com/chazu/detgeo/pkg/graph"
	"github.com/chazu/detgeo/pkg/kernel"
	"github.com/chazu/detgeo/pkg/kernel/sdfx"
	"github.com/chazu/detgeo/pkg/tessellate"
	"github.com/chazu/detgeo/pkg/units"
)

// colorPalette is a default palette used to assign distinct colors to volumes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App owns one detector module, the command directory that configures it,
// the macro engine and the geometry kernel.
type App struct {
	cfg    config.Config
	dir    *command.Directory
	engine *engine.Engine
	kernel kernel.Kernel
	module *detector.Module
}

// MeshData is the JSON-serializable mesh format.
type MeshData struct {
	Vertices  []float32 `json:"vertices"`
	Normals   []float32 `json:"normals"`
	Indices   []uint32  `json:"indices"`
	PartName  string    `json:"partName"`
	Material  string    `json:"material"`
	Sensitive bool      `json:"sensitive"`
	Color     string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of running a macro and building the module.
type EvalResult struct {
	Components []detector.ComponentSummary `json:"components"`
	Volumes    int                         `json:"volumes"`
	Meshes     []MeshData                  `json:"meshes"`
	Stats      kernel.Stats                `json:"stats"`
	Errors     []EvalErrorData             `json:"errors"`
	Warnings   []EvalErrorData             `json:"warnings"`
}

// NewApp creates an App with the demo calorimeter registered under
// cfg.Prefix/cfg.Module.
func NewApp(cfg config.Config) (*App, error) {
	w, h, err := cfg.ModuleSize()
	if err != nil {
		return nil, err
	}

	dir := command.NewDirectory()
	mod, err := detector.NewModule(dir, cfg.Prefix, cfg.Module)
	if err != nil {
		return nil, err
	}
	mod.SetWidth(w)
	mod.SetHeight(h)

	pre := detector.NewSlab("preshower", 5*units.MM, "G4_Pb")
	pre.Sensitive = true
	tail := detector.NewSlab("tail", 10*units.CM, "G4_Fe")
	for _, b := range []detector.Builder{
		pre,
		detector.NewGap("gap", 2*units.CM),
		detector.NewLayered("ecal", 10, 2*units.MM, 5*units.MM),
		tail,
	} {
		if err := mod.Add(b); err != nil {
			mod.Close()
			return nil, err
		}
	}

	eng := engine.NewEngine(dir)
	eng.SetTimeout(cfg.EvalTimeout)

	return &App{
		cfg:    cfg,
		dir:    dir,
		engine: eng,
		kernel: sdfx.NewWithCells(cfg.MeshCells),
		module: mod,
	}, nil
}

// Close releases every registered command.
func (a *App) Close() {
	a.engine.Do(func(*command.Directory) error {
		a.module.Close()
		return nil
	})
}

// Apply runs one command line such as "/det/calo/width 40 cm".
func (a *App) Apply(line string) error {
	return a.engine.Apply(line)
}

// Evaluate runs a macro, then builds, validates and (when meshing is
// enabled) tessellates the module. Commands applied by earlier calls stay
// in effect.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Components: []detector.ComponentSummary{},
		Meshes:     []MeshData{},
		Errors:     []EvalErrorData{},
		Warnings:   []EvalErrorData{},
	}

	// Step 1: Run the macro against the command directory.
	evalErrs, err := a.engine.Run(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 2: Build the module into a design graph.
	// Components are only read under the engine's lock, so a timed-out
	// macro still winding down cannot change them mid-build.
	var g *graph.DesignGraph
	err = a.engine.Do(func(*command.Directory) error {
		var err error
		if g, err = a.module.Build(); err != nil {
			return err
		}
		result.Components = a.module.Summaries()
		return nil
	})
	if err != nil {
		log.Printf("Build error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "build failed: " + err.Error()})
		return result
	}
	result.Volumes = len(g.Volumes())

	// Step 3: Validate. Errors stop the pipeline; warnings are reported.
	vr := graph.ValidateAll(g)
	for _, w := range vr.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Message})
	}
	if len(vr.Errors) > 0 {
		for _, e := range vr.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Message: e.Error()})
		}
		return result
	}

	if !a.cfg.Mesh {
		return result
	}

	// Step 4: Tessellate the design graph into triangle meshes.
	meshes, err := tessellate.Tessellate(g, a.kernel)
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices:  m.Vertices,
			Normals:   m.Normals,
			Indices:   m.Indices,
			PartName:  m.PartName,
			Material:  m.Material,
			Sensitive: m.Sensitive,
			Color:     colorPalette[i%len(colorPalette)],
		})
	}
	result.Stats = kernel.Summarize(meshes)

	return result
}

// Commands lists the registered command paths with their guidance.
func (a *App) Commands() []string {
	var out []string
	a.engine.Do(func(dir *command.Directory) error {
		for _, p := range dir.List("") {
			cmd, _ := dir.Lookup(p)
			param := cmd.Parameter()
			out = append(out, fmt.Sprintf("%-40s %-16s %s", p, param.Type, cmd.Guidance()))
		}
		return nil
	})
	return out
}

// History returns the commands applied so far, from -c lines and macros
// alike, as a macro that rebuilds the same configuration.
func (a *App) History() string {
	return engine.Record(a.engine.History())
}
