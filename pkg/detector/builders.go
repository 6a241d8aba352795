package detector

import (
	"fmt"
	"math"

	"github.com/chazu/detgeo/pkg/component"
	"github.com/chazu/detgeo/pkg/graph"
	"github.com/chazu/detgeo/pkg/units"
)

// Compile-time interface checks.
var (
	_ Commander = (*Slab)(nil)
	_ Commander = (*Gap)(nil)
	_ Commander = (*Layered)(nil)
	_ Builder   = (*Slab)(nil)
	_ Builder   = (*Gap)(nil)
	_ Builder   = (*Layered)(nil)
)

// ---------------------------------------------------------------------------
// Slab
// ---------------------------------------------------------------------------

// Slab is a single block of material filling the physical cross section.
type Slab struct {
	component.Sized

	name       string
	Thickness  float64
	Material   graph.MaterialSpec
	Sensitive  bool
	HoleRadius float64
}

// NewSlab returns a slab of the given thickness and material.
func NewSlab(name string, thickness float64, material string) *Slab {
	return &Slab{name: name, Thickness: thickness, Material: graph.MaterialSpec{Name: material}}
}

func (s *Slab) Name() string            { return s.name }
func (s *Slab) Sizer() *component.Sized { return &s.Sized }

// Settings implements Commander.
func (s *Slab) Settings() []Setting {
	return []Setting{
		{
			Name: "thickness", Guidance: "Set the slab thickness along the beam.",
			Category: units.Length,
			Set:      nonNegative("thickness", func(v float64) { s.Thickness = v }),
		},
		{
			Name: "beamHole", Guidance: "Set the radius of the beam hole; 0 for none.",
			Category: units.Length,
			Set:      nonNegative("beamHole", func(v float64) { s.HoleRadius = v }),
		},
	}
}

// Construct places one volume of physical width x physical height x thickness.
func (s *Slab) Construct(a *Assembler) error {
	if s.Thickness <= 0 {
		return fmt.Errorf("%w: slab %s has no thickness", ErrInvalidValue, s.name)
	}
	w, h := s.PhysicalWidth(), s.PhysicalHeight()
	if r := s.HoleRadius; r > 0 && 2*r >= math.Min(w, h) {
		return fmt.Errorf("%w: beam hole radius %s does not fit in %s x %s", ErrInvalidValue,
			units.Format(units.Length, r), units.Format(units.Length, w), units.Format(units.Length, h))
	}
	if _, err := a.Place("", graph.VolumeData{
		Dimensions: graph.Vec3{X: w, Y: h, Z: s.Thickness},
		Material:   s.Material,
		Sensitive:  s.Sensitive,
		HoleRadius: s.HoleRadius,
	}, s.Length()); err != nil {
		return err
	}
	s.AddLength(s.Thickness)
	return nil
}

// ---------------------------------------------------------------------------
// Gap
// ---------------------------------------------------------------------------

// Gap is empty space between components. It takes up length and places
// no volume.
type Gap struct {
	component.Sized

	name      string
	Thickness float64
}

// NewGap returns a gap of the given thickness.
func NewGap(name string, thickness float64) *Gap {
	return &Gap{name: name, Thickness: thickness}
}

func (g *Gap) Name() string            { return g.name }
func (g *Gap) Sizer() *component.Sized { return &g.Sized }

// Settings implements Commander.
func (g *Gap) Settings() []Setting {
	return []Setting{{
		Name: "thickness", Guidance: "Set the gap length along the beam.",
		Category: units.Length,
		Set:      nonNegative("thickness", func(v float64) { g.Thickness = v }),
	}}
}

// Construct only grows the length.
func (g *Gap) Construct(*Assembler) error {
	g.AddLength(g.Thickness)
	return nil
}

// ---------------------------------------------------------------------------
// Layered
// ---------------------------------------------------------------------------

// Layered is a sampling calorimeter: Layers repetitions of an absorber
// plate followed by an active (sensitive) plate.
type Layered struct {
	component.Sized

	name              string
	Layers            int
	AbsorberThickness float64
	ActiveThickness   float64
	Absorber          graph.MaterialSpec
	Active            graph.MaterialSpec
}

// NewLayered returns a calorimeter with the given layer count and plates.
func NewLayered(name string, layers int, absorber, active float64) *Layered {
	return &Layered{
		name:              name,
		Layers:            layers,
		AbsorberThickness: absorber,
		ActiveThickness:   active,
		Absorber:          graph.MaterialSpec{Name: "G4_Pb"},
		Active:            graph.MaterialSpec{Name: "G4_PLASTIC_SC_VINYLTOLUENE"},
	}
}

func (l *Layered) Name() string            { return l.name }
func (l *Layered) Sizer() *component.Sized { return &l.Sized }

// Settings implements Commander.
func (l *Layered) Settings() []Setting {
	return []Setting{
		{
			Name: "layers", Guidance: "Set the number of absorber/active layers.",
			Set: func(v float64) error {
				if v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
					return fmt.Errorf("%w: layers must be a non-negative integer, got %g", ErrInvalidValue, v)
				}
				l.Layers = int(v)
				return nil
			},
		},
		{
			Name: "absorberThickness", Guidance: "Set the absorber plate thickness.",
			Category: units.Length,
			Set:      nonNegative("absorberThickness", func(v float64) { l.AbsorberThickness = v }),
		},
		{
			Name: "activeThickness", Guidance: "Set the active plate thickness.",
			Category: units.Length,
			Set:      nonNegative("activeThickness", func(v float64) { l.ActiveThickness = v }),
		},
	}
}

// Construct places the plates layer by layer. A plate of zero thickness
// is skipped, but still counts as part of its layer.
func (l *Layered) Construct(a *Assembler) error {
	w, h := l.PhysicalWidth(), l.PhysicalHeight()
	for i := 0; i < l.Layers; i++ {
		if t := l.AbsorberThickness; t > 0 {
			if _, err := a.Place(fmt.Sprintf("layer%d/absorber", i), graph.VolumeData{
				Dimensions: graph.Vec3{X: w, Y: h, Z: t},
				Material:   l.Absorber,
			}, l.Length()); err != nil {
				return err
			}
			l.AddLength(t)
		}
		if t := l.ActiveThickness; t > 0 {
			if _, err := a.Place(fmt.Sprintf("layer%d/active", i), graph.VolumeData{
				Dimensions: graph.Vec3{X: w, Y: h, Z: t},
				Material:   l.Active,
				Sensitive:  true,
			}, l.Length()); err != nil {
				return err
			}
			l.AddLength(t)
		}
	}
	return nil
}
