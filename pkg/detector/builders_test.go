package detector

import (
	"errors"
	"strings"
	"testing"

	"github.com/chazu/detgeo/pkg/command"
	"github.com/chazu/detgeo/pkg/graph"
)

func TestSlabSettings(t *testing.T) {
	slab := NewSlab("tail", 100, "G4_Fe")
	dir, m := newTestModule(t, slab)

	apply(t, dir,
		"/det/calo/tail/thickness 25 cm",
		"/det/calo/tail/beamHole 2 cm",
	)
	if slab.Thickness != 250 || slab.HoleRadius != 20 {
		t.Errorf("thickness=%g hole=%g, want 250 and 20", slab.Thickness, slab.HoleRadius)
	}

	g, err := m.Build()
	if err != nil {
		t.Fatal(err)
	}
	v := g.MustLookup("tail").Data.(graph.VolumeData)
	want := graph.VolumeData{
		Dimensions: graph.Vec3{X: 200, Y: 150, Z: 250},
		Material:   graph.MaterialSpec{Name: "G4_Fe"},
		HoleRadius: 20,
	}
	if v != want {
		t.Errorf("volume = %+v, want %+v", v, want)
	}
}

func TestSlabErrors(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{"zero thickness", []string{"/det/calo/s/thickness 0 mm"}},
		{"hole wider than slab", []string{"/det/calo/s/beamHole 75 mm"}},
		{"hole wider than capped slab", []string{"/det/calo/s/maxHeight 3 cm", "/det/calo/s/beamHole 15 mm"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, m := newTestModule(t, NewSlab("s", 10, ""))
			apply(t, dir, tt.lines...)
			if _, err := m.Build(); !errors.Is(err, ErrInvalidValue) {
				t.Errorf("error = %v, want ErrInvalidValue", err)
			}
		})
	}
}

// A slab without a material keeps none in the graph; validation warns.
func TestSlabWithoutMaterial(t *testing.T) {
	_, m := newTestModule(t, NewSlab("s", 10, ""))
	g, err := m.Build()
	if err != nil {
		t.Fatal(err)
	}
	v := g.MustLookup("s").Data.(graph.VolumeData)
	if v.Material.Name != "" {
		t.Errorf("material = %q, want none", v.Material.Name)
	}
	res := graph.ValidateAll(g)
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0].Message, graph.DefaultMaterial) {
		t.Errorf("warnings = %v, want one material warning", res.Warnings)
	}
}

func TestNegativeSettings(t *testing.T) {
	dir, _ := newTestModule(t, NewSlab("s", 10, "G4_Pb"), NewGap("gap", 5), NewLayered("ecal", 1, 1, 1))
	for _, line := range []string{
		"/det/calo/s/thickness -1 mm",
		"/det/calo/s/beamHole -1 mm",
		"/det/calo/gap/thickness -1 mm",
		"/det/calo/ecal/absorberThickness -1 mm",
		"/det/calo/ecal/activeThickness -1 mm",
		"/det/calo/ecal/layers -1",
		"/det/calo/ecal/layers 1.5",
	} {
		if err := dir.Apply(line); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("Apply(%q) error = %v, want ErrInvalidValue", line, err)
		}
	}
}

func TestGap(t *testing.T) {
	gap := NewGap("gap", 5)
	dir, m := newTestModule(t, gap)
	apply(t, dir, "/det/calo/gap/thickness 3 cm")

	g, err := m.Build()
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Volumes()) != 0 {
		t.Errorf("gap placed %d volumes", len(g.Volumes()))
	}
	if gap.Length() != 30 || m.Length() != 30 {
		t.Errorf("lengths gap=%g module=%g, want 30", gap.Length(), m.Length())
	}
}

func TestLayered(t *testing.T) {
	tests := []struct {
		name             string
		lines            []string
		wantVolumes      int
		wantLength       float64
		wantSensitiveAll bool
	}{
		{"defaults", nil, 6, 3 * 7, false},
		{"more layers", []string{"/det/calo/ecal/layers 10"}, 20, 10 * 7, false},
		{"no layers", []string{"/det/calo/ecal/layers 0"}, 0, 0, false},
		{"thicker plates", []string{"/det/calo/ecal/absorberThickness 1 cm", "/det/calo/ecal/activeThickness 4 mm"}, 6, 3 * 14, false},
		{"active only", []string{"/det/calo/ecal/absorberThickness 0 mm"}, 3, 3 * 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ecal := NewLayered("ecal", 3, 2, 5)
			dir, m := newTestModule(t, ecal)
			apply(t, dir, tt.lines...)

			g, err := m.Build()
			if err != nil {
				t.Fatal(err)
			}
			vols := g.Volumes()
			if len(vols) != tt.wantVolumes {
				t.Errorf("volumes = %d, want %d", len(vols), tt.wantVolumes)
			}
			if ecal.Length() != tt.wantLength {
				t.Errorf("length = %g, want %g", ecal.Length(), tt.wantLength)
			}
			sensitive := 0
			for _, v := range vols {
				if v.Data.(graph.VolumeData).Sensitive {
					sensitive++
				}
			}
			if tt.wantSensitiveAll && sensitive != len(vols) {
				t.Errorf("sensitive = %d of %d", sensitive, len(vols))
			}
			if !tt.wantSensitiveAll && sensitive*2 != len(vols) {
				t.Errorf("sensitive = %d of %d, want half", sensitive, len(vols))
			}
		})
	}
}

// Extra settings reach the builder through the messenger chain; the
// sizing commands still reach the Sized.
func TestLayeredChain(t *testing.T) {
	ecal := NewLayered("ecal", 3, 2, 5)
	dir, _ := newTestModule(t, ecal)
	apply(t, dir,
		"/det/calo/ecal/maxWidth 5 cm",
		"/det/calo/ecal/layers 4",
	)
	if ecal.MaximumWidth() != 50 || ecal.Layers != 4 {
		t.Errorf("maxWidth=%g layers=%d, want 50 and 4", ecal.MaximumWidth(), ecal.Layers)
	}

	// layers takes a plain number.
	if err := dir.Apply("/det/calo/ecal/layers 4 cm"); err == nil {
		t.Error("layers accepted a unit")
	}
	// Thicknesses require one.
	if err := dir.Apply("/det/calo/ecal/activeThickness 4"); err == nil {
		t.Error("activeThickness accepted a bare number")
	}
}

func TestSettingTableNotHandled(t *testing.T) {
	table := newSettingTable(NewGap("gap", 1).Settings())
	dir := command.NewDirectory()
	cmd, err := dir.Register(command.Definition{
		Path:      "/det/gap/colour",
		Parameter: command.Parameter{Name: "colour", Type: command.Double},
		Handler:   table,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := table.Dispatch(cmd, "1"); !errors.Is(err, command.ErrNotHandled) {
		t.Errorf("error = %v, want ErrNotHandled", err)
	}
}

func TestAssemblerOffset(t *testing.T) {
	var offsets []float64
	first := &offsetRecorder{name: "first", record: &offsets}
	_, m := newTestModule(t, NewGap("gap", 12), first, NewGap("gap2", 3), &offsetRecorder{name: "second", record: &offsets})
	if _, err := m.Build(); err != nil {
		t.Fatal(err)
	}
	if len(offsets) != 2 || offsets[0] != 12 || offsets[1] != 15 {
		t.Errorf("offsets = %v, want [12 15]", offsets)
	}
}

// offsetRecorder records the offset it is constructed at.
type offsetRecorder struct {
	Gap
	name   string
	record *[]float64
}

func (p *offsetRecorder) Name() string { return p.name }

func (p *offsetRecorder) Construct(a *Assembler) error {
	*p.record = append(*p.record, a.Offset())
	return nil
}
