package kernel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// plate returns a mesh with two triangles spanning the given corners.
func plate(name string, lo, hi [3]float32, sensitive bool) *Mesh {
	return &Mesh{
		Vertices: []float32{
			lo[0], lo[1], lo[2],
			hi[0], lo[1], lo[2],
			hi[0], hi[1], hi[2],
			lo[0], hi[1], hi[2],
		},
		Indices:   []uint32{0, 1, 2, 2, 3, 0},
		PartName:  name,
		Sensitive: sensitive,
	}
}

func TestMeshBounds(t *testing.T) {
	tests := []struct {
		name             string
		mesh             *Mesh
		wantMin, wantMax [3]float64
	}{
		{"empty", &Mesh{}, [3]float64{}, [3]float64{}},
		{"plate", plate("abs", [3]float32{-100, -75, 25}, [3]float32{100, 75, 27}, false),
			[3]float64{-100, -75, 25}, [3]float64{100, 75, 27}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := tt.mesh.Bounds()
			if lo != tt.wantMin || hi != tt.wantMax {
				t.Errorf("Bounds() = %v, %v, want %v, %v", lo, hi, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestMeshCounts(t *testing.T) {
	m := plate("abs", [3]float32{}, [3]float32{1, 1, 1}, false)
	if m.TriangleCount() != 2 {
		t.Errorf("TriangleCount() = %d, want 2", m.TriangleCount())
	}
	if m.IsEmpty() {
		t.Error("IsEmpty() = true for a plate")
	}
	if !(&Mesh{}).IsEmpty() {
		t.Error("IsEmpty() = false for an empty mesh")
	}
}

// A stack of plates along the beam: the summary spans all of them.
func TestSummarize(t *testing.T) {
	meshes := []*Mesh{
		plate("ecal/layer0/absorber", [3]float32{-100, -75, 0}, [3]float32{100, 75, 2}, false),
		plate("ecal/layer0/active", [3]float32{-100, -75, 2}, [3]float32{100, 75, 7}, true),
		{PartName: "empty"},
		plate("tail", [3]float32{-50, -50, 7}, [3]float32{50, 50, 107}, false),
	}
	want := Stats{
		Meshes:    4,
		Triangles: 6,
		Sensitive: 1,
		Min:       [3]float64{-100, -75, 0},
		Max:       [3]float64{100, 75, 107},
	}
	if diff := cmp.Diff(want, Summarize(meshes)); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Stats{}, Summarize(nil)); diff != "" {
		t.Errorf("Summarize(nil) mismatch (-want +got):\n%s", diff)
	}
}
