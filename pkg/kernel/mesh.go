package kernel

import "math"

// Mesh is the triangle surface of one detector volume. Arrays are flat:
// three floats per vertex for Vertices and Normals, three indices per
// triangle. Coordinates are in mm in the module frame.
type Mesh struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`

	PartName  string `json:"partName"` // volume name, e.g. "ecal/layer3/active"
	Material  string `json:"material,omitempty"`
	Sensitive bool   `json:"sensitive,omitempty"`
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty reports whether the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Bounds returns the axis-aligned extent of the vertices. An empty mesh
// returns zero bounds.
func (m *Mesh) Bounds() (min, max [3]float64) {
	if m.IsEmpty() {
		return min, max
	}
	for i := 0; i < 3; i++ {
		min[i] = math.Inf(1)
		max[i] = math.Inf(-1)
	}
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		for j := 0; j < 3; j++ {
			v := float64(m.Vertices[i+j])
			min[j] = math.Min(min[j], v)
			max[j] = math.Max(max[j], v)
		}
	}
	return min, max
}

// Stats summarizes a set of meshes.
type Stats struct {
	Meshes    int
	Triangles int
	Sensitive int // meshes of sensitive volumes
	Min, Max  [3]float64
}

// Summarize returns the combined triangle count and extent of meshes.
func Summarize(meshes []*Mesh) Stats {
	var s Stats
	first := true
	for _, m := range meshes {
		s.Meshes++
		s.Triangles += m.TriangleCount()
		if m.Sensitive {
			s.Sensitive++
		}
		if m.IsEmpty() {
			continue
		}
		lo, hi := m.Bounds()
		if first {
			s.Min, s.Max = lo, hi
			first = false
			continue
		}
		for i := 0; i < 3; i++ {
			s.Min[i] = math.Min(s.Min[i], lo[i])
			s.Max[i] = math.Max(s.Max[i], hi[i])
		}
	}
	return s
}
