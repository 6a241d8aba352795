package graph

// MaterialSpec names the material a volume is filled with. Advisory only;
// material physics belongs to the simulation toolkit.
type MaterialSpec struct {
	Name    string  `json:"name,omitempty"`    // e.g. "G4_Pb", "G4_PLASTIC_SC_VINYLTOLUENE"
	Density float64 `json:"density,omitempty"` // g/cm3, 0 = toolkit default
}

// VolumeData is a box-shaped volume. Dimensions are full extents, not
// half-lengths: X is width, Y is height, Z is length along the beam.
type VolumeData struct {
	Dimensions Vec3         `json:"dimensions"`
	Material   MaterialSpec `json:"material"`
	Sensitive  bool         `json:"sensitive,omitempty"`   // records hits
	HoleRadius float64      `json:"hole_radius,omitempty"` // beam hole along Z through the centre, 0 = none
}

func (VolumeData) nodeData() {}

// TransformData places its children. Translation is applied to the
// children's local origin.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
}

func (TransformData) nodeData() {}

// GroupData is a detector module. Width and Height are the module's
// physical cross section; every volume placed in it must fit. Zero means
// unbounded.
type GroupData struct {
	Description string  `json:"description,omitempty"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
}

func (GroupData) nodeData() {}
