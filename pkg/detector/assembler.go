package detector

import (
	"fmt"

	"github.com/chazu/detgeo/pkg/graph"
)

// Assembler records the volumes of one component into the design graph.
// Z positions passed to Place are local to the component; the assembler
// adds the component's offset inside the module.
type Assembler struct {
	g          *graph.DesignGraph
	module     string
	component  string
	offset     float64
	placements *[]graph.NodeID
}

// Place adds a volume centred on the beam axis with its upstream face at
// local z. An empty name uses the component name alone. Placing two
// volumes under the same name is an error. A volume without a material
// is left that way; validation reports it.
func (a *Assembler) Place(name string, data graph.VolumeData, z float64) (graph.NodeID, error) {
	full := a.component
	if name != "" {
		full = a.component + "/" + name
	}

	volID := graph.NewNodeID(a.module + "/" + full)
	placeID := graph.NewNodeID(a.module + "/place/" + full)
	if a.g.Has(volID) || a.g.Has(placeID) {
		return graph.ZeroID, fmt.Errorf("%w: volume %q placed twice", ErrDuplicateVolume, full)
	}
	a.g.AddNode(&graph.Node{
		ID:   volID,
		Kind: graph.NodeVolume,
		Name: full,
		Data: data,
	})

	at := graph.Vec3{
		X: -data.Dimensions.X / 2,
		Y: -data.Dimensions.Y / 2,
		Z: a.offset + z,
	}
	a.g.AddNode(&graph.Node{
		ID:       placeID,
		Kind:     graph.NodeTransform,
		Children: []graph.NodeID{volID},
		Data:     graph.TransformData{Translation: &at},
	})
	*a.placements = append(*a.placements, placeID)
	return volID, nil
}

// Offset returns the module Z position of the component's upstream face.
func (a *Assembler) Offset() float64 { return a.offset }
