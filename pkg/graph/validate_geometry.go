package graph

import (
	"math"
	"sort"

	"github.com/chazu/detgeo/pkg/units"
)

// tolerance absorbs rounding in sums of layer thicknesses.
const tolerance = 1e-9

func mm(v float64) string { return units.Format(units.Length, v) }

// checkDimensions requires positive extents on every axis and a beam
// hole that leaves material on all sides. A zero extent usually means the
// module never handed the component an available size.
func checkDimensions(g *DesignGraph, f *findings) {
	for _, n := range g.Nodes {
		vd, ok := n.Data.(VolumeData)
		if !ok {
			continue
		}
		d := vd.Dimensions
		for _, axis := range []struct {
			name string
			v    float64
		}{{"X", d.X}, {"Y", d.Y}, {"Z", d.Z}} {
			if axis.v <= 0 {
				f.errorf(n.ID, "volume %q dimension %s is %s, must be positive", n.Name, axis.name, mm(axis.v))
			}
		}
		if r := vd.HoleRadius; r < 0 || (r > 0 && 2*r >= math.Min(d.X, d.Y)) {
			f.errorf(n.ID, "volume %q beam hole radius %s does not fit %s x %s", n.Name, mm(r), mm(d.X), mm(d.Y))
		}
	}
}

// placement is a volume with its position inside a module.
type placement struct {
	vol *Node
	at  Vec3
	dim Vec3
}

// placements returns the placed volumes of a module group ordered by Z.
func placements(g *DesignGraph, group *Node) []placement {
	var out []placement
	for _, t := range g.Children(group) {
		td, ok := t.Data.(TransformData)
		if !ok || t.Kind != NodeTransform {
			continue
		}
		var at Vec3
		if td.Translation != nil {
			at = *td.Translation
		}
		for _, v := range g.Children(t) {
			if vd, ok := v.Data.(VolumeData); ok {
				out = append(out, placement{vol: v, at: at, dim: vd.Dimensions})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].at.Z < out[j].at.Z })
	return out
}

// checkModuleFit requires every volume of a bounded module to lie inside
// the module's physical cross section, centred on the beam axis.
func checkModuleFit(g *DesignGraph, f *findings) {
	for _, n := range g.Nodes {
		gd, ok := n.Data.(GroupData)
		if !ok || n.Kind != NodeGroup {
			continue
		}
		for _, p := range placements(g, n) {
			if gd.Width > 0 && p.dim.X > gd.Width+tolerance {
				f.errorf(p.vol.ID, "volume %q is %s wide, module %q is %s", p.vol.Name, mm(p.dim.X), n.Name, mm(gd.Width))
			}
			if gd.Height > 0 && p.dim.Y > gd.Height+tolerance {
				f.errorf(p.vol.ID, "volume %q is %s high, module %q is %s", p.vol.Name, mm(p.dim.Y), n.Name, mm(gd.Height))
			}
			if math.Abs(p.at.X+p.dim.X/2) > tolerance || math.Abs(p.at.Y+p.dim.Y/2) > tolerance {
				f.errorf(p.vol.ID, "volume %q is not centred on the beam axis", p.vol.Name)
			}
		}
	}
}

// checkStacking reports volumes of one module that overlap along the beam.
func checkStacking(g *DesignGraph, f *findings) {
	for _, n := range g.Nodes {
		if n.Kind != NodeGroup {
			continue
		}
		ps := placements(g, n)
		for i := 1; i < len(ps); i++ {
			prev, cur := ps[i-1], ps[i]
			if end := prev.at.Z + prev.dim.Z; cur.at.Z < end-tolerance {
				f.errorf(cur.vol.ID, "volume %q starts at z=%s inside %q, which ends at z=%s",
					cur.vol.Name, mm(cur.at.Z), prev.vol.Name, mm(end))
			}
		}
	}
}

// checkMaterials warns about volumes built without a material. They are
// filled with the graph default when meshed or exported.
func checkMaterials(g *DesignGraph, f *findings) {
	for _, n := range g.Nodes {
		vd, ok := n.Data.(VolumeData)
		if !ok {
			continue
		}
		if vd.Material.Name == "" {
			f.warnf(n.ID, "volume %q has no material; %s will be used", n.Name, g.Defaults.Material.Name)
		}
	}
}
