// Package tessellate walks a design graph and produces triangle meshes
// using a geometry kernel. One mesh is produced per volume.
package tessellate

import (
	"fmt"

	"github.com/chazu/detgeo/pkg/graph"
	"github.com/chazu/detgeo/pkg/kernel"
)

// transformStack accumulates placements during graph traversal.
type transformStack struct {
	translations []graph.Vec3
}

func newTransformStack() *transformStack {
	return &transformStack{}
}

func (ts *transformStack) push(v graph.Vec3) {
	ts.translations = append(ts.translations, v)
}

func (ts *transformStack) pop() {
	if len(ts.translations) > 0 {
		ts.translations = ts.translations[:len(ts.translations)-1]
	}
}

// accumulated returns the sum of all translations on the stack.
func (ts *transformStack) accumulated() graph.Vec3 {
	var sum graph.Vec3
	for _, t := range ts.translations {
		sum = sum.Add(t)
	}
	return sum
}

// Tessellate walks the design graph and produces one triangle mesh per
// volume using the provided geometry kernel. The tessellator is read-only
// and never mutates the graph.
func Tessellate(g *graph.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	ts := newTransformStack()

	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := walkNode(g, k, root, ts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
		meshes = append(meshes, collected...)
	}

	return meshes, nil
}

// walkNode recursively traverses a node and its children, collecting meshes.
func walkNode(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	switch n.Kind {
	case graph.NodeVolume:
		return handleVolume(g, k, n, ts)

	case graph.NodeTransform:
		return handleTransform(g, k, n, ts)

	case graph.NodeGroup:
		return handleGroup(g, k, n, ts)

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// handleVolume creates geometry for a volume node. Volumes without a
// material get the graph default.
func handleVolume(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	data, ok := n.Data.(graph.VolumeData)
	if !ok {
		return nil, fmt.Errorf("volume node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
	d := data.Dimensions
	solid := k.Box(d.X, d.Y, d.Z)

	if data.HoleRadius > 0 {
		// Overshoot the hole past both faces so no skin is left behind.
		hole := k.Translate(k.Cylinder(d.Z+2, data.HoleRadius), d.X/2, d.Y/2, d.Z/2)
		solid = k.Difference(solid, hole)
	}

	if trans := ts.accumulated(); !trans.IsZero() {
		solid = k.Translate(solid, trans.X, trans.Y, trans.Z)
	}

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for node %s: %w", n.ID.Short(), err)
	}

	// Prefer the node's Name, fall back to short ID.
	if n.Name != "" {
		mesh.PartName = n.Name
	} else {
		mesh.PartName = n.ID.Short()
	}
	mesh.Material = data.Material.Name
	if mesh.Material == "" {
		mesh.Material = g.Defaults.Material.Name
	}
	mesh.Sensitive = data.Sensitive

	return []*kernel.Mesh{mesh}, nil
}

// handleTransform pushes the transform, recurses into children, then pops.
func handleTransform(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}

	translation := graph.Vec3{}
	if td.Translation != nil {
		translation = *td.Translation
	}
	ts.push(translation)
	defer ts.pop()

	var meshes []*kernel.Mesh
	for _, child := range g.Children(n) {
		collected, err := walkNode(g, k, child, ts)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

// handleGroup recurses into children transparently.
func handleGroup(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	for _, child := range g.Children(n) {
		collected, err := walkNode(g, k, child, ts)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}
