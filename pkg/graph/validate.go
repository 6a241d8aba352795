package graph

import "fmt"

// ValidationSeverity indicates whether a finding blocks the build.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks tessellation and export
	SeverityWarning                           // reported only
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID // zero for graph-level findings
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles blocking errors and advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// findings collects validation output for one pass.
type findings []ValidationError

func (f *findings) errorf(id NodeID, format string, args ...any) {
	*f = append(*f, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (f *findings) warnf(id NodeID, format string, args ...any) {
	*f = append(*f, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

// Validate checks that g has the shape a module build produces: root
// groups (modules) whose children are transforms, each transform placing
// exactly one volume, each volume placed once and named uniquely. Nodes
// not reachable from a root are reported as warnings. The layering rules
// also rule out cycles. Validate never mutates g.
func Validate(g *DesignGraph) []ValidationError {
	var f findings
	checkRoots(g, &f)
	checkLayout(g, &f)
	checkNames(g, &f)
	checkReachable(g, &f)
	return f
}

// ValidateAll runs the structural checks of Validate followed by the
// geometry and material checks, and separates errors from warnings.
func ValidateAll(g *DesignGraph) ValidationResult {
	f := findings(Validate(g))
	checkDimensions(g, &f)
	checkModuleFit(g, &f)
	checkStacking(g, &f)
	checkMaterials(g, &f)

	var result ValidationResult
	for _, e := range f {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{NodeID: e.NodeID, Message: e.Message})
			continue
		}
		result.Errors = append(result.Errors, e)
	}
	return result
}

// label names a node for messages.
func label(n *Node) string {
	if n.Name != "" {
		return fmt.Sprintf("%s %q", n.Kind, n.Name)
	}
	return fmt.Sprintf("%s %s", n.Kind, n.ID.Short())
}

func checkRoots(g *DesignGraph, f *findings) {
	for _, rid := range g.Roots {
		n, ok := g.Nodes[rid]
		if !ok {
			f.errorf(ZeroID, "root reference %s does not exist", rid.Short())
			continue
		}
		if n.Kind != NodeGroup {
			f.errorf(rid, "root is a %s, want a module group", n.Kind)
		}
	}
}

// checkLayout enforces group -> transform -> volume and counts how often
// each volume is placed.
func checkLayout(g *DesignGraph, f *findings) {
	placed := make(map[NodeID]int)
	for _, n := range g.Nodes {
		for _, cid := range n.Children {
			if !g.Has(cid) {
				f.errorf(n.ID, "child reference %s does not exist", cid.Short())
			}
		}
		switch n.Kind {
		case NodeGroup:
			for _, c := range g.Children(n) {
				if c.Kind != NodeTransform {
					f.errorf(n.ID, "%s contains %s, want a placement", label(n), label(c))
				}
			}
		case NodeTransform:
			kids := g.Children(n)
			if len(n.Children) != 1 || len(kids) != 1 || kids[0].Kind != NodeVolume {
				f.errorf(n.ID, "placement must hold exactly one volume, has %d children", len(n.Children))
			}
			for _, c := range kids {
				if c.Kind == NodeVolume {
					placed[c.ID]++
				}
			}
			if _, ok := n.Data.(TransformData); !ok {
				f.errorf(n.ID, "placement has %T data", n.Data)
			}
		case NodeVolume:
			if len(n.Children) != 0 {
				f.errorf(n.ID, "%s has children", label(n))
			}
		}
	}
	for id, count := range placed {
		if count > 1 {
			f.errorf(id, "%s is placed %d times", label(g.Nodes[id]), count)
		}
	}
}

// checkNames reports names shared by several nodes and index entries
// pointing nowhere.
func checkNames(g *DesignGraph, f *findings) {
	for name, id := range g.NameIndex {
		if !g.Has(id) {
			f.errorf(ZeroID, "name index entry %q references non-existent node %s", name, id.Short())
		}
	}
	count := make(map[string]int)
	for _, n := range g.Nodes {
		if n.Name != "" {
			count[n.Name]++
		}
	}
	for name, c := range count {
		if c > 1 {
			f.errorf(ZeroID, "duplicate name %q assigned to %d nodes", name, c)
		}
	}
}

// checkReachable warns about nodes no root leads to.
func checkReachable(g *DesignGraph, f *findings) {
	seen := make(map[NodeID]bool)
	var queue []NodeID
	for _, rid := range g.Roots {
		if g.Has(rid) && !seen[rid] {
			seen[rid] = true
			queue = append(queue, rid)
		}
	}
	for len(queue) > 0 {
		n := g.Nodes[queue[0]]
		queue = queue[1:]
		for _, c := range g.Children(n) {
			if !seen[c.ID] {
				seen[c.ID] = true
				queue = append(queue, c.ID)
			}
		}
	}
	for id, n := range g.Nodes {
		if !seen[id] {
			f.warnf(id, "%s is not reachable from any module (orphan)", label(n))
		}
	}
}
