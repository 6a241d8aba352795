package graph

// NodeKind enumerates the types of nodes in the design graph.
type NodeKind int

const (
	NodeVolume    NodeKind = iota // solid box of one material
	NodeTransform                 // placement of its children
	NodeGroup                     // logical grouping (module, layer set)
)

func (k NodeKind) String() string {
	switch k {
	case NodeVolume:
		return "volume"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the design graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
