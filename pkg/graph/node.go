package graph

import (
	"crypto/sha256"
	"encoding/hex"
)

// NodeID is a content-addressed identifier for graph nodes.
type NodeID string

// ZeroID is the empty node ID.
const ZeroID NodeID = ""

// NewNodeID derives an ID from a logical path such as "sphere/3".
func NewNodeID(path string) NodeID {
	sum := sha256.Sum256([]byte(path))
	return NodeID(hex.EncodeToString(sum[:]))
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

// Short returns the first 12 hex characters, for messages.
func (id NodeID) Short() string {
	if len(id) > 12 {
		return string(id[:12])
	}
	return string(id)
}

func (id NodeID) String() string {
	return string(id)
}

// NodeKind enumerates the types of nodes in the scene graph.
type NodeKind int

const (
	NodeSphere       NodeKind = iota // sphere at the origin
	NodePlane                        // half-space boundary
	NodeCone                         // unit 45° cone
	NodeTransform                    // affine placement of one child
	NodeIntersection                 // boolean AND of children
	NodeInverse                      // complement of one child
	NodeMaterial                     // shading description
	NodeLight                        // point light
)

func (k NodeKind) String() string {
	switch k {
	case NodeSphere:
		return "sphere"
	case NodePlane:
		return "plane"
	case NodeCone:
		return "cone"
	case NodeTransform:
		return "transform"
	case NodeIntersection:
		return "intersection"
	case NodeInverse:
		return "inverse"
	case NodeMaterial:
		return "material"
	case NodeLight:
		return "light"
	default:
		return "unknown"
	}
}

// IsSurface reports whether nodes of this kind can be rendered.
func (k NodeKind) IsSurface() bool {
	return k >= NodeSphere && k <= NodeInverse
}

// Node is the fundamental element of the scene graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	// Material optionally references a NodeMaterial node.
	Material NodeID   `json:"material,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// Label returns the name if set, otherwise the short ID.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}
