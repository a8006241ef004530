package graph

import (
	"fmt"

	"github.com/chazu/csgray/pkg/vecmath"
)

// DefaultSeed seeds the noise field when a script does not choose one.
const DefaultSeed = 1

// CameraSettings places the camera. Aspect is vertical over horizontal
// field of view.
type CameraSettings struct {
	Origin  vecmath.Vec3 `json:"origin"`
	Focus   vecmath.Vec3 `json:"focus"`
	Up      vecmath.Vec3 `json:"up"`
	TanFovX float64      `json:"tan_fov_x"`
	Aspect  float64      `json:"aspect"`
}

// Settings contains scene-wide values.
type Settings struct {
	Camera     CameraSettings `json:"camera"`
	Ambient    vecmath.Vec3   `json:"ambient"`
	Background vecmath.Vec3   `json:"background"`
	Seed       int64          `json:"seed"`
}

// DefaultSettings returns a camera four units up +Z looking at the origin,
// 0.2 gray ambient light and a black background.
func DefaultSettings() Settings {
	return Settings{
		Camera: CameraSettings{
			Origin:  vecmath.Vec3{Z: 4},
			Up:      vecmath.Vec3{Y: 1},
			TanFovX: 1,
			Aspect:  240.0 / 320.0,
		},
		Ambient: vecmath.Vec3{X: 0.2, Y: 0.2, Z: 0.2},
		Seed:    DefaultSeed,
	}
}

// SceneGraph is the top-level immutable data structure produced by script
// evaluation. It is never mutated in place; each evaluation produces a new
// graph.
type SceneGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	Lights    []NodeID          `json:"lights"`
	NameIndex map[string]NodeID `json:"name_index"`
	Settings  Settings          `json:"settings"`
	Version   uint64            `json:"version"`
}

// New creates an empty SceneGraph with default settings.
func New() *SceneGraph {
	return &SceneGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Settings:  DefaultSettings(),
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *SceneGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a top-level scene object. Repeated roots
// are ignored.
func (g *SceneGraph) AddRoot(id NodeID) {
	for _, r := range g.Roots {
		if r == id {
			return
		}
	}
	g.Roots = append(g.Roots, id)
}

// AddLight registers a light node. Repeated lights are ignored.
func (g *SceneGraph) AddLight(id NodeID) {
	for _, l := range g.Lights {
		if l == id {
			return
		}
	}
	g.Lights = append(g.Lights, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *SceneGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *SceneGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *SceneGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Surfaces returns all renderable nodes in the graph.
func (g *SceneGraph) Surfaces() []*Node {
	var out []*Node
	for _, n := range g.Nodes {
		if n.Kind.IsSurface() {
			out = append(out, n)
		}
	}
	return out
}

// Materials returns all material nodes in the graph.
func (g *SceneGraph) Materials() []*Node {
	var out []*Node
	for _, n := range g.Nodes {
		if n.Kind == NodeMaterial {
			out = append(out, n)
		}
	}
	return out
}

// Children returns the child nodes of the given node.
func (g *SceneGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// Parents returns how many nodes list id as a child.
func (g *SceneGraph) Parents(id NodeID) int {
	count := 0
	for _, n := range g.Nodes {
		for _, c := range n.Children {
			if c == id {
				count++
			}
		}
	}
	return count
}

// NodeCount returns the total number of nodes.
func (g *SceneGraph) NodeCount() int {
	return len(g.Nodes)
}
