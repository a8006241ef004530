package material

import (
	"math"
	"sort"

	"github.com/chazu/csgray/pkg/noise"
	"github.com/chazu/csgray/pkg/vecmath"
)

// Driver produces the scalar that positions a point along a Map.
type Driver func(point vecmath.Vec3) float64

// NoiseDriver drives a Map with the unclamped fractal noise sum.
func NoiseDriver(field *noise.Field) Driver {
	return field.Fractal
}

// Node is one stop of a Map.
type Node struct {
	Position float64    `json:"position"`
	Props    Properties `json:"props"`
}

// minNodeSpacing is the position delta below which two stops are treated as
// coincident.
const minNodeSpacing = 1e-5

// Map interpolates between property stops ordered by position.
type Map struct {
	driver Driver
	nodes  []Node
}

// NewMap creates an empty map. Add at least one node before rendering.
func NewMap(driver Driver) *Map {
	return &Map{driver: driver}
}

// Add inserts a stop, keeping stops sorted. A stop with the same position as
// an existing one is placed after it.
func (m *Map) Add(position float64, p Properties) {
	i := sort.Search(len(m.nodes), func(i int) bool {
		return m.nodes[i].Position > position
	})
	m.nodes = append(m.nodes, Node{})
	copy(m.nodes[i+1:], m.nodes[i:])
	m.nodes[i] = Node{Position: position, Props: p}
}

// Nodes returns the stops in ascending position order.
func (m *Map) Nodes() []Node {
	out := make([]Node, len(m.nodes))
	copy(out, m.nodes)
	return out
}

func (m *Map) LightingProperties(point, normal vecmath.Vec3) (Properties, vecmath.Vec3) {
	return m.At(m.driver(point)), normal
}

// At evaluates the map for a driver value. Values outside the stop range
// clamp to the nearest end stop.
func (m *Map) At(v float64) Properties {
	if len(m.nodes) == 0 {
		return Properties{}
	}
	hi := sort.Search(len(m.nodes), func(i int) bool {
		return m.nodes[i].Position > v
	})
	switch hi {
	case len(m.nodes):
		return m.nodes[len(m.nodes)-1].Props
	case 0:
		return m.nodes[0].Props
	}
	low, high := m.nodes[hi-1], m.nodes[hi]
	delta := high.Position - low.Position
	if delta < minNodeSpacing {
		return low.Props
	}
	return low.Props.Lerp(high.Props, (v-low.Position)/delta)
}

// Wood ring parameters.
const (
	woodTurbulence = 0.2
	woodFrequency  = 15.0
)

// Wood blends two property sets in noisy concentric rings around the Z axis.
type Wood struct {
	field       *noise.Field
	Dark, Light Properties
}

// NewWood creates a wood material.
func NewWood(field *noise.Field, dark, light Properties) *Wood {
	return &Wood{field: field, Dark: dark, Light: light}
}

func (m *Wood) LightingProperties(point, normal vecmath.Vec3) (Properties, vecmath.Vec3) {
	return m.Dark.Lerp(m.Light, m.Ring(point)), normal
}

// Ring returns the blend factor in [0, 1) at point.
func (m *Wood) Ring(point vecmath.Vec3) float64 {
	d := m.field.Fractal(point) * woodTurbulence
	r := math.Hypot(point.X+d, point.Y+d)
	return math.Mod(r*woodFrequency, 1)
}
