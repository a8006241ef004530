package graph

import (
	"fmt"

	"github.com/chazu/csgray/pkg/material"
	"github.com/chazu/csgray/pkg/vecmath"
)

// Builder assigns deterministic IDs while a graph is assembled. IDs are
// derived from the node kind and its creation order, so evaluating the
// same script twice yields identical graphs.
type Builder struct {
	g      *SceneGraph
	counts map[NodeKind]int
}

// NewBuilder creates a builder over an empty graph.
func NewBuilder() *Builder {
	return &Builder{g: New(), counts: make(map[NodeKind]int)}
}

// Graph returns the graph under construction.
func (b *Builder) Graph() *SceneGraph {
	return b.g
}

func (b *Builder) nextID(kind NodeKind) NodeID {
	b.counts[kind]++
	return NewNodeID(fmt.Sprintf("%s/%d", kind, b.counts[kind]))
}

// Add inserts a node of the given kind and returns its ID.
func (b *Builder) Add(kind NodeKind, name string, data NodeData, children ...NodeID) NodeID {
	id := b.nextID(kind)
	b.g.AddNode(&Node{
		ID:       id,
		Kind:     kind,
		Name:     name,
		Children: children,
		Data:     data,
	})
	return id
}

// SetMaterial attaches a material node to a surface node.
func (b *Builder) SetMaterial(surface, mat NodeID) error {
	n := b.g.Get(surface)
	if n == nil {
		return fmt.Errorf("set material: no node %s", surface.Short())
	}
	if !n.Kind.IsSurface() {
		return fmt.Errorf("set material: %s is a %s, not a surface", n.Label(), n.Kind)
	}
	m := b.g.Get(mat)
	if m == nil || m.Kind != NodeMaterial {
		return fmt.Errorf("set material on %s: %s is not a material", n.Label(), mat.Short())
	}
	n.Material = mat
	return nil
}

// AddObject registers a surface as a top-level scene object.
func (b *Builder) AddObject(id NodeID) {
	b.g.AddRoot(id)
}

func (b *Builder) Sphere(name string, radius float64) NodeID {
	return b.Add(NodeSphere, name, SphereData{Radius: radius})
}

func (b *Builder) Plane(name string, normal vecmath.Vec3, offset float64) NodeID {
	return b.Add(NodePlane, name, PlaneData{Normal: normal, Offset: offset})
}

func (b *Builder) Cone(name string) NodeID {
	return b.Add(NodeCone, name, ConeData{})
}

func (b *Builder) Transform(name string, child NodeID, ops ...TransformOp) NodeID {
	return b.Add(NodeTransform, name, TransformData{Ops: ops}, child)
}

func (b *Builder) Intersection(name string, children ...NodeID) NodeID {
	return b.Add(NodeIntersection, name, IntersectionData{}, children...)
}

func (b *Builder) Inverse(name string, child NodeID) NodeID {
	return b.Add(NodeInverse, name, InverseData{}, child)
}

// Material adds a material node.
func (b *Builder) Material(name string, data MaterialData) NodeID {
	return b.Add(NodeMaterial, name, data)
}

// Simple adds a constant material.
func (b *Builder) Simple(name string, p material.Properties) NodeID {
	return b.Material(name, MaterialData{Kind: MaterialSimple, Props: []material.Properties{p}})
}

// Light adds a light node and registers it with the scene.
func (b *Builder) Light(name string, position, color vecmath.Vec3) NodeID {
	id := b.Add(NodeLight, name, LightData{Position: position, Color: color})
	b.g.AddLight(id)
	return id
}

// Translate, Scale and the rotations build transform steps.

func Translate(x, y, z float64) TransformOp {
	return TransformOp{Kind: OpTranslate, Vec: vecmath.Vec3{X: x, Y: y, Z: z}}
}

func Scale(x, y, z float64) TransformOp {
	return TransformOp{Kind: OpScale, Vec: vecmath.Vec3{X: x, Y: y, Z: z}}
}

func RotateX(rad float64) TransformOp { return TransformOp{Kind: OpRotateX, Angle: rad} }
func RotateY(rad float64) TransformOp { return TransformOp{Kind: OpRotateY, Angle: rad} }
func RotateZ(rad float64) TransformOp { return TransformOp{Kind: OpRotateZ, Angle: rad} }
