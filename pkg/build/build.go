// Package build compiles a validated scene graph into the live surface,
// material and camera values the renderer traces. Each graph node becomes
// exactly one Go value, so a node shared by two parents is one shared
// surface.
package build

import (
	"fmt"

	"github.com/chazu/csgray/pkg/graph"
	"github.com/chazu/csgray/pkg/material"
	"github.com/chazu/csgray/pkg/noise"
	"github.com/chazu/csgray/pkg/scene"
	"github.com/chazu/csgray/pkg/surface"
)

// Result is a compiled scene plus the handles callers need between frames.
type Result struct {
	Scene *scene.Scene
	// Surfaces maps the name of every named surface node to its compiled
	// surface.
	Surfaces map[string]surface.Surface
	// Transforms maps the name of every named transform node to its
	// compiled transform, for animation.
	Transforms map[string]*surface.Transform
	// Field is the noise field shared by all procedural materials.
	Field *noise.Field
}

// materialSetter is implemented by every concrete surface.
type materialSetter interface {
	SetMaterial(material.Material)
}

type compiler struct {
	g          *graph.SceneGraph
	field      *noise.Field
	surfaces   map[graph.NodeID]surface.Surface
	materials  map[graph.NodeID]material.Material
	named      map[string]surface.Surface
	transforms map[string]*surface.Transform
}

// Build validates g and compiles it. Any blocking validation finding fails
// the build with every finding joined into the error. The graph is never
// mutated.
func Build(g *graph.SceneGraph) (*Result, error) {
	if g == nil {
		return nil, fmt.Errorf("build: nil scene graph")
	}
	if err := graph.ValidateAll(g).Err(); err != nil {
		return nil, fmt.Errorf("build: invalid scene: %w", err)
	}

	c := &compiler{
		g:          g,
		field:      noise.New(g.Settings.Seed),
		surfaces:   make(map[graph.NodeID]surface.Surface),
		materials:  make(map[graph.NodeID]material.Material),
		named:      make(map[string]surface.Surface),
		transforms: make(map[string]*surface.Transform),
	}

	s := scene.New()
	cam, err := camera(g.Settings.Camera)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	s.SetCamera(cam)
	s.SetAmbientLight(g.Settings.Ambient)
	s.SetBackground(g.Settings.Background)

	for _, rid := range g.Roots {
		obj, err := c.surface(rid)
		if err != nil {
			return nil, fmt.Errorf("build: root %s: %w", rid.Short(), err)
		}
		s.AddObject(obj)
	}
	for _, lid := range g.Lights {
		ld := g.Get(lid).Data.(graph.LightData)
		s.AddLight(scene.NewLight(ld.Position, ld.Color))
	}

	return &Result{Scene: s, Surfaces: c.named, Transforms: c.transforms, Field: c.field}, nil
}

// camera applies the settings in the order SetFocus needs: up first, then
// origin, then focus.
func camera(cs graph.CameraSettings) (*scene.Camera, error) {
	cam := scene.NewCamera()
	if err := cam.SetUp(cs.Up); err != nil {
		return nil, err
	}
	cam.SetOrigin(cs.Origin)
	if err := cam.SetFieldOfView(cs.TanFovX, cs.Aspect); err != nil {
		return nil, err
	}
	if err := cam.SetFocus(cs.Focus); err != nil {
		return nil, err
	}
	return cam, nil
}

// surface compiles the node with the given ID, reusing an earlier result.
func (c *compiler) surface(id graph.NodeID) (surface.Surface, error) {
	if s, ok := c.surfaces[id]; ok {
		return s, nil
	}
	n := c.g.Get(id)
	if n == nil {
		return nil, fmt.Errorf("no node %s", id.Short())
	}

	var s surface.Surface
	switch data := n.Data.(type) {
	case graph.SphereData:
		s = surface.NewSphere(data.Radius)
	case graph.PlaneData:
		s = surface.NewPlane(data.Normal, data.Offset)
	case graph.ConeData:
		s = surface.NewCone()
	case graph.TransformData:
		child, err := c.surface(n.Children[0])
		if err != nil {
			return nil, err
		}
		tr := surface.NewTransform(child)
		if err := applyOps(tr, data.Ops); err != nil {
			return nil, fmt.Errorf("transform %s: %w", n.Label(), err)
		}
		if n.Name != "" {
			c.transforms[n.Name] = tr
		}
		s = tr
	case graph.IntersectionData:
		in := surface.NewIntersection()
		for _, cid := range n.Children {
			child, err := c.surface(cid)
			if err != nil {
				return nil, err
			}
			in.Add(child)
		}
		s = in
	case graph.InverseData:
		child, err := c.surface(n.Children[0])
		if err != nil {
			return nil, err
		}
		s = surface.NewInverse(child)
	default:
		return nil, fmt.Errorf("%s node %s is not a surface", n.Kind, n.Label())
	}

	if !n.Material.IsZero() {
		m, err := c.material(n.Material)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.Label(), err)
		}
		ms, ok := s.(materialSetter)
		if !ok {
			return nil, fmt.Errorf("%s %s cannot carry a material", n.Kind, n.Label())
		}
		ms.SetMaterial(m)
	}

	c.surfaces[id] = s
	if n.Name != "" {
		c.named[n.Name] = s
	}
	return s, nil
}

func applyOps(tr *surface.Transform, ops []graph.TransformOp) error {
	for i, op := range ops {
		var err error
		switch op.Kind {
		case graph.OpTranslate:
			err = tr.Translate(op.Vec.X, op.Vec.Y, op.Vec.Z)
		case graph.OpScale:
			err = tr.Scale(op.Vec.X, op.Vec.Y, op.Vec.Z)
		case graph.OpRotateX:
			err = tr.RotateX(op.Angle)
		case graph.OpRotateY:
			err = tr.RotateY(op.Angle)
		case graph.OpRotateZ:
			err = tr.RotateZ(op.Angle)
		default:
			err = fmt.Errorf("unknown step kind %d", int(op.Kind))
		}
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i, op.Kind, err)
		}
	}
	return nil
}

// material compiles a material node, reusing an earlier result.
func (c *compiler) material(id graph.NodeID) (material.Material, error) {
	if m, ok := c.materials[id]; ok {
		return m, nil
	}
	n := c.g.Get(id)
	md, ok := n.Data.(graph.MaterialData)
	if !ok {
		return nil, fmt.Errorf("%s is not a material", n.Label())
	}

	var m material.Material
	switch md.Kind {
	case graph.MaterialSimple:
		m = material.NewSimple(md.Props[0])
	case graph.MaterialCheckerboard:
		m = material.NewCheckerboard(md.Size, md.Props[0], md.Props[1])
	case graph.MaterialNoise:
		m = material.NewNoise(c.field)
	case graph.MaterialMap:
		mm := material.NewMap(material.NoiseDriver(c.field))
		for i, p := range md.Props {
			mm.Add(md.Positions[i], p)
		}
		m = mm
	case graph.MaterialWood:
		m = material.NewWood(c.field, md.Props[0], md.Props[1])
	default:
		return nil, fmt.Errorf("material %s: unknown kind %d", n.Label(), int(md.Kind))
	}
	c.materials[id] = m
	return m, nil
}
