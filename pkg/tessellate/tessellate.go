// Package tessellate meshes the objects of a scene graph with a
// kernel.Mesher. One mesh is produced per top-level object.
package tessellate

import (
	"fmt"

	"github.com/chazu/csgray/pkg/build"
	"github.com/chazu/csgray/pkg/graph"
	"github.com/chazu/csgray/pkg/kernel"
)

// Tessellate compiles g and meshes every root object within b, in root
// order. Each mesh is named after its root node. The graph is never
// mutated.
func Tessellate(g *graph.SceneGraph, m kernel.Mesher, b kernel.Bounds) ([]*kernel.Mesh, error) {
	if g == nil || len(g.Roots) == 0 {
		return nil, nil
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	res, err := build.Build(g)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}

	objects := res.Scene.Objects()
	if len(objects) != len(g.Roots) {
		return nil, fmt.Errorf("tessellate: %d roots compiled to %d objects", len(g.Roots), len(objects))
	}
	meshes := make([]*kernel.Mesh, 0, len(objects))
	for i, rid := range g.Roots {
		name := g.Get(rid).Label()
		mesh, err := m.Tessellate(name, objects[i], b)
		if err != nil {
			return nil, fmt.Errorf("tessellate: object %s: %w", name, err)
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// Object meshes the named surface node. The node must be reachable from a
// root.
func Object(g *graph.SceneGraph, name string, m kernel.Mesher, b kernel.Bounds) (*kernel.Mesh, error) {
	if g == nil {
		return nil, fmt.Errorf("tessellate: nil scene graph")
	}
	res, err := build.Build(g)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	s, ok := res.Surfaces[name]
	if !ok {
		return nil, fmt.Errorf("tessellate: no object named %q in the scene", name)
	}
	mesh, err := m.Tessellate(name, s, b)
	if err != nil {
		return nil, fmt.Errorf("tessellate: object %s: %w", name, err)
	}
	return mesh, nil
}
