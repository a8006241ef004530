// Package sdfx implements kernel.Mesher on top of the
// github.com/deadsy/sdfx marching cubes renderer.
//
// CSG surfaces in this project answer inside/outside queries but carry no
// distance field, so the adapter evaluates to a signed half cell width and
// intersects the result with the sampling box. Marching cubes then places
// vertices on cell edge midpoints: coarse, but watertight.
package sdfx

import (
	"fmt"

	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/surface"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var _ kernel.Mesher = (*Mesher)(nil)

// DefaultCells is the marching cubes resolution along the longest axis of
// the bounds.
const DefaultCells = 64

// Mesher tessellates surfaces with uniform marching cubes.
type Mesher struct {
	cells int
}

// New returns a mesher with the given resolution; cells <= 0 selects
// DefaultCells.
func New(cells int) *Mesher {
	if cells <= 0 {
		cells = DefaultCells
	}
	return &Mesher{cells: cells}
}

// Cells returns the resolution along the longest axis.
func (m *Mesher) Cells() int {
	return m.cells
}

// insideSDF presents a surface's IsInside predicate as an sdf.SDF3.
type insideSDF struct {
	s    surface.Surface
	bb   sdf.Box3
	half float64
}

func (f *insideSDF) Evaluate(p v3.Vec) float64 {
	if f.s.IsInside(fromV3(p)) {
		return -f.half
	}
	return f.half
}

func (f *insideSDF) BoundingBox() sdf.Box3 {
	return f.bb
}

// Tessellate meshes the part of s inside b. A surface with no interior in
// b yields an empty mesh, not an error.
func (m *Mesher) Tessellate(name string, s surface.Surface, b kernel.Bounds) (*kernel.Mesh, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("sdfx: tessellate %q: nil surface", name)
	}

	size := b.Size()
	bb := sdf.Box3{Min: toV3(b.Min), Max: toV3(b.Max)}
	box, err := sdf.Box3D(toV3(size), 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: bounds box: %w", err)
	}
	clip := sdf.Transform3D(box, sdf.Translate3d(toV3(b.Center())))

	step := max(size.X, size.Y, size.Z) / float64(m.cells)
	solid := sdf.Intersect3D(&insideSDF{s: s, bb: bb, half: step / 2}, clip)

	triangles := render.ToTriangles(solid, render.NewMarchingCubesUniform(m.cells))

	mesh := &kernel.Mesh{
		Vertices: make([]float32, 0, len(triangles)*9),
		Normals:  make([]float32, 0, len(triangles)*9),
		Indices:  make([]uint32, 0, len(triangles)*3),
		PartName: name,
	}
	for i, tri := range triangles {
		n := tri.Normal()
		for j := 0; j < 3; j++ {
			v := tri[j]
			mesh.Vertices = append(mesh.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			mesh.Normals = append(mesh.Normals, float32(n.X), float32(n.Y), float32(n.Z))
			mesh.Indices = append(mesh.Indices, uint32(i*3+j))
		}
	}
	return mesh, nil
}
