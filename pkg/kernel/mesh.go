package kernel

import "github.com/chazu/csgray/pkg/vecmath"

// Mesh is a triangle soup suitable for a WebGL preview.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"` // scene object the mesh was cut from
}

func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Extent returns the bounding box of the vertices. ok is false for an
// empty mesh.
func (m *Mesh) Extent() (b Bounds, ok bool) {
	if m.IsEmpty() {
		return Bounds{}, false
	}
	at := func(i int) vecmath.Vec3 {
		return vecmath.Vec3{
			X: float64(m.Vertices[3*i]),
			Y: float64(m.Vertices[3*i+1]),
			Z: float64(m.Vertices[3*i+2]),
		}
	}
	b.Min, b.Max = at(0), at(0)
	for i := 1; i < m.VertexCount(); i++ {
		v := at(i)
		b.Min = vecmath.Vec3{X: min(b.Min.X, v.X), Y: min(b.Min.Y, v.Y), Z: min(b.Min.Z, v.Z)}
		b.Max = vecmath.Vec3{X: max(b.Max.X, v.X), Y: max(b.Max.Y, v.Y), Z: max(b.Max.Z, v.Z)}
	}
	return b, true
}
