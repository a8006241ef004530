package kernel

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/csgray/pkg/vecmath"
)

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshExtent(t *testing.T) {
	if _, ok := (&Mesh{}).Extent(); ok {
		t.Error("empty mesh reported an extent")
	}
	m := &Mesh{Vertices: []float32{1, -2, 3, -1, 4, 0.5, 0, 0, -3}}
	b, ok := m.Extent()
	if !ok {
		t.Fatal("no extent")
	}
	if b.Min != (vecmath.Vec3{X: -1, Y: -2, Z: -3}) || b.Max != (vecmath.Vec3{X: 1, Y: 4, Z: 3}) {
		t.Errorf("extent = %+v", b)
	}
}

func TestBoundsValidate(t *testing.T) {
	tests := []struct {
		name string
		b    Bounds
		ok   bool
	}{
		{"cube", Cube(1), true},
		{"box", Bounds{Min: vecmath.Vec3{X: -1}, Max: vecmath.Vec3{X: 2, Y: 1, Z: 1}}, true},
		{"zero", Bounds{}, false},
		{"flat", Bounds{Max: vecmath.Vec3{X: 1, Y: 1}}, false},
		{"inverted", Bounds{Min: vecmath.Vec3{X: 1, Y: 1, Z: 1}}, false},
		{"infinite", Bounds{Max: vecmath.Vec3{X: math.Inf(1), Y: 1, Z: 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.b.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
			if err != nil && !errors.Is(err, ErrBadBounds) {
				t.Errorf("error %v is not ErrBadBounds", err)
			}
		})
	}
}

func TestBoundsGeometry(t *testing.T) {
	b := Bounds{Min: vecmath.Vec3{X: -1, Y: 0, Z: 2}, Max: vecmath.Vec3{X: 3, Y: 2, Z: 4}}
	if c := b.Center(); c != (vecmath.Vec3{X: 1, Y: 1, Z: 3}) {
		t.Errorf("Center() = %v", c)
	}
	if s := b.Size(); s != (vecmath.Vec3{X: 4, Y: 2, Z: 2}) {
		t.Errorf("Size() = %v", s)
	}
	if !b.Contains(vecmath.Vec3{X: 3, Y: 1, Z: 2}) || b.Contains(vecmath.Vec3{X: 0, Y: -0.1, Z: 3}) {
		t.Error("Contains mismatch")
	}
}
