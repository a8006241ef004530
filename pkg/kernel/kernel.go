// Package kernel turns CSG surfaces into triangle meshes for preview and
// export. A Mesher implementation samples a surface's inside/outside
// predicate over a bounded region; the region is required because planes,
// cones and inverses are unbounded.
package kernel

import (
	"errors"
	"fmt"

	"github.com/chazu/csgray/pkg/surface"
	"github.com/chazu/csgray/pkg/vecmath"
)

// ErrBadBounds reports an empty, inverted or non-finite sampling region.
var ErrBadBounds = errors.New("kernel: bounds must have positive finite size on every axis")

// Bounds is an axis-aligned sampling region.
type Bounds struct {
	Min vecmath.Vec3 `json:"min"`
	Max vecmath.Vec3 `json:"max"`
}

// Cube returns the bounds [-half, half] on every axis.
func Cube(half float64) Bounds {
	return Bounds{
		Min: vecmath.Vec3{X: -half, Y: -half, Z: -half},
		Max: vecmath.Vec3{X: half, Y: half, Z: half},
	}
}

// Validate rejects bounds that contain no volume.
func (b Bounds) Validate() error {
	if !b.Min.IsFinite() || !b.Max.IsFinite() {
		return fmt.Errorf("%w: %v..%v", ErrBadBounds, b.Min, b.Max)
	}
	s := b.Size()
	if !(s.X > 0 && s.Y > 0 && s.Z > 0) {
		return fmt.Errorf("%w: %v..%v", ErrBadBounds, b.Min, b.Max)
	}
	return nil
}

func (b Bounds) Size() vecmath.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b Bounds) Center() vecmath.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Contains reports whether p lies in the closed region.
func (b Bounds) Contains(p vecmath.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Mesher tessellates the part of a surface's solid that lies within b.
// The returned mesh carries name as its PartName.
type Mesher interface {
	Tessellate(name string, s surface.Surface, b Bounds) (*Mesh, error)
}
