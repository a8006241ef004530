package surface

import (
	"math"

	"github.com/chazu/csgray/pkg/material"
	"github.com/chazu/csgray/pkg/vecmath"
)

// Sphere is centered on the origin.
type Sphere struct {
	base
	Radius float64
}

// NewSphere creates a sphere of the given radius.
func NewSphere(radius float64) *Sphere {
	return &Sphere{Radius: radius}
}

// LineTest solves |O+tD|² = r². Any positive root is accepted regardless of
// maxDistance.
func (s *Sphere) LineTest(tc *Trace, o, d vecmath.Vec3, maxDistance float64) float64 {
	a := d.Dot(d)
	if a == 0 {
		return NoHit
	}
	b := 2 * o.Dot(d)
	c := o.Dot(o) - s.Radius*s.Radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return NoHit
	}
	sq := math.Sqrt(disc)
	if t := (-b - sq) / (2 * a); t > 0 {
		return t
	}
	if t := (-b + sq) / (2 * a); t > 0 {
		return t
	}
	return NoHit
}

func (s *Sphere) Normal(tc *Trace, p vecmath.Vec3) vecmath.Vec3 {
	return p
}

func (s *Sphere) IsInside(p vecmath.Vec3) bool {
	return p.Dot(p) < s.Radius*s.Radius
}

func (s *Sphere) LightingProperties(tc *Trace, p, n vecmath.Vec3) (material.Properties, vecmath.Vec3, bool) {
	return s.own(p, n)
}

// Plane is the boundary of the half-space dot(p, Normal) < Offset.
type Plane struct {
	base
	N      vecmath.Vec3
	Offset float64
}

// NewPlane creates a plane. The normal points out of the solid side.
func NewPlane(normal vecmath.Vec3, offset float64) *Plane {
	return &Plane{N: normal, Offset: offset}
}

func (pl *Plane) LineTest(tc *Trace, o, d vecmath.Vec3, maxDistance float64) float64 {
	denom := pl.N.Dot(d)
	t := NoHit
	if denom != 0 {
		if alpha := -(pl.N.Dot(o) - pl.Offset) / denom; alpha > 0 && alpha < maxDistance {
			t = alpha
		}
	}
	if tc.debugging() {
		tc.Debug.Enter("Plane.LineTest %v + t%v", o, d)
		tc.Debug.Leave("dist %.4g", t)
	}
	return t
}

func (pl *Plane) Normal(tc *Trace, p vecmath.Vec3) vecmath.Vec3 {
	return pl.N
}

func (pl *Plane) IsInside(p vecmath.Vec3) bool {
	return p.Dot(pl.N) < pl.Offset
}

func (pl *Plane) LightingProperties(tc *Trace, p, n vecmath.Vec3) (material.Properties, vecmath.Vec3, bool) {
	return pl.own(p, n)
}

// Cone is the infinite upward nappe x²+y² = z², z > 0, with its apex at the
// origin and a 45 degree half-angle.
type Cone struct {
	base
}

// NewCone creates a unit cone.
func NewCone() *Cone {
	return &Cone{}
}

func (c *Cone) LineTest(tc *Trace, o, d vecmath.Vec3, maxDistance float64) float64 {
	a := d.X*d.X + d.Y*d.Y - d.Z*d.Z
	b := 2 * (o.X*d.X + o.Y*d.Y - o.Z*d.Z)
	k := o.X*o.X + o.Y*o.Y - o.Z*o.Z

	valid := func(t float64) bool {
		return t > 0 && t <= maxDistance && o.Z+t*d.Z > 0
	}

	// Ray parallel to the cone's surface: the quadratic degenerates.
	if a == 0 {
		if b != 0 {
			if t := -k / b; valid(t) {
				return t
			}
		}
		return NoHit
	}

	disc := b*b - 4*a*k
	if disc < 0 {
		return NoHit
	}
	sq := math.Sqrt(disc)
	t1, t2 := (-b-sq)/(2*a), (-b+sq)/(2*a)
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	if valid(t1) {
		return t1
	}
	if valid(t2) {
		return t2
	}
	return NoHit
}

func (c *Cone) Normal(tc *Trace, p vecmath.Vec3) vecmath.Vec3 {
	return vecmath.Vec3{X: 2 * p.X, Y: 2 * p.Y, Z: -2 * p.Z}
}

func (c *Cone) IsInside(p vecmath.Vec3) bool {
	if p.Z <= 0 {
		return false
	}
	return p.X*p.X+p.Y*p.Y-p.Z*p.Z <= 0
}

func (c *Cone) LightingProperties(tc *Trace, p, n vecmath.Vec3) (material.Properties, vecmath.Vec3, bool) {
	return c.own(p, n)
}
