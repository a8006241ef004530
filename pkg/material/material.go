// Package material maps surface points to Phong lighting properties.
//
// Materials are immutable after construction and safe to share between
// surfaces and between render workers.
package material

import (
	"github.com/chazu/csgray/pkg/noise"
	"github.com/chazu/csgray/pkg/vecmath"
)

// Properties is the reflectance description of a surface point. Colors are
// RGB triples in Vec3 form.
type Properties struct {
	Ambient    vecmath.Vec3 `json:"ambient"`
	Diffuse    vecmath.Vec3 `json:"diffuse"`
	Specular   vecmath.Vec3 `json:"specular"`
	Shininess  float64      `json:"shininess"`
	Reflection vecmath.Vec3 `json:"reflection"`
}

// Lerp blends every channel of p towards o by t.
func (p Properties) Lerp(o Properties, t float64) Properties {
	return Properties{
		Ambient:    p.Ambient.Lerp(o.Ambient, t),
		Diffuse:    p.Diffuse.Lerp(o.Diffuse, t),
		Specular:   p.Specular.Lerp(o.Specular, t),
		Shininess:  p.Shininess + (o.Shininess-p.Shininess)*t,
		Reflection: p.Reflection.Lerp(o.Reflection, t),
	}
}

// Material returns the lighting properties at a point. Implementations may
// perturb the normal; the returned normal replaces the one passed in.
type Material interface {
	LightingProperties(point, normal vecmath.Vec3) (Properties, vecmath.Vec3)
}

// Simple returns the same properties everywhere.
type Simple struct {
	Props Properties
}

// NewSimple creates a constant material.
func NewSimple(p Properties) *Simple {
	return &Simple{Props: p}
}

func (m *Simple) LightingProperties(point, normal vecmath.Vec3) (Properties, vecmath.Vec3) {
	return m.Props, normal
}

// checkerOffset shifts coordinates positive before truncation so that cells
// straddling zero are not doubled up.
const checkerOffset = 100000

// Checkerboard alternates between two property sets on a cubic grid.
type Checkerboard struct {
	Size float64
	A, B Properties
}

// NewCheckerboard creates a checkerboard with cells of the given edge length.
func NewCheckerboard(size float64, a, b Properties) *Checkerboard {
	return &Checkerboard{Size: size, A: a, B: b}
}

func (m *Checkerboard) LightingProperties(point, normal vecmath.Vec3) (Properties, vecmath.Vec3) {
	if m.Cell(point)%2 == 0 {
		return m.A, normal
	}
	return m.B, normal
}

// Cell returns the summed integer cell coordinate of point; its parity picks
// the property set.
func (m *Checkerboard) Cell(point vecmath.Vec3) int {
	return int(checkerOffset+point.X/m.Size) +
		int(checkerOffset+point.Y/m.Size) +
		int(checkerOffset+point.Z/m.Size)
}

// Noise is a gray procedural material driven by fractal noise.
type Noise struct {
	field *noise.Field
}

// NewNoise creates a noise material sampling field.
func NewNoise(field *noise.Field) *Noise {
	return &Noise{field: field}
}

func (m *Noise) LightingProperties(point, normal vecmath.Vec3) (Properties, vecmath.Vec3) {
	v := 0.5 + 0.3*m.field.Fractal(point)
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return Properties{
		Diffuse:   vecmath.Vec3{X: v, Y: v, Z: v},
		Shininess: 10,
	}, normal
}
