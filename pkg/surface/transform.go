package surface

import (
	"fmt"

	"github.com/chazu/csgray/pkg/material"
	"github.com/chazu/csgray/pkg/vecmath"
)

// Transform places its child with an affine matrix. Rays and points are
// pulled into the child's frame through the inverse; normals are pushed back
// through the forward matrix's linear part.
//
// Mutators post-multiply: each new operation applies after those already
// accumulated. They must only be called between frames.
type Transform struct {
	base
	child   Surface
	forward vecmath.Mat4
	inverse vecmath.Mat4
}

// NewTransform wraps child with an identity transform.
func NewTransform(child Surface) *Transform {
	return &Transform{
		child:   child,
		forward: vecmath.Identity(),
		inverse: vecmath.Identity(),
	}
}

// Child returns the wrapped surface.
func (t *Transform) Child() Surface {
	return t.child
}

// Forward returns the child-to-world matrix.
func (t *Transform) Forward() vecmath.Mat4 {
	return t.forward
}

// Inverse returns the world-to-child matrix.
func (t *Transform) Inverse() vecmath.Mat4 {
	return t.inverse
}

// Identity resets both matrices.
func (t *Transform) Identity() {
	t.forward = vecmath.Identity()
	t.inverse = vecmath.Identity()
}

// Set copies o's matrices into t. The child is unchanged.
func (t *Transform) Set(o *Transform) {
	t.forward = o.forward
	t.inverse = o.inverse
}

// Translate appends a translation.
func (t *Transform) Translate(dx, dy, dz float64) error {
	return t.apply(vecmath.Translation(dx, dy, dz), "translate")
}

// Scale appends a per-axis scale. A zero factor is rejected.
func (t *Transform) Scale(sx, sy, sz float64) error {
	return t.apply(vecmath.Scaling(sx, sy, sz), "scale")
}

// RotateX appends a rotation about the X axis.
func (t *Transform) RotateX(rad float64) error {
	return t.apply(vecmath.RotationX(rad), "rotate x")
}

// RotateY appends a rotation about the Y axis.
func (t *Transform) RotateY(rad float64) error {
	return t.apply(vecmath.RotationY(rad), "rotate y")
}

// RotateZ appends a rotation about the Z axis.
func (t *Transform) RotateZ(rad float64) error {
	return t.apply(vecmath.RotationZ(rad), "rotate z")
}

// apply sets forward = m × forward and recomputes the inverse. On failure
// the previous matrices are kept.
func (t *Transform) apply(m vecmath.Mat4, op string) error {
	fwd := m.Mul(t.forward)
	inv, err := fwd.Inverse()
	if err != nil {
		return fmt.Errorf("transform %s: %w", op, err)
	}
	t.forward = fwd
	t.inverse = inv
	return nil
}

// LineTest forwards maxDistance unchanged. Because the transformed
// direction is not renormalised, distances stay in units of the caller's
// direction vector.
func (t *Transform) LineTest(tc *Trace, o, d vecmath.Vec3, maxDistance float64) float64 {
	return t.child.LineTest(tc, t.inverse.MulPoint(o), t.inverse.MulDir(d), maxDistance)
}

// Normal maps the child's normal through the forward linear part, which is
// exact for rotations and translations only.
func (t *Transform) Normal(tc *Trace, p vecmath.Vec3) vecmath.Vec3 {
	return t.forward.MulDir(t.child.Normal(tc, t.inverse.MulPoint(p)))
}

func (t *Transform) IsInside(p vecmath.Vec3) bool {
	return t.child.IsInside(t.inverse.MulPoint(p))
}

// LightingProperties samples materials in the child's frame, so textures
// move with the object. The normal is passed through untouched.
func (t *Transform) LightingProperties(tc *Trace, p, n vecmath.Vec3) (material.Properties, vecmath.Vec3, bool) {
	local := t.inverse.MulPoint(p)
	if t.material != nil {
		return t.own(local, n)
	}
	return t.child.LightingProperties(tc, local, n)
}
