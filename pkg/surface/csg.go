package surface

import (
	"fmt"

	"github.com/chazu/csgray/pkg/material"
	"github.com/chazu/csgray/pkg/vecmath"
)

const (
	// sampleOffset is how far past a candidate crossing the composite
	// inside test is sampled.
	sampleOffset = 1e-3
	// marchEpsilon is added to each march step so the same crossing is not
	// found again.
	marchEpsilon = 1e-5
	// maxMarchSteps guards against pathological scenes that would otherwise
	// creep forward by marchEpsilon for a very long time.
	maxMarchSteps = 10000
)

// Intersection is the boolean AND of its children.
//
// The child that produced the most recent LineTest hit is remembered per
// worker slot so that Normal and LightingProperties can delegate to it.
type Intersection struct {
	base
	children []Surface
	last     [MaxSlots]Surface
}

// NewIntersection creates an intersection of children. Duplicates are
// ignored.
func NewIntersection(children ...Surface) *Intersection {
	in := &Intersection{}
	for _, c := range children {
		in.Add(c)
	}
	return in
}

// Add appends a child unless it is already present.
func (in *Intersection) Add(s Surface) {
	for _, c := range in.children {
		if c == s {
			return
		}
	}
	in.children = append(in.children, s)
}

// Children returns the children in evaluation order.
func (in *Intersection) Children() []Surface {
	out := make([]Surface, len(in.children))
	copy(out, in.children)
	return out
}

// LineTest marches along the ray looking for the first child crossing
// that is also a crossing of the composite solid. Whether that is an exit
// or an entry is fixed by the composite's inside state at the ray origin.
func (in *Intersection) LineTest(tc *Trace, o, d vecmath.Vec3, maxDistance float64) float64 {
	if tc.debugging() {
		tc.Debug.Enter("Intersection.LineTest %v + t%v", o, d)
	}
	findOutsides := in.IsInside(o)
	slot := tc.slot()
	offset := 0.0

	for step := 0; ; step++ {
		if step >= maxMarchSteps {
			return in.fail(tc, fmt.Errorf("%w: %d steps without resolving", ErrNoProgress, step))
		}

		progress := maxDistance
		dist := maxDistance
		for _, c := range in.children {
			t := c.LineTest(tc, o, d, maxDistance)
			if t >= maxDistance {
				continue
			}
			if t < progress {
				progress = t + marchEpsilon
			}
			sample := o.Add(d.Scale(t + sampleOffset))
			if t < dist && in.IsInside(sample) != findOutsides {
				dist = t
				in.last[slot] = c
			}
		}

		if dist < maxDistance {
			if tc.debugging() {
				tc.Debug.Leave("%.4g", dist+offset)
			}
			return dist + offset
		}
		if progress >= maxDistance {
			if tc.debugging() {
				tc.Debug.Leave("miss")
			}
			return NoHit
		}
		if progress < marchEpsilon {
			return in.fail(tc, fmt.Errorf("%w: step %g", ErrNoProgress, progress))
		}

		// Crossings exist but none bounds the composite; march past the
		// nearest and try again.
		o = o.Add(d.Scale(progress))
		offset += progress
		maxDistance -= progress
		if maxDistance < 0 {
			if tc.debugging() {
				tc.Debug.Leave("miss past range")
			}
			return NoHit
		}
	}
}

func (in *Intersection) fail(tc *Trace, err error) float64 {
	tc.Fail(err)
	if tc.debugging() {
		tc.Debug.Leave("error: %v", err)
	}
	return NoHit
}

// Normal delegates to the child hit by the last LineTest on this slot.
func (in *Intersection) Normal(tc *Trace, p vecmath.Vec3) vecmath.Vec3 {
	if c := in.last[tc.slot()]; c != nil {
		return c.Normal(tc, p)
	}
	return vecmath.Vec3{}
}

func (in *Intersection) IsInside(p vecmath.Vec3) bool {
	for _, c := range in.children {
		if !c.IsInside(p) {
			return false
		}
	}
	return true
}

// LightingProperties uses the intersection's own material if set, otherwise
// the last-hit child's.
func (in *Intersection) LightingProperties(tc *Trace, p, n vecmath.Vec3) (material.Properties, vecmath.Vec3, bool) {
	if in.material != nil {
		return in.own(p, n)
	}
	if c := in.last[tc.slot()]; c != nil {
		return c.LightingProperties(tc, p, n)
	}
	return material.Properties{}, n, false
}

// Inverse is the complement of its child. The boundary is shared, so
// LineTest passes straight through; inside and normals flip.
type Inverse struct {
	base
	child Surface
}

// NewInverse creates the complement of child.
func NewInverse(child Surface) *Inverse {
	return &Inverse{child: child}
}

// Child returns the complemented surface.
func (iv *Inverse) Child() Surface {
	return iv.child
}

func (iv *Inverse) LineTest(tc *Trace, o, d vecmath.Vec3, maxDistance float64) float64 {
	return iv.child.LineTest(tc, o, d, maxDistance)
}

func (iv *Inverse) Normal(tc *Trace, p vecmath.Vec3) vecmath.Vec3 {
	return iv.child.Normal(tc, p).Negate()
}

func (iv *Inverse) IsInside(p vecmath.Vec3) bool {
	return !iv.child.IsInside(p)
}

// LightingProperties hands the child a normal in its own orientation and
// flips whatever comes back.
func (iv *Inverse) LightingProperties(tc *Trace, p, n vecmath.Vec3) (material.Properties, vecmath.Vec3, bool) {
	if iv.material != nil {
		return iv.own(p, n)
	}
	props, cn, ok := iv.child.LightingProperties(tc, p, n.Negate())
	return props, cn.Negate(), ok
}
