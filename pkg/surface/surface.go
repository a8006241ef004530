// Package surface defines the CSG object protocol and its variants.
//
// Every method takes world-space inputs relative to the surface's own frame:
// a Transform maps rays and points into its child's frame before
// delegating. Distances returned by LineTest are measured in multiples of
// the supplied direction vector, which need not be unit length.
package surface

import (
	"errors"

	"github.com/chazu/csgray/pkg/material"
	"github.com/chazu/csgray/pkg/vecmath"
)

// NoHit is the LineTest result for a ray that does not cross the surface.
const NoHit = 1e9

// MaxSlots bounds the number of render workers that may trace concurrently.
// Each Intersection keeps one scratch slot per worker.
const MaxSlots = 64

// ErrNoProgress reports that an Intersection ray march failed to advance.
// It indicates a malformed scene or a numerical breakdown.
var ErrNoProgress = errors.New("surface: intersection march made no progress")

// Surface is implemented by every scene node.
//
// Normal and LightingProperties are only meaningful for a point produced by
// the LineTest call made immediately before on the same Trace.
type Surface interface {
	// LineTest returns the nearest strictly positive ray parameter at which
	// origin+t*dir crosses the boundary, or NoHit.
	LineTest(tc *Trace, origin, dir vecmath.Vec3, maxDistance float64) float64
	// Normal returns an outward, not necessarily unit, normal at point.
	Normal(tc *Trace, point vecmath.Vec3) vecmath.Vec3
	// IsInside reports whether point is on the interior side.
	IsInside(point vecmath.Vec3) bool
	// LightingProperties resolves the material at point. ok is false when
	// neither this node nor its delegates carry a material.
	LightingProperties(tc *Trace, point, normal vecmath.Vec3) (props material.Properties, n vecmath.Vec3, ok bool)
}

// Trace carries per-worker state through one pixel's evaluation. The bulk
// render path uses one Trace per worker with a distinct Slot; the debug path
// adds a Debugger.
type Trace struct {
	Slot  int
	Debug *Debugger
	err   error
}

// NewTrace returns a trace bound to a worker slot.
func NewTrace(slot int) *Trace {
	return &Trace{Slot: slot}
}

// Fail records the first internal error seen during the current pixel.
func (t *Trace) Fail(err error) {
	if t != nil && t.err == nil {
		t.err = err
	}
}

// Err returns the recorded error, if any.
func (t *Trace) Err() error {
	if t == nil {
		return nil
	}
	return t.err
}

// Reset clears the recorded error before the next pixel.
func (t *Trace) Reset() {
	if t != nil {
		t.err = nil
	}
}

func (t *Trace) slot() int {
	if t == nil {
		return 0
	}
	return t.Slot
}

func (t *Trace) debugging() bool {
	return t != nil && t.Debug != nil
}

// Materialed is implemented by nodes that can carry their own material.
type Materialed interface {
	SetMaterial(m material.Material)
	Material() material.Material
}

// base holds the optional material shared by all variants.
type base struct {
	material material.Material
}

// SetMaterial attaches m. A nil m detaches the current material.
func (b *base) SetMaterial(m material.Material) {
	b.material = m
}

// Material returns the attached material or nil.
func (b *base) Material() material.Material {
	return b.material
}

func (b *base) own(point, normal vecmath.Vec3) (material.Properties, vecmath.Vec3, bool) {
	if b.material == nil {
		return material.Properties{}, normal, false
	}
	p, n := b.material.LightingProperties(point, normal)
	return p, n, true
}
