package scene

import (
	"fmt"
	"math"

	"github.com/chazu/csgray/pkg/vecmath"
)

// DragScale converts pointer pixels to orbit radians.
const DragScale = 1.0 / 100.0

// Orbit keeps a camera on a sphere around a focus point.
type Orbit struct {
	Yaw      float64
	Pitch    float64
	Distance float64
	Focus    vecmath.Vec3
}

// NewOrbit returns an orbit at distance looking at the origin from +Z.
func NewOrbit(distance float64) *Orbit {
	return &Orbit{Distance: distance}
}

// OrbitFrom returns the orbit whose Position is origin, looking at focus.
func OrbitFrom(origin, focus vecmath.Vec3) (*Orbit, error) {
	off := origin.Sub(focus)
	d := off.Length()
	if d == 0 {
		return nil, fmt.Errorf("orbit from %v: %w", origin, vecmath.ErrDegenerate)
	}
	return &Orbit{
		Yaw:      math.Atan2(off.X, off.Z),
		Pitch:    math.Asin(math.Max(-1, math.Min(1, off.Y/d))),
		Distance: d,
		Focus:    focus,
	}, nil
}

// Drag turns the orbit by a pointer movement in pixels.
func (o *Orbit) Drag(dx, dy float64) {
	o.Yaw += dx * DragScale
	o.Pitch += dy * DragScale
}

// Position returns the camera origin for the current angles.
func (o *Orbit) Position() vecmath.Vec3 {
	sy, cy := math.Sincos(o.Yaw)
	sp, cp := math.Sincos(o.Pitch)
	return o.Focus.Add(vecmath.Vec3{X: sy * cp, Y: sp, Z: cy * cp}.Scale(o.Distance))
}

// Apply resets the camera's up vector to +Y, moves it to Position and aims
// it at Focus. The camera is unchanged on error.
func (o *Orbit) Apply(cam *Camera) error {
	next := *cam
	if err := next.SetUp(vecmath.Vec3{Y: 1}); err != nil {
		return err
	}
	next.SetOrigin(o.Position())
	if err := next.SetFocus(o.Focus); err != nil {
		return err
	}
	*cam = next
	return nil
}
