package scene

import (
	"errors"
	"fmt"

	"github.com/chazu/csgray/pkg/vecmath"
)

// ErrFocusParallel is returned by SetFocus when the focus direction is
// exactly the current up vector.
var ErrFocusParallel = errors.New("scene: focus direction parallel to up vector")

// DefaultAspect is the vertical to horizontal field-of-view ratio of a
// 320×240 screen.
const DefaultAspect = 240.0 / 320.0

// Camera maps normalized screen coordinates to world-space rays.
type Camera struct {
	origin  vecmath.Vec3
	up      vecmath.Vec3
	right   vecmath.Vec3
	forward vecmath.Vec3
	tanFovX float64
	tanFovY float64
}

// NewCamera returns a camera at the origin looking down -Z with +Y up.
func NewCamera() *Camera {
	return &Camera{
		up:      vecmath.Vec3{Y: 1},
		right:   vecmath.Vec3{X: 1},
		forward: vecmath.Vec3{Z: -1},
		tanFovX: 1,
		tanFovY: DefaultAspect,
	}
}

func (c *Camera) Origin() vecmath.Vec3  { return c.origin }
func (c *Camera) Up() vecmath.Vec3      { return c.up }
func (c *Camera) Right() vecmath.Vec3   { return c.right }
func (c *Camera) Forward() vecmath.Vec3 { return c.forward }

// FieldOfView returns the horizontal and vertical half-angle tangents.
func (c *Camera) FieldOfView() (tanX, tanY float64) {
	return c.tanFovX, c.tanFovY
}

// SetOrigin moves the camera without touching its basis.
func (c *Camera) SetOrigin(p vecmath.Vec3) {
	c.origin = p
}

// SetUp stores a normalized up vector.
func (c *Camera) SetUp(v vecmath.Vec3) error {
	u, err := v.Normalize()
	if err != nil {
		return fmt.Errorf("camera up: %w", err)
	}
	c.up = u
	return nil
}

// SetRight stores a normalized right vector.
func (c *Camera) SetRight(v vecmath.Vec3) error {
	r, err := v.Normalize()
	if err != nil {
		return fmt.Errorf("camera right: %w", err)
	}
	c.right = r
	return nil
}

// SetForward stores a normalized forward vector.
func (c *Camera) SetForward(v vecmath.Vec3) error {
	f, err := v.Normalize()
	if err != nil {
		return fmt.Errorf("camera forward: %w", err)
	}
	c.forward = f
	return nil
}

// SetFieldOfView sets the horizontal tangent and derives the vertical one
// from aspect (height / width).
func (c *Camera) SetFieldOfView(tanFovX, aspect float64) error {
	if tanFovX <= 0 || aspect <= 0 {
		return fmt.Errorf("camera field of view: tan %g aspect %g must be positive", tanFovX, aspect)
	}
	c.tanFovX = tanFovX
	c.tanFovY = aspect * tanFovX
	return nil
}

// SetFocus aims the camera at target, re-orthogonalizing the current up
// vector against the new forward direction. On error the camera is left
// unchanged.
func (c *Camera) SetFocus(target vecmath.Vec3) error {
	forward, err := target.Sub(c.origin).Normalize()
	if err != nil {
		return fmt.Errorf("camera focus %v from %v: %w", target, c.origin, err)
	}
	dot := forward.Dot(c.up)
	if dot == 1 {
		return fmt.Errorf("camera focus %v: %w", target, ErrFocusParallel)
	}
	up, err := c.up.Sub(forward.Scale(dot)).Normalize()
	if err != nil {
		return fmt.Errorf("camera focus %v: %w", target, err)
	}
	c.forward = forward
	c.up = up
	c.right = forward.Cross(up)
	return nil
}

// PixelRay returns the primary ray for screen coordinates u, v in [0, 1],
// with v growing downwards.
func (c *Camera) PixelRay(u, v float64) (origin, dir vecmath.Vec3) {
	d := c.forward.
		Add(c.up.Scale((0.5 - v) * c.tanFovY)).
		Add(c.right.Scale((u - 0.5) * c.tanFovX))
	return c.origin, d.Unit()
}
