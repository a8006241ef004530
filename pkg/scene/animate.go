package scene

import (
	"fmt"
	"math"

	"github.com/chazu/csgray/pkg/surface"
)

// bounceFloor is subtracted from the bounce curve; below zero the ball is
// squashed instead of moved further down.
const bounceFloor = 0.2

// Bounce poses tr as a ball bouncing at horizontal position x. The height
// follows amplitude·|cos(t·π/period)| − 0.2; negative heights squash the
// ball vertically. With spin set the ball also rolls about X by t radians.
// On error tr keeps its previous pose.
func Bounce(tr *surface.Transform, t, x, period, amplitude float64, spin bool) error {
	pose := surface.NewTransform(nil)
	y := amplitude*math.Abs(math.Cos(t*math.Pi/period)) - bounceFloor
	if y < 0 {
		if err := pose.Scale(1, 1+y, 1); err != nil {
			return fmt.Errorf("bounce squash at t=%g: %w", t, err)
		}
	}
	if spin {
		if err := pose.RotateX(t); err != nil {
			return err
		}
	}
	if err := pose.Translate(x, y, 0); err != nil {
		return err
	}
	tr.Set(pose)
	return nil
}

// BallSpec describes one bouncing transform.
type BallSpec struct {
	X         float64
	Period    float64
	Amplitude float64
	Spin      bool
}

// Ball1 and Ball2 are the two bouncing balls of the demo scene.
var (
	Ball1 = BallSpec{X: -0.6, Period: 5, Amplitude: 1, Spin: true}
	Ball2 = BallSpec{X: 0.6, Period: 4, Amplitude: 0.8}
)

// Animator drives a set of bouncing transforms from a shared clock.
type Animator struct {
	Time  float64
	balls []animated
}

type animated struct {
	tr   *surface.Transform
	spec BallSpec
}

// NewAnimator returns an animator with no transforms.
func NewAnimator() *Animator {
	return &Animator{}
}

// Add registers tr to bounce according to spec.
func (a *Animator) Add(tr *surface.Transform, spec BallSpec) {
	a.balls = append(a.balls, animated{tr: tr, spec: spec})
}

// Len returns the number of animated transforms.
func (a *Animator) Len() int {
	return len(a.balls)
}

// Tick advances the clock by dt seconds and reposes every transform. It
// must only be called between frames.
func (a *Animator) Tick(dt float64) error {
	a.Time += dt
	return a.Pose()
}

// Pose applies the current clock without advancing it.
func (a *Animator) Pose() error {
	for _, b := range a.balls {
		s := b.spec
		if err := Bounce(b.tr, a.Time, s.X, s.Period, s.Amplitude, s.Spin); err != nil {
			return err
		}
	}
	return nil
}
