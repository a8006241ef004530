package scene

import (
	"fmt"

	"github.com/chazu/csgray/pkg/material"
	"github.com/chazu/csgray/pkg/noise"
	"github.com/chazu/csgray/pkg/surface"
	"github.com/chazu/csgray/pkg/vecmath"
)

// Demo bundles the built-in scene with its controllers.
type Demo struct {
	Scene    *Scene
	Animator *Animator
	Orbit    *Orbit
	// Ball1 and Ball2 are the animated transforms.
	Ball1 *surface.Transform
	Ball2 *surface.Transform
}

func gray(v float64) vecmath.Vec3 {
	return vecmath.Vec3{X: v, Y: v, Z: v}
}

func props(c, spec vecmath.Vec3, shininess float64, refl vecmath.Vec3) material.Properties {
	return material.Properties{Ambient: c, Diffuse: c, Specular: spec, Shininess: shininess, Reflection: refl}
}

// Property sets used by the demo.
var (
	FloorA    = props(gray(0.8), gray(1), 10, gray(0.5))
	FloorB    = props(vecmath.NewVec3(0.8, 0.4, 0.4), vecmath.NewVec3(1, 0.5, 0.5), 10, vecmath.NewVec3(0.5, 0.25, 0.25))
	Chrome    = props(gray(0.8), gray(2), 10, gray(0.5))
	WoodDark  = props(vecmath.NewVec3(0.4, 0.2, 0), vecmath.NewVec3(2, 2, 1), 15, vecmath.Vec3{})
	WoodLight = props(vecmath.NewVec3(0.713, 0.6, 0.29), vecmath.NewVec3(2, 2, 1), 15, vecmath.Vec3{})
	Marble0   = props(vecmath.NewVec3(0.6, 0.8, 0.6), gray(1), 10, gray(0.5))
	Marble1   = props(vecmath.NewVec3(0.2, 0.4, 0.2), gray(1), 10, gray(0.5))
)

// NewDemo builds the three-object demo: a marble floor, a wooden ball, a
// ball cut in half by a checkered plane, and a capped cone, lit by one white
// light and viewed from an orbit of radius 4.
func NewDemo(field *noise.Field) (*Demo, error) {
	s := New()
	s.AddLight(NewLight(vecmath.NewVec3(1, 3, 1), gray(1)))
	s.SetAmbientLight(gray(0.2))

	floor := surface.NewPlane(vecmath.Vec3{Y: 1}, -0.5)
	marble := material.NewMap(material.NoiseDriver(field))
	marble.Add(-0.1, Marble0)
	marble.Add(0, Marble1)
	marble.Add(0.1, Marble0)
	floor.SetMaterial(marble)
	s.AddObject(floor)

	sphere1 := surface.NewSphere(0.5)
	sphere1.SetMaterial(material.NewWood(field, WoodDark, WoodLight))
	ball1 := surface.NewTransform(sphere1)
	s.AddObject(ball1)

	sphere2 := surface.NewSphere(0.5)
	sphere2.SetMaterial(material.NewSimple(Chrome))
	cut := surface.NewPlane(vecmath.Vec3{X: 1}, 0)
	cut.SetMaterial(material.NewCheckerboard(1, FloorA, FloorB))
	ball2 := surface.NewTransform(surface.NewIntersection(sphere2, cut))
	s.AddObject(ball2)

	cone := surface.NewCone()
	cone.SetMaterial(material.NewSimple(Chrome))
	capPlane := surface.NewPlane(vecmath.Vec3{Z: 1}, 0)
	capPlane.SetMaterial(material.NewSimple(Chrome))
	capped := surface.NewTransform(capPlane)
	if err := capped.Translate(0, 0, 1); err != nil {
		return nil, fmt.Errorf("demo cone cap: %w", err)
	}
	coneObj := surface.NewTransform(surface.NewIntersection(surface.NewTransform(cone), capped))
	if err := coneObj.Translate(0, 0.5, 1); err != nil {
		return nil, fmt.Errorf("demo cone: %w", err)
	}
	s.AddObject(coneObj)

	anim := NewAnimator()
	anim.Add(ball1, Ball1)
	anim.Add(ball2, Ball2)
	if err := anim.Pose(); err != nil {
		return nil, fmt.Errorf("demo pose: %w", err)
	}

	orbit := NewOrbit(4)
	if err := orbit.Apply(s.Camera()); err != nil {
		return nil, fmt.Errorf("demo camera: %w", err)
	}

	return &Demo{Scene: s, Animator: anim, Orbit: orbit, Ball1: ball1, Ball2: ball2}, nil
}
