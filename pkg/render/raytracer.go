// Package render turns a scene into pixels: the recursive Whitted shader,
// a guided parallel-for over the pixel grid, and the single-threaded debug
// path.
package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/csgray/pkg/scene"
	"github.com/chazu/csgray/pkg/surface"
	"github.com/chazu/csgray/pkg/vecmath"
)

const (
	// hitEpsilon rejects hits at the ray origin.
	hitEpsilon = 1e-5
	// reflectOffset pushes reflected rays off the surface they leave.
	reflectOffset = 1e-4
	// minContribution prunes reflection recursion.
	minContribution = 0.05
)

// ErrUnshaded reports a hit on a surface that resolves no material.
var ErrUnshaded = errors.New("render: surface has no material")

// Raytracer shades rays against a scene. It holds no per-ray state and is
// shared by all workers; per-worker state travels in the surface.Trace.
type Raytracer struct {
	scene  *scene.Scene
	width  int
	height int
}

// NewRaytracer creates a raytracer for a width×height screen.
func NewRaytracer(s *scene.Scene, width, height int) *Raytracer {
	return &Raytracer{scene: s, width: width, height: height}
}

// Scene returns the scene being traced.
func (rt *Raytracer) Scene() *scene.Scene {
	return rt.scene
}

// RenderPixel shades screen pixel (x, y). The result is not clamped.
func (rt *Raytracer) RenderPixel(tc *surface.Trace, x, y int) vecmath.Vec3 {
	o, d := rt.scene.Camera().PixelRay(float64(x)/float64(rt.width), float64(y)/float64(rt.height))
	return rt.Shade(tc, o, d, 1)
}

// Shade returns the colour seen along o + t·d. contribution is the weight
// this ray carries into the final pixel and drives recursion pruning.
func (rt *Raytracer) Shade(tc *surface.Trace, o, d vecmath.Vec3, contribution float64) vecmath.Vec3 {
	dbg := tc.Debug
	if dbg != nil {
		dbg.Enter("Raytrace %v + t%v", o, d)
	}

	objects := rt.scene.Objects()
	closestDist := surface.NoHit
	closestIdx := -1
	for i, obj := range objects {
		dist := obj.LineTest(tc, o, d, closestDist)
		if dist < closestDist && dist > hitEpsilon {
			closestDist = dist
			closestIdx = i
		}
	}
	if closestIdx < 0 {
		if dbg != nil {
			dbg.Leave("Miss")
		}
		return rt.scene.Background()
	}
	closest := objects[closestIdx]

	// A surface shared by several roots keeps only one "last hit" per
	// slot; replay the winning test so Normal sees its own state.
	if closestIdx != len(objects)-1 {
		closest.LineTest(tc, o, d, surface.NoHit)
	}

	point := o.Add(d.Scale(closestDist))
	normal := closest.Normal(tc, point)
	props, normal, ok := closest.LightingProperties(tc, point, normal)
	if !ok {
		return rt.fail(tc, fmt.Errorf("%w at %v", ErrUnshaded, point))
	}
	normal, err := normal.Normalize()
	if err != nil {
		return rt.fail(tc, fmt.Errorf("surface normal at %v: %w", point, err))
	}
	eye := d.Negate().Unit()

	rgb := props.Ambient.Mul(rt.scene.Ambient())

	for _, light := range rt.scene.Lights() {
		toLight := light.Position.Sub(point)
		lightDist := toLight.Length()
		if lightDist == 0 {
			continue
		}
		l := toLight.Scale(1 / lightDist)
		if rt.shadowed(tc, closest, point, l, lightDist) {
			continue
		}
		diffusePower := normal.Dot(l)
		if diffusePower <= 0 {
			continue
		}
		rgb = rgb.Add(light.Color.Mul(props.Diffuse).Scale(diffusePower))

		if specDot := l.Reflect(normal).Dot(eye); specDot > 0 {
			rgb = rgb.Add(props.Specular.Scale(math.Pow(specDot, props.Shininess)))
		}
	}

	reflectivity := 0.4*props.Reflection.X + 0.4*props.Reflection.Y + 0.2*props.Reflection.Z
	if contribution*reflectivity > minContribution {
		r := eye.Reflect(normal)
		incoming := rt.Shade(tc, point.Add(r.Scale(reflectOffset)), r, contribution*reflectivity)
		rgb = rgb.Add(incoming.Mul(props.Reflection))
	}

	if dbg != nil {
		dbg.Leave("RGB %.3f %.3f %.3f", rgb.X, rgb.Y, rgb.Z)
	}
	return rgb
}

// fail records err on the trace and ends this ray with the background
// colour. The pixel is reported as failed.
func (rt *Raytracer) fail(tc *surface.Trace, err error) vecmath.Vec3 {
	tc.Fail(err)
	if tc.Debug != nil {
		tc.Debug.Leave("error: %v", err)
	}
	return rt.scene.Background()
}

// shadowed casts a feeler from point towards a light. The surface being lit
// never shadows itself.
func (rt *Raytracer) shadowed(tc *surface.Trace, self surface.Surface, point, l vecmath.Vec3, lightDist float64) bool {
	for _, obj := range rt.scene.Objects() {
		if obj == self {
			continue
		}
		if obj.LineTest(tc, point, l, lightDist) < lightDist {
			return true
		}
	}
	return false
}
