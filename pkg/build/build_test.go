package build_test

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/csgray/pkg/build"
	"github.com/chazu/csgray/pkg/engine"
	"github.com/chazu/csgray/pkg/graph"
	"github.com/chazu/csgray/pkg/material"
	"github.com/chazu/csgray/pkg/surface"
	"github.com/chazu/csgray/pkg/vecmath"
)

var white = material.Properties{
	Ambient:   vecmath.Vec3{X: 1, Y: 1, Z: 1},
	Diffuse:   vecmath.Vec3{X: 1, Y: 1, Z: 1},
	Shininess: 10,
}

// ballScene is a half ball placed twice and a light.
func ballScene() (*graph.Builder, graph.NodeID) {
	b := graph.NewBuilder()
	m := b.Simple("white", white)
	ball := b.Sphere("ball", 0.5)
	cut := b.Plane("cut", vecmath.Vec3{X: 1}, 0)
	half := b.Intersection("half", ball, cut)
	for _, id := range []graph.NodeID{ball, cut} {
		if err := b.SetMaterial(id, m); err != nil {
			panic(err)
		}
	}
	b.AddObject(b.Transform("left", half, graph.Translate(-1, 0, 0)))
	b.AddObject(b.Transform("right", half, graph.Translate(1, 0, 0)))
	b.Light("sun", vecmath.Vec3{X: 1, Y: 3, Z: 1}, vecmath.Vec3{X: 1, Y: 1, Z: 1})
	return b, half
}

func TestBuildObjectsAndLights(t *testing.T) {
	b, _ := ballScene()
	res, err := build.Build(b.Graph())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n := len(res.Scene.Objects()); n != 2 {
		t.Errorf("objects = %d, want 2", n)
	}
	if n := len(res.Scene.Lights()); n != 1 {
		t.Fatalf("lights = %d, want 1", n)
	}
	if p := res.Scene.Lights()[0].Position; p != (vecmath.Vec3{X: 1, Y: 3, Z: 1}) {
		t.Errorf("light position = %v", p)
	}
	if res.Field == nil {
		t.Error("nil noise field")
	}
	if a := res.Scene.Ambient(); a != (vecmath.Vec3{X: 0.2, Y: 0.2, Z: 0.2}) {
		t.Errorf("ambient = %v", a)
	}
}

func TestBuildSharesNodes(t *testing.T) {
	b, _ := ballScene()
	res, err := build.Build(b.Graph())
	if err != nil {
		t.Fatal(err)
	}
	left, right := res.Transforms["left"], res.Transforms["right"]
	if left == nil || right == nil {
		t.Fatalf("transforms = %v", res.Transforms)
	}
	if left.Child() != right.Child() {
		t.Error("shared intersection compiled twice")
	}
}

func TestBuildGeometry(t *testing.T) {
	b, _ := ballScene()
	res, err := build.Build(b.Graph())
	if err != nil {
		t.Fatal(err)
	}
	tc := surface.NewTrace(0)
	dir := vecmath.Vec3{Z: -1}

	// The left half keeps x < 0 of the ball, which sits at x = -1.
	tests := []struct {
		name   string
		origin vecmath.Vec3
		want   float64
	}{
		{"left ball, kept half", vecmath.Vec3{X: -1.2, Z: 5}, 5 - math.Sqrt(0.21)},
		{"left ball, cut half", vecmath.Vec3{X: -0.8, Z: 5}, surface.NoHit},
		{"right ball, kept half", vecmath.Vec3{X: 0.8, Z: 5}, 5 - math.Sqrt(0.21)},
		{"between the balls", vecmath.Vec3{Z: 5}, surface.NoHit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best := surface.NoHit
			for _, obj := range res.Scene.Objects() {
				if d := obj.LineTest(tc, tt.origin, dir, surface.NoHit); d < best {
					best = d
				}
			}
			if math.Abs(best-tt.want) > 1e-9 {
				t.Errorf("distance = %g, want %g", best, tt.want)
			}
		})
	}
}

func TestBuildMaterialResolves(t *testing.T) {
	b := graph.NewBuilder()
	s := b.Sphere("s", 1)
	if err := b.SetMaterial(s, b.Simple("m", white)); err != nil {
		t.Fatal(err)
	}
	b.AddObject(s)
	res, err := build.Build(b.Graph())
	if err != nil {
		t.Fatal(err)
	}
	obj := res.Scene.Objects()[0]
	tc := surface.NewTrace(0)
	p := vecmath.Vec3{Z: 1}
	props, _, ok := obj.LightingProperties(tc, p, obj.Normal(tc, p))
	if !ok || props.Shininess != 10 {
		t.Errorf("props = %+v ok=%v", props, ok)
	}
}

func TestBuildCamera(t *testing.T) {
	b, _ := ballScene()
	g := b.Graph()
	g.Settings.Camera.Origin = vecmath.Vec3{X: 4}
	g.Settings.Camera.TanFovX = 0.5
	res, err := build.Build(g)
	if err != nil {
		t.Fatal(err)
	}
	cam := res.Scene.Camera()
	if cam.Origin() != (vecmath.Vec3{X: 4}) {
		t.Errorf("origin = %v", cam.Origin())
	}
	f := cam.Forward()
	if math.Abs(f.X+1) > 1e-12 || math.Abs(f.Y) > 1e-12 || math.Abs(f.Z) > 1e-12 {
		t.Errorf("forward = %v, want (-1, 0, 0)", f)
	}
	if tx, ty := cam.FieldOfView(); tx != 0.5 || math.Abs(ty-0.375) > 1e-12 {
		t.Errorf("fov = %g, %g", tx, ty)
	}
}

func TestBuildRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *graph.SceneGraph, half graph.NodeID)
		want   string
	}{
		{"cycle", func(g *graph.SceneGraph, half graph.NodeID) {
			left := g.MustLookup("left").ID
			g.Get(half).Children = append(g.Get(half).Children, left)
		}, "cycle"},
		{"zero radius", func(g *graph.SceneGraph, _ graph.NodeID) {
			g.MustLookup("ball").Data = graph.SphereData{}
		}, "radius"},
		{"camera at focus", func(g *graph.SceneGraph, _ graph.NodeID) {
			g.Settings.Camera.Origin = vecmath.Vec3{}
		}, "coincides"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, half := ballScene()
			tt.mutate(b.Graph(), half)
			_, err := build.Build(b.Graph())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
	if _, err := build.Build(nil); err == nil {
		t.Error("Build(nil) should fail")
	}
}

func TestBuildFromScript(t *testing.T) {
	g, evalErrs, err := engine.NewEngine().Evaluate(`
(def marble (material-map 0 (props :diffuse 0.9) 1 (props :diffuse 0.1)))
(def oak (wood (props :diffuse 0.3) (props :diffuse 0.7)))
(add-object
  (plane :offset -1 :material marble)
  (transform (sphere :material oak) :scale 0.5 :name "ball1")
  (inverse (sphere :radius 10 :material (props :ambient 0.1))))
(light :at (vec3 0 5 0))
(seed 3)
`)
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("evaluate: %v %v", err, evalErrs)
	}
	res, err := build.Build(g)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.Scene.Objects()) != 3 {
		t.Errorf("objects = %d", len(res.Scene.Objects()))
	}
	if res.Transforms["ball1"] == nil {
		t.Error("named transform missing")
	}
}
