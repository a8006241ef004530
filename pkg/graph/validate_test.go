package graph

import (
	"strings"
	"testing"

	"github.com/chazu/csgray/pkg/material"
	"github.com/chazu/csgray/pkg/vecmath"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

var testProps = material.Properties{
	Ambient:   vecmath.Vec3{X: 0.8, Y: 0.8, Z: 0.8},
	Diffuse:   vecmath.Vec3{X: 0.8, Y: 0.8, Z: 0.8},
	Specular:  vecmath.Vec3{X: 1, Y: 1, Z: 1},
	Shininess: 10,
}

// validScene is a floor, a half-ball shared by two placements, and a light.
type validScene struct {
	b                    *Builder
	floor, ball, cut     NodeID
	half, left, right    NodeID
	chrome, checker, sun NodeID
}

func buildValidScene(t *testing.T) *validScene {
	t.Helper()
	s := &validScene{b: NewBuilder()}
	b := s.b
	s.chrome = b.Simple("chrome", testProps)
	s.checker = b.Material("checker", MaterialData{
		Kind:  MaterialCheckerboard,
		Props: []material.Properties{testProps, testProps},
		Size:  1,
	})
	s.floor = b.Plane("floor", vecmath.Vec3{Y: 1}, -0.5)
	s.ball = b.Sphere("ball", 0.5)
	s.cut = b.Plane("cut", vecmath.Vec3{X: 1}, 0)
	s.half = b.Intersection("half", s.ball, s.cut)
	s.left = b.Transform("left", s.half, Translate(-1, 0, 0))
	s.right = b.Transform("right", s.half, RotateY(1), Translate(1, 0, 0))
	for _, pair := range [][2]NodeID{{s.floor, s.checker}, {s.ball, s.chrome}, {s.cut, s.chrome}} {
		if err := b.SetMaterial(pair[0], pair[1]); err != nil {
			t.Fatal(err)
		}
	}
	b.AddObject(s.floor)
	b.AddObject(s.left)
	b.AddObject(s.right)
	s.sun = b.Light("sun", vecmath.Vec3{X: 1, Y: 3, Z: 1}, vecmath.Vec3{X: 1, Y: 1, Z: 1})
	return s
}

// hasError returns true if errs contains at least one error-severity finding
// whose message contains substr.
func hasError(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityError && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func hasWarning(ws []ValidationWarning, substr string) bool {
	for _, w := range ws {
		if strings.Contains(w.Message, substr) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Tier 1
// ---------------------------------------------------------------------------

func TestValidateValidScene(t *testing.T) {
	s := buildValidScene(t)
	if errs := Validate(s.b.Graph()); len(errs) != 0 {
		t.Fatalf("expected no findings, got %v", errs)
	}
	res := ValidateAll(s.b.Graph())
	if !res.OK() || res.Err() != nil {
		t.Fatalf("ValidateAll errors: %v", res.Errors)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

func TestValidateStructure(t *testing.T) {
	ghost := NewNodeID("ghost")
	tests := []struct {
		name   string
		mutate func(s *validScene)
		want   string
	}{
		{"cycle", func(s *validScene) {
			s.b.Graph().Get(s.half).Children = []NodeID{s.ball, s.left}
		}, "cycle detected"},
		{"dangling child", func(s *validScene) {
			s.b.Graph().Get(s.left).Children = []NodeID{ghost}
		}, "child reference"},
		{"dangling material", func(s *validScene) {
			s.b.Graph().Get(s.ball).Material = ghost
		}, "material reference"},
		{"dangling root", func(s *validScene) {
			s.b.Graph().AddRoot(ghost)
		}, "root reference"},
		{"dangling light", func(s *validScene) {
			s.b.Graph().AddLight(ghost)
		}, "light reference"},
		{"duplicate name", func(s *validScene) {
			s.b.AddObject(s.b.Sphere("ball", 1))
		}, "duplicate name"},
		{"stale name index", func(s *validScene) {
			s.b.Graph().NameIndex["phantom"] = ghost
		}, "non-existent node"},
		{"transform with two children", func(s *validScene) {
			s.b.Graph().Get(s.left).Children = []NodeID{s.half, s.floor}
		}, "exactly one child"},
		{"empty intersection", func(s *validScene) {
			s.b.Graph().Get(s.half).Children = nil
		}, "at least one child"},
		{"sphere with child", func(s *validScene) {
			s.b.Graph().Get(s.ball).Children = []NodeID{s.cut}
		}, "cannot have children"},
		{"material as root", func(s *validScene) {
			s.b.AddObject(s.chrome)
		}, "not a surface"},
		{"light as child", func(s *validScene) {
			s.b.Graph().Get(s.half).Children = []NodeID{s.ball, s.sun}
		}, "not a surface"},
		{"surface as material", func(s *validScene) {
			s.b.Graph().Get(s.floor).Material = s.ball
		}, "material reference"},
		{"material on light", func(s *validScene) {
			s.b.Graph().Get(s.sun).Material = s.chrome
		}, "cannot carry a material"},
		{"payload mismatch", func(s *validScene) {
			s.b.Graph().Get(s.ball).Data = PlaneData{Normal: vecmath.Vec3{Y: 1}}
		}, "payload"},
		{"sphere registered as light", func(s *validScene) {
			s.b.Graph().AddLight(s.ball)
		}, "light"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := buildValidScene(t)
			tt.mutate(s)
			errs := Validate(s.b.Graph())
			if !hasError(errs, tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, errs)
			}
			if ValidateAll(s.b.Graph()).Err() == nil {
				t.Error("ValidateAll().Err() = nil")
			}
		})
	}
}

func TestValidateOrphanIsWarning(t *testing.T) {
	s := buildValidScene(t)
	s.b.Sphere("stray", 1)
	res := ValidateAll(s.b.Graph())
	if !res.OK() {
		t.Fatalf("orphan should not block: %v", res.Errors)
	}
	if !hasWarning(res.Warnings, "orphan") {
		t.Errorf("expected orphan warning, got %v", res.Warnings)
	}
}

func TestValidateSharedChildIsNotCycle(t *testing.T) {
	s := buildValidScene(t)
	if g := s.b.Graph(); g.Parents(s.half) != 2 {
		t.Fatalf("half has %d parents", g.Parents(s.half))
	}
	if hasError(Validate(s.b.Graph()), "cycle") {
		t.Error("shared child reported as cycle")
	}
}

// ---------------------------------------------------------------------------
// Tier 2 and 3
// ---------------------------------------------------------------------------

func TestValidateGeometry(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *validScene)
		want   string
	}{
		{"zero radius", func(s *validScene) {
			s.b.Graph().Get(s.ball).Data = SphereData{Radius: 0}
		}, "sphere radius"},
		{"zero normal", func(s *validScene) {
			s.b.Graph().Get(s.floor).Data = PlaneData{Offset: 1}
		}, "plane normal"},
		{"zero scale", func(s *validScene) {
			s.b.Graph().Get(s.left).Data = TransformData{Ops: []TransformOp{Scale(1, 0, 1)}}
		}, "scale"},
		{"checker size", func(s *validScene) {
			n := s.b.Graph().Get(s.checker)
			md := n.Data.(MaterialData)
			md.Size = 0
			n.Data = md
		}, "checkerboard size"},
		{"simple with two props", func(s *validScene) {
			s.b.Graph().Get(s.chrome).Data = MaterialData{Kind: MaterialSimple, Props: []material.Properties{testProps, testProps}}
		}, "needs 1 property sets"},
		{"map positions", func(s *validScene) {
			s.b.Graph().Get(s.chrome).Data = MaterialData{Kind: MaterialMap, Props: []material.Properties{testProps}, Positions: []float64{0, 1}}
		}, "positions"},
		{"empty map", func(s *validScene) {
			s.b.Graph().Get(s.chrome).Data = MaterialData{Kind: MaterialMap}
		}, "at least one node"},
		{"negative shininess", func(s *validScene) {
			p := testProps
			p.Shininess = -1
			s.b.Graph().Get(s.chrome).Data = MaterialData{Kind: MaterialSimple, Props: []material.Properties{p}}
		}, "shininess"},
		{"camera focus at origin", func(s *validScene) {
			s.b.Graph().Settings.Camera.Focus = s.b.Graph().Settings.Camera.Origin
		}, "coincides"},
		{"camera looking up", func(s *validScene) {
			s.b.Graph().Settings.Camera.Focus = vecmath.Vec3{Z: 4, Y: 10}
		}, "parallel"},
		{"camera looking down", func(s *validScene) {
			s.b.Graph().Settings.Camera.Focus = vecmath.Vec3{Z: 4, Y: -10}
		}, "parallel"},
		{"zero fov", func(s *validScene) {
			s.b.Graph().Settings.Camera.TanFovX = 0
		}, "field of view"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := buildValidScene(t)
			tt.mutate(s)
			res := ValidateAll(s.b.Graph())
			if !hasError(res.Errors, tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, res.Errors)
			}
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *validScene)
		want   string
	}{
		{"unshaded object", func(s *validScene) {
			s.b.Graph().Get(s.cut).Material = ZeroID
		}, "without a material"},
		{"dark light", func(s *validScene) {
			s.b.Graph().Get(s.sun).Data = LightData{Position: vecmath.Vec3{Y: 3}}
		}, "adds nothing"},
		{"no lights", func(s *validScene) {
			s.b.Graph().Lights = nil
		}, "no lights"},
		{"no objects", func(s *validScene) {
			s.b.Graph().Roots = nil
		}, "no objects"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := buildValidScene(t)
			tt.mutate(s)
			res := ValidateAll(s.b.Graph())
			if !res.OK() {
				t.Fatalf("warnings should not block: %v", res.Errors)
			}
			if !hasWarning(res.Warnings, tt.want) {
				t.Errorf("expected warning containing %q, got %v", tt.want, res.Warnings)
			}
		})
	}
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Message: "boom", Severity: SeverityError}
	if got := e.Error(); got != "[error] boom" {
		t.Errorf("Error() = %q", got)
	}
	id := NewNodeID("x")
	e = ValidationError{NodeID: id, Message: "odd", Severity: SeverityWarning}
	if got := e.Error(); got != "[warning] node "+id.Short()+": odd" {
		t.Errorf("Error() = %q", got)
	}
}
