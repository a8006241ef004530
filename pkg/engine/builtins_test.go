package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/csgray/pkg/graph"
	"github.com/chazu/csgray/pkg/vecmath"
)

// ---------------------------------------------------------------------------
// Preprocessing
// ---------------------------------------------------------------------------

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"simple keyword", `(sphere :radius 2)`, `(sphere "__kw_radius" 2)`},
		{"multiple keywords", `(light :at p :color c)`, `(light "__kw_at" p "__kw_color" c)`},
		{"keyword in string preserved", `"thing with :keyword inside"`, `"thing with :keyword inside"`},
		{"escaped quote in string", `"a \" :b" :c`, `"a \" :b" "__kw_c"`},
		{"backtick string preserved", "`add-object :x`", "`add-object :x`"},
		{"assignment operator preserved", `(def x := 10)`, `(def x := 10)`},
		{"kebab-case identifier", `(add-object left-ball)`, `(add_object left_ball)`},
		{"hyphen before digit kept", `(def a-1 2)`, `(def a-1 2)`},
		{"hyphenated keyword", `:rotate-x 1`, `"__kw_rotate-x" 1`},
		{"minus operator preserved", `(- 10 5)`, `(- 10 5)`},
		{"negative literal preserved", `(vec3 0 -0.5 0)`, `(vec3 0 -0.5 0)`},
		{"subtraction of symbols", `(- a b)`, `(- a b)`},
		{"comment converted", `;; comment with :keyword`, `// comment with :keyword`},
		{"single semicolon comment", "; c\n(cone)", "// c\n(cone)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preprocessSource(tt.input); got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func mustEval(t *testing.T, source string) *graph.SceneGraph {
	t.Helper()
	g, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if g == nil {
		t.Fatal("expected non-nil graph")
	}
	return g
}

func mustNode(t *testing.T, g *graph.SceneGraph, name string) *graph.Node {
	t.Helper()
	n := g.Lookup(name)
	if n == nil {
		t.Fatalf("no node named %q", name)
	}
	return n
}

func vecNear(a, b vecmath.Vec3) bool {
	return math.Abs(a.X-b.X) < 1e-12 && math.Abs(a.Y-b.Y) < 1e-12 && math.Abs(a.Z-b.Z) < 1e-12
}

// ---------------------------------------------------------------------------
// Builtins
// ---------------------------------------------------------------------------

func TestSphereWithMaterial(t *testing.T) {
	g := mustEval(t, `
(def chrome (simple-material
  (props :ambient 0.2 :diffuse (rgb 0.5 0.6 0.7) :specular 1 :shininess 20)
  :name "chrome"))
(add-object (sphere :radius 0.5 :material chrome :name "ball"))
`)
	ball := mustNode(t, g, "ball")
	if ball.Kind != graph.NodeSphere {
		t.Fatalf("kind = %s", ball.Kind)
	}
	if sd := ball.Data.(graph.SphereData); sd.Radius != 0.5 {
		t.Errorf("radius = %g", sd.Radius)
	}
	chrome := mustNode(t, g, "chrome")
	if ball.Material != chrome.ID {
		t.Errorf("material = %s, want %s", ball.Material.Short(), chrome.ID.Short())
	}
	md := chrome.Data.(graph.MaterialData)
	if md.Kind != graph.MaterialSimple || len(md.Props) != 1 {
		t.Fatalf("material data = %+v", md)
	}
	p := md.Props[0]
	if !vecNear(p.Ambient, vecmath.Vec3{X: 0.2, Y: 0.2, Z: 0.2}) ||
		!vecNear(p.Diffuse, vecmath.Vec3{X: 0.5, Y: 0.6, Z: 0.7}) ||
		p.Shininess != 20 {
		t.Errorf("props = %+v", p)
	}
	if len(g.Roots) != 1 || g.Roots[0] != ball.ID {
		t.Errorf("roots = %v", g.Roots)
	}
}

func TestSurfaceDefaults(t *testing.T) {
	g := mustEval(t, `
(sphere :name "s")
(sphere 3 :name "s3")
(plane :name "p")
(cone :name "c")
`)
	if r := mustNode(t, g, "s").Data.(graph.SphereData).Radius; r != 1 {
		t.Errorf("default radius = %g", r)
	}
	if r := mustNode(t, g, "s3").Data.(graph.SphereData).Radius; r != 3 {
		t.Errorf("positional radius = %g", r)
	}
	pd := mustNode(t, g, "p").Data.(graph.PlaneData)
	if pd.Normal != (vecmath.Vec3{Y: 1}) || pd.Offset != 0 {
		t.Errorf("default plane = %+v", pd)
	}
	if mustNode(t, g, "c").Kind != graph.NodeCone {
		t.Error("cone kind")
	}
	if len(g.Roots) != 0 {
		t.Errorf("surfaces should not become objects without add-object, roots = %v", g.Roots)
	}
}

func TestPropsAsMaterial(t *testing.T) {
	g := mustEval(t, `(add-object (sphere :material (props :diffuse 1 :shininess 5) :name "s"))`)
	s := mustNode(t, g, "s")
	m := g.Get(s.Material)
	if m == nil || m.Kind != graph.NodeMaterial {
		t.Fatalf("expected anonymous material, got %v", m)
	}
	if len(g.Materials()) != 1 {
		t.Errorf("materials = %d", len(g.Materials()))
	}
}

func TestTransformStepOrder(t *testing.T) {
	g := mustEval(t, `(transform (sphere) :scale 2 :rotate-y 0.5 :translate (vec3 1 -2 3) :rotate-x 1 :name "t")`)
	td := mustNode(t, g, "t").Data.(graph.TransformData)
	want := []graph.TransformOp{
		graph.Scale(2, 2, 2),
		graph.RotateY(0.5),
		graph.Translate(1, -2, 3),
		graph.RotateX(1),
	}
	if len(td.Ops) != len(want) {
		t.Fatalf("ops = %+v", td.Ops)
	}
	for i := range want {
		if td.Ops[i] != want[i] {
			t.Errorf("op %d = %+v, want %+v", i, td.Ops[i], want[i])
		}
	}
}

func TestSharedChild(t *testing.T) {
	g := mustEval(t, `
(def half (intersection (sphere) (plane :normal (vec3 1 0 0)) :name "half"))
(add-object
  (transform half :translate (vec3 -1 0 0))
  (transform half :translate (vec3 1 0 0)))
`)
	half := mustNode(t, g, "half")
	if got := g.Parents(half.ID); got != 2 {
		t.Errorf("Parents(half) = %d, want 2", got)
	}
	if len(g.Roots) != 2 {
		t.Errorf("roots = %d, want 2", len(g.Roots))
	}
	if len(half.Children) != 2 {
		t.Errorf("half children = %d", len(half.Children))
	}
}

func TestIntersectionFromList(t *testing.T) {
	g := mustEval(t, `
(def parts (list (sphere) (plane) (cone)))
(intersection parts :name "all")
(inverse (sphere) :name "outside")
`)
	if n := len(mustNode(t, g, "all").Children); n != 3 {
		t.Errorf("children = %d, want 3", n)
	}
	if mustNode(t, g, "outside").Kind != graph.NodeInverse {
		t.Error("inverse kind")
	}
}

func TestMaterials(t *testing.T) {
	g := mustEval(t, `
(def a (props :diffuse 1))
(def b (props :diffuse 0.1))
(checkerboard a b :size 0.5 :name "check")
(material-map 0 a 0.4 b 1 a :name "marble")
(wood a b :name "oak")
(noise-material :name "gray")
`)
	tests := []struct {
		name  string
		kind  graph.MaterialKind
		props int
	}{
		{"check", graph.MaterialCheckerboard, 2},
		{"marble", graph.MaterialMap, 3},
		{"oak", graph.MaterialWood, 2},
		{"gray", graph.MaterialNoise, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := mustNode(t, g, tt.name).Data.(graph.MaterialData)
			if md.Kind != tt.kind || len(md.Props) != tt.props {
				t.Errorf("data = %+v", md)
			}
		})
	}
	if s := mustNode(t, g, "check").Data.(graph.MaterialData).Size; s != 0.5 {
		t.Errorf("checker size = %g", s)
	}
	pos := mustNode(t, g, "marble").Data.(graph.MaterialData).Positions
	if len(pos) != 3 || pos[1] != 0.4 {
		t.Errorf("positions = %v", pos)
	}
}

func TestLightAndSettings(t *testing.T) {
	g := mustEval(t, `
(light :at (vec3 1 3 1) :name "sun")
(light :at (vec3 -1 2 0) :color (rgb 0.5 0 0))
(camera :origin (vec3 0 1 5) :fov 0.8)
(ambient 0.3)
(background (rgb 0 0 0.1))
(seed 7)
`)
	if len(g.Lights) != 2 {
		t.Fatalf("lights = %d", len(g.Lights))
	}
	ld := mustNode(t, g, "sun").Data.(graph.LightData)
	if ld.Position != (vecmath.Vec3{X: 1, Y: 3, Z: 1}) || ld.Color != (vecmath.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("sun = %+v", ld)
	}
	s := g.Settings
	if s.Camera.Origin != (vecmath.Vec3{Y: 1, Z: 5}) || s.Camera.TanFovX != 0.8 {
		t.Errorf("camera = %+v", s.Camera)
	}
	if s.Camera.Up != (vecmath.Vec3{Y: 1}) {
		t.Errorf("camera up should keep its default, got %v", s.Camera.Up)
	}
	if !vecNear(s.Ambient, vecmath.Vec3{X: 0.3, Y: 0.3, Z: 0.3}) {
		t.Errorf("ambient = %v", s.Ambient)
	}
	if !vecNear(s.Background, vecmath.Vec3{Z: 0.1}) {
		t.Errorf("background = %v", s.Background)
	}
	if s.Seed != 7 {
		t.Errorf("seed = %d", s.Seed)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"vec3 arity", `(vec3 1 2)`, "exactly 3"},
		{"transform without child", `(transform :translate (vec3 1 0 0))`, "exactly one child"},
		{"transform unknown step", `(transform (sphere) :shear 1)`, "unknown keyword"},
		{"transform of material", `(transform (noise-material))`, "expected surface"},
		{"material is a surface", `(sphere :material (sphere))`, "not a material"},
		{"duplicate name", `(sphere :name "a") (cone :name "a")`, "already used"},
		{"props positional", `(props 1)`, "only keyword"},
		{"props unknown", `(props :glow 1)`, "unknown keyword"},
		{"checkerboard arity", `(checkerboard (props))`, "2 props"},
		{"material-map odd", `(material-map 0 (props) 1)`, "pairs"},
		{"empty intersection", `(intersection)`, "at least one child"},
		{"add-object material", `(add-object (noise-material))`, "expected surface"},
		{"seed float", `(seed 1.5)`, "integer"},
		{"camera unknown", `(camera :zoom 2)`, "unknown keyword"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("fatal error: %v", err)
			}
			if g != nil {
				t.Error("expected nil graph")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected eval error")
			}
			if !strings.Contains(evalErrs[0].Message, tt.want) {
				t.Errorf("message = %q, want containing %q", evalErrs[0].Message, tt.want)
			}
		})
	}
}

func TestDeterministicGraph(t *testing.T) {
	src := `(add-object (transform (sphere) :translate (vec3 0 1 0)) (plane))`
	a, b := mustEval(t, src), mustEval(t, src)
	if len(a.Roots) != len(b.Roots) {
		t.Fatal("root counts differ")
	}
	for i := range a.Roots {
		if a.Roots[i] != b.Roots[i] {
			t.Errorf("root %d differs between evaluations", i)
		}
	}
}

func TestScriptValidates(t *testing.T) {
	g := mustEval(t, `
;; two half balls on a checker floor
(def white (props :ambient 0.8 :diffuse 0.8 :specular 1 :shininess 10))
(def black (props :ambient 0.1 :diffuse 0.1 :specular 1 :shininess 10))
(def floor-mat (checkerboard white black :size 0.5))
(def chrome (simple-material (props :ambient 0.1 :diffuse 0.2 :specular 1 :shininess 40 :reflection 0.8)))

(def half
  (intersection
    (sphere :radius 0.5 :material chrome)
    (plane :normal (vec3 1 0 0) :material chrome)))

(add-object
  (plane :normal (vec3 0 1 0) :offset -0.5 :material floor-mat)
  (transform half :translate (vec3 -1 0 0) :name "ball1")
  (transform half :rotate-y 3.14159 :translate (vec3 1 0 0) :name "ball2"))

(light :at (vec3 1 3 1))
(camera :origin (vec3 0 1 4))
`)
	res := graph.ValidateAll(g)
	if !res.OK() {
		t.Fatalf("validation errors: %v", res.Errors)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if len(g.Roots) != 3 {
		t.Errorf("roots = %d, want 3", len(g.Roots))
	}
}
