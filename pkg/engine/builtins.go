package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/csgray/pkg/graph"
	"github.com/chazu/csgray/pkg/material"
	"github.com/chazu/csgray/pkg/vecmath"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites scene scripts into something zygomys accepts:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords never
//     need to be bound as globals.
//  2. A hyphen between two identifier characters becomes an underscore
//     (add-object -> add_object). zygomys reads a bare hyphen as minus.
//  3. ; line comments become // comments.
//
// String literals are copied untouched and line breaks are preserved, so
// line numbers in zygomys errors still match the original script.
func preprocessSource(source string) string {
	out := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		c := b[i]
		switch {
		case c == '"':
			j := skipQuoted(b, i)
			out = append(out, b[i:j]...)
			i = j
		case c == '`':
			j := i + 1
			for j < len(b) && b[j] != '`' {
				j++
			}
			if j < len(b) {
				j++
			}
			out = append(out, b[i:j]...)
			i = j
		case c == ';':
			out = append(out, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}
		case c == ':' && i+1 < len(b) && b[i+1] == '=':
			out = append(out, ':', '=')
			i += 2
		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, b[i+1:j]...)
			out = append(out, '"')
			i = j
		case c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out = append(out, '_')
			i++
		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

// skipQuoted returns the index just past the double-quoted literal that
// starts at b[i], honouring backslash escapes.
func skipQuoted(b []byte, i int) int {
	j := i + 1
	for j < len(b) && b[j] != '"' {
		if b[j] == '\\' && j+1 < len(b) {
			j++
		}
		j++
	}
	if j < len(b) {
		j++
	}
	return j
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Script values
// ---------------------------------------------------------------------------

// sexpVec3 carries a point, direction or colour between builtins.
type sexpVec3 struct {
	vec vecmath.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpProps carries one set of lighting properties.
type sexpProps struct {
	props material.Properties
}

func (p *sexpProps) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(props :shininess %g)", p.props.Shininess)
}
func (p *sexpProps) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef is a handle on a node that has been added to the graph.
type sexpNodeRef struct {
	id   graph.NodeID
	kind graph.NodeKind
	name string
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(%s %q)", n.kind, n.name)
	}
	return fmt.Sprintf("(%s %s)", n.kind, n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix marks keyword strings produced by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

type kwPair struct {
	name  string
	value zygo.Sexp
}

// kwArgs is a call's argument list split into keyword and positional parts.
// order keeps every keyword in source order, repeats included.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []kwPair
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		var v zygo.Sexp = zygo.SexpNull
		if i+1 < len(args) {
			v = args[i+1]
			i++
		}
		result.kw[name] = v
		result.order = append(result.order, kwPair{name: name, value: v})
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt64(s zygo.Sexp) (int64, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (vecmath.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return vecmath.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toColor accepts a vec3/rgb value or a single number meaning gray.
func toColor(s zygo.Sexp) (vecmath.Vec3, error) {
	if f, err := toFloat64(s); err == nil {
		return vecmath.Vec3{X: f, Y: f, Z: f}, nil
	}
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return vecmath.Vec3{}, fmt.Errorf("expected colour or number, got %T (%s)", s, s.SexpString(nil))
}

func toProps(s zygo.Sexp) (material.Properties, error) {
	if p, ok := s.(*sexpProps); ok {
		return p.props, nil
	}
	return material.Properties{}, fmt.Errorf("expected props, got %T (%s)", s, s.SexpString(nil))
}

func toNodeRef(s zygo.Sexp) (*sexpNodeRef, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref, nil
	}
	return nil, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toSurface extracts a reference that must name a surface node.
func toSurface(s zygo.Sexp) (graph.NodeID, error) {
	ref, err := toNodeRef(s)
	if err != nil {
		return graph.ZeroID, err
	}
	if !ref.kind.IsSurface() {
		return graph.ZeroID, fmt.Errorf("expected surface, got %s", ref.SexpString(nil))
	}
	return ref.id, nil
}

// sexpListToSlice converts a Lisp list or array into a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// flattenArgs splices list and array arguments into the argument list, so
// (intersection parts) works as well as (intersection a b c).
func flattenArgs(args []zygo.Sexp) []zygo.Sexp {
	var out []zygo.Sexp
	for _, a := range args {
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(a)
			if err == nil {
				out = append(out, flattenArgs(items)...)
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtinFunc is the signature zygomys expects from Go functions.
type builtinFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// builtins holds the graph a script is populating.
type builtins struct {
	b *graph.Builder
}

// registerBuiltins installs the scene builtins into env. Every builtin writes
// into b. Scripts must be passed through preprocessSource first so that
// keywords arrive as recognisable strings and kebab-case names match the
// underscore names registered here.
func registerBuiltins(env *zygo.Zlisp, b *graph.Builder) {
	r := &builtins{b: b}
	table := map[string]builtinFunc{
		"vec3":            r.vec3,
		"rgb":             r.vec3,
		"props":           r.props,
		"simple_material": r.simpleMaterial,
		"checkerboard":    r.checkerboard,
		"noise_material":  r.noiseMaterial,
		"material_map":    r.materialMap,
		"wood":            r.wood,
		"sphere":          r.sphere,
		"plane":           r.plane,
		"cone":            r.cone,
		"transform":       r.transform,
		"intersection":    r.intersection,
		"inverse":         r.inverse,
		"light":           r.light,
		"camera":          r.camera,
		"ambient":         r.ambient,
		"background":      r.background,
		"seed":            r.seed,
		"add_object":      r.addObject,
	}
	for name, fn := range table {
		env.AddFunction(name, fn)
	}
}

func (r *builtins) ref(id graph.NodeID) *sexpNodeRef {
	n := r.b.Graph().Get(id)
	return &sexpNodeRef{id: id, kind: n.Kind, name: n.Name}
}

func optName(fn string, pa kwArgs) (string, error) {
	v, ok := pa.kw["name"]
	if !ok {
		return "", nil
	}
	s, err := toString(v)
	if err != nil {
		return "", fmt.Errorf("%s: name: %w", fn, err)
	}
	if s == "" {
		return "", fmt.Errorf("%s: name must not be empty", fn)
	}
	return s, nil
}

// checkName rejects names that are already taken.
func (r *builtins) checkName(fn, name string) error {
	if name != "" && r.b.Graph().Lookup(name) != nil {
		return fmt.Errorf("%s: name %q is already used", fn, name)
	}
	return nil
}

func optFloat(fn, key string, pa kwArgs, def float64) (float64, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	return f, nil
}

func optVec3(fn, key string, pa kwArgs, def vecmath.Vec3) (vecmath.Vec3, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return vecmath.Vec3{}, fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	return vec, nil
}

func optColor(fn, key string, pa kwArgs, def vecmath.Vec3) (vecmath.Vec3, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	c, err := toColor(v)
	if err != nil {
		return vecmath.Vec3{}, fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	return c, nil
}

// node adds a node after checking its :name option.
func (r *builtins) node(fn string, pa kwArgs, kind graph.NodeKind, data graph.NodeData, children ...graph.NodeID) (graph.NodeID, error) {
	name, err := optName(fn, pa)
	if err != nil {
		return graph.ZeroID, err
	}
	if err := r.checkName(fn, name); err != nil {
		return graph.ZeroID, err
	}
	return r.b.Add(kind, name, data, children...), nil
}

// surface adds a surface node and applies its :material option. The
// material may be a material reference or a bare props value, which
// becomes an anonymous simple material.
func (r *builtins) surface(fn string, pa kwArgs, kind graph.NodeKind, data graph.NodeData, children ...graph.NodeID) (zygo.Sexp, error) {
	id, err := r.node(fn, pa, kind, data, children...)
	if err != nil {
		return zygo.SexpNull, err
	}
	if v, ok := pa.kw["material"]; ok {
		var mid graph.NodeID
		switch m := v.(type) {
		case *sexpProps:
			mid = r.b.Simple("", m.props)
		case *sexpNodeRef:
			mid = m.id
		default:
			return zygo.SexpNull, fmt.Errorf("%s: material: expected material or props, got %T (%s)", fn, v, v.SexpString(nil))
		}
		if err := r.b.SetMaterial(id, mid); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
		}
	}
	return r.ref(id), nil
}

// material adds a material node.
func (r *builtins) material(fn string, pa kwArgs, data graph.MaterialData) (zygo.Sexp, error) {
	id, err := r.node(fn, pa, graph.NodeMaterial, data)
	if err != nil {
		return zygo.SexpNull, err
	}
	return r.ref(id), nil
}

// positionalProps reads exactly want props values from the positional
// arguments.
func positionalProps(fn string, pa kwArgs, want int) ([]material.Properties, error) {
	if len(pa.positional) != want {
		return nil, fmt.Errorf("%s requires %d props arguments, got %d", fn, want, len(pa.positional))
	}
	out := make([]material.Properties, want)
	for i, s := range pa.positional {
		p, err := toProps(s)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
		}
		out[i] = p
	}
	return out, nil
}

// (vec3 x y z), (rgb r g b)
func (r *builtins) vec3(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("%s requires exactly 3 arguments, got %d", name, len(args))
	}
	var xyz [3]float64
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: component %d: %w", name, i+1, err)
		}
		xyz[i] = f
	}
	return &sexpVec3{vec: vecmath.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
}

// (props :ambient c :diffuse c :specular c :shininess n :reflection c)
//
// Colours may be rgb values or single numbers for gray. Missing channels
// are zero.
func (r *builtins) props(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) != 0 {
		return zygo.SexpNull, fmt.Errorf("props takes only keyword arguments")
	}
	var p material.Properties
	for _, kv := range pa.order {
		var dst *vecmath.Vec3
		switch kv.name {
		case "ambient":
			dst = &p.Ambient
		case "diffuse":
			dst = &p.Diffuse
		case "specular":
			dst = &p.Specular
		case "reflection":
			dst = &p.Reflection
		case "shininess":
			f, err := toFloat64(kv.value)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("props: shininess: %w", err)
			}
			p.Shininess = f
			continue
		default:
			return zygo.SexpNull, fmt.Errorf("props: unknown keyword :%s", kv.name)
		}
		c, err := toColor(kv.value)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("props: %s: %w", kv.name, err)
		}
		*dst = c
	}
	return &sexpProps{props: p}, nil
}

// (simple-material props)
func (r *builtins) simpleMaterial(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	ps, err := positionalProps("simple-material", pa, 1)
	if err != nil {
		return zygo.SexpNull, err
	}
	return r.material("simple-material", pa, graph.MaterialData{Kind: graph.MaterialSimple, Props: ps})
}

// (checkerboard a b :size 1)
func (r *builtins) checkerboard(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	ps, err := positionalProps("checkerboard", pa, 2)
	if err != nil {
		return zygo.SexpNull, err
	}
	size, err := optFloat("checkerboard", "size", pa, 1)
	if err != nil {
		return zygo.SexpNull, err
	}
	return r.material("checkerboard", pa, graph.MaterialData{Kind: graph.MaterialCheckerboard, Props: ps, Size: size})
}

// (noise-material)
func (r *builtins) noiseMaterial(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) != 0 {
		return zygo.SexpNull, fmt.Errorf("noise-material takes no positional arguments")
	}
	return r.material("noise-material", pa, graph.MaterialData{Kind: graph.MaterialNoise})
}

// (material-map 0 p0 0.5 p1 1 p2)
//
// Positions and props alternate. The noise field picks the blend.
func (r *builtins) materialMap(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	pos := flattenArgs(pa.positional)
	if len(pos) == 0 || len(pos)%2 != 0 {
		return zygo.SexpNull, fmt.Errorf("material-map requires position/props pairs, got %d arguments", len(pos))
	}
	md := graph.MaterialData{Kind: graph.MaterialMap}
	for i := 0; i < len(pos); i += 2 {
		at, err := toFloat64(pos[i])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("material-map: position %d: %w", i/2+1, err)
		}
		p, err := toProps(pos[i+1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("material-map: entry %d: %w", i/2+1, err)
		}
		md.Positions = append(md.Positions, at)
		md.Props = append(md.Props, p)
	}
	return r.material("material-map", pa, md)
}

// (wood dark light)
func (r *builtins) wood(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	ps, err := positionalProps("wood", pa, 2)
	if err != nil {
		return zygo.SexpNull, err
	}
	return r.material("wood", pa, graph.MaterialData{Kind: graph.MaterialWood, Props: ps})
}

// (sphere :radius 1)
func (r *builtins) sphere(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	radius, err := optFloat("sphere", "radius", pa, 1)
	if err != nil {
		return zygo.SexpNull, err
	}
	if len(pa.positional) == 1 {
		if radius, err = toFloat64(pa.positional[0]); err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
		}
	} else if len(pa.positional) > 1 {
		return zygo.SexpNull, fmt.Errorf("sphere takes at most one positional argument")
	}
	return r.surface("sphere", pa, graph.NodeSphere, graph.SphereData{Radius: radius})
}

// (plane :normal (vec3 0 1 0) :offset 0)
//
// The plane bounds the half-space dot(p, normal) < offset.
func (r *builtins) plane(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	normal, err := optVec3("plane", "normal", pa, vecmath.Vec3{Y: 1})
	if err != nil {
		return zygo.SexpNull, err
	}
	offset, err := optFloat("plane", "offset", pa, 0)
	if err != nil {
		return zygo.SexpNull, err
	}
	return r.surface("plane", pa, graph.NodePlane, graph.PlaneData{Normal: normal, Offset: offset})
}

// (cone)
func (r *builtins) cone(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	return r.surface("cone", parseArgs(args), graph.NodeCone, graph.ConeData{})
}

// (transform child :scale 2 :rotate-y 0.5 :translate (vec3 1 0 0))
//
// Steps apply in the order written.
func (r *builtins) transform(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) != 1 {
		return zygo.SexpNull, fmt.Errorf("transform requires exactly one child, got %d", len(pa.positional))
	}
	child, err := toSurface(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("transform: child: %w", err)
	}
	var ops []graph.TransformOp
	for _, kv := range pa.order {
		switch kv.name {
		case "name", "material":
		case "translate":
			v, err := toVec3(kv.value)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("transform: translate: %w", err)
			}
			ops = append(ops, graph.Translate(v.X, v.Y, v.Z))
		case "scale":
			v, err := toColor(kv.value)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("transform: scale: %w", err)
			}
			ops = append(ops, graph.Scale(v.X, v.Y, v.Z))
		case "rotate-x", "rotate-y", "rotate-z":
			a, err := toFloat64(kv.value)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("transform: %s: %w", kv.name, err)
			}
			switch kv.name {
			case "rotate-x":
				ops = append(ops, graph.RotateX(a))
			case "rotate-y":
				ops = append(ops, graph.RotateY(a))
			default:
				ops = append(ops, graph.RotateZ(a))
			}
		default:
			return zygo.SexpNull, fmt.Errorf("transform: unknown keyword :%s", kv.name)
		}
	}
	return r.surface("transform", pa, graph.NodeTransform, graph.TransformData{Ops: ops}, child)
}

// (intersection a b ...)
func (r *builtins) intersection(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	items := flattenArgs(pa.positional)
	if len(items) == 0 {
		return zygo.SexpNull, fmt.Errorf("intersection requires at least one child")
	}
	children := make([]graph.NodeID, len(items))
	for i, s := range items {
		id, err := toSurface(s)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersection: child %d: %w", i+1, err)
		}
		children[i] = id
	}
	return r.surface("intersection", pa, graph.NodeIntersection, graph.IntersectionData{}, children...)
}

// (inverse child)
func (r *builtins) inverse(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) != 1 {
		return zygo.SexpNull, fmt.Errorf("inverse requires exactly one child, got %d", len(pa.positional))
	}
	child, err := toSurface(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("inverse: child: %w", err)
	}
	return r.surface("inverse", pa, graph.NodeInverse, graph.InverseData{}, child)
}

// (light :at (vec3 1 3 1) :color (rgb 1 1 1))
//
// Lights join the scene as soon as they are created.
func (r *builtins) light(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	pos, err := optVec3("light", "at", pa, vecmath.Vec3{})
	if err != nil {
		return zygo.SexpNull, err
	}
	color, err := optColor("light", "color", pa, vecmath.Vec3{X: 1, Y: 1, Z: 1})
	if err != nil {
		return zygo.SexpNull, err
	}
	id, err := r.node("light", pa, graph.NodeLight, graph.LightData{Position: pos, Color: color})
	if err != nil {
		return zygo.SexpNull, err
	}
	r.b.Graph().AddLight(id)
	return r.ref(id), nil
}

// (camera :origin v :focus v :up v :fov tan :aspect a)
//
// Only the keywords given change; the rest keep their defaults.
func (r *builtins) camera(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	cam := &r.b.Graph().Settings.Camera
	for _, kv := range pa.order {
		var err error
		switch kv.name {
		case "origin":
			cam.Origin, err = toVec3(kv.value)
		case "focus":
			cam.Focus, err = toVec3(kv.value)
		case "up":
			cam.Up, err = toVec3(kv.value)
		case "fov":
			cam.TanFovX, err = toFloat64(kv.value)
		case "aspect":
			cam.Aspect, err = toFloat64(kv.value)
		default:
			err = fmt.Errorf("unknown keyword :%s", kv.name)
		}
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("camera: %s: %w", kv.name, err)
		}
	}
	return zygo.SexpNull, nil
}

// (ambient c)
func (r *builtins) ambient(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	c, err := singleColor("ambient", args)
	if err != nil {
		return zygo.SexpNull, err
	}
	r.b.Graph().Settings.Ambient = c
	return zygo.SexpNull, nil
}

// (background c)
func (r *builtins) background(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	c, err := singleColor("background", args)
	if err != nil {
		return zygo.SexpNull, err
	}
	r.b.Graph().Settings.Background = c
	return zygo.SexpNull, nil
}

func singleColor(fn string, args []zygo.Sexp) (vecmath.Vec3, error) {
	if len(args) != 1 {
		return vecmath.Vec3{}, fmt.Errorf("%s requires exactly one colour, got %d arguments", fn, len(args))
	}
	c, err := toColor(args[0])
	if err != nil {
		return vecmath.Vec3{}, fmt.Errorf("%s: %w", fn, err)
	}
	return c, nil
}

// (seed n)
func (r *builtins) seed(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("seed requires exactly one integer, got %d arguments", len(args))
	}
	n, err := toInt64(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("seed: %w", err)
	}
	r.b.Graph().Settings.Seed = n
	return zygo.SexpNull, nil
}

// (add-object a b ...) registers top-level objects and returns the last.
func (r *builtins) addObject(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	items := flattenArgs(args)
	if len(items) == 0 {
		return zygo.SexpNull, fmt.Errorf("add-object requires at least one surface")
	}
	var last zygo.Sexp = zygo.SexpNull
	for i, s := range items {
		id, err := toSurface(s)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("add-object: argument %d: %w", i+1, err)
		}
		r.b.AddObject(id)
		last = s
	}
	return last, nil
}
