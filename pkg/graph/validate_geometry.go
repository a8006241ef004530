package graph

import (
	"fmt"
	"math"

	"github.com/chazu/csgray/pkg/vecmath"
)

// ---------------------------------------------------------------------------
// Tier 2: geometric and material validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry runs all Tier 2 checks.
// Returns errors (blocking) and warnings (advisory) separately.
func validateGeometry(g *SceneGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validatePrimitives(g)...)
	errs = append(errs, validateTransforms(g)...)
	errs = append(errs, validateMaterials(g)...)

	warnings = append(warnings, validateUnshaded(g)...)
	warnings = append(warnings, validateLights(g)...)
	return errs, warnings
}

func finite(v vecmath.Vec3) bool {
	return v.IsFinite()
}

// validatePrimitives checks sphere radii and plane normals.
func validatePrimitives(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		switch d := node.Data.(type) {
		case SphereData:
			if !(d.Radius > 0) || math.IsInf(d.Radius, 0) {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("sphere radius is %.4g, must be positive", d.Radius),
					Severity: SeverityError,
				})
			}
		case PlaneData:
			if !finite(d.Normal) || d.Normal.LengthSquared() == 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("plane normal %v must be non-zero", d.Normal),
					Severity: SeverityError,
				})
			}
			if math.IsNaN(d.Offset) || math.IsInf(d.Offset, 0) {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("plane offset %g must be finite", d.Offset),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateTransforms rejects steps that would make the matrix singular or
// non-finite.
func validateTransforms(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		td, ok := node.Data.(TransformData)
		if !ok {
			continue
		}
		for i, op := range td.Ops {
			var msg string
			switch op.Kind {
			case OpTranslate:
				if !finite(op.Vec) {
					msg = fmt.Sprintf("translation %v must be finite", op.Vec)
				}
			case OpScale:
				if !finite(op.Vec) || op.Vec.X == 0 || op.Vec.Y == 0 || op.Vec.Z == 0 {
					msg = fmt.Sprintf("scale %v must be finite and non-zero on every axis", op.Vec)
				}
			case OpRotateX, OpRotateY, OpRotateZ:
				if math.IsNaN(op.Angle) || math.IsInf(op.Angle, 0) {
					msg = fmt.Sprintf("%s angle %g must be finite", op.Kind, op.Angle)
				}
			default:
				msg = fmt.Sprintf("unknown transform step kind %d", int(op.Kind))
			}
			if msg != "" {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("step %d: %s", i, msg),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// wantProps is the number of property sets each material kind consumes.
// Maps take any positive number.
var wantProps = map[MaterialKind]int{
	MaterialSimple:       1,
	MaterialCheckerboard: 2,
	MaterialNoise:        0,
	MaterialWood:         2,
}

// validateMaterials checks property counts and parameters per kind.
func validateMaterials(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	add := func(id NodeID, format string, args ...interface{}) {
		errs = append(errs, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
	}

	for _, node := range g.Nodes {
		md, ok := node.Data.(MaterialData)
		if !ok {
			continue
		}
		switch md.Kind {
		case MaterialMap:
			if len(md.Props) == 0 {
				add(node.ID, "material map needs at least one node")
			}
			if len(md.Positions) != len(md.Props) {
				add(node.ID, "material map has %d positions for %d property sets", len(md.Positions), len(md.Props))
			}
		case MaterialSimple, MaterialCheckerboard, MaterialNoise, MaterialWood:
			if want := wantProps[md.Kind]; len(md.Props) != want {
				add(node.ID, "%s material needs %d property sets, has %d", md.Kind, want, len(md.Props))
			}
		default:
			add(node.ID, "unknown material kind %d", int(md.Kind))
		}
		if md.Kind == MaterialCheckerboard && !(md.Size > 0) {
			add(node.ID, "checkerboard size is %.4g, must be positive", md.Size)
		}
		for i, p := range md.Props {
			if p.Shininess < 0 || math.IsNaN(p.Shininess) {
				add(node.ID, "property set %d: shininess %g must be non-negative", i, p.Shininess)
			}
		}
	}
	return errs
}

// shaded reports whether a surface resolves a material somewhere along its
// delegation chain.
func shaded(g *SceneGraph, n *Node, seen map[NodeID]bool) bool {
	if n == nil || seen[n.ID] {
		return false
	}
	if !n.Material.IsZero() {
		return true
	}
	seen[n.ID] = true
	defer delete(seen, n.ID)

	switch n.Kind {
	case NodeTransform, NodeInverse:
		if len(n.Children) == 1 {
			return shaded(g, g.Nodes[n.Children[0]], seen)
		}
	case NodeIntersection:
		for _, c := range n.Children {
			if !shaded(g, g.Nodes[c], seen) {
				return false
			}
		}
		return len(n.Children) > 0
	}
	return false
}

// validateUnshaded warns about root objects that would render black
// because some part of them has no material.
func validateUnshaded(g *SceneGraph) []ValidationWarning {
	var warnings []ValidationWarning
	for _, rid := range g.Roots {
		n := g.Nodes[rid]
		if n == nil || !n.Kind.IsSurface() {
			continue
		}
		if !shaded(g, n, make(map[NodeID]bool)) {
			warnings = append(warnings, ValidationWarning{
				NodeID:  rid,
				Message: fmt.Sprintf("object %q has surfaces without a material; they render black", n.Label()),
			})
		}
	}
	return warnings
}

// validateLights warns about lights that can never add colour.
func validateLights(g *SceneGraph) []ValidationWarning {
	var warnings []ValidationWarning
	for _, node := range g.Nodes {
		ld, ok := node.Data.(LightData)
		if !ok {
			continue
		}
		if ld.Color.X <= 0 && ld.Color.Y <= 0 && ld.Color.Z <= 0 {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("light %q has colour %v and adds nothing", node.Label(), ld.Color),
			})
		}
	}
	return warnings
}

// ---------------------------------------------------------------------------
// Tier 3: scene settings
// ---------------------------------------------------------------------------

// validateSettings checks the camera and warns about empty scenes.
func validateSettings(g *SceneGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning
	add := func(format string, args ...interface{}) {
		errs = append(errs, ValidationError{Message: fmt.Sprintf(format, args...), Severity: SeverityError})
	}

	cam := g.Settings.Camera
	up, upErr := cam.Up.Normalize()
	if upErr != nil {
		add("camera up vector %v must be non-zero", cam.Up)
	}
	forward, fErr := cam.Focus.Sub(cam.Origin).Normalize()
	if fErr != nil {
		add("camera focus %v coincides with origin %v", cam.Focus, cam.Origin)
	}
	if upErr == nil && fErr == nil && math.Abs(forward.Dot(up)) >= 1-1e-12 {
		add("camera focus direction %v is parallel to up %v", forward, up)
	}
	if !(cam.TanFovX > 0) || !(cam.Aspect > 0) {
		add("camera field of view (tan %g, aspect %g) must be positive", cam.TanFovX, cam.Aspect)
	}

	if len(g.Roots) == 0 {
		warnings = append(warnings, ValidationWarning{Message: "scene has no objects"})
	}
	if len(g.Lights) == 0 {
		warnings = append(warnings, ValidationWarning{Message: "scene has no lights; only ambient light is visible"})
	}
	return errs, warnings
}
