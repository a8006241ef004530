package graph

import "fmt"

// Validate runs all Tier 1 structural validation checks on the scene graph
// and returns a slice of validation findings. An empty slice means the graph
// is structurally valid. This function is read-only and never mutates the
// graph.
func Validate(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateArity(g)...)
	errs = append(errs, validateKinds(g)...)
	return errs
}

// ValidateAll runs all validation tiers (structural, geometric, settings)
// and returns a ValidationResult with separated errors and warnings.
func ValidateAll(g *SceneGraph) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(g) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}

	geoErrs, geoWarnings := validateGeometry(g)
	result.Errors = append(result.Errors, geoErrs...)
	result.Warnings = append(result.Warnings, geoWarnings...)

	setErrs, setWarnings := validateSettings(g)
	result.Errors = append(result.Errors, setErrs...)
	result.Warnings = append(result.Warnings, setWarnings...)

	return result
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
// If we encounter a gray node during traversal, we have found a cycle.
func validateDAG(g *SceneGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray
		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}
		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for id := range g.Nodes {
		if color[id] == white {
			if visit(id) {
				break
			}
		}
	}
	return errs
}

// validateReferences checks that every NodeID referenced from a node points
// to a node that actually exists in g.Nodes.
func validateReferences(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
		if !node.Material.IsZero() {
			if _, ok := g.Nodes[node.Material]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("material reference %s does not exist", node.Material.Short()),
					Severity: SeverityError,
				})
			}
		}
	}

	for _, lid := range g.Lights {
		if _, ok := g.Nodes[lid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("light reference %s does not exist", lid.Short()),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateNames checks that the NameIndex is injective (no two nodes share the
// same name) and that every entry in NameIndex points to an existing node.
func validateNames(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	nameToNodes := make(map[string][]NodeID)
	for id, node := range g.Nodes {
		if node.Name != "" {
			nameToNodes[node.Name] = append(nameToNodes[node.Name], id)
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateRoots checks that every root ID references an existing node and
// warns about orphan nodes (nodes unreachable from any root or light).
func validateRoots(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}

	if len(g.Nodes) == 0 {
		return errs
	}

	reachable := make(map[NodeID]bool)
	var queue []NodeID
	enqueue := func(id NodeID) {
		if id.IsZero() || reachable[id] {
			return
		}
		if _, ok := g.Nodes[id]; !ok {
			return
		}
		reachable[id] = true
		queue = append(queue, id)
	}
	for _, rid := range g.Roots {
		enqueue(rid)
	}
	for _, lid := range g.Lights {
		enqueue(lid)
	}

	for len(queue) > 0 {
		node := g.Nodes[queue[0]]
		queue = queue[1:]
		for _, childID := range node.Children {
			enqueue(childID)
		}
		// Materials are reached through the surfaces that use them.
		enqueue(node.Material)
	}

	for id, node := range g.Nodes {
		if !reachable[id] {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", node.Label()),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateArity checks child counts per kind: transform and inverse wrap
// exactly one child, intersections need at least one, everything else is a
// leaf.
func validateArity(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		n := len(node.Children)
		var msg string
		switch node.Kind {
		case NodeTransform, NodeInverse:
			if n != 1 {
				msg = fmt.Sprintf("%s requires exactly one child, has %d", node.Kind, n)
			}
		case NodeIntersection:
			if n == 0 {
				msg = "intersection requires at least one child"
			}
		default:
			if n != 0 {
				msg = fmt.Sprintf("%s cannot have children, has %d", node.Kind, n)
			}
		}
		if msg != "" {
			errs = append(errs, ValidationError{NodeID: node.ID, Message: msg, Severity: SeverityError})
		}
	}
	return errs
}

// validateKinds checks that every edge points at a node of an acceptable
// kind and that payloads match their node kinds.
func validateKinds(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	add := func(id NodeID, format string, args ...interface{}) {
		errs = append(errs, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
	}

	for _, node := range g.Nodes {
		if !dataMatches(node) {
			add(node.ID, "%s node carries %T payload", node.Kind, node.Data)
		}
		for _, cid := range node.Children {
			if c := g.Nodes[cid]; c != nil && !c.Kind.IsSurface() {
				add(node.ID, "child %s is a %s, not a surface", c.Label(), c.Kind)
			}
		}
		if node.Material.IsZero() {
			continue
		}
		if !node.Kind.IsSurface() {
			add(node.ID, "%s node cannot carry a material", node.Kind)
		}
		if m := g.Nodes[node.Material]; m != nil && m.Kind != NodeMaterial {
			add(node.ID, "material reference %s is a %s", m.Label(), m.Kind)
		}
	}

	for _, rid := range g.Roots {
		if n := g.Nodes[rid]; n != nil && !n.Kind.IsSurface() {
			add(rid, "root %s is a %s, not a surface", n.Label(), n.Kind)
		}
	}
	for _, lid := range g.Lights {
		if n := g.Nodes[lid]; n != nil && n.Kind != NodeLight {
			add(lid, "light %s is a %s", n.Label(), n.Kind)
		}
	}
	return errs
}

func dataMatches(n *Node) bool {
	switch n.Data.(type) {
	case SphereData:
		return n.Kind == NodeSphere
	case PlaneData:
		return n.Kind == NodePlane
	case ConeData:
		return n.Kind == NodeCone
	case TransformData:
		return n.Kind == NodeTransform
	case IntersectionData:
		return n.Kind == NodeIntersection
	case InverseData:
		return n.Kind == NodeInverse
	case MaterialData:
		return n.Kind == NodeMaterial
	case LightData:
		return n.Kind == NodeLight
	}
	return false
}
