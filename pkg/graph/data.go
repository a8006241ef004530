package graph

import (
	"github.com/chazu/csgray/pkg/material"
	"github.com/chazu/csgray/pkg/vecmath"
)

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// SphereData is a sphere of the given radius centered on the origin.
type SphereData struct {
	Radius float64 `json:"radius"`
}

func (SphereData) nodeData() {}

// PlaneData is the boundary of the half-space dot(p, Normal) < Offset.
type PlaneData struct {
	Normal vecmath.Vec3 `json:"normal"`
	Offset float64      `json:"offset"`
}

func (PlaneData) nodeData() {}

// ConeData is the unit cone x²+y² = z², z > 0. It has no parameters; size
// and placement come from an enclosing transform.
type ConeData struct{}

func (ConeData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformOpKind distinguishes transform steps.
type TransformOpKind int

const (
	OpTranslate TransformOpKind = iota
	OpScale
	OpRotateX
	OpRotateY
	OpRotateZ
)

func (k TransformOpKind) String() string {
	switch k {
	case OpTranslate:
		return "translate"
	case OpScale:
		return "scale"
	case OpRotateX:
		return "rotate-x"
	case OpRotateY:
		return "rotate-y"
	case OpRotateZ:
		return "rotate-z"
	default:
		return "unknown"
	}
}

// TransformOp is one step. Translate and scale use Vec; rotations use Angle
// in radians.
type TransformOp struct {
	Kind  TransformOpKind `json:"kind"`
	Vec   vecmath.Vec3    `json:"vec,omitempty"`
	Angle float64         `json:"angle,omitempty"`
}

// TransformData places its single child. Ops apply in order, each after
// the ones before it.
type TransformData struct {
	Ops []TransformOp `json:"ops,omitempty"`
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Boolean operations
// ---------------------------------------------------------------------------

// IntersectionData is the boolean AND of the node's children.
type IntersectionData struct{}

func (IntersectionData) nodeData() {}

// InverseData is the complement of the node's single child.
type InverseData struct{}

func (InverseData) nodeData() {}

// ---------------------------------------------------------------------------
// Material
// ---------------------------------------------------------------------------

// MaterialKind distinguishes shading models.
type MaterialKind int

const (
	MaterialSimple       MaterialKind = iota // Props[0] everywhere
	MaterialCheckerboard                     // Props[0], Props[1] alternating in Size cubes
	MaterialNoise                            // procedural gray
	MaterialMap                              // Props[i] at Positions[i], driven by noise
	MaterialWood                             // Props[0] dark, Props[1] light rings
)

func (k MaterialKind) String() string {
	switch k {
	case MaterialSimple:
		return "simple"
	case MaterialCheckerboard:
		return "checkerboard"
	case MaterialNoise:
		return "noise"
	case MaterialMap:
		return "map"
	case MaterialWood:
		return "wood"
	default:
		return "unknown"
	}
}

// MaterialData describes a material node.
type MaterialData struct {
	Kind      MaterialKind          `json:"kind"`
	Props     []material.Properties `json:"props,omitempty"`
	Size      float64               `json:"size,omitempty"`
	Positions []float64             `json:"positions,omitempty"`
}

func (MaterialData) nodeData() {}

// ---------------------------------------------------------------------------
// Light
// ---------------------------------------------------------------------------

// LightData is a point light.
type LightData struct {
	Position vecmath.Vec3 `json:"position"`
	Color    vecmath.Vec3 `json:"color"`
}

func (LightData) nodeData() {}
