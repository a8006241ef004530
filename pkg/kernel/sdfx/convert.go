package sdfx

import (
	"github.com/chazu/csgray/pkg/vecmath"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func toV3(v vecmath.Vec3) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func fromV3(v v3.Vec) vecmath.Vec3 {
	return vecmath.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}
