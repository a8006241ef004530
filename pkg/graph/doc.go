// Package graph defines the scene description produced by evaluating a scene
// script. The scene graph is an immutable DAG of surfaces, materials and
// lights; a surface may be shared by several parents.
package graph
