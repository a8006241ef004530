// Package scene holds everything the renderer reads during a frame: root
// surfaces, point lights, the camera and the global colours. It also carries
// the between-frame controllers that mutate a scene (camera orbit, bouncing
// transforms) and the built-in demo scene.
package scene

import (
	"github.com/chazu/csgray/pkg/surface"
	"github.com/chazu/csgray/pkg/vecmath"
)

// Light is a point light.
type Light struct {
	Position vecmath.Vec3 `json:"position"`
	Color    vecmath.Vec3 `json:"color"`
}

// NewLight creates a light at pos with the given colour.
func NewLight(pos, color vecmath.Vec3) *Light {
	return &Light{Position: pos, Color: color}
}

// Scene is read-only while a frame renders. Objects and lights keep
// insertion order and are de-duplicated by identity.
type Scene struct {
	objects    []surface.Surface
	lights     []*Light
	camera     *Camera
	ambient    vecmath.Vec3
	background vecmath.Vec3
}

// New returns an empty scene with a default camera and black ambient and
// background.
func New() *Scene {
	return &Scene{camera: NewCamera()}
}

// AddObject adds a root surface. Adding the same surface twice is a no-op.
func (s *Scene) AddObject(obj surface.Surface) {
	for _, o := range s.objects {
		if o == obj {
			return
		}
	}
	s.objects = append(s.objects, obj)
}

// AddLight adds a light. Adding the same light twice is a no-op.
func (s *Scene) AddLight(l *Light) {
	for _, x := range s.lights {
		if x == l {
			return
		}
	}
	s.lights = append(s.lights, l)
}

// Objects returns the root surfaces. The slice must not be modified.
func (s *Scene) Objects() []surface.Surface {
	return s.objects
}

// Lights returns the lights. The slice must not be modified.
func (s *Scene) Lights() []*Light {
	return s.lights
}

func (s *Scene) SetCamera(c *Camera) {
	s.camera = c
}

func (s *Scene) Camera() *Camera {
	return s.camera
}

func (s *Scene) SetAmbientLight(c vecmath.Vec3) {
	s.ambient = c
}

func (s *Scene) Ambient() vecmath.Vec3 {
	return s.ambient
}

func (s *Scene) SetBackground(c vecmath.Vec3) {
	s.background = c
}

func (s *Scene) Background() vecmath.Vec3 {
	return s.background
}
