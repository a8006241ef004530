package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/chazu/csgray/pkg/build"
	"github.com/chazu/csgray/pkg/engine"
	"github.com/chazu/csgray/pkg/graph"
	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/kernel/sdfx"
	"github.com/chazu/csgray/pkg/noise"
	"github.com/chazu/csgray/pkg/render"
	"github.com/chazu/csgray/pkg/scene"
	"github.com/chazu/csgray/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to meshes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// meshBounds is the region previews are cut from. Planes are infinite, so
// every mesh is clipped to it.
var meshBounds = kernel.Cube(2)

// animatedBalls maps transform names in a script to their bounce.
var animatedBalls = map[string]scene.BallSpec{
	"ball1": scene.Ball1,
	"ball2": scene.Ball2,
}

var errNoScript = errors.New("no scene script loaded")

// App is the Wails backend. It exposes methods to the frontend via bindings.
// Scene mutation and rendering are serialised on mu so a frame always sees
// one consistent scene.
type App struct {
	ctx    context.Context
	engine *engine.Engine
	mesher kernel.Mesher

	mu       sync.Mutex
	graph    *graph.SceneGraph // nil while the built-in demo is shown
	renderer *render.Renderer
	orbit    *scene.Orbit
	animator *scene.Animator
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is returned by LoadScene.
type EvalResult struct {
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
	Objects  int             `json:"objects"`
	Lights   int             `json:"lights"`
	Animated int             `json:"animated"`
}

// FrameResult carries one rendered frame as a base64 PNG.
type FrameResult struct {
	Image        string  `json:"image"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Pixels       int     `json:"pixels"`
	FailedPixels int     `json:"failedPixels"`
	Workers      int     `json:"workers"`
	Millis       float64 `json:"millis"`
	Error        string  `json:"error,omitempty"`
}

// MeshResult is returned by ExportMesh and Meshes.
type MeshResult struct {
	Meshes []MeshData `json:"meshes"`
	Error  string     `json:"error,omitempty"`
}

// NewApp creates an App showing the built-in demo scene.
func NewApp() *App {
	a := &App{
		engine: engine.NewEngine(),
		mesher: sdfx.New(sdfx.DefaultCells),
	}
	s, orbit, anim := demoScene()
	r, err := render.NewRenderer(s, render.DefaultConfig(), render.NewDefaultLogger())
	if err != nil {
		// DefaultConfig always validates.
		panic(err)
	}
	a.renderer, a.orbit, a.animator = r, orbit, anim
	return a
}

// demoScene builds the built-in scene, falling back to an empty one if the
// demo cannot be posed.
func demoScene() (*scene.Scene, *scene.Orbit, *scene.Animator) {
	d, err := scene.NewDemo(noise.New(noise.DefaultSeed))
	if err != nil {
		log.Printf("demo scene: %v", err)
		return scene.New(), scene.NewOrbit(4), scene.NewAnimator()
	}
	return d.Scene, d.Orbit, d.Animator
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// shutdown stops the render workers.
func (a *App) shutdown(ctx context.Context) {
	a.renderer.Close()
}

func errorData(err error) EvalErrorData {
	return EvalErrorData{Message: err.Error()}
}

// LoadScene evaluates a scene script and makes it the rendered scene. A
// script that defines nothing restores the built-in demo. On any error the
// previous scene stays in place.
func (a *App) LoadScene(source string) EvalResult {
	result := EvalResult{
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	g, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		log.Printf("LoadScene fatal error: %v", err)
		result.Errors = append(result.Errors, errorData(err))
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	if g.NodeCount() == 0 {
		s, orbit, anim := demoScene()
		a.mu.Lock()
		defer a.mu.Unlock()
		a.renderer.SetScene(s)
		a.graph, a.orbit, a.animator = nil, orbit, anim
		result.Objects, result.Lights, result.Animated = len(s.Objects()), len(s.Lights()), anim.Len()
		return result
	}

	vr := graph.ValidateAll(g)
	for _, w := range vr.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Message})
	}
	if !vr.OK() {
		for _, e := range vr.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Message: e.Error()})
		}
		return result
	}

	res, err := build.Build(g)
	if err != nil {
		log.Printf("LoadScene build error: %v", err)
		result.Errors = append(result.Errors, errorData(err))
		return result
	}
	cam := g.Settings.Camera
	orbit, err := scene.OrbitFrom(cam.Origin, cam.Focus)
	if err != nil {
		result.Errors = append(result.Errors, errorData(err))
		return result
	}
	anim := scene.NewAnimator()
	for name, spec := range animatedBalls {
		if tr, ok := res.Transforms[name]; ok {
			anim.Add(tr, spec)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.renderer.SetScene(res.Scene)
	a.graph, a.orbit, a.animator = g, orbit, anim

	result.Objects = len(g.Roots)
	result.Lights = len(g.Lights)
	result.Animated = anim.Len()
	return result
}

// RenderFrame renders the current scene. Non-positive sizes keep the
// current frame size.
func (a *App) RenderFrame(width, height int) FrameResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	cfg := a.renderer.Config()
	if width > 0 && height > 0 && (width != cfg.Width || height != cfg.Height) {
		if err := a.renderer.Resize(width, height); err != nil {
			return FrameResult{Error: err.Error()}
		}
		cfg = a.renderer.Config()
	}

	fb, stats, err := a.renderer.Render()
	if err != nil {
		return FrameResult{Error: err.Error()}
	}
	var buf bytes.Buffer
	if err := fb.WritePNG(&buf); err != nil {
		return FrameResult{Error: fmt.Sprintf("encode frame: %v", err)}
	}
	fr := FrameResult{
		Image:        base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:        cfg.Width,
		Height:       cfg.Height,
		Pixels:       stats.Pixels,
		FailedPixels: stats.FailedPixels,
		Workers:      stats.Workers,
		Millis:       float64(stats.Duration.Microseconds()) / 1000,
	}
	if stats.FirstError != nil {
		fr.Error = stats.FirstError.Error()
	}
	return fr
}

// Drag orbits the camera by a mouse drag of (dx, dy) pixels. A drag that
// would leave the camera degenerate is undone.
func (a *App) Drag(dx, dy float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.orbit.Drag(dx, dy)
	err := a.renderer.Do(func(s *scene.Scene) error {
		return a.orbit.Apply(s.Camera())
	})
	if err != nil {
		a.orbit.Drag(-dx, -dy)
		return fmt.Errorf("drag: %w", err)
	}
	return nil
}

// Tick advances the bouncing-ball animation by dt seconds.
func (a *App) Tick(dt float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.renderer.Do(func(*scene.Scene) error {
		return a.animator.Tick(dt)
	})
}

// DebugPixel traces one pixel of the current frame and returns the call
// tree.
func (a *App) DebugPixel(x, y int) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var buf bytes.Buffer
	if _, err := a.renderer.DebugPixel(x, y, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func meshData(m *kernel.Mesh, i int) MeshData {
	return MeshData{
		Vertices: m.Vertices,
		Normals:  m.Normals,
		Indices:  m.Indices,
		PartName: m.PartName,
		Color:    colorPalette[i%len(colorPalette)],
	}
}

func (a *App) scriptGraph() *graph.SceneGraph {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.graph
}

// ExportMesh tessellates one named surface of the loaded script.
func (a *App) ExportMesh(name string) MeshResult {
	result := MeshResult{Meshes: []MeshData{}}
	g := a.scriptGraph()
	if g == nil {
		result.Error = errNoScript.Error()
		return result
	}
	m, err := tessellate.Object(g, name, a.mesher, meshBounds)
	if err != nil {
		log.Printf("ExportMesh error: %v", err)
		result.Error = err.Error()
		return result
	}
	result.Meshes = append(result.Meshes, meshData(m, 0))
	return result
}

// Meshes tessellates every object of the loaded script.
func (a *App) Meshes() MeshResult {
	result := MeshResult{Meshes: []MeshData{}}
	g := a.scriptGraph()
	if g == nil {
		result.Error = errNoScript.Error()
		return result
	}
	meshes, err := tessellate.Tessellate(g, a.mesher, meshBounds)
	if err != nil {
		log.Printf("Meshes error: %v", err)
		result.Error = "tessellation failed: " + err.Error()
		return result
	}
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, meshData(m, i))
	}
	return result
}
