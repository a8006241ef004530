// Command csgray renders CSG scenes without a window. It writes numbered PNG
// frames of the animated scene and can trace a single pixel or export
// preview meshes as JSON.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

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

type options struct {
	scene      string
	width      int
	height     int
	frames     int
	fps        float64
	workers    int
	out        string
	debugPixel string
	mesh       string
	meshCells  int
	meshBounds float64
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("csgray: %v", err)
	}
}

func parseFlags(args []string, stdout io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("csgray", flag.ContinueOnError)
	fs.SetOutput(stdout)
	def := render.DefaultConfig()
	fs.StringVar(&o.scene, "scene", "", "Scene script to load (default: built-in demo)")
	fs.IntVar(&o.width, "width", def.Width, "Frame width in pixels")
	fs.IntVar(&o.height, "height", def.Height, "Frame height in pixels")
	fs.IntVar(&o.frames, "frames", 1, "Number of frames to render")
	fs.Float64Var(&o.fps, "fps", 10, "Animation frames per second")
	fs.IntVar(&o.workers, "workers", 0, "Render workers (0 = one per CPU)")
	fs.StringVar(&o.out, "out", "output", "Directory for frame_NNN.png files")
	fs.StringVar(&o.debugPixel, "debug-pixel", "", "Trace pixel x,y of the first frame to stdout")
	fs.StringVar(&o.mesh, "mesh", "", "Write preview meshes of every object to this JSON file")
	fs.IntVar(&o.meshCells, "mesh-cells", sdfx.DefaultCells, "Marching cubes cells along the longest bounds axis")
	fs.Float64Var(&o.meshBounds, "mesh-bounds", 2, "Half size of the cube meshes are cut from")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if o.frames < 0 {
		return o, fmt.Errorf("-frames must not be negative, got %d", o.frames)
	}
	if !(o.fps > 0) {
		return o, fmt.Errorf("-fps must be positive, got %g", o.fps)
	}
	return o, nil
}

// parsePixel reads "x,y".
func parsePixel(s string) (x, y int, err error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("debug pixel %q: want x,y", s)
	}
	if x, err = strconv.Atoi(strings.TrimSpace(xs)); err != nil {
		return 0, 0, fmt.Errorf("debug pixel %q: %w", s, err)
	}
	if y, err = strconv.Atoi(strings.TrimSpace(ys)); err != nil {
		return 0, 0, fmt.Errorf("debug pixel %q: %w", s, err)
	}
	return x, y, nil
}

// loaded is the scene to render plus what drives it between frames.
type loaded struct {
	scene    *scene.Scene
	animator *scene.Animator
	graph    *graph.SceneGraph // nil for the demo
}

func loadDemo() (*loaded, error) {
	d, err := scene.NewDemo(noise.New(noise.DefaultSeed))
	if err != nil {
		return nil, err
	}
	return &loaded{scene: d.Scene, animator: d.Animator}, nil
}

func loadScript(path string, stdout io.Writer) (*loaded, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, evalErrs, err := engine.NewEngine().Evaluate(string(source))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, e := range evalErrs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("%s:\n%s", path, strings.Join(msgs, "\n"))
	}
	for _, w := range graph.ValidateAll(g).Warnings {
		fmt.Fprintf(stdout, "warning: %s\n", w.Message)
	}
	res, err := build.Build(g)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	anim := scene.NewAnimator()
	if tr, ok := res.Transforms["ball1"]; ok {
		anim.Add(tr, scene.Ball1)
	}
	if tr, ok := res.Transforms["ball2"]; ok {
		anim.Add(tr, scene.Ball2)
	}
	return &loaded{scene: res.Scene, animator: anim, graph: g}, nil
}

// exportMeshes writes one mesh per scene object. Script objects are named
// after their root node, demo objects by index.
func exportMeshes(l *loaded, o options, path string) (int, error) {
	m := sdfx.New(o.meshCells)
	b := kernel.Cube(o.meshBounds)
	var meshes []*kernel.Mesh
	if l.graph != nil {
		var err error
		if meshes, err = tessellate.Tessellate(l.graph, m, b); err != nil {
			return 0, err
		}
	} else {
		for i, obj := range l.scene.Objects() {
			mesh, err := m.Tessellate(fmt.Sprintf("object%d", i), obj, b)
			if err != nil {
				return 0, err
			}
			meshes = append(meshes, mesh)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	if err := enc.Encode(meshes); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return len(meshes), f.Close()
}

func writeFrame(fb *render.ImageFramebuffer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := fb.WritePNG(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func run(args []string, stdout io.Writer) error {
	o, err := parseFlags(args, stdout)
	if err != nil {
		return err
	}

	var l *loaded
	if o.scene == "" {
		fmt.Fprintln(stdout, "Using built-in demo scene...")
		l, err = loadDemo()
	} else {
		fmt.Fprintf(stdout, "Loading %s...\n", o.scene)
		l, err = loadScript(o.scene, stdout)
	}
	if err != nil {
		return err
	}

	if o.mesh != "" {
		n, err := exportMeshes(l, o, o.mesh)
		if err != nil {
			return fmt.Errorf("mesh export: %w", err)
		}
		fmt.Fprintf(stdout, "Wrote %d meshes to %s\n", n, o.mesh)
	}

	r, err := render.NewRenderer(l.scene, render.Config{Width: o.width, Height: o.height, NumWorkers: o.workers}, render.NewDefaultLogger())
	if err != nil {
		return err
	}
	defer r.Close()

	if o.debugPixel != "" {
		x, y, err := parsePixel(o.debugPixel)
		if err != nil {
			return err
		}
		if _, err := r.DebugPixel(x, y, stdout); err != nil {
			return err
		}
	}

	if o.frames == 0 {
		return nil
	}
	if err := os.MkdirAll(o.out, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	dt := 1 / o.fps
	start := time.Now()
	for i := 0; i < o.frames; i++ {
		if i > 0 {
			if err := r.Do(func(*scene.Scene) error { return l.animator.Tick(dt) }); err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
		}
		fb, stats, err := r.Render()
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		name := filepath.Join(o.out, fmt.Sprintf("frame_%03d.png", i))
		if err := writeFrame(fb, name); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s: %d pixels, %d failed, %v\n", name, stats.Pixels, stats.FailedPixels, stats.Duration)
	}
	fmt.Fprintf(stdout, "Rendered %d frames in %v\n", o.frames, time.Since(start))
	return nil
}
