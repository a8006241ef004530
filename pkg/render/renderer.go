package render

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/chazu/csgray/pkg/scene"
	"github.com/chazu/csgray/pkg/surface"
	"github.com/chazu/csgray/pkg/vecmath"
)

// summaryEvery is how many frames pass between frame-rate log lines.
const summaryEvery = 10

// ErrClosed is returned when a frame is requested after Close.
var ErrClosed = errors.New("render: renderer is closed")

// FrameStats summarises one rendered frame.
type FrameStats struct {
	Pixels       int           `json:"pixels"`
	FailedPixels int           `json:"failedPixels"`
	Workers      int           `json:"workers"`
	Duration     time.Duration `json:"duration"`
	// FirstError is the first pixel failure seen, or nil.
	FirstError error `json:"-"`
}

// Renderer drives whole frames over a persistent worker pool. RenderFrame
// and DebugPixel are serialised, so the debug path never overlaps a bulk
// frame and scene mutation between calls is safe.
type Renderer struct {
	mu     sync.Mutex
	cfg    Config
	rt     *Raytracer
	pool   *WorkerPool
	logger Logger

	frames int
	fps    float64
	closed bool
}

// NewRenderer starts a worker pool for cfg. A nil logger discards output.
func NewRenderer(s *scene.Scene, cfg Config, logger Logger) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = nopLogger{}
	}
	pool := NewWorkerPool(cfg.Workers())
	pool.Start()
	return &Renderer{
		cfg:    cfg,
		rt:     NewRaytracer(s, cfg.Width, cfg.Height),
		pool:   pool,
		logger: logger,
		fps:    1,
	}, nil
}

// Config returns the frame configuration.
func (r *Renderer) Config() Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

// SetScene swaps the scene rendered by subsequent frames.
func (r *Renderer) SetScene(s *scene.Scene) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rt = NewRaytracer(s, r.cfg.Width, r.cfg.Height)
}

// Resize changes the frame size for subsequent frames, keeping the scene
// and the worker pool.
func (r *Renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg := r.cfg
	cfg.Width, cfg.Height = width, height
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.cfg = cfg
	r.rt = NewRaytracer(r.rt.scene, width, height)
	return nil
}

// Do runs fn with rendering locked out, for between-frame scene mutation.
func (r *Renderer) Do(fn func(s *scene.Scene) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.rt.scene)
}

// RenderFrame writes every pixel of one frame to fb. Pixel failures never
// abort the frame; they are counted and the first is logged. After Close
// it returns ErrClosed and leaves fb untouched.
func (r *Renderer) RenderFrame(fb Framebuffer) (FrameStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return FrameStats{}, ErrClosed
	}

	start := time.Now()
	f := &frame{rt: r.rt, fb: fb, width: r.cfg.Width}
	total := r.cfg.Width * r.cfg.Height
	r.pool.run(f, total)

	stats := FrameStats{
		Pixels:       total,
		FailedPixels: int(f.failed.Load()),
		Workers:      r.pool.NumWorkers(),
		Duration:     time.Since(start),
		FirstError:   f.firstErr,
	}
	r.report(stats)
	return stats, nil
}

// Render renders one frame into a fresh image framebuffer.
func (r *Renderer) Render() (*ImageFramebuffer, FrameStats, error) {
	cfg := r.Config()
	fb := NewImageFramebuffer(cfg.Width, cfg.Height)
	stats, err := r.RenderFrame(fb)
	if err != nil {
		return nil, stats, err
	}
	return fb, stats, nil
}

func (r *Renderer) report(s FrameStats) {
	if s.FailedPixels > 0 {
		r.logger.Printf("frame %d: %d of %d pixels failed, first: %v\n",
			r.frames, s.FailedPixels, s.Pixels, s.FirstError)
	}
	if secs := s.Duration.Seconds(); secs > 0 {
		r.fps = 0.95*r.fps + 0.05/secs
	}
	r.frames++
	if r.frames%summaryEvery == 0 {
		r.logger.Printf("Average framerate: %3.1ffps (%d workers)\n", r.fps, s.Workers)
	}
}

// DebugPixel traces one pixel on the calling goroutine, writing the full
// recursive evaluation to w. The unclamped colour is returned along with
// any internal error recorded during the trace.
func (r *Renderer) DebugPixel(x, y int, w io.Writer) (vecmath.Vec3, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if x < 0 || y < 0 || x >= r.cfg.Width || y >= r.cfg.Height {
		return vecmath.Vec3{}, fmt.Errorf("debug pixel (%d, %d) outside %dx%d frame", x, y, r.cfg.Width, r.cfg.Height)
	}
	fmt.Fprintf(w, "Debugging frame for X=%d, Y=%d\n", x, y)
	tc := surface.NewTrace(0)
	tc.Debug = surface.NewDebugger(w)
	c := r.rt.RenderPixel(tc, x, y)
	fmt.Fprintf(w, "SCREEN <- %.3f %.3f %.3f\n", c.X, c.Y, c.Z)
	return c, tc.Err()
}

// Close stops the worker pool. Later frames fail with ErrClosed; Close may
// be called more than once.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.pool.Stop()
}
