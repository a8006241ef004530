package render

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/chazu/csgray/pkg/surface"
	"github.com/chazu/csgray/pkg/vecmath"
)

// ErrNonFinite marks a pixel whose shaded colour contains NaN or Inf.
var ErrNonFinite = errors.New("render: non-finite pixel colour")

// minChunk is the smallest run of pixels handed to a worker.
const minChunk = 16

// span is a half-open range of row-major pixel indices.
type span struct {
	start, end int
}

// guidedChunks splits total pixels the way a guided parallel-for does:
// each chunk takes half of the remaining work's fair share, shrinking
// towards minSize as the frame drains.
func guidedChunks(total, workers, minSize int) []span {
	if workers < 1 {
		workers = 1
	}
	if minSize < 1 {
		minSize = 1
	}
	var out []span
	for start := 0; start < total; {
		size := (total - start) / (2 * workers)
		if size < minSize {
			size = minSize
		}
		end := start + size
		if end > total {
			end = total
		}
		out = append(out, span{start, end})
		start = end
	}
	return out
}

// PixelTask is one chunk of a frame.
type PixelTask struct {
	span
	frame *frame
}

// frame is the shared state of one RenderFrame call.
type frame struct {
	rt     *Raytracer
	fb     Framebuffer
	width  int
	wg     sync.WaitGroup
	failed atomic.Int64

	errMu    sync.Mutex
	firstErr error
}

func (f *frame) fail(x, y int, err error) {
	f.failed.Add(1)
	f.errMu.Lock()
	if f.firstErr == nil {
		f.firstErr = fmt.Errorf("pixel (%d, %d): %w", x, y, err)
	}
	f.errMu.Unlock()
}

// WorkerPool runs a fixed set of goroutines, each bound to its own trace
// slot, for the lifetime of a Renderer.
type WorkerPool struct {
	taskQueue  chan PixelTask
	workers    []*Worker
	numWorkers int
	wg         sync.WaitGroup
	stopOnce   sync.Once
}

// Worker shades pixel chunks with a private Trace.
type Worker struct {
	ID        int
	trace     *surface.Trace
	taskQueue chan PixelTask
}

// NewWorkerPool creates numWorkers workers, clamped to [1, surface.MaxSlots].
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > surface.MaxSlots {
		numWorkers = surface.MaxSlots
	}
	wp := &WorkerPool{
		taskQueue:  make(chan PixelTask, numWorkers*4),
		numWorkers: numWorkers,
	}
	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:        i,
			trace:     surface.NewTrace(i),
			taskQueue: wp.taskQueue,
		})
	}
	return wp
}

// Start begins all workers.
func (wp *WorkerPool) Start() {
	for _, w := range wp.workers {
		wp.wg.Add(1)
		go w.run(&wp.wg)
	}
}

// Stop shuts the workers down after the queue drains.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.taskQueue)
		wp.wg.Wait()
	})
}

// NumWorkers returns the pool size.
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// run renders the frame in guided chunks and returns once every pixel has
// been written.
func (wp *WorkerPool) run(f *frame, total int) {
	chunks := guidedChunks(total, wp.numWorkers, minChunk)
	f.wg.Add(len(chunks))
	for _, c := range chunks {
		wp.taskQueue <- PixelTask{span: c, frame: f}
	}
	f.wg.Wait()
}

func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()
	for task := range w.taskQueue {
		task.frame.shade(w.trace, task.span)
		task.frame.wg.Done()
	}
}

// shade renders one span. A pixel whose trace records an error, or whose
// colour is not finite, is painted with the background instead.
func (f *frame) shade(tc *surface.Trace, s span) {
	bg := f.rt.scene.Background()
	for i := s.start; i < s.end; i++ {
		x, y := i%f.width, i/f.width
		c, err := f.pixel(tc, x, y)
		if err == nil && !c.IsFinite() {
			err = ErrNonFinite
		}
		if err != nil {
			f.fail(x, y, err)
			c = bg
		}
		r, g, b := ToBytes(c)
		f.fb.PutPixel(x, y, r, g, b)
	}
}

// pixel shades one pixel, converting a panic into a pixel error.
func (f *frame) pixel(tc *surface.Trace, x, y int) (c vecmath.Vec3, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	tc.Reset()
	c = f.rt.RenderPixel(tc, x, y)
	return c, tc.Err()
}
