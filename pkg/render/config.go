package render

import (
	"fmt"
	"log"
	"runtime"

	"github.com/chazu/csgray/pkg/surface"
)

// Logger receives per-frame summaries and failure reports.
type Logger interface {
	Printf(format string, args ...interface{})
}

// DefaultLogger forwards to the standard logger.
type DefaultLogger struct{}

func (DefaultLogger) Printf(format string, args ...interface{}) {
	log.Printf(format, args...)
}

// NewDefaultLogger creates a logger backed by log.Printf.
func NewDefaultLogger() Logger {
	return DefaultLogger{}
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...interface{}) {}

// Config contains the frame size and parallelism of a Renderer.
type Config struct {
	Width      int
	Height     int
	NumWorkers int // 0 = use CPU count
}

// DefaultConfig returns a 320×240 frame using every CPU.
func DefaultConfig() Config {
	return Config{Width: 320, Height: 240}
}

// Validate rejects empty frames.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("render: frame size %dx%d must be positive", c.Width, c.Height)
	}
	if c.NumWorkers < 0 {
		return fmt.Errorf("render: negative worker count %d", c.NumWorkers)
	}
	return nil
}

// Workers resolves NumWorkers to the pool size actually used. It never
// exceeds surface.MaxSlots.
func (c Config) Workers() int {
	n := c.NumWorkers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > surface.MaxSlots {
		n = surface.MaxSlots
	}
	return n
}
