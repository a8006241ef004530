package surface

import (
	"fmt"
	"io"
	"strings"
)

// Debugger writes an indented trace of one pixel's evaluation. It is not
// safe for concurrent use and is only attached to single-threaded traces.
type Debugger struct {
	w     io.Writer
	depth int
}

// NewDebugger creates a debugger writing to w.
func NewDebugger(w io.Writer) *Debugger {
	return &Debugger{w: w}
}

// Printf writes one line at the current indentation.
func (d *Debugger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("  ", d.depth), fmt.Sprintf(format, args...))
}

// Enter writes a line and indents subsequent output.
func (d *Debugger) Enter(format string, args ...interface{}) {
	d.Printf("-> "+format, args...)
	d.depth++
}

// Leave unindents and writes a line.
func (d *Debugger) Leave(format string, args ...interface{}) {
	if d.depth > 0 {
		d.depth--
	}
	d.Printf("<- "+format, args...)
}

// Depth returns the current indentation level.
func (d *Debugger) Depth() int {
	return d.depth
}
