// Package engine evaluates scene scripts. A script is zygomys Lisp run in a
// fresh sandbox with the scene builtins installed; the builtins populate a
// graph.SceneGraph that the caller compiles into a renderable scene.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/csgray/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a non-fatal problem in user code, such as a parse error or a
// builtin rejecting its arguments.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates scene scripts. It is safe for concurrent use; each call
// to Evaluate runs in its own sandbox, and a result that finishes after a
// newer call has started is discarded.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs source and returns the scene graph it describes.
//
// Return semantics:
//   - On success: graph, nil, nil
//   - On parse or evaluation failure: nil, eval errors, nil
//   - On timeout, panic or supersession: nil, nil, error
//
// The returned graph's Version is the evaluation's generation number.
func (e *Engine) Evaluate(source string) (*graph.SceneGraph, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		g, evalErrs, err := evaluate(source, gen)
		ch <- evalResult{graph: g, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

func evaluate(source string, gen uint64) (*graph.SceneGraph, []EvalError, error) {
	b := graph.NewBuilder()
	b.Graph().Version = gen

	// An empty script is a valid, empty scene.
	if strings.TrimSpace(source) == "" {
		return b.Graph(), nil, nil
	}

	env, err := loadSandbox(b, source)
	defer env.Stop()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return b.Graph(), nil, nil
}

// sandboxMu serialises sandbox construction. zygomys writes package state
// while installing its operator table, so two sandboxes must not be built at
// once. Run stays outside the lock; a script that never returns cannot hold
// it.
var sandboxMu sync.Mutex

func loadSandbox(b *graph.Builder, source string) (*zygo.Zlisp, error) {
	sandboxMu.Lock()
	defer sandboxMu.Unlock()

	env := zygo.NewZlispSandbox()
	registerBuiltins(env, b)
	return env, env.LoadString(preprocessSource(source))
}

// linePattern matches zygomys messages of the form "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches "line N: ...".
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalErrors, pulling out
// a line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
