// Package engine runs macro scripts that configure detector components.
// It wraps zygomys in a sandboxed environment whose builtins issue
// commands against a command directory.
package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/detgeo/pkg/command"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in the script, or a command the
// directory rejected.
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

// ErrCancelled is returned by builtins of a run that timed out or was
// superseded. Such a run can no longer reach the directory.
var ErrCancelled = errors.New("evaluation cancelled")

// Engine wraps the zygomys interpreter for macro evaluation.
// Each call to Run creates a fresh sandboxed environment. Every access to
// the directory, from builtins or from Do, happens under one lock, so
// commands reach it from one goroutine at a time.
type Engine struct {
	dir     *command.Directory
	timeout time.Duration

	mu         sync.Mutex
	generation uint64

	// dirMu guards dir, the components it configures, and the
	// cancelled flag of every run.
	dirMu   sync.Mutex
	current *run
}

// run is the state of one evaluation.
type run struct {
	cancelled bool
}

// NewEngine creates an Engine issuing commands to dir.
func NewEngine(dir *command.Directory) *Engine {
	return &Engine{dir: dir, timeout: EvalTimeout}
}

// SetTimeout changes the evaluation limit. Non-positive values restore
// EvalTimeout.
func (e *Engine) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = EvalTimeout
	}
	e.mu.Lock()
	e.timeout = d
	e.mu.Unlock()
}

// Run evaluates a macro script. Commands are applied in script order and
// stay applied if a later form fails.
//
// Return semantics:
//   - On success: returns nil errors + nil error
//   - On parse/eval/command failure: returns eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + error
//
// Starting a run cancels the previous one. A run that timed out keeps its
// goroutine until the script ends, but its next builtin call fails with
// ErrCancelled, so it never changes the directory after Run returns.
func (e *Engine) Run(source string) ([]EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	timeout := e.timeout
	e.mu.Unlock()

	r := &run{}
	e.dirMu.Lock()
	if e.current != nil {
		e.current.cancelled = true
	}
	e.current = r
	e.dirMu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", rec)}
			}
		}()

		evalErrs, err := e.evaluate(source, r)
		ch <- evalResult{errors: evalErrs, err: err}
	}()

	errs, err := waitWithTimeout(ch, gen, timeout, &e.mu, &e.generation)
	if err != nil {
		// The goroutine may still be running. Once cancelled under dirMu it
		// cannot issue another command, whatever it does next.
		e.cancel(r)
	}
	return errs, err
}

// cancel stops r from reaching the directory. A command r is executing
// completes first.
func (e *Engine) cancel(r *run) {
	e.dirMu.Lock()
	r.cancelled = true
	if e.current == r {
		e.current = nil
	}
	e.dirMu.Unlock()
}

// Do runs fn with exclusive access to the directory and the components
// registered in it. Callers outside a macro, such as a single command line
// or a build, use it so they never overlap with a running script.
func (e *Engine) Do(fn func(dir *command.Directory) error) error {
	e.dirMu.Lock()
	defer e.dirMu.Unlock()
	return fn(e.dir)
}

// Apply executes one command line under the directory lock.
func (e *Engine) Apply(line string) error {
	return e.Do(func(dir *command.Directory) error { return dir.Apply(line) })
}

// within runs fn for r under the directory lock, unless r was cancelled.
func (e *Engine) within(r *run, fn func(dir *command.Directory) error) error {
	e.dirMu.Lock()
	defer e.dirMu.Unlock()
	if r.cancelled {
		return ErrCancelled
	}
	return fn(e.dir)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string, r *run) ([]EvalError, error) {
	// Empty source is a valid script that does nothing.
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}

	// Sandbox mode prevents scripts from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, func(fn func(*command.Directory) error) error {
		return e.within(r, fn)
	})

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return parseZygomysError(err), nil
	}

	if _, err := env.Run(); err != nil {
		return parseZygomysError(err), nil
	}

	return nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
