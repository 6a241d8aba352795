package engine

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chazu/detgeo/pkg/command"
)

func newTestEngine() *Engine {
	return NewEngine(command.NewDirectory())
}

func TestRunEmptyString(t *testing.T) {
	eng := newTestEngine()

	evalErrs, err := eng.Run("")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
}

func TestRunWhitespaceOnly(t *testing.T) {
	eng := newTestEngine()

	evalErrs, err := eng.Run("   \n\t  \n  ")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
}

func TestRunValidExpression(t *testing.T) {
	eng := newTestEngine()

	evalErrs, err := eng.Run("(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
}

func TestRunMultipleExpressions(t *testing.T) {
	eng := newTestEngine()

	source := `
(def x 10)
(def y 20)
(+ x y)
`
	evalErrs, err := eng.Run(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
}

func TestRunSyntaxError(t *testing.T) {
	eng := newTestEngine()

	evalErrs, err := eng.Run("(+ 1 2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}
	if evalErrs[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestRunUndefinedSymbol(t *testing.T) {
	eng := newTestEngine()

	evalErrs, err := eng.Run("(+ 1 undefined-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") {
		t.Errorf("Error() should contain line info, got: %s", s)
	}
	if !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain message, got: %s", s)
	}

	e2 := EvalError{Message: "no location"}
	if strings.Contains(e2.Error(), "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", e2.Error())
	}
}

func TestWaitWithTimeout(t *testing.T) {
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan evalResult) // never sends

	start := time.Now()
	_, err := waitWithTimeout(ch, 1, 50*time.Millisecond, &mu, &gen)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error message, got: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took %s", elapsed)
	}
}

func TestWaitDiscardsStaleGeneration(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2)

	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	_, err := waitWithTimeout(ch, 1, time.Second, &mu, &gen)
	if err == nil {
		t.Fatal("expected error for stale generation")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestSetTimeout(t *testing.T) {
	eng := newTestEngine()
	eng.SetTimeout(time.Second)
	if eng.timeout != time.Second {
		t.Errorf("timeout = %s, want 1s", eng.timeout)
	}
	eng.SetTimeout(0)
	if eng.timeout != EvalTimeout {
		t.Errorf("timeout = %s, want %s", eng.timeout, EvalTimeout)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
		{
			name:     "short line format",
			msg:      "line 3: cmd: command not found: /det/nope",
			wantLine: 3,
			wantMsg:  "command not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }

// A script that outlives its timeout stops changing the directory as soon
// as Run returns, and does not hold up the next run.
func TestRunTimeoutCancelsCommands(t *testing.T) {
	dir := command.NewDirectory()
	abs := newTarget(t, dir, "/det/abs")
	eng := NewEngine(dir)
	eng.SetTimeout(50 * time.Millisecond)

	_, err := eng.Run(`(for [(def i 1) (< i 100000000) (set i (+ i 1))] (cmd "/det/abs/width" i :mm))`)
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("expected timeout, got %v", err)
	}

	var before float64
	eng.Do(func(*command.Directory) error {
		before = abs.Width()
		return nil
	})
	for i := 0; i < 100; i++ {
		if err := eng.Apply("/det/abs/height 40 cm"); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}
	time.Sleep(50 * time.Millisecond)
	var after float64
	eng.Do(func(*command.Directory) error {
		after = abs.Width()
		return nil
	})
	if before != after {
		t.Errorf("width changed from %g to %g after the run timed out", before, after)
	}

	eng.SetTimeout(time.Second)
	evalErrs, err := eng.Run(`(cmd "/det/abs/height" 30 :cm)`)
	if err != nil || len(evalErrs) != 0 {
		t.Fatalf("run after timeout: errs=%v err=%v", evalErrs, err)
	}
	if abs.Height() != 300 {
		t.Errorf("height = %g, want 300", abs.Height())
	}
}

func TestWithinCancelled(t *testing.T) {
	eng := newTestEngine()
	called := false
	err := eng.within(&run{cancelled: true}, func(*command.Directory) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("error = %v, want ErrCancelled", err)
	}
	if called {
		t.Error("cancelled run reached the directory")
	}
}

// A new run cancels the one before it.
func TestRunCancelsPrevious(t *testing.T) {
	eng := newTestEngine()
	old := &run{}
	eng.current = old
	if _, err := eng.Run(""); err != nil {
		t.Fatal(err)
	}
	if !old.cancelled {
		t.Error("previous run still active")
	}
}
