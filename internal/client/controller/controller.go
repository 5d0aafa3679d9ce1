// Package controller implements the query state machine that decides when a
// code is checked.
//
// Input arrives as explicit events. Typing (InputChanged) arms a debounce
// timer and the check runs when the timer fires with a complete code;
// Submit checks immediately. Every transition runs under one mutex, so the
// machine behaves as a single logical thread no matter which goroutine
// delivers the event. At most one timer is armed at a time.
package controller

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/barcode"
)

// DefaultDebounceWindow is the quiet period after the last keystroke before
// an automatic check.
const DefaultDebounceWindow = 300 * time.Millisecond

type State int

const (
	Idle State = iota
	PendingAuto
	Evaluating
	Resolved
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingAuto:
		return "pending"
	case Evaluating:
		return "evaluating"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Event is a controller input.
type Event interface {
	isEvent()
}

// InputChanged carries the full current input value.
type InputChanged struct {
	Value string
}

// Submit is an explicit check request (button or Enter).
type Submit struct{}

// Clear empties the input and the result.
type Clear struct{}

// timerFired is delivered by the debounce timer armed with sequence seq.
type timerFired struct {
	seq uint64
}

func (InputChanged) isEvent() {}
func (Submit) isEvent()       {}
func (Clear) isEvent()        {}
func (timerFired) isEvent()   {}

// Evaluator classifies a canonical code.
type Evaluator interface {
	Evaluate(code string) barcode.Classification
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(code string) barcode.Classification

func (f EvaluatorFunc) Evaluate(code string) barcode.Classification { return f(code) }

// Result is one resolution.
type Result struct {
	Input          string
	Classification barcode.Classification
	// Auto is true when the debounce timer triggered the check.
	Auto bool
}

// ResultHandler receives every resolution. It runs outside the controller
// lock and may call back into the controller.
type ResultHandler func(Result)

type Option func(*Controller)

func WithDebounceWindow(d time.Duration) Option {
	return func(c *Controller) { c.window = d }
}

func WithClock(clk Clock) Option {
	return func(c *Controller) { c.clock = clk }
}

func WithResultHandler(h ResultHandler) Option {
	return func(c *Controller) { c.handler = h }
}

type Controller struct {
	eval    Evaluator
	window  time.Duration
	clock   Clock
	handler ResultHandler

	mu      sync.Mutex
	state   State
	input   string
	pending Timer
	seq     uint64
	result  *Result
}

func New(eval Evaluator, opts ...Option) *Controller {
	c := &Controller{
		eval:   eval,
		window: DefaultDebounceWindow,
		clock:  realClock{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Dispatch applies ev and returns the resolution it produced, if any.
func (c *Controller) Dispatch(ev Event) (Result, bool) {
	c.mu.Lock()
	res, ok := c.apply(ev)
	c.mu.Unlock()

	if ok && c.handler != nil {
		c.handler(res)
	}
	return res, ok
}

func (c *Controller) Input(value string) { c.Dispatch(InputChanged{Value: value}) }

func (c *Controller) Submit() (Result, bool) { return c.Dispatch(Submit{}) }

func (c *Controller) Clear() { c.Dispatch(Clear{}) }

// CancelPending stops the armed timer, if any.
func (c *Controller) CancelPending() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelTimer()
	if c.state == PendingAuto {
		c.state = Idle
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the displayed result; false when nothing is shown.
func (c *Controller) Current() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return Result{}, false
	}
	return *c.result, true
}

// InputValue returns the canonical current input.
func (c *Controller) InputValue() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// apply runs one transition. c.mu is held.
func (c *Controller) apply(ev Event) (Result, bool) {
	switch e := ev.(type) {
	case InputChanged:
		v := barcode.Canonicalize(e.Value)
		if v == c.input && c.state != Idle && !c.retryable() {
			return Result{}, false
		}
		c.input = v
		c.result = nil
		c.cancelTimer()
		c.state = Idle
		if v != "" {
			c.arm()
		}

	case Submit:
		if c.input == "" {
			return Result{}, false
		}
		if c.result != nil && c.result.Input == c.input && !c.retryable() {
			return Result{}, false
		}
		c.cancelTimer()
		return c.evaluate(false), true

	case Clear:
		c.cancelTimer()
		c.input = ""
		c.result = nil
		c.state = Idle

	case timerFired:
		if e.seq != c.seq || c.state != PendingAuto {
			return Result{}, false
		}
		c.pending = nil
		if len(c.input) != barcode.CodeLength {
			c.state = Idle
			return Result{}, false
		}
		return c.evaluate(true), true
	}

	return Result{}, false
}

func (c *Controller) evaluate(auto bool) Result {
	c.state = Evaluating
	res := Result{
		Input:          c.input,
		Classification: c.eval.Evaluate(c.input),
		Auto:           auto,
	}
	c.result = &res
	c.state = Resolved
	return res
}

// retryable reports whether the shown result is NotReady, which never
// settles the input it was computed for. c.mu is held.
func (c *Controller) retryable() bool {
	return c.state == Resolved && c.result != nil && c.result.Classification.Kind == barcode.NotReady
}

func (c *Controller) arm() {
	c.seq++
	seq := c.seq
	c.pending = c.clock.AfterFunc(c.window, func() {
		c.Dispatch(timerFired{seq: seq})
	})
	c.state = PendingAuto
}

func (c *Controller) cancelTimer() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	// Invalidate a timer that already fired and is waiting for the lock.
	c.seq++
}
