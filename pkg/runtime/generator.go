package runtime

import (
	"errors"
	"fmt"
	"sync"
)

// GeneratorState tracks the coroutine lifecycle:
// SuspendedStart -> Running <-> SuspendedYield -> Completed.
type GeneratorState int

const (
	GeneratorSuspendedStart GeneratorState = iota
	GeneratorRunning
	GeneratorSuspendedYield
	GeneratorCompleted
)

func (s GeneratorState) String() string {
	switch s {
	case GeneratorSuspendedStart:
		return "suspended-start"
	case GeneratorRunning:
		return "running"
	case GeneratorSuspendedYield:
		return "suspended-yield"
	case GeneratorCompleted:
		return "completed"
	default:
		return fmt.Sprintf("unknown_state_%d", int(s))
	}
}

// IteratorResult is the {value, done} pair produced by each resume.
type IteratorResult struct {
	Value Value
	Done  bool
}

// GeneratorBody evaluates the function body to completion, yielding through
// the handle it is given. The interpreter supplies it at creation time; the
// body runs lazily on its own goroutine once the first Next arrives.
type GeneratorBody func(g *GeneratorValue) (Value, error)

// GeneratorValue owns one suspended execution context. The body goroutine
// and the resuming caller exchange control through a pair of unbuffered
// channels, so exactly one of them runs at any instant.
type GeneratorValue struct {
	mu     sync.Mutex
	state  GeneratorState
	body   GeneratorBody
	resume chan resumeMsg
	yields chan yieldMsg
}

type resumeMsg struct {
	value     Value
	returning bool
}

type yieldMsg struct {
	result IteratorResult
	err    error
}

// GeneratorReturn unwinds a generator body when the handle is returned
// early. It propagates like a non-local exit; catch clauses do not observe
// it, finally blocks do.
type GeneratorReturn struct {
	Value Value
}

func (GeneratorReturn) Error() string { return "generator return" }

var errGeneratorRunning = errors.New("Generator is already running")

func NewGenerator(body GeneratorBody) *GeneratorValue {
	return &GeneratorValue{
		state:  GeneratorSuspendedStart,
		body:   body,
		resume: make(chan resumeMsg),
		yields: make(chan yieldMsg),
	}
}

func (g *GeneratorValue) Kind() Kind { return KindGenerator }

func (g *GeneratorValue) State() GeneratorState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Next resumes the generator. On a fresh handle it starts the body; on a
// yielded handle it delivers value as the result of the pending yield
// expression. Completed handles answer {undefined, true} forever. An error
// return carries either a state violation or whatever the body threw.
func (g *GeneratorValue) Next(value Value) (IteratorResult, error) {
	g.mu.Lock()
	switch g.state {
	case GeneratorCompleted:
		g.mu.Unlock()
		return IteratorResult{Value: UndefinedValue{}, Done: true}, nil
	case GeneratorRunning:
		g.mu.Unlock()
		return IteratorResult{}, errGeneratorRunning
	case GeneratorSuspendedStart:
		g.state = GeneratorRunning
		g.mu.Unlock()
		g.launch()
	case GeneratorSuspendedYield:
		g.state = GeneratorRunning
		g.mu.Unlock()
		g.resume <- resumeMsg{value: value}
	}
	msg := <-g.yields
	return msg.result, msg.err
}

// Return forces completion without running the remaining body statements.
// A suspended-yield body is resumed one last time so its finally blocks can
// run; a not-yet-started body never runs at all.
func (g *GeneratorValue) Return(value Value) (IteratorResult, error) {
	if value == nil {
		value = UndefinedValue{}
	}
	g.mu.Lock()
	switch g.state {
	case GeneratorCompleted:
		g.mu.Unlock()
		return IteratorResult{Value: value, Done: true}, nil
	case GeneratorRunning:
		g.mu.Unlock()
		return IteratorResult{}, errGeneratorRunning
	case GeneratorSuspendedStart:
		g.state = GeneratorCompleted
		g.mu.Unlock()
		return IteratorResult{Value: value, Done: true}, nil
	case GeneratorSuspendedYield:
		g.state = GeneratorRunning
		g.mu.Unlock()
		g.resume <- resumeMsg{value: value, returning: true}
	}
	msg := <-g.yields
	return msg.result, msg.err
}

// Yield suspends the body from inside a yield expression: it hands
// {value, false} to whoever called Next and blocks until the next resume.
// The returned value is the caller-supplied resumption value; the returned
// error is a GeneratorReturn when the handle was returned early.
func (g *GeneratorValue) Yield(value Value) (Value, error) {
	g.mu.Lock()
	g.state = GeneratorSuspendedYield
	g.mu.Unlock()
	g.yields <- yieldMsg{result: IteratorResult{Value: value, Done: false}}
	msg := <-g.resume
	if msg.returning {
		return nil, GeneratorReturn{Value: msg.value}
	}
	return msg.value, nil
}

func (g *GeneratorValue) launch() {
	go func() {
		result, err := g.body(g)
		var msg yieldMsg
		switch ret := err.(type) {
		case nil:
			if result == nil {
				result = UndefinedValue{}
			}
			msg = yieldMsg{result: IteratorResult{Value: result, Done: true}}
		case GeneratorReturn:
			msg = yieldMsg{result: IteratorResult{Value: ret.Value, Done: true}}
		default:
			msg = yieldMsg{result: IteratorResult{Value: UndefinedValue{}, Done: true}, err: err}
		}
		g.mu.Lock()
		g.state = GeneratorCompleted
		g.mu.Unlock()
		g.yields <- msg
	}()
}
