// Package executor runs tool actions through a fixed pipeline:
// BeforeExecute, TryExecute, then AfterExecute, which threads the output
// through the middleware registered for the action's name.
package executor

import (
	"context"
	"errors"
)

// ErrNoRunner is returned when an action has nothing to run.
var ErrNoRunner = errors.New("executor: action has no runner")

// ActionFunc is the in-process body of an action.
type ActionFunc func(ctx context.Context, input []byte) ([]byte, error)

// Action is a named, invocable capability. The executor invokes it but
// does not own it.
type Action struct {
	// Name identifies the action and keys its middleware.
	Name string

	// Dir is the directory the action's defining code lives in.
	Dir string

	// Command is run by the Subprocess executor.
	Command []string

	// Config is free-form action configuration.
	Config map[string]any

	// Run is invoked by the Local executor.
	Run ActionFunc
}

// Middleware post-processes an action's output.
type Middleware interface {
	ProcessOutput(ctx context.Context, action Action, output []byte) ([]byte, error)
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(ctx context.Context, action Action, output []byte) ([]byte, error)

func (f MiddlewareFunc) ProcessOutput(ctx context.Context, action Action, output []byte) ([]byte, error) {
	return f(ctx, action, output)
}

// MiddlewareSource looks up the ordered middleware for an action name.
type MiddlewareSource interface {
	Middleware(name string) []Middleware
}

// Registry maps action names to ordered middleware.
type Registry map[string][]Middleware

func (r Registry) Middleware(name string) []Middleware {
	return r[name]
}

// Use appends middleware for name.
func (r Registry) Use(name string, m ...Middleware) {
	r[name] = append(r[name], m...)
}

// Executor is the three-phase contract. Concrete executors usually embed
// Base and supply TryExecute.
type Executor interface {
	BeforeExecute(ctx context.Context, action Action, input []byte) ([]byte, error)
	TryExecute(ctx context.Context, action Action, input []byte) ([]byte, error)
	AfterExecute(ctx context.Context, action Action, output []byte) ([]byte, error)
}

// Execute runs the phases of e strictly in order. The first error is
// returned as is and no later phase runs.
func Execute(ctx context.Context, e Executor, action Action, input []byte) ([]byte, error) {
	input, err := e.BeforeExecute(ctx, action, input)
	if err != nil {
		return nil, err
	}

	output, err := e.TryExecute(ctx, action, input)
	if err != nil {
		return nil, err
	}

	return e.AfterExecute(ctx, action, output)
}

// Base provides the default BeforeExecute and AfterExecute.
type Base struct {
	middleware MiddlewareSource
}

// NewBase creates a Base. A nil source means no middleware.
func NewBase(source MiddlewareSource) Base {
	return Base{middleware: source}
}

// BeforeExecute returns input unchanged.
func (b Base) BeforeExecute(_ context.Context, _ Action, input []byte) ([]byte, error) {
	return input, nil
}

// AfterExecute passes output through each middleware for action.Name in order.
func (b Base) AfterExecute(ctx context.Context, action Action, output []byte) ([]byte, error) {
	if b.middleware == nil {
		return output, nil
	}

	for _, m := range b.middleware.Middleware(action.Name) {
		var err error
		output, err = m.ProcessOutput(ctx, action, output)
		if err != nil {
			return nil, err
		}
	}
	return output, nil
}
