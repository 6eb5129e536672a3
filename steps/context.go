/*
Copyright 2026 Chainlit Authors
SPDX-License-Identifier: Apache-2.0
*/

package steps

import (
	"context"
	"errors"
	"sync"
)

// ErrNoContext reports that no execution context is active. Callers that only
// need a parent step treat this as "no parent", not as a failure.
var ErrNoContext = errors.New("steps: no active execution context")

// Context is the execution-scoped state for one logical run. It tracks the
// currently active step so that nested work can resolve its parent.
type Context struct {
	mu      sync.Mutex
	current *Step
}

// NewContext creates an empty execution context.
func NewContext() *Context {
	return &Context{}
}

// CurrentStep returns the currently active step, or nil.
func (c *Context) CurrentStep() *Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// SetCurrentStep records the currently active step. Passing nil clears it.
func (c *Context) SetCurrentStep(s *Step) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = s
}

type execContextKey struct{}

// WithContext attaches an execution context to ctx.
func WithContext(ctx context.Context, ec *Context) context.Context {
	return context.WithValue(ctx, execContextKey{}, ec)
}

// FromContext returns the active execution context. The absence of one is a
// distinct, expected outcome reported as ErrNoContext.
func FromContext(ctx context.Context) (*Context, error) {
	if ec, ok := ctx.Value(execContextKey{}).(*Context); ok {
		return ec, nil
	}
	return nil, ErrNoContext
}

// Stack is the per-execution list of recently finished steps, most recent
// last. It is consulted for parent resolution when no step is active.
type Stack struct {
	mu    sync.Mutex
	steps []*Step
}

// NewStack creates an empty stack. The zero value is also usable.
func NewStack() *Stack {
	return &Stack{}
}

// Push appends a step to the stack.
func (s *Stack) Push(step *Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, step)
}

// Pop removes and returns the most recent step, or nil when empty.
func (s *Stack) Pop() *Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.steps) == 0 {
		return nil
	}
	last := s.steps[len(s.steps)-1]
	s.steps = s.steps[:len(s.steps)-1]
	return last
}

// Last returns the most recent step without removing it, or nil when empty.
func (s *Stack) Last() *Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.steps) == 0 {
		return nil
	}
	return s.steps[len(s.steps)-1]
}

// Snapshot returns a copy of the stack, oldest first.
func (s *Stack) Snapshot() []*Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Step, len(s.steps))
	copy(out, s.steps)
	return out
}

type stackKey struct{}

// WithStack attaches a recent-step stack to ctx.
func WithStack(ctx context.Context, st *Stack) context.Context {
	return context.WithValue(ctx, stackKey{}, st)
}

// StackFromContext returns the recent-step stack from ctx, or nil.
func StackFromContext(ctx context.Context) *Stack {
	if st, ok := ctx.Value(stackKey{}).(*Stack); ok {
		return st
	}
	return nil
}

// RecentSteps returns the recent steps for this execution, oldest first.
// A missing stack yields an empty result.
func RecentSteps(ctx context.Context) []*Step {
	st := StackFromContext(ctx)
	if st == nil {
		return nil
	}
	return st.Snapshot()
}
