/*
Copyright 2026 Chainlit Authors
SPDX-License-Identifier: Apache-2.0
*/

package steps

import (
	"context"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
)

// Kind classifies a step within the observability tree.
type Kind string

const (
	// KindLLM marks a step recorded around a model-generation call.
	KindLLM Kind = "llm"
	// KindTool marks a step recorded around a tool execution.
	KindTool Kind = "tool"
	// KindRun marks a top-level execution step.
	KindRun Kind = "run"
)

// Step is a recorded unit of observed work with timing, input, output, and a
// parent link. Ownership transfers to the Dispatcher on Enqueue; producers
// must not mutate a step after handing it off.
type Step struct {
	ID       string         `json:"id"`
	ParentID string         `json:"parent_id,omitempty"`
	Name     string         `json:"name"`
	Type     Kind           `json:"type"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Input    any            `json:"input,omitempty"`
	Output   any            `json:"output,omitempty"`
	Start    time.Time      `json:"start"`
	End      time.Time      `json:"end"`
}

// New creates a step with a fresh identifier.
func New(name string, kind Kind) *Step {
	return &Step{
		ID:   uuid.NewString(),
		Name: name,
		Type: kind,
	}
}

// Duration returns the elapsed time between the step's start and end.
func (s *Step) Duration() time.Duration {
	if s.End.IsZero() {
		return time.Since(s.Start)
	}
	return s.End.Sub(s.Start)
}

// Sender persists a completed step. Implementations are the transport to an
// observability backend; delivery guarantees are theirs to define.
type Sender interface {
	Send(ctx context.Context, step *Step) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, step *Step) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, step *Step) error {
	return f(ctx, step)
}

// LogSender returns a Sender that logs each step via clog. It is the default
// transport when no backend is wired.
func LogSender() Sender {
	return SenderFunc(func(ctx context.Context, step *Step) error {
		clog.FromContext(ctx).With(
			"step_id", step.ID,
			"parent_id", step.ParentID,
			"type", string(step.Type),
			"duration_ms", step.Duration().Milliseconds(),
		).Info("Step completed", "name", step.Name)
		return nil
	})
}
