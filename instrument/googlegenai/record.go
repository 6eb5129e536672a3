/*
Copyright 2026 Chainlit Authors
SPDX-License-Identifier: Apache-2.0
*/

package googlegenai

import (
	"context"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/stuagano/chainlit/instrument/metrics"
	"github.com/stuagano/chainlit/steps"
)

// provider tags every step recorded by this package.
const provider = "google"

const tracerName = "chainlit.instrument.googlegenai"

// Recorder converts completed SDK calls into steps and schedules their
// delivery. It never fails the instrumented call path: parent resolution,
// extraction, and delivery problems all degrade to a less informative step.
type Recorder struct {
	dispatcher *steps.Dispatcher
	metrics    *metrics.Steps
}

// NewRecorder creates a Recorder emitting through the given dispatcher.
func NewRecorder(dispatcher *steps.Dispatcher, m *metrics.Steps) *Recorder {
	if m == nil {
		m = metrics.NewSteps("chainlit.instrument")
	}
	return &Recorder{dispatcher: dispatcher, metrics: m}
}

// Record builds a step for one completed call and schedules its send without
// blocking. The end timestamp is captured on entry, immediately after the
// result became available.
func (r *Recorder) Record(ctx context.Context, iface, method string, call Call, result any, start time.Time) {
	end := time.Now()

	model, _ := extractModel(call, result)
	name := model
	if name == "" {
		name = fmt.Sprintf("%s::%s.%s", provider, iface, method)
	}

	input, found := extractPrompt(call)
	if !found {
		input = map[string]any{
			"args":   Simplify(call.Args),
			"kwargs": Simplify(call.Kwargs),
		}
	}

	step := steps.New(name, steps.KindLLM)
	step.ParentID = r.parentID(ctx)
	step.Metadata = map[string]any{
		"provider":  provider,
		"interface": iface,
		"method":    method,
	}
	step.Input = input
	step.Output = extractOutput(result)
	step.Start = start
	step.End = end

	r.mirrorSpan(ctx, step, model)

	if r.dispatcher.Enqueue(step) {
		r.metrics.RecordStep(ctx, provider, iface, method)
	} else {
		r.metrics.RecordDrop(ctx, provider, iface, method)
		clog.FromContext(ctx).With("step_id", step.ID).
			With("name", step.Name).
			Warn("Step queue full, dropping step")
	}
}

// parentID resolves the new step's parent: the ambient context's current
// step, else the most recent step on the execution stack, else none. The
// absence of an execution context is an expected outcome, not an error.
func (r *Recorder) parentID(ctx context.Context) string {
	if ec, err := steps.FromContext(ctx); err == nil {
		if cur := ec.CurrentStep(); cur != nil {
			return cur.ID
		}
	}
	if st := steps.StackFromContext(ctx); st != nil {
		if last := st.Last(); last != nil {
			return last.ID
		}
	}
	return ""
}

// mirrorSpan emits the step as an OpenTelemetry span with explicit
// timestamps, so the call also shows up in distributed traces.
func (r *Recorder) mirrorSpan(ctx context.Context, step *steps.Step, model string) {
	tr := otel.Tracer(tracerName, oteltrace.WithInstrumentationVersion("1.0.0"))
	attrs := []attribute.KeyValue{
		attribute.String("genai.provider", provider),
		attribute.String("genai.interface", step.Metadata["interface"].(string)),
		attribute.String("genai.method", step.Metadata["method"].(string)),
	}
	if model != "" {
		attrs = append(attrs, attribute.String("genai.model", model))
	}
	_, span := tr.Start(ctx, step.Name,
		oteltrace.WithTimestamp(step.Start),
		oteltrace.WithAttributes(attrs...))
	span.End(oteltrace.WithTimestamp(step.End))
}
