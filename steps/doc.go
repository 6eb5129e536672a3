/*
Copyright 2026 Chainlit Authors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package steps holds the step (span) data model and its delivery machinery.

# Overview

A Step is one recorded unit of observed work: a name, a kind, a parent link,
input/output payloads, and start/end timestamps. Steps form a call tree via
their parent references.

The package has three parts:

  - Step and Sender: the record itself and the transport that persists it.
    SenderFunc adapts a plain function; LogSender is the default transport and
    simply logs completed steps via clog.
  - Dispatcher: a bounded, non-blocking queue that delivers steps to a Sender
    on background workers. Delivery is best effort: Enqueue never blocks the
    caller, a full queue drops the step, and failed sends are retried with
    capped exponential backoff before being dropped. Flush exists for tests
    and graceful shutdown.
  - Ambient context: Context carries the currently active step for an
    execution, and Stack is the per-execution list of recently finished
    steps. Both ride on context.Context. Instrumentation layers read these to
    resolve a new step's parent.

# Usage

	sender := steps.LogSender()
	d, err := steps.NewDispatcher(ctx, sender, cfg)
	if err != nil {
		return err
	}
	defer d.Close(ctx)

	step := steps.New("models/gemini-2.5-flash", steps.KindLLM)
	step.Start, step.End = start, time.Now()
	d.Enqueue(step)

	// Before exit, make queued steps visible.
	d.Flush(ctx)
*/
package steps
