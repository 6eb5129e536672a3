/*
Copyright 2026 Chainlit Authors
SPDX-License-Identifier: Apache-2.0
*/

package googlegenai

import (
	"context"
	"reflect"
	"sync"
	"time"
)

// Call carries the arguments of one intercepted SDK invocation: positional
// arguments plus named keyword-style arguments. It exists only for the
// duration of the call.
type Call struct {
	Args   []any
	Kwargs map[string]any
}

// Func is a synchronous SDK callable.
type Func func(ctx context.Context, call Call) (any, error)

// AsyncFunc is an SDK callable whose result arrives as a Promise.
type AsyncFunc func(ctx context.Context, call Call) *Promise

// Awaitable is a lazily resolved result. A synchronous callable may return
// one instead of a plain value; the caller drives it when ready.
type Awaitable interface {
	Await(ctx context.Context) (any, error)
}

// Promise is a memoized Awaitable: the underlying work runs on the first
// Await and every Await observes the same outcome.
type Promise struct {
	once sync.Once
	run  func(context.Context) (any, error)
	val  any
	err  error
}

// NewPromise creates a Promise over the given resolution function.
func NewPromise(run func(context.Context) (any, error)) *Promise {
	return &Promise{run: run}
}

// Await resolves the promise, running the underlying work exactly once.
func (p *Promise) Await(ctx context.Context) (any, error) {
	p.once.Do(func() {
		p.val, p.err = p.run(ctx)
	})
	return p.val, p.err
}

// Streamer yields incremental results. Streaming responses pass through the
// interceptor unrecorded.
type Streamer interface {
	Next() (any, error)
}

// isStreaming reports whether a result is a streaming iterator: either a
// Streamer or an iterator-shaped function (iter.Seq / iter.Seq2, i.e. a
// func taking a single yield func that returns bool).
func isStreaming(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(Streamer); ok {
		return true
	}
	rt := reflect.TypeOf(v)
	if rt.Kind() != reflect.Func || rt.NumIn() != 1 || rt.NumOut() != 0 {
		return false
	}
	yield := rt.In(0)
	return yield.Kind() == reflect.Func && yield.NumOut() == 1 && yield.Out(0).Kind() == reflect.Bool
}

// Interceptor wraps SDK callables so that each completed call records a step.
// Wrapping preserves the callable's calling convention exactly; the only
// observable addition is the step emission side effect.
type Interceptor struct {
	rec *Recorder
}

// NewInterceptor creates an Interceptor recording through rec.
func NewInterceptor(rec *Recorder) *Interceptor {
	return &Interceptor{rec: rec}
}

// Wrap produces an intercepted replacement for fn, branching on the
// callable's static type. Callables of unknown shape are returned unchanged
// with ok=false so the surface walker can skip them.
func (i *Interceptor) Wrap(iface, method string, fn any) (wrapped any, ok bool) {
	switch fn := fn.(type) {
	case Func:
		return i.WrapSync(iface, method, fn), true
	case func(context.Context, Call) (any, error):
		return i.WrapSync(iface, method, fn), true
	case AsyncFunc:
		return i.WrapAsync(iface, method, fn), true
	case func(context.Context, Call) *Promise:
		return i.WrapAsync(iface, method, fn), true
	}
	return fn, false
}

// WrapSync intercepts a synchronous callable. Three result shapes are
// handled: a plain value is recorded immediately; an Awaitable is rewrapped
// so that recording happens after resolution, without blocking the immediate
// caller; a streaming iterator passes through unrecorded.
func (i *Interceptor) WrapSync(iface, method string, fn Func) Func {
	return func(ctx context.Context, call Call) (any, error) {
		start := time.Now()
		result, err := fn(ctx, call)
		if err != nil {
			// SDK errors belong to the caller, unaltered.
			return result, err
		}

		if isStreaming(result) {
			return result, nil
		}

		if aw, ok := result.(Awaitable); ok {
			return NewPromise(func(ctx context.Context) (any, error) {
				resolved, err := aw.Await(ctx)
				if err != nil {
					return resolved, err
				}
				i.rec.Record(ctx, iface, method, call, resolved, start)
				return resolved, nil
			}), nil
		}

		i.rec.Record(ctx, iface, method, call, result, start)
		return result, nil
	}
}

// WrapAsync intercepts a promise-returning callable: the wrapper's promise
// awaits the delegate and records once the value is available.
func (i *Interceptor) WrapAsync(iface, method string, fn AsyncFunc) AsyncFunc {
	return func(ctx context.Context, call Call) *Promise {
		start := time.Now()
		inner := fn(ctx, call)
		return NewPromise(func(ctx context.Context) (any, error) {
			resolved, err := inner.Await(ctx)
			if err != nil {
				return resolved, err
			}
			i.rec.Record(ctx, iface, method, call, resolved, start)
			return resolved, nil
		})
	}
}
