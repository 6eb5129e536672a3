/*
Copyright 2026 Chainlit Authors
SPDX-License-Identifier: Apache-2.0
*/

package googlegenai

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSimplifyPrimitives(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"string", "hello", "hello"},
		{"bool", true, true},
		{"int", 42, int64(42)},
		{"float", 1.5, 1.5},
		{"named string type", stepKind("llm"), "llm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Simplify(tt.in); got != tt.want {
				t.Errorf("Simplify(%v): got = %v (%T), wanted = %v (%T)", tt.in, got, got, tt.want, tt.want)
			}
		})
	}
}

// stepKind is a named string type used to check that named primitives still
// pass through as primitives.
type stepKind string

func TestSimplifyMapStringifiesKeys(t *testing.T) {
	in := map[int]any{
		1: "one",
		2: map[string]int{"nested": 3},
	}
	want := map[string]any{
		"1": "one",
		"2": map[string]any{"nested": int64(3)},
	}
	got := Simplify(in)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Simplify map (-want +got):\n%s", diff)
	}
}

func TestSimplifySequences(t *testing.T) {
	in := []any{"a", 1, []string{"b", "c"}}
	want := []any{"a", int64(1), []any{"b", "c"}}
	got := Simplify(in)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Simplify slice (-want +got):\n%s", diff)
	}
}

type simpleStruct struct {
	Name   string
	Count  int
	hidden string
}

func TestSimplifyStructExportedFields(t *testing.T) {
	in := &simpleStruct{Name: "n", Count: 2, hidden: "x"}
	want := map[string]any{"Name": "n", "Count": int64(2)}
	got := Simplify(in)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Simplify struct (-want +got):\n%s", diff)
	}
}

type opaqueDumper struct {
	payload map[string]any
}

func (d *opaqueDumper) ModelDump() map[string]any { return d.payload }

type panickyDumper struct{}

func (d *panickyDumper) ModelDump() map[string]any { panic("no dump for you") }

func TestSimplifyDumper(t *testing.T) {
	in := &opaqueDumper{payload: map[string]any{"model": "gemini"}}
	want := map[string]any{"model": "gemini"}
	got := Simplify(in)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Simplify dumper (-want +got):\n%s", diff)
	}
}

func TestSimplifyDumperPanicFallsBackToDebugString(t *testing.T) {
	got := Simplify(&panickyDumper{})
	if _, ok := got.(string); !ok {
		t.Errorf("Simplify panicking dumper: got = %v (%T), wanted a debug string", got, got)
	}
}

type cyclic struct {
	Name string
	Self *cyclic
}

func TestSimplifyCycleGuard(t *testing.T) {
	c := &cyclic{Name: "loop"}
	c.Self = c

	// Must terminate; the revisited pointer degrades to a string.
	got := Simplify(c)
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("Simplify cyclic: got = %T, wanted map", got)
	}
	if m["Name"] != "loop" {
		t.Errorf("cyclic Name: got = %v, wanted = loop", m["Name"])
	}
	if _, ok := m["Self"].(string); !ok {
		t.Errorf("cyclic Self: got = %T, wanted cut-off debug string", m["Self"])
	}
}

func TestSimplifyDepthLimit(t *testing.T) {
	// Build nesting deeper than the limit out of distinct maps, so the cycle
	// guard cannot trip first.
	in := map[string]any{"leaf": "bottom"}
	for range maxSimplifyDepth + 4 {
		in = map[string]any{"next": in}
	}

	got := Simplify(in)
	depth := 0
	for {
		m, ok := got.(map[string]any)
		if !ok {
			break
		}
		got = m["next"]
		depth++
	}
	if depth > maxSimplifyDepth {
		t.Errorf("simplified nesting depth: got = %d, wanted <= %d", depth, maxSimplifyDepth)
	}
	if s, ok := got.(string); !ok || !strings.Contains(s, "map") {
		t.Errorf("truncated tail: got = %v (%T), wanted debug string of remaining map", got, got)
	}
}

func TestSimplifyFuncBecomesDebugString(t *testing.T) {
	got := Simplify(fmt.Println)
	if _, ok := got.(string); !ok {
		t.Errorf("Simplify func: got = %T, wanted debug string", got)
	}
}
