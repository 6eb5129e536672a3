/*
Copyright 2026 Chainlit Authors
SPDX-License-Identifier: Apache-2.0
*/

package googlegenai

import (
	"fmt"
	"reflect"
)

// maxSimplifyDepth bounds the recursion when converting arbitrary values for
// step payloads. Values nested deeper degrade to their debug string.
const maxSimplifyDepth = 16

// Dumper lets a value provide its own structural representation for step
// payloads, analogous to a model-dump capability. A panicking ModelDump is
// swallowed and the value degrades to its debug string.
type Dumper interface {
	ModelDump() map[string]any
}

// Simplify converts an arbitrary value into a JSON-safe shape: primitives and
// nil pass through, maps become maps with stringified keys, sequences become
// []any, structs become maps of their exported fields, and anything else
// becomes its debug string. Recursion is depth-limited and self-referential
// values are cut off at the revisited pointer.
func Simplify(v any) any {
	return simplify(v, 0, map[uintptr]bool{})
}

func simplify(v any, depth int, seen map[uintptr]bool) any {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}

	if depth >= maxSimplifyDepth {
		return fmt.Sprintf("%v", v)
	}

	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return simplify(rv.Elem().Interface(), depth, seen)

	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		p := rv.Pointer()
		if seen[p] {
			return fmt.Sprintf("%v", v)
		}
		seen[p] = true
		defer delete(seen, p)
		if rv.Elem().Kind() == reflect.Struct {
			return simplifyStruct(v, rv.Elem(), depth, seen)
		}
		return simplify(rv.Elem().Interface(), depth+1, seen)

	case reflect.Map:
		p := rv.Pointer()
		if seen[p] {
			return fmt.Sprintf("%v", v)
		}
		seen[p] = true
		defer delete(seen, p)
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := fmt.Sprint(iter.Key().Interface())
			out[key] = simplify(iter.Value().Interface(), depth+1, seen)
		}
		return out

	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		p := rv.Pointer()
		if seen[p] {
			return fmt.Sprintf("%v", v)
		}
		seen[p] = true
		defer delete(seen, p)
		return simplifySeq(rv, depth, seen)

	case reflect.Array:
		return simplifySeq(rv, depth, seen)

	case reflect.Struct:
		return simplifyStruct(v, rv, depth, seen)
	}

	return fmt.Sprintf("%v", v)
}

func simplifySeq(rv reflect.Value, depth int, seen map[uintptr]bool) []any {
	out := make([]any, 0, rv.Len())
	for i := range rv.Len() {
		out = append(out, simplify(rv.Index(i).Interface(), depth+1, seen))
	}
	return out
}

// simplifyStruct maps a struct's exported fields, the closest analog to a
// public attribute dictionary. Structs that expose nothing fall back to the
// Dumper capability of the original value, then to the debug string.
func simplifyStruct(orig any, rv reflect.Value, depth int, seen map[uintptr]bool) any {
	rt := rv.Type()
	out := make(map[string]any)
	for i := range rt.NumField() {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		out[f.Name] = simplify(rv.Field(i).Interface(), depth+1, seen)
	}
	if len(out) > 0 {
		return out
	}
	if d, ok := orig.(Dumper); ok {
		if m, ok := tryDump(d); ok {
			return simplify(m, depth+1, seen)
		}
	}
	return fmt.Sprintf("%v", orig)
}

func tryDump(d Dumper) (m map[string]any, ok bool) {
	defer func() {
		if recover() != nil {
			m, ok = nil, false
		}
	}()
	return d.ModelDump(), true
}
