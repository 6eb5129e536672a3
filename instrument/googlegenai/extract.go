/*
Copyright 2026 Chainlit Authors
SPDX-License-Identifier: Apache-2.0
*/

package googlegenai

import (
	"reflect"
	"strings"
)

// The extractors are ordered lists of pure strategies, tried in fixed
// priority order with first match winning. They are best effort: a strategy
// that cannot make sense of the call simply declines, and a panic while
// walking an unknown result shape counts as a non-match.

// modelResourcePrefix marks positional arguments that name a model resource.
const modelResourcePrefix = "models/"

type modelStrategy func(call Call, result any) (string, bool)

var modelStrategies = []modelStrategy{
	modelFromKwargs,
	modelFromArgs,
	modelFromResult,
}

// extractModel pulls a model identifier out of the call or its result.
func extractModel(call Call, result any) (string, bool) {
	for _, strategy := range modelStrategies {
		if model, ok := strategy(call, result); ok {
			return model, true
		}
	}
	return "", false
}

func modelFromKwargs(call Call, _ any) (string, bool) {
	if s, ok := call.Kwargs["model"].(string); ok && s != "" {
		return s, true
	}
	return "", false
}

func modelFromArgs(call Call, _ any) (string, bool) {
	for _, arg := range call.Args {
		if s, ok := arg.(string); ok && strings.HasPrefix(s, modelResourcePrefix) {
			return s, true
		}
		if m, ok := arg.(map[string]any); ok {
			if s, ok := m["model"].(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func modelFromResult(_ Call, result any) (string, bool) {
	for _, name := range []string{"Model", "ModelName", "ModelVersion"} {
		if got, ok := attr(result, name); ok {
			if s, ok := got.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// promptKeys is the preference-ordered list of keyword arguments that carry
// the prompt payload.
var promptKeys = []string{"contents", "messages", "prompt", "input", "text"}

// extractPrompt pulls the prompt/input payload out of the call arguments,
// simplified for inclusion in a step. Declines when no argument looks like a
// prompt; the recorder then falls back to simplifying all arguments.
func extractPrompt(call Call) (any, bool) {
	for _, key := range promptKeys {
		if v, ok := call.Kwargs[key]; ok {
			return Simplify(v), true
		}
	}
	for _, arg := range call.Args {
		if arg == nil {
			continue
		}
		switch reflect.ValueOf(arg).Kind() {
		case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
			return Simplify(arg), true
		}
	}
	return nil, false
}

// extractOutput pulls the textual or structural output of a result.
func extractOutput(result any) any {
	if result == nil {
		return nil
	}

	for _, name := range []string{"OutputText", "Text", "ResponseText"} {
		if got, ok := attr(result, name); ok {
			if s, ok := got.(string); ok && s != "" {
				return s
			}
		}
	}

	if text, ok := textFromCandidates(result); ok {
		return text
	}

	if resp, ok := attr(result, "Response"); ok && resp != nil {
		if got, ok := attr(resp, "OutputText"); ok {
			if s, ok := got.(string); ok {
				return s
			}
		}
	}

	switch result.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return result
	}

	return Simplify(result)
}

// textFromCandidates walks a result's candidates, collecting the text of
// every content part in traversal order and joining the non-empty fragments
// with newlines. Any panic while walking an unexpected shape is swallowed and
// treated as a non-match.
func textFromCandidates(result any) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()

	cands, found := attr(result, "Candidates")
	if !found || cands == nil {
		return "", false
	}
	cv := reflect.ValueOf(cands)
	if cv.Kind() != reflect.Slice && cv.Kind() != reflect.Array {
		return "", false
	}

	var texts []string
	for i := range cv.Len() {
		content, found := attr(cv.Index(i).Interface(), "Content")
		if !found || content == nil {
			continue
		}
		parts, found := attr(content, "Parts")
		if !found || parts == nil {
			continue
		}
		pv := reflect.ValueOf(parts)
		if pv.Kind() != reflect.Slice && pv.Kind() != reflect.Array {
			continue
		}
		for j := range pv.Len() {
			if got, ok := attr(pv.Index(j).Interface(), "Text"); ok {
				if s, ok := got.(string); ok && s != "" {
					texts = append(texts, s)
				}
			}
		}
	}
	if len(texts) == 0 {
		return "", false
	}
	return strings.Join(texts, "\n"), true
}

// attr resolves the named attribute on an arbitrary value: a niladic method
// (accessors like Text()) or an exported struct field, through any pointer
// indirection. Returns false when the value exposes no such attribute.
func attr(v any, name string) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)

	if m := rv.MethodByName(name); m.IsValid() {
		if mt := m.Type(); mt.NumIn() == 0 && mt.NumOut() >= 1 {
			return callAccessor(m)
		}
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	f := rv.FieldByName(name)
	if !f.IsValid() || !f.CanInterface() {
		return nil, false
	}
	return f.Interface(), true
}

// callAccessor invokes a niladic accessor on a foreign type. A panicking
// accessor counts as a non-match, same as the candidates walk.
func callAccessor(m reflect.Value) (got any, ok bool) {
	defer func() {
		if recover() != nil {
			got, ok = nil, false
		}
	}()
	return m.Call(nil)[0].Interface(), true
}
