/*
Copyright 2026 Chainlit Authors
SPDX-License-Identifier: Apache-2.0
*/

package googlegenai

// Package identifiers for the two acceptable SDK variants, used to name them
// in configuration errors.
const (
	// PackageModern is the preferred, client-based SDK.
	PackageModern = "google-genai"
	// PackageLegacy is the older, function-based SDK.
	PackageLegacy = "google-generativeai"
)

// Surface is a named group of replaceable methods on an SDK client, such as
// completion generation or agent lifecycle.
type Surface interface {
	// Method returns the named callable, or false when the surface does not
	// expose it.
	Method(name string) (any, bool)
	// SetMethod replaces the named callable.
	SetMethod(name string, fn any)
}

// Client is the modern, client-based SDK shape: a set of named surfaces
// built fresh per client instance.
type Client interface {
	// Surface returns the named sub-surface, or false when this client build
	// does not expose it.
	Surface(name string) (Surface, bool)
}

// Module is the legacy, function-based SDK shape: top-level generation
// helpers replaced directly on the module.
type Module interface {
	Func(name string) (any, bool)
	SetFunc(name string, fn any)
}

// Variant identifies an installable SDK build. Hosts register the variants
// that are actually linked into the binary; registration is the Go analog of
// the package being importable.
type Variant interface {
	// ID uniquely identifies the variant for idempotency tracking.
	ID() string
}

// ClientVariant is a modern SDK build. The installer registers a constructor
// hook through it; the variant must invoke the hook once for every client it
// constructs, after construction completes. Class-level wrapping alone would
// miss the per-instance sub-surfaces.
type ClientVariant interface {
	Variant
	OnNewClient(hook func(Client))
}

// ModuleVariant is a legacy SDK build exposing a patchable module.
type ModuleVariant interface {
	Variant
	Module() Module
}

// surfaceTable maps each instrumentable client surface to its candidate
// method names. Methods a particular client build does not expose are
// silently skipped.
var surfaceTable = []struct {
	name    string
	methods []string
}{
	{"responses", []string{"generate"}},
	{"models", []string{"generate_content", "generate", "create_completion"}},
	{"agents", []string{"create", "update", "delete", "execute", "query"}},
	{"sessions", []string{"generate", "generate_content", "execute"}},
	{"tools", []string{"execute"}},
}

// legacyFuncs are the top-level generation helpers patched on the legacy
// module.
var legacyFuncs = []string{"generate_text", "generate_content", "generate_message"}

// MapSurface is a Surface backed by a plain method map, for variants whose
// SDK exposes its callables dynamically.
type MapSurface struct {
	methods map[string]any
}

// NewMapSurface creates a MapSurface over the given methods. The map is used
// directly, not copied.
func NewMapSurface(methods map[string]any) *MapSurface {
	if methods == nil {
		methods = make(map[string]any)
	}
	return &MapSurface{methods: methods}
}

// Method implements Surface.
func (s *MapSurface) Method(name string) (any, bool) {
	fn, ok := s.methods[name]
	return fn, ok
}

// SetMethod implements Surface.
func (s *MapSurface) SetMethod(name string, fn any) {
	s.methods[name] = fn
}
