/*
Copyright 2026 Chainlit Authors
SPDX-License-Identifier: Apache-2.0
*/

package googlegenai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/stuagano/chainlit/steps"
)

// fakeVariant is a client-based SDK build whose clients answer every call by
// echoing the prompt.
type fakeVariant struct {
	id    string
	hooks []func(Client)
}

func (v *fakeVariant) ID() string { return v.id }

func (v *fakeVariant) OnNewClient(hook func(Client)) {
	v.hooks = append(v.hooks, hook)
}

// newClient simulates a client construction, firing the registered hooks.
func (v *fakeVariant) newClient() *fakeClient {
	c := &fakeClient{surfaces: map[string]*MapSurface{
		"responses": NewMapSurface(map[string]any{
			"generate": Func(echoGenerate),
		}),
	}}
	for _, hook := range v.hooks {
		hook(c)
	}
	return c
}

type fakeClient struct {
	surfaces map[string]*MapSurface
}

func (c *fakeClient) Surface(name string) (Surface, bool) {
	s, ok := c.surfaces[name]
	return s, ok
}

// fakeResponse looks enough like a generate response for extraction.
type fakeResponse struct {
	Model      string
	OutputText string
}

func echoGenerate(_ context.Context, call Call) (any, error) {
	model, _ := call.Kwargs["model"].(string)
	contents, _ := call.Kwargs["contents"].(string)
	return &fakeResponse{Model: model, OutputText: "echo:" + contents}, nil
}

// fakeModule is a legacy function-based SDK build.
type fakeModule struct {
	funcs map[string]any
}

func (m *fakeModule) Func(name string) (any, bool) {
	fn, ok := m.funcs[name]
	return fn, ok
}

func (m *fakeModule) SetFunc(name string, fn any) {
	m.funcs[name] = fn
}

type fakeModuleVariant struct {
	id  string
	mod *fakeModule
}

func (v *fakeModuleVariant) ID() string     { return v.id }
func (v *fakeModuleVariant) Module() Module { return v.mod }

func newTestInstaller(t *testing.T) (*Installer, *captureSender) {
	t.Helper()
	sender := &captureSender{}
	in, err := New(t.Context(), WithSender(sender))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = in.Dispatcher().Close(context.Background()) })
	return in, sender
}

func TestInstallNoVariantsRegistered(t *testing.T) {
	in, _ := newTestInstaller(t)

	err := in.Install()
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Install with no variants: got = %v, wanted *ConfigurationError", err)
	}
	msg := cfgErr.Error()
	if !strings.Contains(msg, PackageModern) || !strings.Contains(msg, PackageLegacy) {
		t.Errorf("configuration error message %q, wanted both %q and %q named", msg, PackageModern, PackageLegacy)
	}
}

func TestInstallRecordsEchoCall(t *testing.T) {
	in, sender := newTestInstaller(t)

	variant := &fakeVariant{id: PackageModern}
	in.Register(variant)
	if err := in.Install(); err != nil {
		t.Fatalf("Install: %v", err)
	}

	client := variant.newClient()
	surf, _ := client.Surface("responses")
	fn, _ := surf.Method("generate")
	call := Call{Kwargs: map[string]any{
		"model":    "models/gemini-test",
		"contents": "hello world",
	}}
	result, err := invoke(t, fn, call)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	resp, ok := result.(*fakeResponse)
	if !ok || resp.OutputText != "echo:hello world" {
		t.Fatalf("generate result: got = %#v, wanted echo response", result)
	}

	flush(t, in.Dispatcher())
	recorded := sender.all()
	if len(recorded) != 1 {
		t.Fatalf("recorded steps: got = %d, wanted = 1", len(recorded))
	}
	step := recorded[0]
	if step.Name != "models/gemini-test" {
		t.Errorf("step name: got = %q, wanted = %q", step.Name, "models/gemini-test")
	}
	if step.Input != "hello world" {
		t.Errorf("step input: got = %v, wanted = hello world", step.Input)
	}
	if step.Output != "echo:hello world" {
		t.Errorf("step output: got = %v, wanted = echo:hello world", step.Output)
	}
	wantMeta := map[string]any{
		"provider":  "google",
		"interface": "responses",
		"method":    "generate",
	}
	if diff := cmp.Diff(wantMeta, step.Metadata); diff != "" {
		t.Errorf("step metadata (-want +got):\n%s", diff)
	}
	if step.Type != steps.KindLLM {
		t.Errorf("step type: got = %v, wanted = %v", step.Type, steps.KindLLM)
	}
}

func TestInstallTwiceWrapsOnce(t *testing.T) {
	in, sender := newTestInstaller(t)

	variant := &fakeVariant{id: PackageModern}
	in.Register(variant)
	if err := in.Install(); err != nil {
		t.Fatalf("first Install: %v", err)
	}
	if err := in.Install(); err != nil {
		t.Fatalf("second Install: %v", err)
	}
	if got := len(variant.hooks); got != 1 {
		t.Fatalf("constructor hooks after double install: got = %d, wanted = 1", got)
	}

	client := variant.newClient()
	// Re-walking the same instance must also be a no-op.
	for _, hook := range variant.hooks {
		hook(client)
	}

	surf, _ := client.Surface("responses")
	fn, _ := surf.Method("generate")
	if _, err := invoke(t, fn, Call{Kwargs: map[string]any{"model": "models/m"}}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	flush(t, in.Dispatcher())
	if got := len(sender.all()); got != 1 {
		t.Errorf("steps per call after double install: got = %d, wanted = 1", got)
	}
}

func TestInstallPrefersClientOverModule(t *testing.T) {
	in, sender := newTestInstaller(t)

	mod := &fakeModule{funcs: map[string]any{"generate_text": Func(echoGenerate)}}
	in.Register(&fakeModuleVariant{id: PackageLegacy, mod: mod})
	in.Register(&fakeVariant{id: PackageModern})

	if err := in.Install(); err != nil {
		t.Fatalf("Install: %v", err)
	}

	// The legacy module must be left untouched when a client variant exists:
	// calling through it records nothing.
	fn, _ := mod.Func("generate_text")
	if _, err := invoke(t, fn, Call{Kwargs: map[string]any{"contents": "hi"}}); err != nil {
		t.Fatalf("generate_text: %v", err)
	}
	flush(t, in.Dispatcher())
	if got := len(sender.all()); got != 0 {
		t.Errorf("steps through unpatched legacy module: got = %d, wanted = 0", got)
	}
}

func TestInstallLegacyModule(t *testing.T) {
	in, sender := newTestInstaller(t)

	mod := &fakeModule{funcs: map[string]any{
		"generate_text":    Func(echoGenerate),
		"generate_content": Func(echoGenerate),
	}}
	in.Register(&fakeModuleVariant{id: PackageLegacy, mod: mod})
	if err := in.Install(); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if err := in.Install(); err != nil {
		t.Fatalf("second Install: %v", err)
	}

	fn, _ := mod.Func("generate_text")
	if _, err := invoke(t, fn, Call{Kwargs: map[string]any{"contents": "hi"}}); err != nil {
		t.Fatalf("generate_text: %v", err)
	}

	flush(t, in.Dispatcher())
	recorded := sender.all()
	if len(recorded) != 1 {
		t.Fatalf("steps per legacy call: got = %d, wanted = 1", len(recorded))
	}
	if iface := recorded[0].Metadata["interface"]; iface != "legacy" {
		t.Errorf("legacy step interface: got = %v, wanted = legacy", iface)
	}
	if recorded[0].Name != "google::legacy.generate_text" {
		t.Errorf("legacy step name: got = %q, wanted = %q", recorded[0].Name, "google::legacy.generate_text")
	}
}

// invoke calls a surface callable regardless of whether it has been wrapped.
func invoke(t *testing.T, fn any, call Call) (any, error) {
	t.Helper()
	switch fn := fn.(type) {
	case Func:
		return fn(t.Context(), call)
	case func(context.Context, Call) (any, error):
		return fn(t.Context(), call)
	}
	t.Fatalf("unexpected callable type %T", fn)
	return nil, nil
}
