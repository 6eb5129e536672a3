/*
Copyright 2026 Chainlit Authors
SPDX-License-Identifier: Apache-2.0
*/

package googlegenai

import (
	"context"
	"fmt"
	"sync"

	"github.com/stuagano/chainlit/instrument/metrics"
	"github.com/stuagano/chainlit/steps"
)

// ConfigurationError reports that no supported SDK variant was registered at
// install time. It names both acceptable packages so the caller can
// remediate.
type ConfigurationError struct {
	Preferred string
	Legacy    string
}

// Error implements error.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf(
		"expected either %s (preferred) or %s to be installed; register one of them to enable Google instrumentation",
		e.Preferred, e.Legacy)
}

// Installer owns the instrumentation state: the registered SDK variants, the
// interceptor that wraps their callables, and the registry of identifiers
// that have already been instrumented. The registry is the sole idempotency
// mechanism; a marked target is never wrapped again.
type Installer struct {
	mu          sync.Mutex
	variants    []Variant
	interceptor *Interceptor
	dispatcher  *steps.Dispatcher

	installed map[string]bool
	instances map[Client]bool
}

// Option is a functional option for configuring an Installer.
type Option func(*installerConfig) error

type installerConfig struct {
	sender     steps.Sender
	dispatcher *steps.Dispatcher
	metrics    *metrics.Steps
}

// WithSender sets the step transport. Ignored when WithDispatcher is also
// given.
func WithSender(s steps.Sender) Option {
	return func(c *installerConfig) error {
		if s == nil {
			return fmt.Errorf("sender cannot be nil")
		}
		c.sender = s
		return nil
	}
}

// WithDispatcher sets an existing dispatcher instead of constructing one.
func WithDispatcher(d *steps.Dispatcher) Option {
	return func(c *installerConfig) error {
		if d == nil {
			return fmt.Errorf("dispatcher cannot be nil")
		}
		c.dispatcher = d
		return nil
	}
}

// WithMetrics sets the metrics instance used by the recorder.
func WithMetrics(m *metrics.Steps) Option {
	return func(c *installerConfig) error {
		if m == nil {
			return fmt.Errorf("metrics cannot be nil")
		}
		c.metrics = m
		return nil
	}
}

// New creates an Installer. Without options, steps are delivered to a
// clog-based sender through a dispatcher configured from the environment.
func New(ctx context.Context, opts ...Option) (*Installer, error) {
	var cfg installerConfig
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if cfg.dispatcher == nil {
		sender := cfg.sender
		if sender == nil {
			sender = steps.LogSender()
		}
		dcfg, err := steps.LoadConfig(ctx)
		if err != nil {
			return nil, err
		}
		cfg.dispatcher, err = steps.NewDispatcher(ctx, sender, dcfg)
		if err != nil {
			return nil, err
		}
	}

	in := &Installer{
		dispatcher: cfg.dispatcher,
		installed:  make(map[string]bool),
		instances:  make(map[Client]bool),
	}
	in.interceptor = NewInterceptor(NewRecorder(cfg.dispatcher, cfg.metrics))
	return in, nil
}

// Register makes an SDK variant available for installation. Hosts register
// the variants actually linked into the binary before calling Install.
func (in *Installer) Register(v Variant) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.variants = append(in.variants, v)
}

// Dispatcher returns the step dispatcher, so hosts can Flush on shutdown.
func (in *Installer) Dispatcher() *steps.Dispatcher {
	return in.dispatcher
}

// Install instruments an available SDK variant, preferring the modern
// client-based SDK and falling back to the legacy function-based one. It
// returns a *ConfigurationError when neither is registered. Install is safe
// to call multiple times: already-instrumented targets are skipped.
func (in *Installer) Install() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	var clients []ClientVariant
	var modules []ModuleVariant
	for _, v := range in.variants {
		switch v := v.(type) {
		case ClientVariant:
			clients = append(clients, v)
		case ModuleVariant:
			modules = append(modules, v)
		}
	}

	switch {
	case len(clients) > 0:
		for _, v := range clients {
			key := "variant:" + v.ID()
			if in.installed[key] {
				continue
			}
			v.OnNewClient(in.instrumentClient)
			in.installed[key] = true
		}
	case len(modules) > 0:
		for _, v := range modules {
			in.patchModule(v)
		}
	default:
		return &ConfigurationError{Preferred: PackageModern, Legacy: PackageLegacy}
	}
	return nil
}

// instrumentClient walks one freshly constructed client, replacing every
// known method on its present surfaces with an intercepted wrapper. Each
// client instance is walked exactly once.
func (in *Installer) instrumentClient(c Client) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.instances[c] {
		return
	}
	in.instances[c] = true

	for _, s := range surfaceTable {
		surf, ok := c.Surface(s.name)
		if !ok || surf == nil {
			continue
		}
		for _, name := range s.methods {
			fn, ok := surf.Method(name)
			if !ok || fn == nil {
				continue
			}
			wrapped, ok := in.interceptor.Wrap(s.name, name, fn)
			if !ok {
				continue
			}
			surf.SetMethod(name, wrapped)
		}
	}
}

// patchModule replaces the legacy module's generation helpers in place,
// marking each function so repeated installs are no-ops.
func (in *Installer) patchModule(v ModuleVariant) {
	key := "variant:" + v.ID()
	if in.installed[key] {
		return
	}

	mod := v.Module()
	for _, name := range legacyFuncs {
		fn, ok := mod.Func(name)
		if !ok || fn == nil {
			continue
		}
		fnKey := "module:" + v.ID() + "." + name
		if in.installed[fnKey] {
			continue
		}
		wrapped, ok := in.interceptor.Wrap("legacy", name, fn)
		if !ok {
			continue
		}
		mod.SetFunc(name, wrapped)
		in.installed[fnKey] = true
	}
	in.installed[key] = true
}
