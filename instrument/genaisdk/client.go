/*
Copyright 2026 Chainlit Authors
SPDX-License-Identifier: Apache-2.0
*/

package genaisdk

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"google.golang.org/genai"

	"github.com/stuagano/chainlit/instrument/googlegenai"
)

// Variant is the modern Google GenAI SDK build. It constructs clients and
// fires the installer's constructor hooks for each one.
type Variant struct {
	mu    sync.Mutex
	hooks []func(googlegenai.Client)
}

// NewVariant creates a Variant ready for registration on an installer.
func NewVariant() *Variant {
	return &Variant{}
}

// ID implements googlegenai.Variant.
func (v *Variant) ID() string {
	return googlegenai.PackageModern
}

// OnNewClient implements googlegenai.ClientVariant.
func (v *Variant) OnNewClient(hook func(googlegenai.Client)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hooks = append(v.hooks, hook)
}

// NewClient constructs the underlying genai client and runs the registered
// constructor hooks over the wrapper, instrumenting its surfaces.
func (v *Variant) NewClient(ctx context.Context, cfg *genai.ClientConfig) (*Client, error) {
	gc, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return v.Wrap(gc), nil
}

// Wrap adapts an existing genai client, running the constructor hooks as if
// it had just been constructed through this variant.
func (v *Variant) Wrap(gc *genai.Client) *Client {
	c := newClient(gc)
	v.mu.Lock()
	hooks := append([]func(googlegenai.Client){}, v.hooks...)
	v.mu.Unlock()
	for _, hook := range hooks {
		hook(c)
	}
	return c
}

// Client exposes the genai client's generate methods through the replaceable
// surface model, so they can be intercepted, plus typed convenience methods
// that route through the (possibly wrapped) callables.
type Client struct {
	genai  *genai.Client
	models *googlegenai.MapSurface
}

func newClient(gc *genai.Client) *Client {
	c := &Client{genai: gc}
	c.models = googlegenai.NewMapSurface(map[string]any{
		"generate_content": googlegenai.Func(c.generateContent),
	})
	return c
}

// Surface implements googlegenai.Client. The Go SDK exposes only the models
// surface; the walker skips the rest.
func (c *Client) Surface(name string) (googlegenai.Surface, bool) {
	if name == "models" {
		return c.models, true
	}
	return nil, false
}

// generateContent is the raw surface callable. It maps the keyword-style
// arguments onto the genai API; stream=true switches to the streaming call,
// whose iterator passes through interception unrecorded.
func (c *Client) generateContent(ctx context.Context, call googlegenai.Call) (any, error) {
	model, _ := call.Kwargs["model"].(string)
	contents, err := contentsFromKwargs(call.Kwargs)
	if err != nil {
		return nil, err
	}
	config, _ := call.Kwargs["config"].(*genai.GenerateContentConfig)

	if stream, _ := call.Kwargs["stream"].(bool); stream {
		return c.genai.Models.GenerateContentStream(ctx, model, contents, config), nil
	}
	return c.genai.Models.GenerateContent(ctx, model, contents, config)
}

// GenerateContent generates a response for the given model and contents,
// routing through any installed interception.
func (c *Client) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	result, err := c.invokeModels(ctx, googlegenai.Call{Kwargs: map[string]any{
		"model":    model,
		"contents": contents,
		"config":   config,
	}})
	if err != nil {
		return nil, err
	}
	resp, ok := result.(*genai.GenerateContentResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected generate_content result type %T", result)
	}
	return resp, nil
}

// GenerateContentStream streams a response for the given model and contents.
// Streaming responses are not captured as steps.
func (c *Client) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (iter.Seq2[*genai.GenerateContentResponse, error], error) {
	result, err := c.invokeModels(ctx, googlegenai.Call{Kwargs: map[string]any{
		"model":    model,
		"contents": contents,
		"config":   config,
		"stream":   true,
	}})
	if err != nil {
		return nil, err
	}
	seq, ok := result.(iter.Seq2[*genai.GenerateContentResponse, error])
	if !ok {
		return nil, fmt.Errorf("unexpected generate_content stream result type %T", result)
	}
	return seq, nil
}

func (c *Client) invokeModels(ctx context.Context, call googlegenai.Call) (any, error) {
	fn, ok := c.models.Method("generate_content")
	if !ok {
		return nil, fmt.Errorf("models surface has no generate_content method")
	}
	switch fn := fn.(type) {
	case googlegenai.Func:
		return fn(ctx, call)
	case func(context.Context, googlegenai.Call) (any, error):
		return fn(ctx, call)
	}
	return nil, fmt.Errorf("unexpected generate_content callable type %T", fn)
}

// contentsFromKwargs accepts either ready-made contents or plain text.
func contentsFromKwargs(kwargs map[string]any) ([]*genai.Content, error) {
	switch v := kwargs["contents"].(type) {
	case nil:
		return nil, nil
	case []*genai.Content:
		return v, nil
	case *genai.Content:
		return []*genai.Content{v}, nil
	case string:
		return genai.Text(v), nil
	}
	return nil, fmt.Errorf("unsupported contents type %T", kwargs["contents"])
}
