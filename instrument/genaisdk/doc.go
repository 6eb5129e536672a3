/*
Copyright 2026 Chainlit Authors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package genaisdk adapts the official google.golang.org/genai client to the
googlegenai instrumentation layer.

The Variant implements googlegenai.ClientVariant: the installer registers a
constructor hook on it, and every client the variant constructs is handed to
that hook right after construction, so its generate methods get intercepted
per instance. Generated content then flows through the instrumented surface
whether the application uses the typed convenience methods or the raw
callable.

# Usage

	variant := genaisdk.NewVariant()
	installer.Register(variant)
	if err := installer.Install(); err != nil {
		return err
	}

	client, err := variant.NewClient(ctx, &genai.ClientConfig{
		Project:  project,
		Location: "us-central1",
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return err
	}

	resp, err := client.GenerateContent(ctx, "gemini-2.5-flash",
		genai.Text("hello"), nil)
*/
package genaisdk
