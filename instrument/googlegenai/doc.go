/*
Copyright 2026 Chainlit Authors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package googlegenai instruments the Google GenAI SDK so that every
generate-style call an application makes is recorded as an LLM step in the
observability tree, without changing how the application calls the SDK.

# Overview

Go cannot patch third-party types in place, so the instrumentation is an
explicit adapter layer that the host application constructs at startup:

  - The host registers one or more SDK variants on an Installer. A variant is
    either client-based (the modern google-genai shape, see ClientVariant) or
    function-based (the legacy google-generativeai shape, see ModuleVariant).
  - Install prefers client variants and falls back to module variants. When
    neither is registered it fails with a *ConfigurationError naming both
    acceptable packages; otherwise it is re-entrant and safe to call again.
  - Client variants are instrumented per instance through a constructor hook:
    the SDK builds its sub-surfaces fresh per client, so each new client is
    walked once and every known generate method on its responses, models,
    agents, sessions, and tools surfaces is replaced with an intercepted
    wrapper. Module variants have their top-level generation functions
    replaced directly.

An intercepted call delegates to the real SDK callable with an identical
calling convention, then extracts a model name, prompt, and output from the
call's arguments and result, resolves a parent from the ambient step context,
and schedules the resulting step for asynchronous delivery. The caller is
never blocked on delivery, SDK errors propagate unaltered, and streaming
results pass through unrecorded.

# Usage

	installer, err := googlegenai.New(ctx, googlegenai.WithSender(sender))
	if err != nil {
		return err
	}
	installer.Register(variant) // e.g. genaisdk.NewVariant()
	if err := installer.Install(); err != nil {
		return err
	}
	defer installer.Dispatcher().Close(ctx)
*/
package googlegenai
