// Package llm turns free-form model output into typed Go values across
// multiple LLM providers.
//
// The package defines the provider-neutral core: the Model interface that
// per-provider subpackages implement, the Completions builder that
// compiles and runs a single structured completion, the error taxonomy,
// and the shared helpers for token budgeting, prompt assembly and answer
// sanitation.
//
// # Core Concepts
//
//  1. Models: the Model interface describes one provider model - its
//     wire endpoints, auth headers, defaults and rate limits - and knows
//     how to compile a request body and extract the answer text from a
//     response.
//
//  2. Completions: NewCompletions builds a fluent, consume-once request.
//     GetAnswer[T] derives a JSON schema from T, enforces the token
//     budget, performs exactly one HTTP call and decodes the answer into
//     T, falling back to the {"data": T} envelope some models emit.
//
//  3. Errors: the Error type categorizes every failure - configuration,
//     budget, transport, parsing, extraction and run lifecycle - with
//     IsXError helpers built on errors.As.
//
// Usage:
//
//	model, _ := llm.ResolveModel("openai", "gpt-4o-mini")
//	answer, err := llm.GetAnswer[Recipe](ctx,
//	    llm.NewCompletions(model, apiKey, logger).Temperature(30),
//	    "Suggest a dinner recipe using the ingredients in 'pantry'.")
//
// To add a provider, implement Model (and Invoker for non-standard call
// paths) in a subpackage and register a resolver with RegisterProvider.
package llm
