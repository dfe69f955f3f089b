package llm

import (
	"context"
	"math"
	"net/http"
)

// Model describes a single provider model: its identity, defaults, limits,
// and how to compile requests for it and read responses back.
//
// Implementations live in the per-provider subpackages (llm/openai,
// llm/anthropic, ...). A Model is stateless and safe for concurrent use.
type Model interface {
	// Name returns the provider-facing model identifier, e.g. "gpt-4o".
	Name() string

	// Provider returns the provider slug, e.g. "openai".
	Provider() string

	// Endpoint returns the full request URL for the given API version.
	// Base URLs are overridable through provider environment variables.
	Endpoint(version string) string

	// Headers returns the auth and version headers for the given API version.
	Headers(apiKey, version string) http.Header

	// DefaultMaxTokens returns the default completion token ceiling.
	DefaultMaxTokens() int

	// DefaultTemperature returns the default relative temperature (0-100).
	DefaultTemperature() float64

	// AbsoluteTemperature maps a relative temperature (0-100) onto the
	// provider's native range.
	AbsoluteTemperature(relative float64) float64

	// SupportsFunctionCalling reports whether the model accepts function
	// definitions in the request body.
	SupportsFunctionCalling() bool

	// DefaultFunctionCalling reports whether function calling should be
	// used when the caller did not choose a compilation mode.
	DefaultFunctionCalling() bool

	// Reasoning reports whether the model emits reasoning output that must
	// be stripped (e.g. <think> blocks) before JSON decoding.
	Reasoning() bool

	// SupportedTools lists the tool kinds the model accepts.
	SupportedTools() []ToolKind

	// RateLimit returns the provider-documented rate limits for the model.
	RateLimit() RateLimit

	// CompileRequest builds the provider wire body for the given
	// instructions and output schema.
	CompileRequest(instructions, schema string, opts RequestOptions) ([]byte, error)

	// ExtractText pulls the assistant-generated text out of a raw provider
	// response body.
	ExtractText(raw []byte, opts RequestOptions) (string, error)
}

// Invoker is implemented by models that need a non-standard call path,
// such as draining a server-sent-event stream into a single response.
// Models without it are called with a single Post.
type Invoker interface {
	Invoke(ctx context.Context, client *http.Client, apiKey string, body []byte, opts RequestOptions) ([]byte, error)
}

// RequestOptions carries the per-call knobs resolved by the Completions
// builder down into Model implementations.
type RequestOptions struct {
	MaxTokens       int
	Temperature     float64 // absolute, provider scale
	FunctionCalling bool
	Version         string
	Tools           []ToolConfig
}

// RateLimit holds the provider-documented limits for a model.
type RateLimit struct {
	// TPM is the allowed number of tokens per minute.
	TPM int
	// RPM is the allowed number of requests per minute.
	RPM int
}

// MaxRequests derives a safe requests-per-minute ceiling for a workload
// where each request may consume up to half of maxTokens. The result is
// the lower of the request limit and the token-derived limit.
func (r RateLimit) MaxRequests(maxTokens int) int {
	tokensPerRequest := int(math.Ceil(float64(maxTokens) * 0.5))
	if tokensPerRequest <= 0 {
		return r.RPM
	}
	byTokens := r.TPM / tokensPerRequest
	if byTokens < r.RPM {
		return byTokens
	}
	return r.RPM
}
