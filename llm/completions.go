package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Completions configures a single structured completion against one model.
// The zero value is not usable; construct with NewCompletions. A
// Completions is consumed by its terminal call and cannot be reused.
type Completions struct {
	model      Model
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger

	maxTokens       int
	temperature     float64 // absolute, provider scale
	functionCalling bool
	version         string
	tools           []ToolConfig
	contextParts    []contextPart

	debug bool
	spent bool
	err   error // first builder error, surfaced by the terminal call
}

type contextPart struct {
	name    string
	payload string
}

// NewCompletions creates a completions builder for the given model. The
// builder starts from the model's defaults for max tokens, temperature and
// function calling.
func NewCompletions(model Model, apiKey string, logger zerolog.Logger) *Completions {
	c := &Completions{
		model:      model,
		apiKey:     apiKey,
		httpClient: NewHTTPClient(),
		logger:     logger,
	}
	if model != nil {
		c.maxTokens = model.DefaultMaxTokens()
		c.temperature = model.AbsoluteTemperature(model.DefaultTemperature())
		c.functionCalling = model.DefaultFunctionCalling()
	}
	return c
}

// HTTPClient replaces the default HTTP client.
func (c *Completions) HTTPClient(client *http.Client) *Completions {
	if client != nil {
		c.httpClient = client
	}
	return c
}

// Debug enables payload logging for this call.
func (c *Completions) Debug() *Completions {
	c.debug = true
	return c
}

// FunctionCalling selects between the function-calling and
// schema-in-prompt compilation modes. Requesting function calling on a
// model without support is a configuration error.
func (c *Completions) FunctionCalling(enabled bool) *Completions {
	if enabled && !c.model.SupportsFunctionCalling() {
		c.fail(NewConfigurationError(fmt.Sprintf("model %q does not support function calling", c.model.Name())))
		return c
	}
	c.functionCalling = enabled
	return c
}

// Temperature sets the sampling temperature on the relative 0-100 scale,
// which is mapped onto the model's native range.
func (c *Completions) Temperature(relative float64) *Completions {
	if relative < 0 || relative > 100 {
		c.fail(NewConfigurationError(fmt.Sprintf("relative temperature %v outside [0, 100]", relative)))
		return c
	}
	c.temperature = c.model.AbsoluteTemperature(relative)
	return c
}

// TemperatureUnchecked sets the sampling temperature directly on the
// provider's native scale, bypassing range validation.
func (c *Completions) TemperatureUnchecked(absolute float64) *Completions {
	c.temperature = absolute
	return c
}

// MaxTokens overrides the completion token ceiling.
func (c *Completions) MaxTokens(maxTokens int) *Completions {
	if maxTokens <= 0 {
		c.fail(NewConfigurationError(fmt.Sprintf("max tokens must be positive, got %d", maxTokens)))
		return c
	}
	c.maxTokens = maxTokens
	return c
}

// Version selects a provider API version, e.g. "responses" or "azure".
func (c *Completions) Version(version string) *Completions {
	c.version = version
	return c
}

// AddTool attaches a tool configuration. Tools the model does not support
// are dropped at compile time.
func (c *Completions) AddTool(tool ToolConfig) *Completions {
	if tool != nil {
		c.tools = append(c.tools, tool)
	}
	return c
}

// Context attaches a named JSON-serialized value that is appended to the
// instructions as supporting data.
func (c *Completions) Context(name string, value any) *Completions {
	payload, err := json.Marshal(value)
	if err != nil {
		c.fail(NewConfigurationError(fmt.Sprintf("failed to serialize context %q: %v", name, err)))
		return c
	}
	c.contextParts = append(c.contextParts, contextPart{name: name, payload: string(payload)})
	return c
}

func (c *Completions) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// GetAnswer runs the completion and decodes the model's answer into T.
//
// The prompt is compiled from the instructions, any attached context and
// the schema derived from T; the call is rejected before any network
// traffic when the estimated prompt does not fit the token budget. The
// provider is called exactly once. The answer is sanitized and decoded
// into T, falling back to a {"data": T} envelope when the model echoed the
// schema's framing.
func GetAnswer[T any](ctx context.Context, c *Completions, instructions string) (*T, error) {
	schema, err := SchemaFor[T]()
	if err != nil {
		return nil, err
	}
	sanitized, original, err := c.run(ctx, instructions, schema)
	if err != nil {
		return nil, err
	}
	return DecodeResponse[T](sanitized, original)
}

// GetJSONAnswer runs the completion against a caller-supplied JSON schema
// and returns the sanitized answer text without decoding it. The schema's
// own validity is the caller's concern.
func GetJSONAnswer(ctx context.Context, c *Completions, instructions, schema string) (string, error) {
	if !json.Valid([]byte(schema)) {
		return "", NewConfigurationError("output schema is not valid JSON")
	}
	sanitized, _, err := c.run(ctx, instructions, schema)
	if err != nil {
		return "", err
	}
	return sanitized, nil
}

// run executes the compiled request and returns the sanitized and original
// answer texts.
func (c *Completions) run(ctx context.Context, instructions, schema string) (sanitized, original string, err error) {
	if c.model == nil {
		return "", "", NewConfigurationError("model is required")
	}
	if c.spent {
		return "", "", NewResourceStateError("completions builder already consumed")
	}
	c.spent = true

	if c.err != nil {
		return "", "", c.err
	}
	if c.apiKey == "" {
		return "", "", NewConfigurationError("api key is required")
	}

	full := c.withContext(instructions)
	if err := c.checkPromptTokens(full, schema); err != nil {
		return "", "", err
	}

	opts := RequestOptions{
		MaxTokens:       c.maxTokens,
		Temperature:     c.temperature,
		FunctionCalling: c.functionCalling && c.model.SupportsFunctionCalling(),
		Version:         c.version,
		Tools:           c.tools,
	}

	body, err := c.model.CompileRequest(full, schema, opts)
	if err != nil {
		return "", "", err
	}

	callID := uuid.NewString()
	if c.debug {
		c.logger.Debug().
			Str("call_id", callID).
			Str("provider", c.model.Provider()).
			Str("model", c.model.Name()).
			RawJSON("body", body).
			Msg("Compiled completion request")
	}

	raw, err := c.invoke(ctx, body, opts)
	if err != nil {
		return "", "", err
	}
	if c.debug {
		c.logger.Debug().
			Str("call_id", callID).
			Str("provider", c.model.Provider()).
			Str("response", truncate(string(raw), 2048)).
			Msg("Provider response")
	}

	text, err := c.model.ExtractText(raw, opts)
	if err != nil {
		return "", "", err
	}
	return c.sanitize(text), text, nil
}

func (c *Completions) withContext(instructions string) string {
	full := instructions
	for _, part := range c.contextParts {
		full += fmt.Sprintf("\n'%s'=%s", part.name, part.payload)
	}
	return full
}

// checkPromptTokens estimates the full prompt size and enforces the token
// budget before any network traffic.
func (c *Completions) checkPromptTokens(instructions, schema string) error {
	assembled := SelectInstructions(c.functionCalling) + "\n" + UserMessage(instructions, schema)
	promptTokens := EstimatePromptTokens(c.model.Name(), assembled)

	if promptTokens >= c.maxTokens {
		return NewBudgetExceededError(fmt.Sprintf(
			"prompt estimated at %d tokens exceeds the %d token limit for model %s",
			promptTokens, c.maxTokens, c.model.Name()))
	}
	if promptTokens*2 >= c.maxTokens {
		c.logger.Warn().
			Int("prompt_tokens", promptTokens).
			Int("max_tokens", c.maxTokens).
			Str("model", c.model.Name()).
			Msg("Prompt occupies more than half of the token budget; the answer may be truncated")
	}
	return nil
}

func (c *Completions) invoke(ctx context.Context, body []byte, opts RequestOptions) ([]byte, error) {
	if invoker, ok := c.model.(Invoker); ok {
		return invoker.Invoke(ctx, c.httpClient, c.apiKey, body, opts)
	}
	return Post(ctx, c.httpClient, c.model.Provider(),
		c.model.Endpoint(opts.Version), c.model.Headers(c.apiKey, opts.Version), body)
}

func (c *Completions) sanitize(text string) string {
	if c.model.Reasoning() {
		text = StripThinkBlocks(text)
	}
	if sanitizer, ok := c.model.(ResponseSanitizer); ok {
		return sanitizer.SanitizeResponse(text)
	}
	return SanitizeJSONResponse(text)
}

// ResponseSanitizer is implemented by models whose answers need cleanup
// beyond fence stripping, such as unwrapping schema-shaped artifacts.
type ResponseSanitizer interface {
	SanitizeResponse(text string) string
}
