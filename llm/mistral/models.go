// Package mistral implements chat-completion models for Mistral.
package mistral

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/neferdata/allms-go/llm"
)

const (
	providerSlug = "mistral"

	envAPIURL     = "MISTRAL_API_URL"
	defaultAPIURL = "https://api.mistral.ai/v1/chat/completions"
)

// Model is one Mistral model identity with its defaults and limits.
type Model struct {
	name      string
	maxTokens int
	limit     llm.RateLimit
}

var (
	MistralSmall = &Model{name: "mistral-small-latest", maxTokens: 32_000,
		limit: llm.RateLimit{TPM: 2_000_000, RPM: 360}}
	MistralMedium = &Model{name: "mistral-medium-latest", maxTokens: 32_000,
		limit: llm.RateLimit{TPM: 2_000_000, RPM: 360}}
	MistralLarge = &Model{name: "mistral-large-latest", maxTokens: 128_000,
		limit: llm.RateLimit{TPM: 2_000_000, RPM: 360}}
	OpenMistralNemo = &Model{name: "open-mistral-nemo", maxTokens: 128_000,
		limit: llm.RateLimit{TPM: 2_000_000, RPM: 360}}
)

var catalog = []*Model{MistralSmall, MistralMedium, MistralLarge, OpenMistralNemo}

func init() {
	llm.RegisterProvider(providerSlug, func(name string) (llm.Model, bool) {
		m, ok := FromName(name)
		return m, ok
	})
}

// FromName resolves a model by its provider-facing name.
func FromName(name string) (*Model, bool) {
	for _, m := range catalog {
		if m.name == name {
			return m, true
		}
	}
	return nil, false
}

func (m *Model) Name() string     { return m.name }
func (m *Model) Provider() string { return providerSlug }

func (m *Model) Endpoint(_ string) string {
	if v := os.Getenv(envAPIURL); v != "" {
		return v
	}
	return defaultAPIURL
}

func (m *Model) Headers(apiKey, _ string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+apiKey)
	return h
}

func (m *Model) DefaultMaxTokens() int          { return m.maxTokens }
func (m *Model) DefaultTemperature() float64    { return 0 }
func (m *Model) SupportsFunctionCalling() bool  { return false }
func (m *Model) DefaultFunctionCalling() bool   { return false }
func (m *Model) Reasoning() bool                { return false }
func (m *Model) SupportedTools() []llm.ToolKind { return nil }
func (m *Model) RateLimit() llm.RateLimit       { return m.limit }

// AbsoluteTemperature maps the relative 0-100 scale onto Mistral's 0-1.
func (m *Model) AbsoluteTemperature(relative float64) float64 {
	return llm.MapToRange(0, 1, relative)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type request struct {
	Model          string         `json:"model"`
	Messages       []message      `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	ResponseFormat responseFormat `json:"response_format"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// CompileRequest builds a chat body with JSON-object output forced through
// the response_format field.
func (m *Model) CompileRequest(instructions, schema string, opts llm.RequestOptions) ([]byte, error) {
	req := request{
		Model: m.name,
		Messages: []message{
			{Role: "system", Content: llm.SelectInstructions(false)},
			{Role: "user", Content: llm.UserMessage(instructions, schema)},
		},
		Temperature:    opts.Temperature,
		MaxTokens:      opts.MaxTokens,
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	return json.Marshal(req)
}

// ExtractText returns the first choice's message content.
func (m *Model) ExtractText(raw []byte, _ llm.RequestOptions) (string, error) {
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", llm.NewResponseParseError(providerSlug, "failed to decode chat response", err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.NewResponseParseError(providerSlug, "chat response carried no choices", nil)
	}
	return resp.Choices[0].Message.Content, nil
}
