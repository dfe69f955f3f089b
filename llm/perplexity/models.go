// Package perplexity implements chat-completion models for Perplexity.
package perplexity

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/neferdata/allms-go/llm"
)

const (
	providerSlug = "perplexity"

	envAPIURL     = "PERPLEXITY_API_URL"
	defaultAPIURL = "https://api.perplexity.ai/chat/completions"
)

// Model is one Perplexity model identity with its defaults and limits.
type Model struct {
	name      string
	maxTokens int
	limit     llm.RateLimit
	reasoning bool
}

var (
	Sonar = &Model{name: "sonar", maxTokens: 127_072,
		limit: llm.RateLimit{TPM: 2_000_000, RPM: 50}}
	SonarPro = &Model{name: "sonar-pro", maxTokens: 200_000,
		limit: llm.RateLimit{TPM: 2_000_000, RPM: 50}}
	SonarReasoning = &Model{name: "sonar-reasoning", maxTokens: 127_072, reasoning: true,
		limit: llm.RateLimit{TPM: 2_000_000, RPM: 50}}
)

var catalog = []*Model{Sonar, SonarPro, SonarReasoning}

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
func (m *Model) Reasoning() bool                { return m.reasoning }
func (m *Model) SupportedTools() []llm.ToolKind { return nil }
func (m *Model) RateLimit() llm.RateLimit       { return m.limit }

// AbsoluteTemperature maps the relative 0-100 scale onto Perplexity's
// half-open range; 2.0 itself is rejected by the API.
func (m *Model) AbsoluteTemperature(relative float64) float64 {
	return llm.MapToRange(0, 1.99999, relative)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// CompileRequest builds a chat body with the schema embedded in the user
// message. max_tokens is never sent: the prompt plus the cap must fit the
// context window, and leaving it unset lets the model run to its stop token.
func (m *Model) CompileRequest(instructions, schema string, opts llm.RequestOptions) ([]byte, error) {
	req := request{
		Model: m.name,
		Messages: []message{
			{Role: "system", Content: llm.SelectInstructions(false)},
			{Role: "user", Content: llm.UserMessage(instructions, schema)},
		},
		Temperature: opts.Temperature,
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
