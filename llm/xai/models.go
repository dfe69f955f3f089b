// Package xai implements chat-completion models for xAI's Grok family.
package xai

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/neferdata/allms-go/llm"
)

const (
	providerSlug = "xai"

	envAPIURL     = "XAI_API_URL"
	defaultAPIURL = "https://api.x.ai/v1/responses"
)

// Model is one Grok model identity with its defaults and limits.
type Model struct {
	name      string
	maxTokens int
	limit     llm.RateLimit
	reasoning bool
	tools     []llm.ToolKind
}

var (
	Grok2 = &Model{name: "grok-2", maxTokens: 131_072,
		limit: llm.RateLimit{TPM: 2_000_000, RPM: 480}}
	Grok3 = &Model{name: "grok-3", maxTokens: 131_072,
		limit: llm.RateLimit{TPM: 2_000_000, RPM: 480},
		tools: []llm.ToolKind{llm.ToolKindWebSearch}}
	Grok3Mini = &Model{name: "grok-3-mini", maxTokens: 131_072, reasoning: true,
		limit: llm.RateLimit{TPM: 2_000_000, RPM: 480}}
	Grok4 = &Model{name: "grok-4", maxTokens: 256_000, reasoning: true,
		limit: llm.RateLimit{TPM: 2_000_000, RPM: 480},
		tools: []llm.ToolKind{llm.ToolKindWebSearch}}
)

var catalog = []*Model{Grok2, Grok3, Grok3Mini, Grok4}

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
func (m *Model) SupportedTools() []llm.ToolKind { return m.tools }
func (m *Model) RateLimit() llm.RateLimit       { return m.limit }

// AbsoluteTemperature maps the relative 0-100 scale onto Grok's 0-2.
func (m *Model) AbsoluteTemperature(relative float64) float64 {
	return llm.MapToRange(0, 2, relative)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model               string          `json:"model"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
	Temperature         float64         `json:"temperature"`
	Messages            []message       `json:"messages"`
	SearchParameters    json.RawMessage `json:"search_parameters,omitempty"`
}

type response struct {
	Choices []struct {
		Message struct {
			Role             string `json:"role"`
			Content          string `json:"content"`
			ReasoningContent string `json:"reasoning_content"`
		} `json:"message"`
	} `json:"choices"`
}

// CompileRequest builds a chat body with the schema embedded in the user
// message; Grok's structured output mode does not accept reflected schemas
// reliably. A supported web search tool rides as search_parameters rather
// than a tools array.
func (m *Model) CompileRequest(instructions, schema string, opts llm.RequestOptions) ([]byte, error) {
	req := request{
		Model:               m.name,
		MaxCompletionTokens: opts.MaxTokens,
		Temperature:         opts.Temperature,
		Messages: []message{
			{Role: "system", Content: llm.SelectInstructions(false)},
			{Role: "user", Content: llm.UserMessage(instructions, schema)},
		},
	}
	for _, tool := range llm.FilterSupported(opts.Tools, m.tools) {
		wire, err := tool.WireFormat()
		if err != nil {
			return nil, err
		}
		req.SearchParameters = wire
		break
	}
	return json.Marshal(req)
}

// ExtractText concatenates assistant choice contents, falling back to
// reasoning content when a choice carries no final text.
func (m *Model) ExtractText(raw []byte, _ llm.RequestOptions) (string, error) {
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", llm.NewResponseParseError(providerSlug, "failed to decode chat response", err)
	}
	var sb strings.Builder
	for _, choice := range resp.Choices {
		if choice.Message.Role != "assistant" {
			continue
		}
		if choice.Message.Content != "" {
			sb.WriteString(choice.Message.Content)
		} else {
			sb.WriteString(choice.Message.ReasoningContent)
		}
	}
	if sb.Len() == 0 {
		return "", llm.NewResponseParseError(providerSlug, "chat response carried no assistant content", nil)
	}
	return sb.String(), nil
}
