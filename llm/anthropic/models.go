// Package anthropic implements Messages API models for Anthropic.
package anthropic

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/neferdata/allms-go/llm"
)

const (
	providerSlug = "anthropic"

	envAPIURL     = "ANTHROPIC_MESSAGES_API_URL"
	defaultAPIURL = "https://api.anthropic.com/v1/messages"

	envVersion     = "ANTHROPIC_MESSAGES_VERSION"
	defaultVersion = "2023-06-01"
)

// Model is one Anthropic model identity with its defaults and limits.
type Model struct {
	name      string
	maxTokens int
	limit     llm.RateLimit
	tools     []llm.ToolKind
}

var (
	Claude3Haiku = &Model{name: "claude-3-haiku-20240307", maxTokens: 4096,
		limit: llm.RateLimit{TPM: 100_000, RPM: 1_000}}
	Claude35Haiku = &Model{name: "claude-3-5-haiku-latest", maxTokens: 8192,
		limit: llm.RateLimit{TPM: 100_000, RPM: 1_000}}
	Claude35Sonnet = &Model{name: "claude-3-5-sonnet-latest", maxTokens: 8192,
		limit: llm.RateLimit{TPM: 80_000, RPM: 1_000},
		tools: []llm.ToolKind{llm.ToolKindWebSearch}}
	Claude37Sonnet = &Model{name: "claude-3-7-sonnet-latest", maxTokens: 8192,
		limit: llm.RateLimit{TPM: 80_000, RPM: 1_000},
		tools: []llm.ToolKind{llm.ToolKindWebSearch}}
	Claude4Sonnet = &Model{name: "claude-sonnet-4-0", maxTokens: 64_000,
		limit: llm.RateLimit{TPM: 80_000, RPM: 1_000},
		tools: []llm.ToolKind{llm.ToolKindWebSearch}}
	Claude4Opus = &Model{name: "claude-opus-4-0", maxTokens: 32_000,
		limit: llm.RateLimit{TPM: 40_000, RPM: 1_000},
		tools: []llm.ToolKind{llm.ToolKindWebSearch}}
)

var catalog = []*Model{
	Claude3Haiku, Claude35Haiku, Claude35Sonnet, Claude37Sonnet,
	Claude4Sonnet, Claude4Opus,
}

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

// Headers carries the api key and the pinned Messages API version.
func (m *Model) Headers(apiKey, _ string) http.Header {
	version := os.Getenv(envVersion)
	if version == "" {
		version = defaultVersion
	}
	h := http.Header{}
	h.Set("x-api-key", apiKey)
	h.Set("anthropic-version", version)
	return h
}

func (m *Model) DefaultMaxTokens() int         { return m.maxTokens }
func (m *Model) DefaultTemperature() float64   { return 0 }
func (m *Model) SupportsFunctionCalling() bool { return false }
func (m *Model) DefaultFunctionCalling() bool  { return false }
func (m *Model) Reasoning() bool               { return false }
func (m *Model) SupportedTools() []llm.ToolKind { return m.tools }
func (m *Model) RateLimit() llm.RateLimit      { return m.limit }

// AbsoluteTemperature maps the relative 0-100 scale onto Anthropic's 0-1.
func (m *Model) AbsoluteTemperature(relative float64) float64 {
	return llm.MapToRange(0, 1, relative)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string            `json:"model"`
	MaxTokens   int               `json:"max_tokens"`
	Temperature float64           `json:"temperature"`
	Messages    []message         `json:"messages"`
	Tools       []json.RawMessage `json:"tools,omitempty"`
}

type response struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CompileRequest builds a Messages API body. The schema travels in the
// first user message together with the preamble; function calling is not
// available, so the schema-in-prompt path is always used.
func (m *Model) CompileRequest(instructions, schema string, opts llm.RequestOptions) ([]byte, error) {
	base := message{
		Role: "user",
		Content: llm.SelectInstructions(false) +
			"\n<output json schema>\n" + schema + "\n</output json schema>",
	}
	user := message{
		Role:    "user",
		Content: "<instructions>\n" + instructions + "\n</instructions>",
	}
	req := request{
		Model:       m.name,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Messages:    []message{base, user},
	}
	tools, err := llm.WireTools(opts.Tools, m.tools)
	if err != nil {
		return nil, err
	}
	req.Tools = tools
	return json.Marshal(req)
}

// ExtractText concatenates the text blocks of the assistant's reply.
func (m *Model) ExtractText(raw []byte, _ llm.RequestOptions) (string, error) {
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", llm.NewResponseParseError(providerSlug, "failed to decode messages response", err)
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", llm.NewResponseParseError(providerSlug, "messages response carried no text content", nil)
	}
	return sb.String(), nil
}
