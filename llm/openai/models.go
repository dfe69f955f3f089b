// Package openai implements chat-completion and responses-API models for
// the OpenAI platform, including Azure OpenAI deployments.
package openai

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/neferdata/allms-go/llm"
)

const (
	providerSlug  = "openai"
	envAPIURL     = "OPENAI_API_URL"
	defaultAPIURL = "https://api.openai.com"

	// DefaultAzureVersion is the api-version query value used when an
	// Azure version string does not carry its own.
	DefaultAzureVersion = "2024-06-01"
)

// Model is one OpenAI model identity with its defaults and limits.
type Model struct {
	name      string
	maxTokens int
	limit     llm.RateLimit
	reasoning bool
	// fixedTemperature marks models that reject the temperature knob
	// (the gpt-5 family).
	fixedTemperature bool
	// responsesOnly marks models served exclusively by the Responses API.
	responsesOnly bool
	functionDefault  bool
	tools            []llm.ToolKind
}

var (
	GPT35Turbo = &Model{name: "gpt-3.5-turbo", maxTokens: 4096, functionDefault: true,
		limit: llm.RateLimit{TPM: 2_000_000, RPM: 10_000}}
	GPT4 = &Model{name: "gpt-4", maxTokens: 8192,
		limit: llm.RateLimit{TPM: 300_000, RPM: 10_000}}
	GPT4Turbo = &Model{name: "gpt-4-turbo", maxTokens: 128_000, functionDefault: true,
		limit: llm.RateLimit{TPM: 2_000_000, RPM: 10_000}}
	GPT4o = &Model{name: "gpt-4o", maxTokens: 128_000, functionDefault: true,
		limit: llm.RateLimit{TPM: 30_000_000, RPM: 10_000},
		tools: []llm.ToolKind{llm.ToolKindWebSearch, llm.ToolKindFileSearch, llm.ToolKindCodeInterpreter}}
	GPT4oMini = &Model{name: "gpt-4o-mini", maxTokens: 128_000, functionDefault: true,
		limit: llm.RateLimit{TPM: 150_000_000, RPM: 30_000},
		tools: []llm.ToolKind{llm.ToolKindWebSearch, llm.ToolKindFileSearch, llm.ToolKindCodeInterpreter}}
	GPT41 = &Model{name: "gpt-4.1", maxTokens: 1_047_576, functionDefault: true,
		limit: llm.RateLimit{TPM: 30_000_000, RPM: 10_000},
		tools: []llm.ToolKind{llm.ToolKindWebSearch, llm.ToolKindFileSearch, llm.ToolKindCodeInterpreter}}
	GPT41Mini = &Model{name: "gpt-4.1-mini", maxTokens: 1_047_576, functionDefault: true,
		limit: llm.RateLimit{TPM: 150_000_000, RPM: 30_000},
		tools: []llm.ToolKind{llm.ToolKindWebSearch, llm.ToolKindFileSearch, llm.ToolKindCodeInterpreter}}
	GPT41Nano = &Model{name: "gpt-4.1-nano", maxTokens: 1_047_576, functionDefault: true,
		limit: llm.RateLimit{TPM: 150_000_000, RPM: 30_000}}
	GPT5 = &Model{name: "gpt-5", maxTokens: 400_000, functionDefault: true, fixedTemperature: true,
		limit: llm.RateLimit{TPM: 40_000_000, RPM: 15_000},
		tools: []llm.ToolKind{llm.ToolKindWebSearch, llm.ToolKindFileSearch, llm.ToolKindCodeInterpreter}}
	GPT5Mini = &Model{name: "gpt-5-mini", maxTokens: 400_000, functionDefault: true, fixedTemperature: true,
		limit: llm.RateLimit{TPM: 180_000_000, RPM: 30_000}}
	GPT5Nano = &Model{name: "gpt-5-nano", maxTokens: 400_000, functionDefault: true, fixedTemperature: true,
		limit: llm.RateLimit{TPM: 180_000_000, RPM: 30_000}}
	O1Mini = &Model{name: "o1-mini", maxTokens: 128_000, reasoning: true,
		limit: llm.RateLimit{TPM: 150_000_000, RPM: 30_000}}
	O1 = &Model{name: "o1", maxTokens: 200_000, reasoning: true,
		limit: llm.RateLimit{TPM: 30_000_000, RPM: 10_000}}
	O1Pro = &Model{name: "o1-pro", maxTokens: 200_000, reasoning: true, responsesOnly: true,
		limit: llm.RateLimit{TPM: 30_000_000, RPM: 10_000}}
	O3 = &Model{name: "o3", maxTokens: 200_000, reasoning: true,
		limit: llm.RateLimit{TPM: 30_000_000, RPM: 10_000},
		tools: []llm.ToolKind{llm.ToolKindWebSearch, llm.ToolKindFileSearch}}
	O3Mini = &Model{name: "o3-mini", maxTokens: 200_000, reasoning: true,
		limit: llm.RateLimit{TPM: 150_000_000, RPM: 30_000}}
	O4Mini = &Model{name: "o4-mini", maxTokens: 200_000, reasoning: true,
		limit: llm.RateLimit{TPM: 150_000_000, RPM: 30_000},
		tools: []llm.ToolKind{llm.ToolKindWebSearch, llm.ToolKindFileSearch}}
)

var catalog = []*Model{
	GPT35Turbo, GPT4, GPT4Turbo, GPT4o, GPT4oMini,
	GPT41, GPT41Mini, GPT41Nano,
	GPT5, GPT5Mini, GPT5Nano,
	O1Mini, O1, O1Pro, O3, O3Mini, O4Mini,
}

func init() {
	llm.RegisterProvider(providerSlug, func(name string) (llm.Model, bool) {
		m, ok := FromName(name)
		return m, ok
	})
}

// FromName resolves a model by its provider-facing name. Unknown names
// resolve to a custom model with gpt-4o defaults, mirroring how new
// deployments show up before the catalog learns about them.
func FromName(name string) (*Model, bool) {
	if name == "" {
		return nil, false
	}
	for _, m := range catalog {
		if m.name == name {
			return m, true
		}
	}
	return Custom(name), true
}

// Custom builds a model identity for a name outside the catalog, assuming
// gpt-4o-class behavior and limits.
func Custom(name string) *Model {
	return &Model{
		name:            name,
		maxTokens:       GPT4o.maxTokens,
		limit:           GPT4o.limit,
		functionDefault: true,
		tools:           GPT4o.tools,
	}
}

func (m *Model) Name() string     { return m.name }
func (m *Model) Provider() string { return providerSlug }

func baseURL() string {
	if v := os.Getenv(envAPIURL); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}

// Endpoint resolves the request URL for an API version string. Models only
// served by the Responses API are redirected there even when a completions
// version was requested.
func (m *Model) Endpoint(version string) string {
	v := parseVersion(version)
	if m.responsesOnly {
		v = v.toResponses()
	}
	switch v.flavor {
	case flavorResponses:
		return baseURL() + "/v1/responses"
	case flavorAzure:
		return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s", baseURL(), m.name, v.azureVersion)
	case flavorAzureResponses:
		return fmt.Sprintf("%s/openai/deployments/%s/responses?api-version=%s", baseURL(), m.name, v.azureVersion)
	default:
		return baseURL() + "/v1/chat/completions"
	}
}

// Headers returns the auth headers: bearer auth for the platform API,
// api-key for Azure.
func (m *Model) Headers(apiKey, version string) http.Header {
	h := http.Header{}
	if parseVersion(version).azure() {
		h.Set("api-key", apiKey)
	} else {
		h.Set("Authorization", "Bearer "+apiKey)
	}
	return h
}

func (m *Model) DefaultMaxTokens() int        { return m.maxTokens }
func (m *Model) DefaultTemperature() float64  { return 0 }
func (m *Model) SupportsFunctionCalling() bool { return !m.reasoning }
func (m *Model) DefaultFunctionCalling() bool { return m.functionDefault }
func (m *Model) Reasoning() bool              { return m.reasoning }
func (m *Model) SupportedTools() []llm.ToolKind { return m.tools }
func (m *Model) RateLimit() llm.RateLimit     { return m.limit }

// AbsoluteTemperature maps the relative 0-100 scale onto OpenAI's 0-2.
func (m *Model) AbsoluteTemperature(relative float64) float64 {
	return llm.MapToRange(0, 2, relative)
}

// SanitizeResponse strips code fences and unwraps the schema-shaped
// artifacts Azure deployments are known to add around answers.
func (m *Model) SanitizeResponse(text string) string {
	return llm.RemoveSchemaWrappers(llm.SanitizeJSONResponse(text))
}
