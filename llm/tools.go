package llm

import (
	"encoding/json"

	"github.com/samber/lo"
)

// ToolKind categorizes the built-in tools a model may accept.
type ToolKind string

const (
	ToolKindWebSearch       ToolKind = "web_search"
	ToolKindFileSearch      ToolKind = "file_search"
	ToolKindCodeInterpreter ToolKind = "code_interpreter"
)

// ToolConfig is a provider-specific tool configuration. WireFormat returns
// the JSON object placed in the request's tools array.
type ToolConfig interface {
	Kind() ToolKind
	WireFormat() (json.RawMessage, error)
}

// FilterSupported keeps only the tools a model accepts.
func FilterSupported(tools []ToolConfig, supported []ToolKind) []ToolConfig {
	return lo.Filter(tools, func(tool ToolConfig, _ int) bool {
		return lo.Contains(supported, tool.Kind())
	})
}

// WireTools renders tool configurations for a request body, skipping any
// the model does not support.
func WireTools(tools []ToolConfig, supported []ToolKind) ([]json.RawMessage, error) {
	kept := FilterSupported(tools, supported)
	if len(kept) == 0 {
		return nil, nil
	}
	out := make([]json.RawMessage, 0, len(kept))
	for _, tool := range kept {
		wire, err := tool.WireFormat()
		if err != nil {
			return nil, err
		}
		out = append(out, wire)
	}
	return out, nil
}

// OpenAIWebSearch enables the hosted web search tool on the Responses API.
type OpenAIWebSearch struct {
	// SearchContextSize is "low", "medium" or "high"; empty uses the
	// provider default.
	SearchContextSize string
}

func (OpenAIWebSearch) Kind() ToolKind { return ToolKindWebSearch }

func (t OpenAIWebSearch) WireFormat() (json.RawMessage, error) {
	return json.Marshal(struct {
		Type              string `json:"type"`
		SearchContextSize string `json:"search_context_size,omitempty"`
	}{Type: "web_search_preview", SearchContextSize: t.SearchContextSize})
}

// OpenAIFileSearch enables retrieval over previously uploaded vector stores.
type OpenAIFileSearch struct {
	VectorStoreIDs []string
	MaxNumResults  int
}

func (OpenAIFileSearch) Kind() ToolKind { return ToolKindFileSearch }

func (t OpenAIFileSearch) WireFormat() (json.RawMessage, error) {
	return json.Marshal(struct {
		Type           string   `json:"type"`
		VectorStoreIDs []string `json:"vector_store_ids,omitempty"`
		MaxNumResults  int      `json:"max_num_results,omitempty"`
	}{Type: "file_search", VectorStoreIDs: t.VectorStoreIDs, MaxNumResults: t.MaxNumResults})
}

// OpenAICodeInterpreter enables the sandboxed code execution tool.
type OpenAICodeInterpreter struct{}

func (OpenAICodeInterpreter) Kind() ToolKind { return ToolKindCodeInterpreter }

func (OpenAICodeInterpreter) WireFormat() (json.RawMessage, error) {
	return json.Marshal(map[string]any{
		"type":      "code_interpreter",
		"container": map[string]string{"type": "auto"},
	})
}

// AnthropicWebSearch enables Anthropic's server-side web search tool.
type AnthropicWebSearch struct {
	MaxUses int
}

func (AnthropicWebSearch) Kind() ToolKind { return ToolKindWebSearch }

func (t AnthropicWebSearch) WireFormat() (json.RawMessage, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		Name    string `json:"name"`
		MaxUses int    `json:"max_uses,omitempty"`
	}{Type: "web_search_20250305", Name: "web_search", MaxUses: t.MaxUses})
}

// GeminiWebSearch enables Google's grounding-with-search tool.
type GeminiWebSearch struct{}

func (GeminiWebSearch) Kind() ToolKind { return ToolKindWebSearch }

func (GeminiWebSearch) WireFormat() (json.RawMessage, error) {
	return json.Marshal(map[string]any{"google_search": map[string]any{}})
}

// XAIWebSearch enables xAI's live web search tool.
type XAIWebSearch struct{}

func (XAIWebSearch) Kind() ToolKind { return ToolKindWebSearch }

func (XAIWebSearch) WireFormat() (json.RawMessage, error) {
	return json.Marshal(map[string]string{"type": "web_search"})
}
