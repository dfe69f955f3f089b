package anthropic

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/neferdata/allms-go/llm"
)

func TestHeaders(t *testing.T) {
	h := Claude35Sonnet.Headers("sk-ant-test", "")
	if got := h.Get("x-api-key"); got != "sk-ant-test" {
		t.Errorf("x-api-key = %q", got)
	}
	if got := h.Get("anthropic-version"); got != defaultVersion {
		t.Errorf("anthropic-version = %q, want %q", got, defaultVersion)
	}
	if h.Get("Authorization") != "" {
		t.Error("messages API auth is the x-api-key header, not bearer")
	}
}

func TestHeadersVersionOverride(t *testing.T) {
	t.Setenv(envVersion, "2024-10-22")
	h := Claude35Sonnet.Headers("sk-ant-test", "")
	if got := h.Get("anthropic-version"); got != "2024-10-22" {
		t.Errorf("anthropic-version = %q", got)
	}
}

func TestEndpointOverride(t *testing.T) {
	if got := Claude35Sonnet.Endpoint(""); got != defaultAPIURL {
		t.Errorf("Endpoint = %q", got)
	}
	t.Setenv(envAPIURL, "https://example.test/messages")
	if got := Claude35Sonnet.Endpoint(""); got != "https://example.test/messages" {
		t.Errorf("Endpoint = %q", got)
	}
}

func TestCompileRequest(t *testing.T) {
	schema := `{"type":"object"}`
	body, err := Claude35Sonnet.CompileRequest("Name a coastal city.", schema, llm.RequestOptions{
		MaxTokens:   2048,
		Temperature: 0.4,
	})
	if err != nil {
		t.Fatalf("CompileRequest error: %v", err)
	}

	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("body is not a messages request: %v", err)
	}
	if req.Model != "claude-3-5-sonnet-latest" {
		t.Errorf("model = %q", req.Model)
	}
	if req.MaxTokens != 2048 {
		t.Errorf("max_tokens = %d", req.MaxTokens)
	}
	if req.Temperature != 0.4 {
		t.Errorf("temperature = %v", req.Temperature)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("messages = %+v", req.Messages)
	}
	if !strings.Contains(req.Messages[0].Content, "<output json schema>") ||
		!strings.Contains(req.Messages[0].Content, schema) {
		t.Errorf("first message missing schema framing: %q", req.Messages[0].Content)
	}
	if !strings.Contains(req.Messages[1].Content, "<instructions>") {
		t.Errorf("second message missing instructions framing: %q", req.Messages[1].Content)
	}
}

func TestAbsoluteTemperature(t *testing.T) {
	if got := Claude35Sonnet.AbsoluteTemperature(100); got != 1 {
		t.Errorf("AbsoluteTemperature(100) = %v, want 1", got)
	}
	if got := Claude35Sonnet.AbsoluteTemperature(50); got != 0.5 {
		t.Errorf("AbsoluteTemperature(50) = %v, want 0.5", got)
	}
}

func TestExtractText(t *testing.T) {
	raw := []byte(`{"content": [
		{"type": "tool_use", "text": ""},
		{"type": "text", "text": "{\"city\": "},
		{"type": "text", "text": "\"Lisbon\"}"}
	]}`)
	got, err := Claude35Sonnet.ExtractText(raw, llm.RequestOptions{})
	if err != nil {
		t.Fatalf("ExtractText error: %v", err)
	}
	if got != `{"city": "Lisbon"}` {
		t.Errorf("ExtractText = %q", got)
	}
}

func TestExtractTextEmpty(t *testing.T) {
	_, err := Claude35Sonnet.ExtractText([]byte(`{"content": []}`), llm.RequestOptions{})
	if !llm.IsResponseParseError(err) {
		t.Errorf("expected response parse error, got %v", err)
	}
}
