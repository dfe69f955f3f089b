package deepseek

import (
	"encoding/json"
	"testing"

	"github.com/neferdata/allms-go/llm"
)

func TestCompileRequestTemperature(t *testing.T) {
	opts := llm.RequestOptions{MaxTokens: 2048, Temperature: 1.2}

	body, err := DeepSeekChat.CompileRequest("Name a coastal city.", `{"type":"object"}`, opts)
	if err != nil {
		t.Fatalf("CompileRequest error: %v", err)
	}
	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if req.Temperature == nil || *req.Temperature != 1.2 {
		t.Errorf("chat temperature = %v, want 1.2", req.Temperature)
	}

	body, err = DeepSeekReasoner.CompileRequest("Name a coastal city.", `{"type":"object"}`, opts)
	if err != nil {
		t.Fatalf("CompileRequest error: %v", err)
	}
	req = request{}
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if req.Temperature != nil {
		t.Error("the reasoner must not receive temperature")
	}
}

func TestAbsoluteTemperatureRange(t *testing.T) {
	if got := DeepSeekChat.AbsoluteTemperature(100); got != 1.5 {
		t.Errorf("AbsoluteTemperature(100) = %v, want 1.5", got)
	}
}

func TestReasonerFlag(t *testing.T) {
	if DeepSeekChat.Reasoning() {
		t.Error("deepseek-chat is not a reasoner")
	}
	if !DeepSeekReasoner.Reasoning() {
		t.Error("deepseek-reasoner emits think blocks")
	}
}

func TestExtractText(t *testing.T) {
	raw := []byte(`{"choices": [{"message": {"content": "{\"city\": \"Macau\"}"}}]}`)
	got, err := DeepSeekChat.ExtractText(raw, llm.RequestOptions{})
	if err != nil {
		t.Fatalf("ExtractText error: %v", err)
	}
	if got != `{"city": "Macau"}` {
		t.Errorf("ExtractText = %q", got)
	}

	if _, err := DeepSeekChat.ExtractText([]byte(`{"choices": []}`), llm.RequestOptions{}); !llm.IsResponseParseError(err) {
		t.Errorf("expected response parse error, got %v", err)
	}
}
