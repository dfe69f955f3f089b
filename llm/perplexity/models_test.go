package perplexity

import (
	"encoding/json"
	"testing"

	"github.com/neferdata/allms-go/llm"
)

func TestAbsoluteTemperatureStaysBelowTwo(t *testing.T) {
	if got := Sonar.AbsoluteTemperature(100); got >= 2 {
		t.Errorf("AbsoluteTemperature(100) = %v, must stay below 2", got)
	}
	if got := Sonar.AbsoluteTemperature(0); got != 0 {
		t.Errorf("AbsoluteTemperature(0) = %v, want 0", got)
	}
}

func TestReasoningFlag(t *testing.T) {
	if Sonar.Reasoning() || SonarPro.Reasoning() {
		t.Error("sonar and sonar-pro are not reasoners")
	}
	if !SonarReasoning.Reasoning() {
		t.Error("sonar-reasoning emits think blocks")
	}
}

func TestCompileRequest(t *testing.T) {
	body, err := SonarPro.CompileRequest("Name a coastal city.", `{"type":"object"}`, llm.RequestOptions{
		MaxTokens:   2048,
		Temperature: 1.5,
	})
	if err != nil {
		t.Fatalf("CompileRequest error: %v", err)
	}
	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if req.Model != "sonar-pro" {
		t.Errorf("model = %q", req.Model)
	}
	if req.Temperature != 1.5 {
		t.Errorf("temperature = %v", req.Temperature)
	}
}

func TestCompileRequestOmitsMaxTokens(t *testing.T) {
	body, err := Sonar.CompileRequest("Name a coastal city.", `{"type":"object"}`, llm.RequestOptions{
		MaxTokens:   Sonar.DefaultMaxTokens(),
		Temperature: 0.5,
	})
	if err != nil {
		t.Fatalf("CompileRequest error: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if _, ok := fields["max_tokens"]; ok {
		t.Error("body carries max_tokens; the completion cap must stay unset")
	}
}
