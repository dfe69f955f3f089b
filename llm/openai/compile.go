package openai

import (
	"encoding/json"
	"strings"

	"github.com/neferdata/allms-go/llm"
)

// analyzeFunctionName is the synthetic function the engine forces the
// model to call on the function-calling path.
const analyzeFunctionName = "analyze_data"

const analyzeFunctionDescription = "Use this function to compute the answer based on input data, " +
	"instructions and your language model. Output should be a fully formed JSON object."

// CompileRequest builds the wire body for the selected API version.
//
// The Chat Completions path sends the preamble as a system message (user
// for reasoning models, which reject system messages) and either embeds
// the schema in the user message or forces a function call whose
// parameters are the schema. The Responses path carries the preamble in
// the top-level instructions field.
func (m *Model) CompileRequest(instructions, schema string, opts llm.RequestOptions) ([]byte, error) {
	v := parseVersion(opts.Version)
	if m.responsesOnly {
		v = v.toResponses()
	}
	if v.responses() {
		return m.compileResponses(instructions, schema, opts)
	}
	return m.compileChat(instructions, schema, opts)
}

func (m *Model) compileChat(instructions, schema string, opts llm.RequestOptions) ([]byte, error) {
	systemRole := "system"
	if m.reasoning {
		systemRole = "user"
	}
	preamble := chatMessage{Role: systemRole, Content: llm.SelectInstructions(opts.FunctionCalling)}

	req := chatRequest{Model: m.name}
	if opts.FunctionCalling && !m.reasoning {
		req.Messages = []chatMessage{preamble, {Role: "user", Content: instructions}}
		req.Functions = []functionDef{{
			Name:        analyzeFunctionName,
			Description: analyzeFunctionDescription,
			Parameters:  json.RawMessage(schema),
		}}
		req.FunctionCall = &functionRef{Name: analyzeFunctionName}
	} else {
		req.Messages = []chatMessage{preamble, {Role: "user", Content: llm.UserMessage(instructions, schema)}}
	}

	// Reasoning models fix temperature at 1; the gpt-5 family rejects the
	// knob outright.
	if !m.reasoning && !m.fixedTemperature {
		req.Temperature = &opts.Temperature
	}
	return json.Marshal(req)
}

func (m *Model) compileResponses(instructions, schema string, opts llm.RequestOptions) ([]byte, error) {
	req := responsesRequest{
		Model:           m.name,
		Input:           llm.UserMessage(instructions, schema),
		Instructions:    llm.SelectInstructions(opts.FunctionCalling),
		MaxOutputTokens: opts.MaxTokens,
	}
	if !m.reasoning && !m.fixedTemperature {
		req.Temperature = &opts.Temperature
	}
	tools, err := llm.WireTools(opts.Tools, m.tools)
	if err != nil {
		return nil, err
	}
	req.Tools = tools
	return json.Marshal(req)
}

// ExtractText pulls the answer text out of a raw response body for the
// API version the request was compiled against.
func (m *Model) ExtractText(raw []byte, opts llm.RequestOptions) (string, error) {
	v := parseVersion(opts.Version)
	if m.responsesOnly {
		v = v.toResponses()
	}
	if v.responses() {
		return m.extractResponses(raw)
	}
	return m.extractChat(raw, opts.FunctionCalling && !m.reasoning)
}

func (m *Model) extractChat(raw []byte, functionCalling bool) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", llm.NewResponseParseError(providerSlug, "failed to decode chat completion response", err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.NewResponseParseError(providerSlug, "chat completion response carried no choices", nil)
	}
	var sb strings.Builder
	for _, choice := range resp.Choices {
		if functionCalling {
			if choice.Message.FunctionCall != nil {
				sb.WriteString(choice.Message.FunctionCall.Arguments)
			}
			continue
		}
		if choice.Message.Content != nil {
			sb.WriteString(*choice.Message.Content)
		}
	}
	return sb.String(), nil
}

func (m *Model) extractResponses(raw []byte) (string, error) {
	var resp responsesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", llm.NewResponseParseError(providerSlug, "failed to decode responses API response", err)
	}
	var sb strings.Builder
	for _, output := range resp.Output {
		if output.Type != "message" || output.Role != "assistant" {
			continue
		}
		for _, content := range output.Content {
			if content.Type == "output_text" {
				sb.WriteString(content.Text)
			}
		}
	}
	if sb.Len() == 0 {
		return "", llm.NewResponseParseError(providerSlug, "responses API response carried no assistant output", nil)
	}
	return sb.String(), nil
}
