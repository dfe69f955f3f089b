package google

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/neferdata/allms-go/llm"
)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type request struct {
	Contents         content           `json:"contents"`
	GenerationConfig generationConfig  `json:"generationConfig"`
	Tools            []json.RawMessage `json:"tools,omitempty"`
}

type response struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

// CompileRequest builds a generateContent body. The preamble, schema and
// instructions travel as separate parts of a single user turn.
func (m *Model) CompileRequest(instructions, schema string, opts llm.RequestOptions) ([]byte, error) {
	req := request{
		Contents: content{
			Role: "user",
			Parts: []part{
				{Text: llm.SelectInstructions(false)},
				{Text: "<output json schema>\n" + schema + "\n</output json schema>"},
				{Text: "<instructions>\n" + instructions + "\n</instructions>"},
			},
		},
		GenerationConfig: generationConfig{Temperature: opts.Temperature},
	}
	tools, err := llm.WireTools(opts.Tools, m.tools)
	if err != nil {
		return nil, err
	}
	req.Tools = tools
	return json.Marshal(req)
}

// Invoke dispatches to the flavor-specific call path. Studio is a plain
// POST with key auth; Vertex responds with a server-sent-event stream that
// is drained into a single text payload before returning.
func (m *Model) Invoke(ctx context.Context, client *http.Client, apiKey string, body []byte, opts llm.RequestOptions) ([]byte, error) {
	if vertex(opts.Version) {
		return m.invokeVertex(ctx, client, apiKey, body, opts)
	}
	url := m.Endpoint(opts.Version) + "?key=" + apiKey
	return llm.Post(ctx, client, providerSlug, url, m.Headers(apiKey, opts.Version), body)
}

func (m *Model) invokeVertex(ctx context.Context, client *http.Client, apiKey string, body []byte, opts llm.RequestOptions) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint(opts.Version), bytes.NewReader(body))
	if err != nil {
		return nil, llm.NewTransportError(providerSlug, "failed to build request", 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, llm.NewTransportError(providerSlug, "request failed", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(resp.Body)
		return nil, llm.NewTransportError(providerSlug,
			"unexpected status "+resp.Status+": "+string(payload), resp.StatusCode, nil)
	}

	// Each SSE line is a complete generateContent chunk; the model text
	// accumulates across chunks.
	var sb strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			break
		}
		var chunk response
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return nil, llm.NewResponseParseError(providerSlug, "failed to decode stream chunk", err)
		}
		sb.WriteString(textOf(chunk))
	}
	if err := scanner.Err(); err != nil {
		return nil, llm.NewTransportError(providerSlug, "failed to read stream", resp.StatusCode, err)
	}
	// The stream is already reduced to text; wrap it back in the response
	// shape so extraction stays uniform.
	out := response{Candidates: []candidate{{Content: content{Role: "model", Parts: []part{{Text: sb.String()}}}}}}
	return json.Marshal(out)
}

// ExtractText concatenates the text parts of the model's candidates.
func (m *Model) ExtractText(raw []byte, _ llm.RequestOptions) (string, error) {
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", llm.NewResponseParseError(providerSlug, "failed to decode generateContent response", err)
	}
	text := textOf(resp)
	if text == "" {
		return "", llm.NewResponseParseError(providerSlug, "generateContent response carried no model text", nil)
	}
	return text, nil
}

func textOf(resp response) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content.Role != "" && cand.Content.Role != "model" {
			continue
		}
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}
