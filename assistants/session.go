package assistants

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/neferdata/allms-go/llm"
)

const providerSlug = "openai"

// schemaMessageFormat instructs the assistant to answer with the data
// portion of the schema only.
const schemaMessageFormat = "Response should include only the data portion of a Json formatted as per the following schema: %s. " +
	"The response should only include well-formatted data, and not the schema itself. " +
	"Do not include any other words or characters, including the word 'json'. Only respond with the data. " +
	"You need to validate the Json before returning."

// Session drives one OpenAI assistant: it owns the assistant, its thread
// and the run lifecycle. Sessions are not safe for concurrent use.
type Session struct {
	model      llm.Model
	apiKey     string
	version    Version
	httpClient *http.Client
	logger     zerolog.Logger

	pollInterval time.Duration
	runTimeout   time.Duration
	debug        bool

	assistantID string
	threadID    string
	runID       string

	vectorStore *VectorStore
	fileIDs     []string
}

// Option configures a Session.
type Option func(*Session)

// WithVersion selects the Assistants API generation (default V2).
func WithVersion(v Version) Option {
	return func(s *Session) { s.version = v }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Session) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithDebug enables payload logging.
func WithDebug() Option {
	return func(s *Session) { s.debug = true }
}

// WithPollInterval overrides the run polling interval (default 10s).
func WithPollInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithRunTimeout overrides the end-to-end run deadline (default 600s).
func WithRunTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.runTimeout = d
		}
	}
}

// NewSession creates an assistant session for the given model.
func NewSession(model llm.Model, apiKey string, logger zerolog.Logger, opts ...Option) *Session {
	s := &Session{
		model:        model,
		apiKey:       apiKey,
		version:      V2,
		httpClient:   llm.NewHTTPClient(),
		logger:       logger,
		pollInterval: 10 * time.Second,
		runTimeout:   600 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AttachVectorStore makes the vector store's documents searchable by the
// assistant through the file_search tool. V1 has no vector stores.
func (s *Session) AttachVectorStore(ctx context.Context, store *VectorStore) error {
	if s.version == V1 {
		return llm.NewConfigurationError("vector stores require assistants v2 or azure")
	}
	if store == nil || store.ID == "" {
		return llm.NewResourceStateError("vector store has not been created")
	}
	if s.assistantID == "" {
		if err := s.createAssistant(ctx); err != nil {
			return err
		}
	}
	body := map[string]any{
		"tools": []toolTypeField{{Type: "file_search"}},
		"tool_resources": map[string]any{
			"file_search": map[string]any{"vector_store_ids": []string{store.ID}},
		},
	}
	var resp assistantResp
	if err := s.call(ctx, http.MethodPost, s.version.url("assistants", s.assistantID), body, &resp); err != nil {
		return err
	}
	s.vectorStore = store
	return nil
}

// AttachFile adds an uploaded file to the next user message.
func (s *Session) AttachFile(file *File) error {
	if file == nil || file.ID == "" {
		return llm.NewResourceStateError("file has not been uploaded")
	}
	s.fileIDs = append(s.fileIDs, file.ID)
	return nil
}

// SetContext posts a named JSON-serialized dataset to the thread so later
// questions can refer to it by name.
func (s *Session) SetContext(ctx context.Context, name string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return llm.NewConfigurationError(fmt.Sprintf("failed to serialize context %q: %v", name, err))
	}
	if s.assistantID == "" {
		if err := s.bootstrap(ctx); err != nil {
			return err
		}
	}
	return s.addMessage(ctx, fmt.Sprintf("'%s'= %s", name, payload), nil)
}

// GetAnswer asks the assistant and decodes its answer into T. Assistant
// messages are tried in thread order; the first one that decodes wins.
// The thread accumulates: repeated calls on one session build on earlier
// messages and context.
func GetAnswer[T any](ctx context.Context, s *Session, message string) (*T, error) {
	schema, err := llm.SchemaFor[T]()
	if err != nil {
		return nil, err
	}
	texts, err := s.callAssistant(ctx, schema, message)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for _, text := range texts {
		answer, err := llm.DecodeResponse[T](llm.SanitizeJSONResponse(text), text)
		if err == nil {
			return answer, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// GetJSONAnswer asks the assistant with a caller-supplied JSON schema and
// returns the first assistant reply that sanitizes to valid JSON.
func (s *Session) GetJSONAnswer(ctx context.Context, message, schema string) (string, error) {
	if !json.Valid([]byte(schema)) {
		return "", llm.NewConfigurationError("output schema is not valid JSON")
	}
	texts, err := s.callAssistant(ctx, schema, message)
	if err != nil {
		return "", err
	}
	for _, text := range texts {
		if sanitized := llm.SanitizeJSONResponse(text); json.Valid([]byte(sanitized)) {
			return sanitized, nil
		}
	}
	return "", llm.NewResponseParseError(providerSlug, "no assistant reply contained valid JSON", nil)
}

// Close deletes the assistant and its thread. The session can be closed
// once; a fresh session must be created for further questions.
func (s *Session) Close(ctx context.Context) error {
	if s.threadID != "" {
		if err := s.call(ctx, http.MethodDelete, s.version.url("threads", s.threadID), nil, nil); err != nil {
			return err
		}
		s.threadID = ""
	}
	if s.assistantID != "" {
		if err := s.call(ctx, http.MethodDelete, s.version.url("assistants", s.assistantID), nil, nil); err != nil {
			return err
		}
		s.assistantID = ""
	}
	return nil
}

// callAssistant runs the full thread round trip: configure, ask, run,
// poll, and read back the assistant's replies in thread order.
func (s *Session) callAssistant(ctx context.Context, schema, message string) ([]string, error) {
	if s.model == nil {
		return nil, llm.NewConfigurationError("model is required")
	}
	if s.apiKey == "" {
		return nil, llm.NewConfigurationError("api key is required")
	}

	if s.assistantID == "" {
		if err := s.bootstrap(ctx); err != nil {
			return nil, err
		}
	}

	if err := s.addMessage(ctx, fmt.Sprintf(schemaMessageFormat, schema), nil); err != nil {
		return nil, err
	}

	fileIDs := s.fileIDs
	s.fileIDs = nil
	if err := s.addMessage(ctx, message, fileIDs); err != nil {
		return nil, err
	}

	if err := s.startRun(ctx); err != nil {
		return nil, err
	}
	if err := s.waitForRun(ctx); err != nil {
		return nil, err
	}

	messages, err := s.listMessages(ctx)
	if err != nil {
		return nil, err
	}

	assistantMessages := lo.Filter(messages, func(m messageResp, _ int) bool {
		return m.Role == "assistant"
	})
	var texts []string
	for _, m := range assistantMessages {
		for _, content := range m.Content {
			if content.Text != nil {
				texts = append(texts, content.Text.Value)
			}
		}
	}
	if len(texts) == 0 {
		return nil, llm.NewResponseParseError(providerSlug, "no assistant response found on the thread", nil)
	}
	return texts, nil
}

// bootstrap creates the assistant and seeds the thread with the standing
// instructions.
func (s *Session) bootstrap(ctx context.Context) error {
	if err := s.createAssistant(ctx); err != nil {
		return err
	}
	return s.addMessage(ctx, llm.AssistantInstructions, nil)
}

func (s *Session) createAssistant(ctx context.Context) error {
	body := map[string]any{
		"instructions": llm.AssistantInstructions,
		"model":        s.model.Name(),
	}
	var resp assistantResp
	if err := s.call(ctx, http.MethodPost, s.version.url("assistants"), body, &resp); err != nil {
		return err
	}
	if resp.ID == "" {
		return llm.NewResponseParseError(providerSlug, "assistant create response carried no id", nil)
	}
	s.assistantID = resp.ID
	if s.debug {
		s.logger.Debug().Str("assistant_id", s.assistantID).Msg("Assistant created")
	}
	return nil
}

// addMessage posts to the thread, creating the thread with the first
// message.
func (s *Session) addMessage(ctx context.Context, text string, fileIDs []string) error {
	msg := map[string]any{
		"role":    "user",
		"content": text,
	}
	if len(fileIDs) > 0 {
		if s.version == V1 {
			msg["file_ids"] = fileIDs
		} else {
			msg["attachments"] = lo.Map(fileIDs, func(id string, _ int) messageAttachment {
				return messageAttachment{FileID: id, Tools: []toolTypeField{{Type: "file_search"}}}
			})
		}
	}

	if s.threadID == "" {
		var resp threadResp
		body := map[string]any{"messages": []map[string]any{msg}}
		if err := s.call(ctx, http.MethodPost, s.version.url("threads"), body, &resp); err != nil {
			return err
		}
		if resp.ID == "" {
			return llm.NewResponseParseError(providerSlug, "thread create response carried no id", nil)
		}
		s.threadID = resp.ID
		if s.debug {
			s.logger.Debug().Str("thread_id", s.threadID).Msg("Thread created")
		}
		return nil
	}
	return s.call(ctx, http.MethodPost, s.version.url("threads", s.threadID, "messages"), msg, nil)
}

func (s *Session) startRun(ctx context.Context) error {
	if s.threadID == "" {
		return llm.NewResourceStateError("no active thread detected")
	}
	body := map[string]any{"assistant_id": s.assistantID}
	var resp runResp
	if err := s.call(ctx, http.MethodPost, s.version.url("threads", s.threadID, "runs"), body, &resp); err != nil {
		return err
	}
	if resp.ID == "" {
		return llm.NewResponseParseError(providerSlug, "run create response carried no id", nil)
	}
	s.runID = resp.ID
	if s.debug {
		s.logger.Debug().Str("run_id", s.runID).Str("status", string(resp.Status)).Msg("Run started")
	}
	return nil
}

func (s *Session) runStatus(ctx context.Context) (RunStatus, error) {
	if s.threadID == "" || s.runID == "" {
		return "", llm.NewResourceStateError("no active run detected")
	}
	var resp runResp
	if err := s.call(ctx, http.MethodGet, s.version.url("threads", s.threadID, "runs", s.runID), nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (s *Session) listMessages(ctx context.Context) ([]messageResp, error) {
	if s.threadID == "" {
		return nil, llm.NewResourceStateError("no active thread detected")
	}
	var resp messageListResp
	if err := s.call(ctx, http.MethodGet, s.version.url("threads", s.threadID, "messages"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// call performs one JSON request against the Assistants API and decodes
// the response into out when provided.
func (s *Session) call(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return llm.NewConfigurationError("failed to serialize request body: " + err.Error())
		}
		if s.debug {
			s.logger.Debug().Str("method", method).Str("url", url).RawJSON("body", payload).Msg("Assistants API request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return llm.NewTransportError(providerSlug, "failed to build request", 0, err)
	}
	for key, values := range s.version.headers(s.apiKey) {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return llm.NewTransportError(providerSlug, "request failed", 0, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.NewTransportError(providerSlug, "failed to read response body", resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return llm.NewTransportError(providerSlug,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, payload), resp.StatusCode, nil)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return llm.NewResponseParseError(providerSlug, "failed to decode response", err)
	}
	return nil
}
