package assistants

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/neferdata/allms-go/llm"
	"github.com/neferdata/allms-go/llm/openai"
)

type fakeAssistantsAPI struct {
	mux *http.ServeMux

	createdAssistant bool
	deletedAssistant bool
	deletedThread    bool
	threadMessages   []map[string]any
	runsStarted      int

	answers []string
}

func newFakeAssistantsAPI(t *testing.T, answers ...string) (*fakeAssistantsAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAssistantsAPI{mux: http.NewServeMux(), answers: answers}

	api.mux.HandleFunc("POST /v1/assistants", func(w http.ResponseWriter, r *http.Request) {
		api.createdAssistant = true
		json.NewEncoder(w).Encode(assistantResp{ID: "asst_1"})
	})
	api.mux.HandleFunc("DELETE /v1/assistants/asst_1", func(w http.ResponseWriter, r *http.Request) {
		api.deletedAssistant = true
	})
	api.mux.HandleFunc("POST /v1/threads", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []map[string]any `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		api.threadMessages = append(api.threadMessages, body.Messages...)
		json.NewEncoder(w).Encode(threadResp{ID: "thread_1"})
	})
	api.mux.HandleFunc("DELETE /v1/threads/thread_1", func(w http.ResponseWriter, r *http.Request) {
		api.deletedThread = true
	})
	api.mux.HandleFunc("POST /v1/threads/thread_1/messages", func(w http.ResponseWriter, r *http.Request) {
		var msg map[string]any
		json.NewDecoder(r.Body).Decode(&msg)
		api.threadMessages = append(api.threadMessages, msg)
		w.Write([]byte(`{}`))
	})
	api.mux.HandleFunc("POST /v1/threads/thread_1/runs", func(w http.ResponseWriter, r *http.Request) {
		api.runsStarted++
		json.NewEncoder(w).Encode(runResp{ID: "run_1", Status: RunStatusQueued})
	})
	api.mux.HandleFunc("GET /v1/threads/thread_1/runs/run_1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(runResp{ID: "run_1", Status: RunStatusCompleted})
	})
	api.mux.HandleFunc("GET /v1/threads/thread_1/messages", func(w http.ResponseWriter, r *http.Request) {
		data := []messageResp{}
		for i, answer := range api.answers {
			data = append(data, messageResp{
				ID: fmt.Sprintf("msg_a%d", i), Role: "assistant",
				Content: []messageContent{{Type: "text", Text: &messageContentText{Value: answer}}},
			})
		}
		data = append(data, messageResp{
			ID: "msg_q", Role: "user",
			Content: []messageContent{{Type: "text", Text: &messageContentText{Value: "question"}}},
		})
		json.NewEncoder(w).Encode(messageListResp{Data: data})
	})

	srv := httptest.NewServer(api.mux)
	t.Cleanup(srv.Close)
	t.Setenv(envAPIURL, srv.URL)
	return api, srv
}

func testSession(t *testing.T, srv *httptest.Server, opts ...Option) *Session {
	t.Helper()
	base := []Option{
		WithHTTPClient(srv.Client()),
		WithPollInterval(time.Millisecond),
		WithRunTimeout(time.Second),
	}
	return NewSession(openai.GPT4o, "sk-test", zerolog.Nop(), append(base, opts...)...)
}

type cityAnswer struct {
	City string `json:"city"`
}

func TestSessionGetAnswer(t *testing.T) {
	api, srv := newFakeAssistantsAPI(t, "```json\n{\"city\": \"Lisbon\"}\n```")
	s := testSession(t, srv)

	answer, err := GetAnswer[cityAnswer](context.Background(), s, "Name a coastal city.")
	if err != nil {
		t.Fatalf("GetAnswer error: %v", err)
	}
	if answer.City != "Lisbon" {
		t.Errorf("City = %q", answer.City)
	}

	if !api.createdAssistant {
		t.Error("assistant was never created")
	}
	if api.runsStarted != 1 {
		t.Errorf("runs started = %d, want 1", api.runsStarted)
	}
	// Standing instructions, schema message, then the user's question.
	if len(api.threadMessages) != 3 {
		t.Fatalf("thread messages = %d, want 3", len(api.threadMessages))
	}
	schemaMsg, _ := api.threadMessages[1]["content"].(string)
	if !strings.Contains(schemaMsg, "only the data portion") {
		t.Errorf("schema message = %q", schemaMsg)
	}
	userMsg, _ := api.threadMessages[2]["content"].(string)
	if userMsg != "Name a coastal city." {
		t.Errorf("user message = %q", userMsg)
	}
}

func TestSessionSkipsUndecodableMessages(t *testing.T) {
	// Only the second assistant reply matches the target type.
	_, srv := newFakeAssistantsAPI(t,
		"I could not produce an answer.",
		`{"city": "Porto"}`,
		`{"city": "ignored later"}`)
	s := testSession(t, srv)

	answer, err := GetAnswer[cityAnswer](context.Background(), s, "Name a coastal city.")
	if err != nil {
		t.Fatalf("GetAnswer error: %v", err)
	}
	if answer.City != "Porto" {
		t.Errorf("City = %q, want the first decodable reply", answer.City)
	}
}

func TestSessionAttachedFilesRideOnce(t *testing.T) {
	api, srv := newFakeAssistantsAPI(t, `{"city": "Porto"}`)
	s := testSession(t, srv)

	if err := s.AttachFile(&File{ID: "file_1"}); err != nil {
		t.Fatalf("AttachFile error: %v", err)
	}
	if _, err := GetAnswer[cityAnswer](context.Background(), s, "First question."); err != nil {
		t.Fatalf("first GetAnswer error: %v", err)
	}
	if _, err := GetAnswer[cityAnswer](context.Background(), s, "Second question."); err != nil {
		t.Fatalf("second GetAnswer error: %v", err)
	}

	var withAttachments int
	for _, msg := range api.threadMessages {
		if _, ok := msg["attachments"]; ok {
			withAttachments++
		}
	}
	// The file rides on the first question's message only.
	if withAttachments != 1 {
		t.Errorf("messages with attachments = %d, want 1", withAttachments)
	}
}

func TestSessionSetContext(t *testing.T) {
	api, srv := newFakeAssistantsAPI(t, `{"city": "Faro"}`)
	s := testSession(t, srv)

	if err := s.SetContext(context.Background(), "population", map[string]int{"faro": 64000}); err != nil {
		t.Fatalf("SetContext error: %v", err)
	}
	last := api.threadMessages[len(api.threadMessages)-1]
	content, _ := last["content"].(string)
	if !strings.Contains(content, "'population'=") {
		t.Errorf("context message = %q", content)
	}
}

func TestSessionClose(t *testing.T) {
	api, srv := newFakeAssistantsAPI(t, `{"city": "Sines"}`)
	s := testSession(t, srv)

	if _, err := GetAnswer[cityAnswer](context.Background(), s, "Name a coastal city."); err != nil {
		t.Fatalf("GetAnswer error: %v", err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if !api.deletedThread || !api.deletedAssistant {
		t.Errorf("deleted thread=%v assistant=%v, want both", api.deletedThread, api.deletedAssistant)
	}
}

func TestSessionRequiresAPIKey(t *testing.T) {
	s := NewSession(openai.GPT4o, "", zerolog.Nop())
	_, err := GetAnswer[cityAnswer](context.Background(), s, "Name a coastal city.")
	if !llm.IsConfigurationError(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestAttachVectorStoreRejectsV1(t *testing.T) {
	_, srv := newFakeAssistantsAPI(t, "")
	s := testSession(t, srv, WithVersion(V1))

	err := s.AttachVectorStore(context.Background(), &VectorStore{ID: "vs_1"})
	if !llm.IsConfigurationError(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestGetJSONAnswerRejectsInvalidSchema(t *testing.T) {
	_, srv := newFakeAssistantsAPI(t, "")
	s := testSession(t, srv)

	_, err := s.GetJSONAnswer(context.Background(), "question", "{not json")
	if !llm.IsConfigurationError(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}
