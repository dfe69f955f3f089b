package assistants

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/neferdata/allms-go/llm"
)

// runStatusServer serves a scripted sequence of run statuses, repeating
// the last one once the script runs out.
func runStatusServer(t *testing.T, polls *atomic.Int64, statuses ...RunStatus) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i := int(polls.Add(1)) - 1
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		json.NewEncoder(w).Encode(runResp{ID: "run_test", Status: statuses[i]})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func pollSession(t *testing.T, srv *httptest.Server, opts ...Option) *Session {
	t.Helper()
	t.Setenv(envAPIURL, srv.URL)
	base := []Option{
		WithHTTPClient(srv.Client()),
		WithPollInterval(time.Millisecond),
		WithRunTimeout(time.Second),
	}
	s := NewSession(nil, "sk-test", zerolog.Nop(), append(base, opts...)...)
	s.threadID = "thread_test"
	s.runID = "run_test"
	return s
}

func TestWaitForRunCompletes(t *testing.T) {
	var polls atomic.Int64
	srv := runStatusServer(t, &polls, RunStatusQueued, RunStatusInProgress, RunStatusCompleted)
	s := pollSession(t, srv)

	if err := s.waitForRun(context.Background()); err != nil {
		t.Fatalf("waitForRun error: %v", err)
	}
	if polls.Load() != 3 {
		t.Errorf("polled %d times, want 3", polls.Load())
	}
}

func TestWaitForRunTerminalFailure(t *testing.T) {
	for _, status := range []RunStatus{
		RunStatusRequiresAction, RunStatusCancelling, RunStatusCancelled,
		RunStatusFailed, RunStatusExpired,
	} {
		t.Run(string(status), func(t *testing.T) {
			var polls atomic.Int64
			srv := runStatusServer(t, &polls, RunStatusQueued, status)
			s := pollSession(t, srv)

			err := s.waitForRun(context.Background())
			if err == nil {
				t.Fatal("expected run failure")
			}
			if !llm.IsRunFailedError(err) {
				t.Errorf("expected run failed error, got %v", err)
			}
			// A terminal status ends polling immediately.
			if polls.Load() != 2 {
				t.Errorf("polled %d times, want 2", polls.Load())
			}
		})
	}
}

func TestWaitForRunTimeout(t *testing.T) {
	var polls atomic.Int64
	srv := runStatusServer(t, &polls, RunStatusInProgress)
	s := pollSession(t, srv, WithRunTimeout(20*time.Millisecond))

	err := s.waitForRun(context.Background())
	if err == nil {
		t.Fatal("expected timeout")
	}
	if !llm.IsRunTimeoutError(err) {
		t.Errorf("expected run timeout error, got %v", err)
	}
}

func TestWaitForRunTransportErrorIsTerminal(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error": "boom"}`, http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	s := pollSession(t, srv)

	err := s.waitForRun(context.Background())
	if !llm.IsTransportError(err) {
		t.Errorf("expected transport error, got %v", err)
	}
	// A failing status fetch must not be retried.
	if calls.Load() != 1 {
		t.Errorf("status fetched %d times, want 1", calls.Load())
	}
}

func TestRunStatusPending(t *testing.T) {
	pending := map[RunStatus]bool{
		RunStatusQueued:         true,
		RunStatusInProgress:     true,
		RunStatusRequiresAction: false,
		RunStatusCancelling:     false,
		RunStatusCancelled:      false,
		RunStatusFailed:         false,
		RunStatusCompleted:      false,
		RunStatusExpired:        false,
	}
	for status, want := range pending {
		if got := status.Pending(); got != want {
			t.Errorf("%s.Pending() = %v, want %v", status, got, want)
		}
	}
}
