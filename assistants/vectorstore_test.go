package assistants

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/neferdata/allms-go/llm"
)

func TestVectorStoreLifecycle(t *testing.T) {
	var batchFileIDs []string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/vector_stores", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(vectorStoreResp{ID: "vs_1", Name: "docs", Status: VectorStoreStatusInProgress})
	})
	mux.HandleFunc("POST /v1/vector_stores/vs_1/file_batches", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			FileIDs []string `json:"file_ids"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		batchFileIDs = body.FileIDs
		json.NewEncoder(w).Encode(map[string]string{"id": "batch_1", "status": "in_progress"})
	})
	mux.HandleFunc("GET /v1/vector_stores/vs_1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(vectorStoreResp{
			ID: "vs_1", Status: VectorStoreStatusCompleted,
			FileCounts: FileCounts{Completed: 2, Total: 2},
		})
	})
	var deleted bool
	mux.HandleFunc("DELETE /v1/vector_stores/vs_1", func(w http.ResponseWriter, r *http.Request) {
		deleted = true
		w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv(envAPIURL, srv.URL)

	vs := NewVectorStore("docs", "sk-test", zerolog.Nop(), WithHTTPClient(srv.Client()))
	if err := vs.Create(context.Background()); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if vs.ID != "vs_1" {
		t.Errorf("ID = %q", vs.ID)
	}

	if err := vs.AddFiles(context.Background(), []string{"file_1", "file_2"}); err != nil {
		t.Fatalf("AddFiles error: %v", err)
	}
	if len(batchFileIDs) != 2 {
		t.Errorf("batch file ids = %v", batchFileIDs)
	}

	status, err := vs.Status(context.Background())
	if err != nil {
		t.Fatalf("Status error: %v", err)
	}
	if status != VectorStoreStatusCompleted {
		t.Errorf("status = %q", status)
	}

	counts, err := vs.FileCounts(context.Background())
	if err != nil {
		t.Fatalf("FileCounts error: %v", err)
	}
	if counts.Completed != 2 || counts.Total != 2 {
		t.Errorf("counts = %+v", counts)
	}

	if err := vs.Delete(context.Background()); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if !deleted || vs.ID != "" {
		t.Errorf("deleted = %v, ID = %q", deleted, vs.ID)
	}
}

func TestVectorStoreCreateRejectsV1(t *testing.T) {
	vs := NewVectorStore("docs", "sk-test", zerolog.Nop(), WithVersion(V1))
	if err := vs.Create(context.Background()); !llm.IsConfigurationError(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestVectorStoreRequiresCreate(t *testing.T) {
	vs := NewVectorStore("docs", "sk-test", zerolog.Nop())
	if err := vs.AddFiles(context.Background(), []string{"file_1"}); !llm.IsResourceStateError(err) {
		t.Errorf("AddFiles: expected resource state error, got %v", err)
	}
	if _, err := vs.Status(context.Background()); !llm.IsResourceStateError(err) {
		t.Errorf("Status: expected resource state error, got %v", err)
	}
	if err := vs.Delete(context.Background()); !llm.IsResourceStateError(err) {
		t.Errorf("Delete: expected resource state error, got %v", err)
	}
}

func TestVectorStoreAddFilesRequiresIDs(t *testing.T) {
	vs := NewVectorStore("docs", "sk-test", zerolog.Nop())
	vs.ID = "vs_1"
	if err := vs.AddFiles(context.Background(), nil); !llm.IsConfigurationError(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}
